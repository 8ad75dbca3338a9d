package processors

import (
	"maps"
	"slices"

	"github.com/askiada/go-stage/pkg/pipeline/stage"
)

var factories = map[string]stage.Factory{
	"range":       NewRange,
	"filter":      NewFilter,
	"reporter":    NewReporter,
	"square":      NewSquare,
	"negator":     NewNegator,
	"transparent": NewTransparent,
	"script":      NewScript,
}

// Lookup returns the factory of the processor name.
func Lookup(name string) (stage.Factory, bool) {
	factory, ok := factories[name]

	return factory, ok
}

// Names returns the sorted names of every processor.
func Names() []string {
	return slices.Sorted(maps.Keys(factories))
}
