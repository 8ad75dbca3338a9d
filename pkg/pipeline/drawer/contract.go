package drawer

import (
	"time"

	"github.com/askiada/go-stage/pkg/pipeline/measure"
)

// Drawer is an interface that defines the methods for drawing a pipeline.
type Drawer interface {
	// AddStage adds a stage to the pipeline drawer.
	AddStage(name string) error
	// AddLink adds the channel channelName going from the producer stage to the consumer stage.
	AddLink(producer, consumer, channelName string) error
	// Draw writes the pipeline graph.
	Draw() error
	// SetTotalTime sets the time the stage took to terminate.
	SetTotalTime(stageName string, total time.Duration) error
	// AddMeasure adds a measure to the pipeline drawer.
	AddMeasure(measure measure.Measure) error
}
