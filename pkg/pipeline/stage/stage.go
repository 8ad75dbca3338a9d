// Package stage defines the contract every pipeline stage is built against and the state machine driving it.
//
// A stage is constructed from a Base, which carries its name, its logger and a binder over its resolved arguments.
// The constructor binds everything it needs and fails fast on configuration errors. The runner then calls Setup
// once and Exec once, through a Lifecycle which enforces that order.
package stage

import (
	"context"
	"log/slog"

	"github.com/askiada/go-stage/pkg/pipeline/args"
)

// Stage is one unit of pipeline work.
type Stage interface {
	// Setup prepares the stage, typically by subscribing to push-style inputs. It is called exactly once.
	Setup(ctx context.Context) error
	// Exec runs the main loop of the stage until its inputs are exhausted. It is called exactly once, after Setup.
	Exec(ctx context.Context) error
}

// Factory builds a stage from its Base. It must bind every required argument and return the binding error.
type Factory func(base Base) (Stage, error)

// Base is embedded by stages. It provides the logger, the argument binder and a no-op Setup.
type Base struct {
	Name string
	Log  *slog.Logger
	Args *args.Binder
}

// NewBase builds the Base of the stage name over store.
func NewBase(name string, store *args.Store, logger *slog.Logger) Base {
	if logger == nil {
		logger = slog.Default()
	}

	return Base{
		Name: name,
		Log:  logger.With("stage", name),
		Args: args.NewBinder(name, store, logger),
	}
}

// Setup does nothing. Stages without preparation rely on it.
func (Base) Setup(context.Context) error {
	return nil
}
