package pipeline

import (
	"log/slog"

	"github.com/askiada/go-stage/pkg/pipeline/model"
)

type Option func(p *Pipeline)

// WithLogger sets the logger handed to every stage. It defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithCapacity sets the buffer size of the channels created by AddChannel.
// A capacity lower or equal to 0 makes them unbounded.
func WithCapacity(capacity int) Option {
	return func(p *Pipeline) {
		p.capacity = capacity
	}
}

// WithOptions registers pipeline options such as measure.PipelineMeasure or drawer.PipelineDrawer.
func WithOptions(opts ...model.PipelineOption) Option {
	return func(p *Pipeline) {
		p.opts = append(p.opts, opts...)
	}
}
