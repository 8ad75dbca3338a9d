package pipeline

import (
	"time"

	"github.com/askiada/go-stage/pkg/pipeline/model"
)

// channelTracer forwards the waits measured by a channel to the pipeline options.
type channelTracer struct {
	p    *Pipeline
	info *model.ChannelInfo
}

func (t *channelTracer) Pushed(wait time.Duration) {
	t.p.hook("OnChannelPush", func(opt model.PipelineOption) error {
		return opt.OnChannelPush(t.info, wait)
	})
}

func (t *channelTracer) Received(wait time.Duration) {
	t.p.hook("OnChannelRead", func(opt model.PipelineOption) error {
		return opt.OnChannelRead(t.info, wait)
	})
}
