package model

import "time"

// PipelineOption defines the interface for pipeline options.
// The runner never calls the hooks of an option concurrently.
type PipelineOption interface {
	// New initialises the pipeline option.
	New() error

	pipelineStageOption
	pipelineChannelOption

	// Finish runs after every stage terminated successfully.
	Finish() error
}

// pipelineStageOption defines the interface for stage options at the pipeline level.
type pipelineStageOption interface {
	// PrepareStage runs before the stage is set up.
	PrepareStage(stage *StageInfo) error
	// AfterStage runs after the stage Exec returned without error.
	AfterStage(stage *StageInfo, totalDuration time.Duration) error
}

// pipelineChannelOption defines the interface for channel options at the pipeline level.
type pipelineChannelOption interface {
	// PrepareChannel runs once the producer and the consumer of the channel are known.
	PrepareChannel(channel *ChannelInfo) error
	// OnChannelPush runs everytime a message is pushed, with the time the producer waited for room.
	OnChannelPush(channel *ChannelInfo, wait time.Duration) error
	// OnChannelRead runs everytime a message is read, with the time the consumer waited for it.
	OnChannelRead(channel *ChannelInfo, wait time.Duration) error
}
