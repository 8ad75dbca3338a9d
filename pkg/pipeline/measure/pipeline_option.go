package measure

import (
	"time"

	"github.com/askiada/go-stage/pkg/pipeline/model"
)

type pipelineMeasure struct {
	Measure
}

func (pm *pipelineMeasure) New() error {
	return nil
}

func (pm *pipelineMeasure) PrepareStage(stage *model.StageInfo) error {
	pm.AddMetric(stage.Name)

	return nil
}

func (pm *pipelineMeasure) AfterStage(stage *model.StageInfo, totalDuration time.Duration) error {
	pm.AddMetric(stage.Name).SetTotalDuration(totalDuration)

	return nil
}

func (pm *pipelineMeasure) PrepareChannel(*model.ChannelInfo) error {
	return nil
}

func (pm *pipelineMeasure) OnChannelPush(channel *model.ChannelInfo, wait time.Duration) error {
	pm.AddMetric(channel.Producer).AddDuration(wait)

	return nil
}

func (pm *pipelineMeasure) OnChannelRead(channel *model.ChannelInfo, wait time.Duration) error {
	pm.AddMetric(channel.Consumer).AddTransportDuration(channel.Producer, wait)

	return nil
}

func (pm *pipelineMeasure) Finish() error {
	return nil
}

// PipelineMeasure records the channel waits of a pipeline run into measure.
func PipelineMeasure(measure Measure) model.PipelineOption {
	return &pipelineMeasure{measure}
}
