package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-stage/pkg/pipeline/measure"
	"github.com/askiada/go-stage/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
	m measure.Measure
}

func (pd *pipelineDrawer) New() error {
	return nil
}

func (pd *pipelineDrawer) PrepareStage(stage *model.StageInfo) error {
	return pd.AddStage(stage.Name)
}

func (pd *pipelineDrawer) AfterStage(stage *model.StageInfo, totalDuration time.Duration) error {
	return pd.SetTotalTime(stage.Name, totalDuration)
}

func (pd *pipelineDrawer) PrepareChannel(channel *model.ChannelInfo) error {
	return pd.AddLink(channel.Producer, channel.Consumer, channel.Name)
}

func (pd *pipelineDrawer) OnChannelPush(*model.ChannelInfo, time.Duration) error {
	return nil
}

func (pd *pipelineDrawer) OnChannelRead(*model.ChannelInfo, time.Duration) error {
	return nil
}

func (pd *pipelineDrawer) Finish() error {
	if pd.m != nil {
		err := pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err := pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// PipelineDrawer draws the pipeline once it finished. A nil measure draws the bare graph.
// It must be registered after the measure option so that the measure is complete when drawing.
func PipelineDrawer(drawer Drawer, measure measure.Measure) model.PipelineOption {
	return &pipelineDrawer{drawer, measure}
}
