package measure_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-stage/pkg/pipeline/measure"
	"github.com/askiada/go-stage/pkg/pipeline/model"
)

func TestDefaultMeasure(t *testing.T) {
	t.Parallel()

	msr := measure.NewDefaultMeasure()
	assert.Nil(t, msr.GetMetric("range"))

	mt := msr.AddMetric("range")
	assert.Same(t, mt, msr.AddMetric("range"))
	assert.Same(t, mt, msr.GetMetric("range"))

	all := msr.AllMetrics()
	delete(all, "range")
	assert.Len(t, msr.AllMetrics(), 1)
}

func TestDefaultMetric(t *testing.T) {
	t.Parallel()

	mt := measure.NewDefaultMeasure().AddMetric("filter")
	assert.Zero(t, mt.AVGDuration())

	mt.AddDuration(2 * time.Millisecond)
	mt.AddDuration(4 * time.Millisecond)
	assert.Equal(t, 3*time.Millisecond, mt.AVGDuration())

	mt.AddTransportDuration("range", 10*time.Microsecond)
	mt.AddTransportDuration("range", 30*time.Microsecond)
	mt.AddTransportDuration("other", time.Second)

	avg := mt.AVGTransportDuration()
	require.Contains(t, avg, "range")
	assert.Equal(t, 20*time.Microsecond, avg["range"].Elapsed)
	assert.Equal(t, int64(2), avg["range"].Total)
	assert.Equal(t, time.Second, avg["other"].Elapsed)

	// Averages are computed on a copy.
	assert.Equal(t, 20*time.Microsecond, mt.AVGTransportDuration()["range"].Elapsed)
	assert.Equal(t, 40*time.Microsecond, mt.AllTransports()["range"].Elapsed)

	mt.SetTotalDuration(time.Minute)
	assert.Equal(t, time.Minute, mt.GetTotalDuration())
}

func TestPipelineMeasure(t *testing.T) {
	t.Parallel()

	msr := measure.NewDefaultMeasure()
	opt := measure.PipelineMeasure(msr)

	rangeStage := &model.StageInfo{Name: "range", Outputs: []string{"numbers"}}
	filterStage := &model.StageInfo{Name: "filter", Inputs: []string{"numbers"}}
	numbers := &model.ChannelInfo{Name: "numbers", Producer: "range", Consumer: "filter"}

	require.NoError(t, opt.New())
	require.NoError(t, opt.PrepareStage(rangeStage))
	require.NoError(t, opt.PrepareStage(filterStage))
	require.NoError(t, opt.PrepareChannel(numbers))

	for range 4 {
		require.NoError(t, opt.OnChannelPush(numbers, time.Millisecond))
		require.NoError(t, opt.OnChannelRead(numbers, 3*time.Millisecond))
	}

	require.NoError(t, opt.AfterStage(rangeStage, time.Second))
	require.NoError(t, opt.Finish())

	assert.Len(t, msr.AllMetrics(), 2)
	assert.Equal(t, time.Millisecond, msr.GetMetric("range").AVGDuration())
	assert.Equal(t, time.Second, msr.GetMetric("range").GetTotalDuration())
	assert.Zero(t, msr.GetMetric("filter").AVGDuration())

	transports := msr.GetMetric("filter").AVGTransportDuration()
	require.Contains(t, transports, "range")
	assert.Equal(t, 3*time.Millisecond, transports["range"].Elapsed)
	assert.Equal(t, int64(4), transports["range"].Total)
}
