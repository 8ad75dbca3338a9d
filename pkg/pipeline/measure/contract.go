package measure

import "time"

// Measure holds one Metric per stage.
type Measure interface {
	// AddMetric returns the metric of the stage name, creating it when needed.
	AddMetric(name string) Metric
	// GetMetric returns the metric of the stage name, or nil.
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
}

// Metric records the time a stage spent blocked on its channels.
type Metric interface {
	// AddDuration records the time the stage waited for room in one of its outputs.
	AddDuration(elapsed time.Duration)
	// AddTransportDuration records the time the stage waited for a message produced by inputStageName.
	AddTransportDuration(inputStageName string, elapsed time.Duration)
	AVGDuration() time.Duration
	AVGTransportDuration() map[string]*TransportInfo
	SetTotalDuration(endDuration time.Duration)
	GetTotalDuration() time.Duration
	AllTransports() map[string]*TransportInfo
}
