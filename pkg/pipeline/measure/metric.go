package measure

import (
	"sync"
	"time"
)

type TransportInfo struct {
	Elapsed time.Duration
	Total   int64
}

type DefaultMetric struct {
	mu            sync.Mutex
	allTransports map[string]*TransportInfo
	EndDuration   time.Duration
	pushElapsed   time.Duration
	total         int64
}

func (mt *DefaultMetric) AddDuration(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.total++
	mt.pushElapsed += elapsed
}

func (mt *DefaultMetric) SetTotalDuration(endDuration time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.EndDuration = endDuration
}

func (mt *DefaultMetric) GetTotalDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.EndDuration
}

func (mt *DefaultMetric) AddTransportDuration(inputStageName string, elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	if mt.allTransports[inputStageName] == nil {
		mt.allTransports[inputStageName] = &TransportInfo{}
	}

	info := mt.allTransports[inputStageName]
	info.Elapsed += elapsed
	info.Total++
}

// AVGDuration returns the average time the stage waited to push a message.
func (mt *DefaultMetric) AVGDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	if mt.total == 0 {
		return time.Duration(0)
	}

	return round(time.Duration(float64(mt.pushElapsed) / float64(mt.total)))
}

// AVGTransportDuration returns, per input stage, the average time the stage waited for a message.
func (mt *DefaultMetric) AVGTransportDuration() map[string]*TransportInfo {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	res := make(map[string]*TransportInfo, len(mt.allTransports))

	for name, info := range mt.allTransports {
		avg := &TransportInfo{Total: info.Total}
		if info.Total > 0 {
			avg.Elapsed = round(time.Duration(float64(info.Elapsed) / float64(info.Total)))
		}

		res[name] = avg
	}

	return res
}

// AllTransports returns, per input stage, the cumulated time the stage waited for messages.
func (mt *DefaultMetric) AllTransports() map[string]*TransportInfo {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	res := make(map[string]*TransportInfo, len(mt.allTransports))
	for name, info := range mt.allTransports {
		res[name] = &TransportInfo{Elapsed: info.Elapsed, Total: info.Total}
	}

	return res
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Hour:
		d = d.Round(time.Minute)
	case d > time.Second:
		d = d.Round(time.Millisecond)
	case d > time.Millisecond:
		d = d.Round(time.Microsecond)
	}

	return d
}

var _ Metric = (*DefaultMetric)(nil)
