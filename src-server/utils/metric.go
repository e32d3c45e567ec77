package utils

import "time"

// MetricChans carries latency samples from the hot path to the metric
// collectors. Sends are non-blocking so a slow collector never stalls
// a request.
type MetricChans struct {
	DatabaseRead  chan float64
	DatabaseWrite chan float64
}

func (as *AppState) RecordDatabaseRead(latency time.Duration) {
	select {
	case as.MetricChans.DatabaseRead <- float64(latency.Microseconds()):
	default:
	}
}

func (as *AppState) RecordDatabaseWrite(latency time.Duration) {
	select {
	case as.MetricChans.DatabaseWrite <- float64(latency.Microseconds()):
	default:
	}
}
