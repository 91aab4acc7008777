package ports

import "time"

type Metrics interface {
	ObserveFetch(stream string, elapsed time.Duration, err error)
	IncCoalesced(stream string)
	IncAbandoned(stream string)
	ObserveAction(kind string, outcome string, elapsed time.Duration)
}

type NopMetrics struct{}

func (NopMetrics) ObserveFetch(string, time.Duration, error)   {}
func (NopMetrics) IncCoalesced(string)                         {}
func (NopMetrics) IncAbandoned(string)                         {}
func (NopMetrics) ObserveAction(string, string, time.Duration) {}
