package providers

import "time"

// Observer receives the outcome of every upstream metadata call, for
// request logging and the stats counters. A nil observer disables both.
type Observer interface {
	RecordProviderCall(provider string, success bool)
	ProviderLogger(provider, endpoint string, duration time.Duration, success bool)
}

func observe(o Observer, provider, endpoint string, start time.Time, err error) {
	if o == nil {
		return
	}
	o.RecordProviderCall(provider, err == nil)
	o.ProviderLogger(provider, endpoint, time.Since(start), err == nil)
}
