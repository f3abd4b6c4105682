package api

import (
	"net/http"

	"golang.org/x/time/rate"
)

// ThrottledTransport paces outbound requests so bulk commands cannot hammer
// the backend. A nil limiter passes requests straight through.
type ThrottledTransport struct {
	Base    http.RoundTripper
	Limiter *rate.Limiter
}

// NewThrottledTransport builds a transport allowing up to rps requests per
// second with the provided burst capacity. rps <= 0 disables throttling.
func NewThrottledTransport(base http.RoundTripper, rps, burst int) *ThrottledTransport {
	var limiter *rate.Limiter
	if rps > 0 {
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &ThrottledTransport{Base: base, Limiter: limiter}
}

// RoundTrip waits for limiter capacity, then delegates to the base transport.
// Context cancellation interrupts the wait.
func (t *ThrottledTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Limiter != nil {
		if err := t.Limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
