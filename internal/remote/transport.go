package remote

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Transport is the http.RoundTripper shared by the provider
// implementations. It waits on a client-side rate limiter, then clones the
// request and lets the backend attach its credentials before sending.
type Transport struct {
	Base      http.RoundTripper
	Limiter   *rate.Limiter
	Authorize func(*http.Request)
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Limiter != nil {
		if err := t.Limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	r := req.Clone(req.Context())
	if t.Authorize != nil {
		t.Authorize(r)
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(r)
}

// NewHTTPClient returns the client used for backend API calls. The limiter
// keeps bursts of small-file traffic under the hosting services' secondary
// rate limits.
func NewHTTPClient(authorize func(*http.Request)) *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &Transport{
			Base:      http.DefaultTransport,
			Limiter:   rate.NewLimiter(rate.Limit(5), 5),
			Authorize: authorize,
		},
	}
}
