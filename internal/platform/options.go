// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package platform

import (
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// Options are shared by every platform service.
type Options struct {
	// BaseURL overrides the upstream API root (tests, proxies).
	BaseURL string

	// Timeout bounds a single upstream HTTP call. Defaults to 30s.
	Timeout time.Duration

	// MockFallback returns placeholder records instead of errors when a
	// platform is not configured or its API fails.
	MockFallback bool

	// RateLimit and Burst throttle outbound calls per tenant client.
	RateLimit rate.Limit
	Burst     int

	// ClientTTL is how long a tenant's client is cached. Defaults to 10m.
	ClientTTL time.Duration

	// HTTPClient replaces the default client built from Timeout.
	HTTPClient *http.Client

	// Clock drives period windows. Defaults to the real clock.
	Clock clockwork.Clock
}

// WithDefaults returns a copy of o with zero fields filled in.
func (o Options) WithDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.RateLimit <= 0 {
		o.RateLimit = rate.Inf
	}
	if o.Burst <= 0 {
		o.Burst = 1
	}
	if o.ClientTTL <= 0 {
		o.ClientTTL = 10 * time.Minute
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: o.Timeout}
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	return o
}

// NewLimiter creates a limiter from the configured rate.
func (o Options) NewLimiter() *rate.Limiter {
	return rate.NewLimiter(o.RateLimit, o.Burst)
}
