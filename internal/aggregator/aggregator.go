// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

/*
Package aggregator computes the dashboard views from the upstream platforms.

Each view (summary metrics, platform cards, chart series) is computed for a
(period, tenant) pair by fanning out to the platform sources concurrently,
reducing whichever results succeeded, and caching the reduction for a fixed
TTL. A failing source only removes its contribution; only a failure of the
reduction itself fails the request.

Cache keys:

	metrics_{period}_{tenant}
	platforms_{period}_{tenant}
	charts_{period}_{kind}_{tenant}

An empty tenant is keyed as "default". Concurrent misses for the same key are
coalesced so that one fan-out serves every waiting caller.

RefreshAllData warms the cache for the standard periods. At most one refresh
runs at a time across the whole process; a refresh requested while another
is running is skipped.
*/
package aggregator

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/adpulse/internal/cache"
	"github.com/tomtom215/adpulse/internal/metrics"
	"github.com/tomtom215/adpulse/internal/platform"
)

// DefaultViewTTL is how long a computed view stays cached.
const DefaultViewTTL = 900 * time.Second

// StoreSource provides e-commerce analytics.
type StoreSource interface {
	GetAnalytics(ctx context.Context, period platform.Period, tenantID string) (*platform.StoreAnalytics, error)
	TestConnection(ctx context.Context, tenantID string) error
}

// AdsSource provides paid-ads account performance.
type AdsSource interface {
	GetPerformance(ctx context.Context, period platform.Period, tenantID string) (*platform.AdsPerformance, error)
	TestConnection(ctx context.Context, tenantID string) error
}

// SearchSource provides organic search performance.
type SearchSource interface {
	GetPerformance(ctx context.Context, period platform.Period, tenantID string) (*platform.SearchPerformance, error)
	TestConnection(ctx context.Context, tenantID string) error
}

// Sources are the upstream platforms a view is computed from.
type Sources struct {
	Store     StoreSource
	GoogleAds AdsSource
	MetaAds   AdsSource
	Search    SearchSource
}

// Options configure an Aggregator.
type Options struct {
	// ViewTTL defaults to DefaultViewTTL.
	ViewTTL time.Duration

	// Clock stamps status reports. Defaults to the real clock.
	Clock clockwork.Clock
}

// Aggregator computes and caches dashboard views. It is safe for concurrent
// use; construct one per process.
type Aggregator struct {
	cache   cache.Cacher
	sources Sources
	ttl     time.Duration
	clock   clockwork.Clock

	group      singleflight.Group
	refreshing atomic.Bool
}

// New creates an aggregator over c and sources.
func New(c cache.Cacher, sources Sources, opts Options) *Aggregator {
	if opts.ViewTTL <= 0 {
		opts.ViewTTL = DefaultViewTTL
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Aggregator{
		cache:   c,
		sources: sources,
		ttl:     opts.ViewTTL,
		clock:   opts.Clock,
	}
}

// IsRefreshing reports whether a refresh-all run is in flight.
func (a *Aggregator) IsRefreshing() bool {
	return a.refreshing.Load()
}

// cachedView returns the cached value under key, or computes, caches and
// returns it. Concurrent misses on one key share a single computation, which
// runs detached from the first caller's cancellation so that other waiters
// are not failed by it.
func cachedView[T any](ctx context.Context, a *Aggregator, view, key string, compute func(context.Context) (T, error)) (T, error) {
	if v, ok := a.cache.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	v, err, _ := a.group.Do(key, func() (any, error) {
		start := time.Now()
		result, err := reduceSafely(context.WithoutCancel(ctx), compute)
		metrics.RecordAggregation(view, time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("aggregating %s: %w", key, err)
		}
		a.cache.Set(key, result, a.ttl)
		return result, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// reduceSafely turns a panic in a reduction into an error.
func reduceSafely[T any](ctx context.Context, compute func(context.Context) (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reduction panicked: %v", r)
		}
	}()
	return compute(ctx)
}
