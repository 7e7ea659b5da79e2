// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package aggregator

import (
	"context"
	"fmt"
	"sync"

	"github.com/tomtom215/adpulse/internal/logging"
	"github.com/tomtom215/adpulse/internal/platform"
)

// Result is the settled outcome of one upstream fetch.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the fetch succeeded with a value.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// settle runs fn on its own goroutine and stores its outcome in dst. A panic
// is recorded as a failure of that fetch only.
func settle[T any](wg *sync.WaitGroup, dst *Result[T], fn func() (T, error)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				dst.Err = fmt.Errorf("fetch panicked: %v", r)
			}
		}()
		v, err := fn()
		*dst = Result[T]{Value: v, Err: err}
	}()
}

// snapshot holds every upstream record needed by any view.
type snapshot struct {
	store     Result[*platform.StoreAnalytics]
	googleAds Result[*platform.AdsPerformance]
	metaAds   Result[*platform.AdsPerformance]
	search    Result[*platform.SearchPerformance]
}

// fetchAll queries every source concurrently and waits for all of them.
// Missing sources settle as ErrNotConfigured.
func (a *Aggregator) fetchAll(ctx context.Context, period platform.Period, tenantID string) *snapshot {
	var (
		s  snapshot
		wg sync.WaitGroup
	)

	settle(&wg, &s.store, func() (*platform.StoreAnalytics, error) {
		if a.sources.Store == nil {
			return nil, platform.ErrNotConfigured
		}
		return a.sources.Store.GetAnalytics(ctx, period, tenantID)
	})
	settle(&wg, &s.googleAds, func() (*platform.AdsPerformance, error) {
		if a.sources.GoogleAds == nil {
			return nil, platform.ErrNotConfigured
		}
		return a.sources.GoogleAds.GetPerformance(ctx, period, tenantID)
	})
	settle(&wg, &s.metaAds, func() (*platform.AdsPerformance, error) {
		if a.sources.MetaAds == nil {
			return nil, platform.ErrNotConfigured
		}
		return a.sources.MetaAds.GetPerformance(ctx, period, tenantID)
	})
	settle(&wg, &s.search, func() (*platform.SearchPerformance, error) {
		if a.sources.Search == nil {
			return nil, platform.ErrNotConfigured
		}
		return a.sources.Search.GetPerformance(ctx, period, tenantID)
	})
	wg.Wait()

	s.logFailures(ctx)
	return &s
}

func (s *snapshot) logFailures(ctx context.Context) {
	failures := map[string]error{
		platform.NameBigCommerce:   s.store.Err,
		platform.NameGoogleAds:     s.googleAds.Err,
		platform.NameMetaAds:       s.metaAds.Err,
		platform.NameSearchConsole: s.search.Err,
	}
	for name, err := range failures {
		if err != nil {
			logging.Ctx(ctx).Warn().Str("platform", name).Err(err).Msg("Upstream fetch failed, omitting contribution")
		}
	}
}

// Nil-tolerant accessors so reductions can treat failed or empty results
// as zero contributions.

func (s *snapshot) storeRecord() *platform.StoreAnalytics {
	if s.store.OK() && s.store.Value != nil {
		return s.store.Value
	}
	return nil
}

func adsRecord(r Result[*platform.AdsPerformance]) platform.AdsPerformance {
	if r.OK() && r.Value != nil {
		return *r.Value
	}
	return platform.AdsPerformance{}
}

func (s *snapshot) searchRecord() platform.SearchPerformance {
	if s.search.OK() && s.search.Value != nil {
		return *s.search.Value
	}
	return platform.SearchPerformance{}
}
