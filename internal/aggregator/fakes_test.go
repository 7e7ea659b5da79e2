// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package aggregator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/adpulse/internal/cache"
	"github.com/tomtom215/adpulse/internal/platform"
)

var errUpstream = errors.New("upstream unavailable")

// gate optionally blocks fake fetches until released.
type gate struct {
	ch      chan struct{}
	entered chan struct{}
}

func newGate() *gate {
	return &gate{ch: make(chan struct{}), entered: make(chan struct{}, 64)}
}

func (g *gate) wait() {
	if g == nil {
		return
	}
	select {
	case g.entered <- struct{}{}:
	default:
	}
	<-g.ch
}

func (g *gate) release() { close(g.ch) }

type fakeStore struct {
	calls    atomic.Int32
	gate     *gate
	result   *platform.StoreAnalytics
	err      error
	probeErr error
}

func (f *fakeStore) GetAnalytics(_ context.Context, _ platform.Period, _ string) (*platform.StoreAnalytics, error) {
	f.calls.Add(1)
	f.gate.wait()
	return f.result, f.err
}

func (f *fakeStore) TestConnection(context.Context, string) error { return f.probeErr }

type fakeAds struct {
	calls    atomic.Int32
	result   *platform.AdsPerformance
	err      error
	probeErr error
}

func (f *fakeAds) GetPerformance(_ context.Context, _ platform.Period, _ string) (*platform.AdsPerformance, error) {
	f.calls.Add(1)
	return f.result, f.err
}

func (f *fakeAds) TestConnection(context.Context, string) error { return f.probeErr }

type fakeSearch struct {
	calls    atomic.Int32
	result   *platform.SearchPerformance
	err      error
	probeErr error
}

func (f *fakeSearch) GetPerformance(_ context.Context, _ platform.Period, _ string) (*platform.SearchPerformance, error) {
	f.calls.Add(1)
	return f.result, f.err
}

func (f *fakeSearch) TestConnection(context.Context, string) error { return f.probeErr }

// fixture bundles an aggregator with fakes returning the standard sample
// records.
type fixture struct {
	agg    *Aggregator
	cache  *cache.Cache
	clock  *clockwork.FakeClock
	store  *fakeStore
	gads   *fakeAds
	meta   *fakeAds
	search *fakeSearch
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC))
	f := &fixture{
		cache: cache.New(cache.WithClock(clock), cache.WithName("aggregator-test")),
		clock: clock,
		store: &fakeStore{result: &platform.StoreAnalytics{
			Revenue: 28450, Orders: 1124, AverageOrderValue: 25.31, ConversionRate: 4.2,
			DailyRevenue: []platform.DataPoint{{Name: "Sat", Value: 100}, {Name: "Sun", Value: 200}},
		}},
		gads: &fakeAds{result: &platform.AdsPerformance{
			Clicks: 15420, Impressions: 387500, Spend: 8940, Conversions: 456, ConversionValue: 28450, ROAS: 3.18,
		}},
		meta: &fakeAds{result: &platform.AdsPerformance{
			Clicks: 8750, Impressions: 156300, Spend: 6720, Conversions: 312, ConversionValue: 19750, ROAS: 2.94,
		}},
		search: &fakeSearch{result: &platform.SearchPerformance{
			Clicks: 48200, Impressions: 1200000, CTR: 4.01, Position: 12.5, Users: 12847,
		}},
	}
	f.agg = New(f.cache, Sources{Store: f.store, GoogleAds: f.gads, MetaAds: f.meta, Search: f.search}, Options{Clock: clock})
	return f
}

func (f *fixture) failAll() {
	f.store.err, f.gads.err, f.meta.err, f.search.err = errUpstream, errUpstream, errUpstream, errUpstream
}
