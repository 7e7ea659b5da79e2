// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package aggregator

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/tomtom215/adpulse/internal/platform"
)

// =============================================================================
// RefreshAllData
// =============================================================================

func TestRefreshAllDataWarmsStandardPeriods(t *testing.T) {
	f := newFixture(t)

	ran, err := f.agg.RefreshAllData(context.Background(), "t1")
	if err != nil || !ran {
		t.Fatalf("RefreshAllData() = (%v, %v), want (true, nil)", ran, err)
	}

	keys := slices.Sorted(f.cache.Keys())
	want := []string{
		"charts_24h_all_t1", "charts_30d_all_t1", "charts_7d_all_t1",
		"metrics_24h_t1", "metrics_30d_t1", "metrics_7d_t1",
		"platforms_24h_t1", "platforms_30d_t1", "platforms_7d_t1",
	}
	if !slices.Equal(keys, want) {
		t.Errorf("keys = %v, want %v", keys, want)
	}

	// metrics, platforms and charts each fan out once per period
	if n := f.store.calls.Load(); n != 9 {
		t.Errorf("store fetches = %d, want 9", n)
	}
	if f.agg.IsRefreshing() {
		t.Error("refresh flag should be cleared")
	}
}

func TestRefreshAllDataConcurrentCallsRunOnce(t *testing.T) {
	f := newFixture(t)
	f.store.gate = newGate()

	type outcome struct {
		ran bool
		err error
	}
	first := make(chan outcome, 1)
	go func() {
		ran, err := f.agg.RefreshAllData(context.Background(), "t1")
		first <- outcome{ran, err}
	}()

	select {
	case <-f.store.gate.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first refresh never reached the store")
	}
	if !f.agg.IsRefreshing() {
		t.Error("IsRefreshing() = false during refresh")
	}

	ran, err := f.agg.RefreshAllData(context.Background(), "t1")
	if ran || err != nil {
		t.Errorf("second RefreshAllData() = (%v, %v), want (false, nil)", ran, err)
	}

	f.store.gate.release()
	got := <-first
	if !got.ran || got.err != nil {
		t.Errorf("first RefreshAllData() = (%v, %v), want (true, nil)", got.ran, got.err)
	}
	if n := f.store.calls.Load(); n != 9 {
		t.Errorf("store fetches = %d, want 9 (one refresh)", n)
	}
}

func TestRefreshAllDataGuardIsGlobal(t *testing.T) {
	f := newFixture(t)
	f.store.gate = newGate()

	done := make(chan struct{})
	go func() {
		_, _ = f.agg.RefreshAllData(context.Background(), "tenant-a")
		close(done)
	}()
	<-f.store.gate.entered

	if ran, _ := f.agg.RefreshAllData(context.Background(), "tenant-b"); ran {
		t.Error("refresh for another tenant should be skipped while one is running")
	}

	f.store.gate.release()
	<-done

	if ran, err := f.agg.RefreshAllData(context.Background(), "tenant-b"); !ran || err != nil {
		t.Errorf("RefreshAllData() after completion = (%v, %v), want (true, nil)", ran, err)
	}
}

func TestRefreshAllDataClearsOnlyTenantKeys(t *testing.T) {
	f := newFixture(t)
	f.cache.Set("metrics_90d_t1", "stale", time.Hour)
	f.cache.Set("metrics_90d_other", "keep", time.Hour)

	if _, err := f.agg.RefreshAllData(context.Background(), "t1"); err != nil {
		t.Fatalf("RefreshAllData() error = %v", err)
	}

	if _, ok := f.cache.Get("metrics_90d_t1"); ok {
		t.Error("stale tenant key should be cleared")
	}
	if v, ok := f.cache.Get("metrics_90d_other"); !ok || v != "keep" {
		t.Error("other tenant's key should survive")
	}
}

func TestRefreshAllDataDefaultTenant(t *testing.T) {
	f := newFixture(t)
	f.cache.Set("metrics_90d_default", "stale", time.Hour)

	if _, err := f.agg.RefreshAllData(context.Background(), ""); err != nil {
		t.Fatalf("RefreshAllData() error = %v", err)
	}
	if _, ok := f.cache.Get("metrics_90d_default"); ok {
		t.Error("default tenant key should be cleared")
	}
	if _, ok := f.cache.Get("platforms_7d_default"); !ok {
		t.Error("expected platforms_7d_default after refresh")
	}
}

func TestRefreshAllDataUpstreamFailuresAreNotErrors(t *testing.T) {
	f := newFixture(t)
	f.failAll()

	ran, err := f.agg.RefreshAllData(context.Background(), "t1")
	if !ran || err != nil {
		t.Errorf("RefreshAllData() = (%v, %v), want (true, nil)", ran, err)
	}
}

// =============================================================================
// InvalidateCache
// =============================================================================

func TestInvalidateCache(t *testing.T) {
	f := newFixture(t)
	f.cache.Set("platforms_7d_bigcommerce-shop", 1, time.Hour)
	f.cache.Set("metrics_7d_bigcommerce", 2, time.Hour)
	f.cache.Set("metrics_7d_t1", 3, time.Hour)

	if n := f.agg.InvalidateCache(platform.NameBigCommerce); n != 2 {
		t.Errorf("InvalidateCache() = %d, want 2", n)
	}
	if _, ok := f.cache.Get("metrics_7d_t1"); !ok {
		t.Error("unrelated key should survive")
	}
}

// =============================================================================
// GetSystemStatus
// =============================================================================

func TestGetSystemStatus(t *testing.T) {
	f := newFixture(t)
	f.store.probeErr = errUpstream
	agg := New(f.cache, Sources{Store: f.store, GoogleAds: f.gads, MetaAds: f.meta}, Options{Clock: f.clock})
	f.cache.Set("metrics_7d_t1", 1, time.Hour)
	f.cache.Get("metrics_7d_t1")

	status := agg.GetSystemStatus(context.Background(), "")

	if status.BusinessID != "default" {
		t.Errorf("BusinessID = %q, want default", status.BusinessID)
	}
	if status.Timestamp != "2026-03-08T12:00:00Z" {
		t.Errorf("Timestamp = %q", status.Timestamp)
	}
	want := map[string]string{
		"bigcommerce":   StatusError,
		"googleAds":     StatusHealthy,
		"metaAds":       StatusHealthy,
		"searchConsole": StatusError,
	}
	for name, w := range want {
		if status.Services[name] != w {
			t.Errorf("Services[%s] = %q, want %q", name, status.Services[name], w)
		}
	}
	if status.Cache.Size != 1 || status.Cache.HitRate != "100.00" {
		t.Errorf("Cache = %+v, want {1 100.00}", status.Cache)
	}
	if status.RefreshInProgress {
		t.Error("RefreshInProgress = true, want false")
	}
}

func TestGetSystemStatusNotCached(t *testing.T) {
	f := newFixture(t)

	_ = f.agg.GetSystemStatus(context.Background(), "t1")
	if f.cache.Size() != 0 {
		t.Errorf("cache size = %d, status must not be cached", f.cache.Size())
	}
}
