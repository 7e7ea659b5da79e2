// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package api

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/adpulse/internal/models"
	"github.com/tomtom215/adpulse/internal/platform"
)

// readerCall records the arguments a fake reader saw.
type readerCall struct {
	method    string
	period    platform.Period
	limit     int
	breakdown string
	tenantID  string
}

// fakeReaders implements every platform reader interface.
type fakeReaders struct {
	mu    sync.Mutex
	calls []readerCall
	err   error
}

func (f *fakeReaders) record(c readerCall) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return f.err
}

func (f *fakeReaders) last() readerCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return readerCall{}
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeReaders) Overview(_ context.Context, p platform.Period, tenantID string) (*platform.TrafficOverview, error) {
	if err := f.record(readerCall{method: "Overview", period: p, tenantID: tenantID}); err != nil {
		return nil, err
	}
	return &platform.TrafficOverview{Users: 15420, Sessions: 23450, PageViews: 45670, BounceRate: 42.3}, nil
}

func (f *fakeReaders) TrafficSources(_ context.Context, p platform.Period, tenantID string) ([]platform.TrafficSource, error) {
	if err := f.record(readerCall{method: "TrafficSources", period: p, tenantID: tenantID}); err != nil {
		return nil, err
	}
	return []platform.TrafficSource{{Source: "Organic Search", Sessions: 12500}, {Source: "Direct", Sessions: 6800}}, nil
}

func (f *fakeReaders) PageViews(_ context.Context, p platform.Period, tenantID string) ([]platform.PageViewPoint, error) {
	if err := f.record(readerCall{method: "PageViews", period: p, tenantID: tenantID}); err != nil {
		return nil, err
	}
	return []platform.PageViewPoint{{Date: "2026-10-16", PageViews: 120}}, nil
}

func (f *fakeReaders) Sites(_ context.Context, tenantID string) ([]platform.Site, error) {
	if err := f.record(readerCall{method: "Sites", tenantID: tenantID}); err != nil {
		return nil, err
	}
	return []platform.Site{{URL: "https://example.com/", PermissionLevel: "siteOwner"}}, nil
}

func (f *fakeReaders) TopQueries(_ context.Context, p platform.Period, limit int, tenantID string) ([]platform.SearchQuery, error) {
	if err := f.record(readerCall{method: "TopQueries", period: p, limit: limit, tenantID: tenantID}); err != nil {
		return nil, err
	}
	return []platform.SearchQuery{{Query: "running shoes", Clicks: 40, Impressions: 800, CTR: 5, Position: 3.2}}, nil
}

func (f *fakeReaders) Accounts(_ context.Context, tenantID string) ([]platform.AdAccount, error) {
	if err := f.record(readerCall{method: "Accounts", tenantID: tenantID}); err != nil {
		return nil, err
	}
	return []platform.AdAccount{{ID: "1234567890", Name: "Main"}}, nil
}

func (f *fakeReaders) Campaigns(_ context.Context, p platform.Period, tenantID string) ([]platform.Campaign, error) {
	if err := f.record(readerCall{method: "Campaigns", period: p, tenantID: tenantID}); err != nil {
		return nil, err
	}
	return []platform.Campaign{{ID: "c1", Name: "Spring Sale", Status: "ENABLED", Clicks: 120}}, nil
}

func (f *fakeReaders) Insights(_ context.Context, p platform.Period, breakdown, tenantID string) ([]platform.InsightRow, error) {
	if err := f.record(readerCall{method: "Insights", period: p, breakdown: breakdown, tenantID: tenantID}); err != nil {
		return nil, err
	}
	return []platform.InsightRow{{Segment: "25-34", Clicks: 300}}, nil
}

func (f *fakeReaders) StoreInfo(_ context.Context, tenantID string) (*platform.StoreInfo, error) {
	if err := f.record(readerCall{method: "StoreInfo", tenantID: tenantID}); err != nil {
		return nil, err
	}
	return &platform.StoreInfo{ID: "abc123", Name: "Acme Shop", Domain: "shop.example.com"}, nil
}

func (f *fakeReaders) Orders(_ context.Context, p platform.Period, limit int, tenantID string) ([]platform.StoreOrder, error) {
	if err := f.record(readerCall{method: "Orders", period: p, limit: limit, tenantID: tenantID}); err != nil {
		return nil, err
	}
	return []platform.StoreOrder{{ID: 1001, Status: "Completed", Total: 59.99, CreatedAt: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)}}, nil
}

func (f *fakeReaders) Products(_ context.Context, limit int, tenantID string) ([]platform.Product, error) {
	if err := f.record(readerCall{method: "Products", limit: limit, tenantID: tenantID}); err != nil {
		return nil, err
	}
	return []platform.Product{{ID: 7, Name: "Mug", Price: 12.5, InventoryLevel: 40}}, nil
}

func withReaders(f *fakeReaders) serverOption {
	return func(o *Options, _ *ChiMiddlewareConfig) {
		o.Readers = Readers{Analytics: f, Search: f, GoogleAds: f, Meta: f, Store: f}
	}
}

func TestPlatformDetailRoutes(t *testing.T) {
	readers := &fakeReaders{}
	ts := setupTestServer(t, withReaders(readers))
	b := ts.seed(t, &models.Business{Name: "Acme"})

	tests := []struct {
		name string
		path string
		want readerCall
	}{
		{"analytics overview", "/api/platforms/analytics/overview?period=30d", readerCall{method: "Overview", period: platform.Period30d}},
		{"traffic sources", "/api/platforms/analytics/traffic-sources", readerCall{method: "TrafficSources", period: platform.Period7d}},
		{"page views", "/api/platforms/analytics/page-views?businessId=" + b.ID, readerCall{method: "PageViews", period: platform.Period7d, tenantID: b.ID}},
		{"search sites", "/api/platforms/search-console/sites", readerCall{method: "Sites"}},
		{"search queries default limit", "/api/platforms/search-console/queries", readerCall{method: "TopQueries", period: platform.Period7d, limit: defaultListLimit}},
		{"search queries limit", "/api/platforms/search-console/queries?limit=25&period=90d", readerCall{method: "TopQueries", period: platform.Period90d, limit: 25}},
		{"google ads accounts", "/api/platforms/google-ads/accounts", readerCall{method: "Accounts"}},
		{"google ads campaigns", "/api/platforms/google-ads/campaigns?period=24h", readerCall{method: "Campaigns", period: platform.Period24h}},
		{"meta accounts", "/api/platforms/meta/accounts?businessId=" + b.ID, readerCall{method: "Accounts", tenantID: b.ID}},
		{"meta campaigns", "/api/platforms/meta/campaigns", readerCall{method: "Campaigns", period: platform.Period7d}},
		{"meta insights totals", "/api/platforms/meta/insights", readerCall{method: "Insights", period: platform.Period7d}},
		{"meta insights breakdown", "/api/platforms/meta/insights?breakdown=age", readerCall{method: "Insights", period: platform.Period7d, breakdown: "age"}},
		{"store info", "/api/platforms/bigcommerce/store", readerCall{method: "StoreInfo"}},
		{"store orders", "/api/platforms/bigcommerce/orders?limit=10", readerCall{method: "Orders", period: platform.Period7d, limit: 10}},
		{"store products", "/api/platforms/bigcommerce/products", readerCall{method: "Products", limit: defaultListLimit}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodGet, tt.path, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("HTTP status = %d, want 200 (body %s)", w.Code, w.Body.String())
			}
			if got := readers.last(); got != tt.want {
				t.Errorf("reader call = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPlatformDetailPayloads(t *testing.T) {
	ts := setupTestServer(t, withReaders(&fakeReaders{}))

	var overview platform.TrafficOverview
	decodeData(t, ts.do(t, http.MethodGet, "/api/platforms/analytics/overview", nil), &overview)
	if overview.Users != 15420 || overview.BounceRate != 42.3 {
		t.Errorf("overview = %+v", overview)
	}

	var orders []platform.StoreOrder
	decodeData(t, ts.do(t, http.MethodGet, "/api/platforms/bigcommerce/orders", nil), &orders)
	if len(orders) != 1 || orders[0].ID != 1001 || !orders[0].CreatedAt.Equal(time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("orders = %+v", orders)
	}

	var sites []platform.Site
	decodeData(t, ts.do(t, http.MethodGet, "/api/platforms/search-console/sites", nil), &sites)
	if len(sites) != 1 || sites[0].URL != "https://example.com/" {
		t.Errorf("sites = %+v", sites)
	}
}

func TestPlatformDetailErrors(t *testing.T) {
	t.Run("unknown business", func(t *testing.T) {
		readers := &fakeReaders{}
		ts := setupTestServer(t, withReaders(readers))
		w := ts.do(t, http.MethodGet, "/api/platforms/meta/campaigns?businessId=biz_missing", nil)
		expectError(t, w, http.StatusNotFound, codeNotFound)
		if got := readers.last(); got.method != "" {
			t.Errorf("reader called for an unknown business: %+v", got)
		}
	})

	t.Run("platform not configured", func(t *testing.T) {
		ts := setupTestServer(t, withReaders(&fakeReaders{err: platform.ErrNotConfigured}))
		w := ts.do(t, http.MethodGet, "/api/platforms/bigcommerce/store", nil)
		expectError(t, w, http.StatusNotFound, codePlatformNotConfigured)
	})

	t.Run("upstream failure", func(t *testing.T) {
		ts := setupTestServer(t, withReaders(&fakeReaders{err: errUpstream}))
		w := ts.do(t, http.MethodGet, "/api/platforms/google-ads/campaigns", nil)
		apiErr := expectError(t, w, http.StatusBadGateway, codeUpstream)
		if apiErr.Message != "Platform request failed" {
			t.Errorf("message = %q", apiErr.Message)
		}
	})

	t.Run("no reader wired", func(t *testing.T) {
		ts := setupTestServer(t)
		w := ts.do(t, http.MethodGet, "/api/platforms/analytics/overview", nil)
		expectError(t, w, http.StatusNotFound, codePlatformNotConfigured)
	})
}

func TestPlatformDetailValidation(t *testing.T) {
	readers := &fakeReaders{}
	ts := setupTestServer(t, withReaders(readers))

	paths := []string{
		"/api/platforms/search-console/queries?limit=0",
		"/api/platforms/search-console/queries?limit=1001",
		"/api/platforms/bigcommerce/orders?limit=ten",
		"/api/platforms/meta/insights?breakdown=zodiac",
		"/api/platforms/google-ads/campaigns?period=1y",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			w := ts.do(t, http.MethodGet, path, nil)
			expectError(t, w, http.StatusBadRequest, codeValidation)
		})
	}
	if got := readers.last(); got.method != "" {
		t.Errorf("reader called for an invalid request: %+v", got)
	}
}
