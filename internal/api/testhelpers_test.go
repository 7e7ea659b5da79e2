// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/adpulse/internal/aggregator"
	"github.com/tomtom215/adpulse/internal/business"
	"github.com/tomtom215/adpulse/internal/cache"
	"github.com/tomtom215/adpulse/internal/events"
	"github.com/tomtom215/adpulse/internal/models"
	"github.com/tomtom215/adpulse/internal/platform"
)

var errUpstream = errors.New("upstream unavailable")

type fakeStoreSource struct{ err error }

func (f *fakeStoreSource) GetAnalytics(context.Context, platform.Period, string) (*platform.StoreAnalytics, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &platform.StoreAnalytics{
		Revenue: 28450, Orders: 1124, AverageOrderValue: 25.31, ConversionRate: 4.2,
		DailyRevenue: []platform.DataPoint{{Name: "Sat", Value: 100}, {Name: "Sun", Value: 200}},
	}, nil
}

func (f *fakeStoreSource) TestConnection(context.Context, string) error { return f.err }

type fakeAdsSource struct {
	perf platform.AdsPerformance
	err  error
}

func (f *fakeAdsSource) GetPerformance(context.Context, platform.Period, string) (*platform.AdsPerformance, error) {
	if f.err != nil {
		return nil, f.err
	}
	perf := f.perf
	return &perf, nil
}

func (f *fakeAdsSource) TestConnection(context.Context, string) error { return f.err }

type fakeSearchSource struct{ err error }

func (f *fakeSearchSource) GetPerformance(context.Context, platform.Period, string) (*platform.SearchPerformance, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &platform.SearchPerformance{Clicks: 48200, Impressions: 1200000, CTR: 4.01, Position: 12.5, Users: 12847}, nil
}

func (f *fakeSearchSource) TestConnection(context.Context, string) error { return f.err }

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []events.PlatformUpdated
	err    error
}

func (p *fakePublisher) PublishPlatformUpdated(_ context.Context, evt events.PlatformUpdated) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evt)
	return nil
}

func (p *fakePublisher) published() []events.PlatformUpdated {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.PlatformUpdated(nil), p.events...)
}

type fakeTester struct{ err error }

func (f fakeTester) TestConnection(context.Context, string) error { return f.err }

type fakeForgetter struct {
	mu  sync.Mutex
	ids []string
}

func (f *fakeForgetter) Forget(tenantID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, tenantID)
}

func (f *fakeForgetter) forgotten() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ids...)
}

// testServer bundles a fully routed handler over fakes.
type testServer struct {
	handler    *Handler
	router     http.Handler
	businesses *business.Store
	cache      *cache.Cache
	publisher  *fakePublisher
	forgetter  *fakeForgetter
}

type serverOption func(*Options, *ChiMiddlewareConfig)

func withWebhookSecret(secret string) serverOption {
	return func(o *Options, _ *ChiMiddlewareConfig) { o.WebhookSecret = secret }
}

func withRateLimit(requests int) serverOption {
	return func(_ *Options, c *ChiMiddlewareConfig) {
		c.RateLimitDisabled = false
		c.RateLimitRequests = requests
	}
}

func withTesters(testers map[string][]ConnectionTester) serverOption {
	return func(o *Options, _ *ChiMiddlewareConfig) { o.Testers = testers }
}

// setupTestServer builds a server with an empty in-memory business store.
func setupTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	store, err := business.OpenInMemory(platform.Credentials{})
	if err != nil {
		t.Fatalf("Failed to open business store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	c := cache.New(cache.WithName("api-test"))
	agg := aggregator.New(c, aggregator.Sources{
		Store:     &fakeStoreSource{},
		GoogleAds: &fakeAdsSource{perf: platform.AdsPerformance{Clicks: 15420, Impressions: 387500, Spend: 8940, Conversions: 456, ConversionValue: 28450, ROAS: 3.18}},
		MetaAds:   &fakeAdsSource{perf: platform.AdsPerformance{Clicks: 8750, Impressions: 156300, Spend: 6720, Conversions: 312, ConversionValue: 19750, ROAS: 2.94}},
		Search:    &fakeSearchSource{},
	}, aggregator.Options{})

	ts := &testServer{
		businesses: store,
		cache:      c,
		publisher:  &fakePublisher{},
		forgetter:  &fakeForgetter{},
	}

	hopts := Options{
		Aggregator: agg,
		Businesses: store,
		Events:     ts.publisher,
		Forgetters: []ClientForgetter{ts.forgetter},
		Version:    "test",
	}
	mwConfig := DefaultChiMiddlewareConfig()
	mwConfig.RateLimitDisabled = true
	for _, opt := range opts {
		opt(&hopts, mwConfig)
	}

	ts.handler = NewHandler(hopts)
	ts.router = NewRouter(ts.handler, NewChiMiddleware(mwConfig)).Setup()
	t.Cleanup(ts.handler.Wait)
	return ts
}

// seed creates a business directly in the store.
func (ts *testServer) seed(t *testing.T, b *models.Business) *models.Business {
	t.Helper()
	created, err := ts.businesses.Create(context.Background(), b)
	if err != nil {
		t.Fatalf("Failed to seed business %q: %v", b.Name, err)
	}
	return created
}

// do sends a request through the router.
func (ts *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

// envelope is the decoded response wrapper with data left raw.
type envelope struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data"`
	Error  *models.APIError `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	return env
}

// decodeData decodes the data field of a success envelope into dst.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	env := decodeEnvelope(t, w)
	if env.Status != "success" {
		t.Fatalf("status = %q, want success (body %s)", env.Status, w.Body.String())
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("Failed to decode data %s: %v", env.Data, err)
	}
}

// expectError asserts an error envelope with the given HTTP status and code.
func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) *models.APIError {
	t.Helper()
	if w.Code != status {
		t.Fatalf("HTTP status = %d, want %d (body %s)", w.Code, status, w.Body.String())
	}
	env := decodeEnvelope(t, w)
	if env.Status != "error" || env.Error == nil {
		t.Fatalf("expected error envelope, got %s", w.Body.String())
	}
	if env.Error.Code != code {
		t.Errorf("error code = %q, want %q", env.Error.Code, code)
	}
	return env.Error
}
