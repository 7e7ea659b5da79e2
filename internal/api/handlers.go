// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package api

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/adpulse/internal/aggregator"
	"github.com/tomtom215/adpulse/internal/business"
	"github.com/tomtom215/adpulse/internal/events"
	"github.com/tomtom215/adpulse/internal/platform"
)

// EventPublisher publishes upstream change notifications.
type EventPublisher interface {
	PublishPlatformUpdated(ctx context.Context, evt events.PlatformUpdated) error
}

// ConnectionTester probes one upstream platform for a tenant.
type ConnectionTester interface {
	TestConnection(ctx context.Context, tenantID string) error
}

// ClientForgetter drops cached upstream clients of a tenant whose
// credentials changed.
type ClientForgetter interface {
	Forget(tenantID string)
}

// AnalyticsReader serves GA4 property reports.
type AnalyticsReader interface {
	Overview(ctx context.Context, period platform.Period, tenantID string) (*platform.TrafficOverview, error)
	TrafficSources(ctx context.Context, period platform.Period, tenantID string) ([]platform.TrafficSource, error)
	PageViews(ctx context.Context, period platform.Period, tenantID string) ([]platform.PageViewPoint, error)
}

// SearchReader serves Search Console detail views.
type SearchReader interface {
	Sites(ctx context.Context, tenantID string) ([]platform.Site, error)
	TopQueries(ctx context.Context, period platform.Period, limit int, tenantID string) ([]platform.SearchQuery, error)
}

// CampaignReader serves the accounts and campaigns of an ads platform.
type CampaignReader interface {
	Accounts(ctx context.Context, tenantID string) ([]platform.AdAccount, error)
	Campaigns(ctx context.Context, period platform.Period, tenantID string) ([]platform.Campaign, error)
}

// MetaReader adds insight breakdowns to a CampaignReader.
type MetaReader interface {
	CampaignReader
	Insights(ctx context.Context, period platform.Period, breakdown, tenantID string) ([]platform.InsightRow, error)
}

// StoreReader serves e-commerce store detail views.
type StoreReader interface {
	StoreInfo(ctx context.Context, tenantID string) (*platform.StoreInfo, error)
	Orders(ctx context.Context, period platform.Period, limit int, tenantID string) ([]platform.StoreOrder, error)
	Products(ctx context.Context, limit int, tenantID string) ([]platform.Product, error)
}

// Readers serve the per-platform detail routes. A nil reader answers its
// routes with PLATFORM_NOT_CONFIGURED.
type Readers struct {
	Analytics AnalyticsReader
	Search    SearchReader
	GoogleAds CampaignReader
	Meta      MetaReader
	Store     StoreReader
}

// Options holds the handler dependencies.
type Options struct {
	Aggregator *aggregator.Aggregator
	Businesses *business.Store
	Events     EventPublisher

	// Testers maps a platform config name to the clients that can probe
	// it. The first tester that is configured decides the result.
	Testers map[string][]ConnectionTester

	// Forgetters are notified when a business changes or is deleted.
	Forgetters []ClientForgetter

	Readers Readers

	// WebhookSecret is the global BigCommerce webhook secret. A business
	// may override it with its own secret.
	WebhookSecret string

	Version string
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across multiple files:
//   - handlers.go: Handler struct, constructor and background work
//   - handlers_helpers.go: response envelope and request parsing
//   - handlers_health.go: health endpoint
//   - handlers_dashboard.go: dashboard views, refresh, status, cache
//   - handlers_business.go: business CRUD, connection tests, config
//   - handlers_platforms.go: per-platform detail views
//   - handlers_webhook.go: BigCommerce webhook
type Handler struct {
	agg        *aggregator.Aggregator
	businesses *business.Store
	events     EventPublisher
	testers    map[string][]ConnectionTester
	forgetters []ClientForgetter
	readers    Readers

	webhookSecret string
	version       string
	startTime     time.Time

	// background tracks detached refreshes started by refresh endpoints.
	background sync.WaitGroup
}

// NewHandler creates a new API handler.
func NewHandler(opts Options) *Handler {
	version := opts.Version
	if version == "" {
		version = "dev"
	}
	return &Handler{
		agg:           opts.Aggregator,
		businesses:    opts.Businesses,
		events:        opts.Events,
		testers:       opts.Testers,
		forgetters:    opts.Forgetters,
		readers:       opts.Readers,
		webhookSecret: opts.WebhookSecret,
		version:       version,
		startTime:     time.Now(),
	}
}

// Wait blocks until background refreshes started by the handler finish.
func (h *Handler) Wait() {
	h.background.Wait()
}

// forget drops cached platform clients of a tenant.
func (h *Handler) forget(tenantID string) {
	for _, f := range h.forgetters {
		f.Forget(tenantID)
	}
}
