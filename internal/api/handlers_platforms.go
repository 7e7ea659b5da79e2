// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/adpulse/internal/business"
	"github.com/tomtom215/adpulse/internal/logging"
	"github.com/tomtom215/adpulse/internal/platform"
)

// defaultListLimit is the row count of list endpoints without a limit.
const defaultListLimit = 100

// PlatformQuery holds the platform detail query parameters.
type PlatformQuery struct {
	BusinessID string `query:"businessId" validate:"omitempty,max=64"`
	Period     string `query:"period" validate:"oneof=24h 7d 30d 90d"`
	Limit      int    `query:"limit" validate:"min=1,max=1000"`
	Breakdown  string `query:"breakdown" validate:"omitempty,oneof=age gender country region publisher_platform device_platform impression_device"`
}

// platformRequest is a validated PlatformQuery with the tenant resolved.
type platformRequest struct {
	tenantID  string
	period    platform.Period
	limit     int
	breakdown string
}

// parsePlatformQuery validates the query and resolves businessId. Without
// a businessId the process-level default credentials are used. It writes
// the error response itself and returns false on failure.
func (h *Handler) parsePlatformQuery(w http.ResponseWriter, r *http.Request) (platformRequest, bool) {
	values := r.URL.Query()
	q := PlatformQuery{
		BusinessID: values.Get("businessId"),
		Period:     values.Get("period"),
		Limit:      defaultListLimit,
		Breakdown:  values.Get("breakdown"),
	}
	if q.Period == "" {
		q.Period = string(platform.DefaultPeriod)
	}
	if raw := values.Get("limit"); raw != "" {
		// Non-numeric limits become 0 and fail validation.
		q.Limit, _ = strconv.Atoi(raw)
	}
	if apiErr := validateRequest(&q); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return platformRequest{}, false
	}

	period, _ := platform.ParsePeriod(q.Period)
	req := platformRequest{period: period, limit: q.Limit, breakdown: q.Breakdown}
	if q.BusinessID == "" {
		return req, true
	}

	b, err := h.businesses.Get(r.Context(), q.BusinessID)
	switch {
	case errors.Is(err, business.ErrNotFound):
		respondError(w, http.StatusNotFound, codeNotFound, "Business not found", nil)
		return platformRequest{}, false
	case err != nil:
		respondError(w, http.StatusInternalServerError, codeInternal, "Failed to load business", err)
		return platformRequest{}, false
	}
	req.tenantID = b.ID
	return req, true
}

// servePlatform answers one platform detail request. available is false
// when no reader is wired for the platform.
func servePlatform[T any](h *Handler, w http.ResponseWriter, r *http.Request, available bool, read func(context.Context, platformRequest) (T, error)) {
	start := time.Now()
	if !available {
		respondError(w, http.StatusNotFound, codePlatformNotConfigured, "Platform not configured", nil)
		return
	}
	req, ok := h.parsePlatformQuery(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	if req.tenantID != "" {
		ctx = logging.ContextWithTenant(ctx, req.tenantID)
	}
	data, err := read(ctx, req)
	switch {
	case errors.Is(err, platform.ErrNotConfigured):
		respondError(w, http.StatusNotFound, codePlatformNotConfigured, "Platform not configured", nil)
		return
	case err != nil:
		respondError(w, http.StatusBadGateway, codeUpstream, "Platform request failed", err)
		return
	}
	respondData(w, http.StatusOK, data, start)
}

// AnalyticsOverview returns GA4 property totals.
//
// Query params: businessId, period.
func (h *Handler) AnalyticsOverview(w http.ResponseWriter, r *http.Request) {
	servePlatform(h, w, r, h.readers.Analytics != nil, func(ctx context.Context, q platformRequest) (*platform.TrafficOverview, error) {
		return h.readers.Analytics.Overview(ctx, q.period, q.tenantID)
	})
}

// AnalyticsTrafficSources returns GA4 sessions per channel, largest first.
func (h *Handler) AnalyticsTrafficSources(w http.ResponseWriter, r *http.Request) {
	servePlatform(h, w, r, h.readers.Analytics != nil, func(ctx context.Context, q platformRequest) ([]platform.TrafficSource, error) {
		return h.readers.Analytics.TrafficSources(ctx, q.period, q.tenantID)
	})
}

// AnalyticsPageViews returns GA4 daily page views.
func (h *Handler) AnalyticsPageViews(w http.ResponseWriter, r *http.Request) {
	servePlatform(h, w, r, h.readers.Analytics != nil, func(ctx context.Context, q platformRequest) ([]platform.PageViewPoint, error) {
		return h.readers.Analytics.PageViews(ctx, q.period, q.tenantID)
	})
}

// SearchConsoleSites lists the Search Console sites of the grant.
func (h *Handler) SearchConsoleSites(w http.ResponseWriter, r *http.Request) {
	servePlatform(h, w, r, h.readers.Search != nil, func(ctx context.Context, q platformRequest) ([]platform.Site, error) {
		return h.readers.Search.Sites(ctx, q.tenantID)
	})
}

// SearchConsoleQueries returns the top search queries.
//
// Query params: businessId, period, limit (1-1000; default 100).
func (h *Handler) SearchConsoleQueries(w http.ResponseWriter, r *http.Request) {
	servePlatform(h, w, r, h.readers.Search != nil, func(ctx context.Context, q platformRequest) ([]platform.SearchQuery, error) {
		return h.readers.Search.TopQueries(ctx, q.period, q.limit, q.tenantID)
	})
}

// GoogleAdsAccounts lists the Google Ads customers of the grant.
func (h *Handler) GoogleAdsAccounts(w http.ResponseWriter, r *http.Request) {
	servePlatform(h, w, r, h.readers.GoogleAds != nil, func(ctx context.Context, q platformRequest) ([]platform.AdAccount, error) {
		return h.readers.GoogleAds.Accounts(ctx, q.tenantID)
	})
}

// GoogleAdsCampaigns returns per-campaign Google Ads metrics.
func (h *Handler) GoogleAdsCampaigns(w http.ResponseWriter, r *http.Request) {
	servePlatform(h, w, r, h.readers.GoogleAds != nil, func(ctx context.Context, q platformRequest) ([]platform.Campaign, error) {
		return h.readers.GoogleAds.Campaigns(ctx, q.period, q.tenantID)
	})
}

// MetaAccounts lists the Meta ad accounts of the token.
func (h *Handler) MetaAccounts(w http.ResponseWriter, r *http.Request) {
	servePlatform(h, w, r, h.readers.Meta != nil, func(ctx context.Context, q platformRequest) ([]platform.AdAccount, error) {
		return h.readers.Meta.Accounts(ctx, q.tenantID)
	})
}

// MetaCampaigns returns per-campaign Meta metrics.
func (h *Handler) MetaCampaigns(w http.ResponseWriter, r *http.Request) {
	servePlatform(h, w, r, h.readers.Meta != nil, func(ctx context.Context, q platformRequest) ([]platform.Campaign, error) {
		return h.readers.Meta.Campaigns(ctx, q.period, q.tenantID)
	})
}

// MetaInsights returns Meta insights split by a breakdown dimension.
//
// Query params: businessId, period, breakdown (age, gender, country,
// region, publisher_platform, device_platform, impression_device; default
// none for account totals).
func (h *Handler) MetaInsights(w http.ResponseWriter, r *http.Request) {
	servePlatform(h, w, r, h.readers.Meta != nil, func(ctx context.Context, q platformRequest) ([]platform.InsightRow, error) {
		return h.readers.Meta.Insights(ctx, q.period, q.breakdown, q.tenantID)
	})
}

// BigCommerceStore returns the store metadata.
func (h *Handler) BigCommerceStore(w http.ResponseWriter, r *http.Request) {
	servePlatform(h, w, r, h.readers.Store != nil, func(ctx context.Context, q platformRequest) (*platform.StoreInfo, error) {
		return h.readers.Store.StoreInfo(ctx, q.tenantID)
	})
}

// BigCommerceOrders returns the most recent orders of the period.
//
// Query params: businessId, period, limit (1-1000; default 100, at most
// 250 are returned).
func (h *Handler) BigCommerceOrders(w http.ResponseWriter, r *http.Request) {
	servePlatform(h, w, r, h.readers.Store != nil, func(ctx context.Context, q platformRequest) ([]platform.StoreOrder, error) {
		return h.readers.Store.Orders(ctx, q.period, q.limit, q.tenantID)
	})
}

// BigCommerceProducts returns catalog products.
func (h *Handler) BigCommerceProducts(w http.ResponseWriter, r *http.Request) {
	servePlatform(h, w, r, h.readers.Store != nil, func(ctx context.Context, q platformRequest) ([]platform.Product, error) {
		return h.readers.Store.Products(ctx, q.limit, q.tenantID)
	})
}
