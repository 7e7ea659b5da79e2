// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/adpulse/internal/business"
	"github.com/tomtom215/adpulse/internal/logging"
	"github.com/tomtom215/adpulse/internal/models"
)

// resolveTenant returns the business addressed by the businessID URL
// parameter, or the first business on legacy routes. It writes the error
// response itself and returns false on failure.
func (h *Handler) resolveTenant(w http.ResponseWriter, r *http.Request) (string, bool) {
	if id := chi.URLParam(r, "businessID"); id != "" {
		b, err := h.businesses.Get(r.Context(), id)
		switch {
		case errors.Is(err, business.ErrNotFound):
			respondError(w, http.StatusNotFound, codeNotFound, "Business not found", nil)
			return "", false
		case err != nil:
			respondError(w, http.StatusInternalServerError, codeInternal, "Failed to load business", err)
			return "", false
		}
		return b.ID, true
	}

	b, err := h.businesses.First(r.Context())
	switch {
	case errors.Is(err, business.ErrNotFound):
		respondError(w, http.StatusNotFound, codeNotFound, "No businesses configured", ErrNoBusinesses)
		return "", false
	case err != nil:
		respondError(w, http.StatusInternalServerError, codeInternal, "Failed to load businesses", err)
		return "", false
	}
	return b.ID, true
}

// DashboardMetrics returns the six headline metrics.
//
// Query params: period (24h, 7d, 30d, 90d; default 7d).
func (h *Handler) DashboardMetrics(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	period, _, apiErr := parseDashboardQuery(r)
	if apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	tenantID, ok := h.resolveTenant(w, r)
	if !ok {
		return
	}

	ctx := logging.ContextWithTenant(r.Context(), tenantID)
	m, err := h.agg.GetAggregatedMetrics(ctx, period, tenantID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "Failed to aggregate metrics", err)
		return
	}
	respondData(w, http.StatusOK, m, start)
}

// DashboardPlatforms returns one card per platform.
func (h *Handler) DashboardPlatforms(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	period, _, apiErr := parseDashboardQuery(r)
	if apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	tenantID, ok := h.resolveTenant(w, r)
	if !ok {
		return
	}

	ctx := logging.ContextWithTenant(r.Context(), tenantID)
	cards, err := h.agg.GetPlatformData(ctx, period, tenantID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "Failed to aggregate platform data", err)
		return
	}
	respondData(w, http.StatusOK, cards, start)
}

// DashboardCharts returns chart series.
//
// Query params: period, type (all, revenue, traffic, conversions; default all).
func (h *Handler) DashboardCharts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	period, kind, apiErr := parseDashboardQuery(r)
	if apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	tenantID, ok := h.resolveTenant(w, r)
	if !ok {
		return
	}

	ctx := logging.ContextWithTenant(r.Context(), tenantID)
	charts, err := h.agg.GetChartData(ctx, period, kind, tenantID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "Failed to aggregate chart data", err)
		return
	}
	respondData(w, http.StatusOK, charts, start)
}

// DashboardRefresh starts a refresh of the tenant's views and returns
// immediately. A refresh already in progress makes the new one a no-op.
func (h *Handler) DashboardRefresh(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	tenantID, ok := h.resolveTenant(w, r)
	if !ok {
		return
	}

	ctx := logging.ContextWithTenant(context.WithoutCancel(r.Context()), tenantID)
	h.background.Add(1)
	go func() {
		defer h.background.Done()
		ran, err := h.agg.RefreshAllData(ctx, tenantID)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Data refresh finished with errors")
			return
		}
		if ran {
			logging.Ctx(ctx).Info().Msg("Data refresh completed")
		}
	}()

	respondData(w, http.StatusOK, models.RefreshResponse{
		Success: true,
		Message: "Data refresh initiated",
	}, start)
}

// DashboardStatus probes every platform for the tenant. Never cached.
func (h *Handler) DashboardStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	tenantID, ok := h.resolveTenant(w, r)
	if !ok {
		return
	}

	ctx := logging.ContextWithTenant(r.Context(), tenantID)
	respondData(w, http.StatusOK, h.agg.GetSystemStatus(ctx, tenantID), start)
}

// InvalidateCacheResponse reports a platform invalidation.
type InvalidateCacheResponse struct {
	Platform string `json:"platform"`
	Removed  int    `json:"removed"`
}

// DashboardInvalidateCache deletes every cached view whose key contains the
// platform name, for all tenants.
func (h *Handler) DashboardInvalidateCache(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "platform")
	if name == "" {
		respondError(w, http.StatusBadRequest, codeValidation, "platform is required", nil)
		return
	}

	removed := h.agg.InvalidateCache(name)
	logging.Ctx(r.Context()).Info().Str("platform", sanitizeLogValue(name)).Int("removed", removed).Msg("Cache invalidated")
	respondData(w, http.StatusOK, InvalidateCacheResponse{Platform: name, Removed: removed}, start)
}
