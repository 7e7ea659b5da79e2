// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/adpulse/internal/models"
)

// Health handles health check requests.
//
// The process is healthy while the business store answers; upstream
// platforms are reported by the per-business status endpoint instead.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	status := "healthy"
	count, err := h.businesses.Count(r.Context())
	if err != nil {
		status = "degraded"
	}

	defaults := h.businesses.Defaults()
	health := models.HealthResponse{
		Status:     status,
		Version:    h.version,
		Uptime:     time.Since(h.startTime).Seconds(),
		Businesses: count,
		ConfiguredPlatforms: map[string]bool{
			models.PlatformBigCommerce: defaults.BigCommerce.Configured(),
			"googleAds":                defaults.Google.AdsConfigured(),
			"searchConsole":            defaults.Google.SearchConfigured(),
			models.PlatformMeta:        defaults.Meta.Configured(),
		},
		RefreshInProgress: h.agg.IsRefreshing(),
	}

	respondData(w, http.StatusOK, health, start)
}
