// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/adpulse/internal/middleware"
)

// Router holds the route table dependencies.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router for handler.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, codeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(APISecurityHeaders())

		r.With(router.chiMiddleware.RateLimit()).Get("/health", router.handler.Health)

		// ========================
		// Dashboard Endpoints
		// ========================
		r.Route("/dashboard", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitCustom(RateLimitDashboard))
			refreshLimit := router.chiMiddleware.RateLimitCustom(RateLimitRefresh)

			// Legacy routes address the first business.
			r.Get("/metrics", router.handler.DashboardMetrics)
			r.Get("/platforms", router.handler.DashboardPlatforms)
			r.Get("/charts", router.handler.DashboardCharts)
			r.With(refreshLimit).Post("/refresh", router.handler.DashboardRefresh)
			r.Get("/status", router.handler.DashboardStatus)

			r.Delete("/cache/{platform}", router.handler.DashboardInvalidateCache)

			r.Route("/{businessID}", func(r chi.Router) {
				r.Get("/metrics", router.handler.DashboardMetrics)
				r.Get("/platforms", router.handler.DashboardPlatforms)
				r.Get("/charts", router.handler.DashboardCharts)
				r.With(refreshLimit).Post("/refresh", router.handler.DashboardRefresh)
				r.Get("/status", router.handler.DashboardStatus)
			})
		})

		// ========================
		// Platform Detail Endpoints
		// ========================
		r.Route("/platforms", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitCustom(RateLimitDashboard))

			r.Get("/analytics/overview", router.handler.AnalyticsOverview)
			r.Get("/analytics/traffic-sources", router.handler.AnalyticsTrafficSources)
			r.Get("/analytics/page-views", router.handler.AnalyticsPageViews)

			r.Get("/search-console/sites", router.handler.SearchConsoleSites)
			r.Get("/search-console/queries", router.handler.SearchConsoleQueries)

			r.Get("/google-ads/accounts", router.handler.GoogleAdsAccounts)
			r.Get("/google-ads/campaigns", router.handler.GoogleAdsCampaigns)

			r.Get("/meta/accounts", router.handler.MetaAccounts)
			r.Get("/meta/campaigns", router.handler.MetaCampaigns)
			r.Get("/meta/insights", router.handler.MetaInsights)

			r.Get("/bigcommerce/store", router.handler.BigCommerceStore)
			r.Get("/bigcommerce/orders", router.handler.BigCommerceOrders)
			r.Get("/bigcommerce/products", router.handler.BigCommerceProducts)
		})

		// ========================
		// Business Endpoints
		// ========================
		r.Route("/businesses", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())

			r.Get("/", router.handler.ListBusinesses)
			r.Post("/", router.handler.CreateBusiness)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", router.handler.GetBusiness)
				r.Put("/", router.handler.UpdateBusiness)
				r.Delete("/", router.handler.DeleteBusiness)
				r.Post("/test/{platform}", router.handler.TestBusinessConnection)
				r.Get("/config/{platform}", router.handler.GetBusinessConfig)
			})
		})

		// ========================
		// Webhooks
		// ========================
		r.With(router.chiMiddleware.RateLimitCustom(RateLimitWebhook)).
			Post("/webhooks/bigcommerce", router.handler.BigCommerceWebhookHandler)
	})

	return r
}
