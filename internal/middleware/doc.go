// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

/*
Package middleware provides chi-compatible HTTP middleware for request
tracking and Prometheus instrumentation.

Key Components:

  - RequestID: reuses or generates X-Request-ID and stores it in the
    logging context
  - PrometheusMetrics: request count, duration and in-flight gauge, labeled
    by the matched chi route pattern rather than the raw path
  - AccessLog: one structured zerolog line per request

Middleware Stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
