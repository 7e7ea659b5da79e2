// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

/*
Package api provides the HTTP REST API for Adpulse.

Key Components:

  - Router: chi route table and middleware stack
  - Handler: dashboard, business, webhook and health handlers
  - Response formatting: the models.APIResponse envelope on every endpoint

API Categories:

1. Dashboard (/api/dashboard/):
  - metrics, platforms, charts, refresh and status for one business
    (/api/dashboard/{businessID}/...) or for the first business (legacy
    routes without an ID)
  - cache invalidation per platform (DELETE /api/dashboard/cache/{platform})

2. Businesses (/api/businesses/):
  - CRUD over stored businesses, secrets redacted in every response
  - per-platform connection tests and redacted configuration

3. Webhooks (/api/webhooks/bigcommerce):
  - HMAC-SHA256 verified order and product notifications, forwarded to the
    event bus as platform.updated events

4. Operations:
  - /api/health and the Prometheus /metrics endpoint

Refresh requests return immediately; the refresh runs in the background on a
context detached from the request. Handler.Wait blocks until background
refreshes finish, which the server uses during shutdown.
*/
package api
