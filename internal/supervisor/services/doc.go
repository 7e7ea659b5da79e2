// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

/*
Package services provides suture.Service wrappers for Adpulse components.

Each wrapper translates a component lifecycle (ListenAndServe, Run/Close,
periodic ticks) into suture's context-aware Serve pattern and implements
fmt.Stringer so the supervisor logs it by name:

  - HTTPServerService ("http-server"): graceful shutdown, then drains
    detached handler work
  - RefreshSchedulerService ("refresh-scheduler"): warms the dashboard
    views of the default tenant and every business on an interval
  - CacheSweeperService ("cache-sweeper"): evicts expired view cache entries
  - EventRouterService ("event-router"): runs the watermill router that
    turns platform.updated events into cache invalidations

Tickers come from a clockwork.Clock so tests can drive them with a fake
clock.
*/
package services
