// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

/*
Package supervisor provides process supervision for Adpulse using suture v4.

The supervisor tree organizes long-running services into three layers so a
crash in one layer restarts only that layer:

	RootSupervisor ("adpulse")
	├── DataSupervisor ("data-layer")
	│   ├── RefreshSchedulerService ("refresh-scheduler")
	│   └── CacheSweeperService ("cache-sweeper")
	├── MessagingSupervisor ("messaging-layer")
	│   └── EventRouterService ("event-router")
	└── APISupervisor ("api-layer")
	    └── HTTPServerService ("http-server")

A failing refresh never takes the HTTP server down; cached views keep being
served while the data layer backs off.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{})
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewRefreshSchedulerService(agg, store, 15*time.Minute, true))
	tree.AddDataService(services.NewCacheSweeperService(viewCache, time.Minute))
	tree.AddMessagingService(services.NewEventRouterService(router))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, handler.Wait))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return tree.Serve(ctx)

Supervisor events (service start, failure, backoff) are logged through the
sutureslog adapter onto the zerolog-backed slog logger.
*/
package supervisor
