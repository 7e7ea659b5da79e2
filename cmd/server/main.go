// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

// Package main is the entry point for the Adpulse server.
//
// Adpulse aggregates store and advertising metrics from BigCommerce, Google
// Ads, Meta Ads and Google Search Console into cached dashboard views, for
// one or many businesses. GA4 reports and per-platform detail lists are
// served uncached next to the dashboard.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, config.yaml, environment (Koanf v2)
//  2. Business store: BadgerDB, seeded with a default business
//  3. Platform services: one client registry per upstream API
//  4. Aggregator: view computation over the shared TTL cache
//  5. Event bus: webhook notifications routed to cache invalidation
//  6. HTTP server: REST API on chi
//
// Long-running parts run under a suture supervisor tree and stop on
// SIGINT or SIGTERM.
//
// # Example Usage
//
//	export BIGCOMMERCE_STORE_HASH=abc123
//	export BIGCOMMERCE_ACCESS_TOKEN=your-token
//	export BIGCOMMERCE_WEBHOOK_SECRET=$(openssl rand -hex 32)
//	./adpulse
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/adpulse/internal/aggregator"
	"github.com/tomtom215/adpulse/internal/api"
	"github.com/tomtom215/adpulse/internal/business"
	"github.com/tomtom215/adpulse/internal/cache"
	"github.com/tomtom215/adpulse/internal/config"
	"github.com/tomtom215/adpulse/internal/events"
	"github.com/tomtom215/adpulse/internal/logging"
	"github.com/tomtom215/adpulse/internal/metrics"
	"github.com/tomtom215/adpulse/internal/models"
	"github.com/tomtom215/adpulse/internal/platform"
	"github.com/tomtom215/adpulse/internal/platform/analytics"
	"github.com/tomtom215/adpulse/internal/platform/bigcommerce"
	"github.com/tomtom215/adpulse/internal/platform/googleads"
	"github.com/tomtom215/adpulse/internal/platform/metaads"
	"github.com/tomtom215/adpulse/internal/platform/searchconsole"
	"github.com/tomtom215/adpulse/internal/supervisor"
	"github.com/tomtom215/adpulse/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Bool("mock_fallback", cfg.Platforms.MockFallback).
		Msg("Starting Adpulse with supervisor tree")

	// Business store
	defaults := defaultCredentials(cfg)
	var store *business.Store
	if cfg.Database.InMemory {
		store, err = business.OpenInMemory(defaults)
	} else {
		store, err = business.Open(cfg.Database.Path, defaults)
	}
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open business store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing business store")
		}
	}()

	seeded, err := store.EnsureDefault(context.Background())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to seed default business")
	}
	logging.Info().Str("business_id", seeded.ID).Str("path", cfg.Database.Path).Bool("in_memory", cfg.Database.InMemory).
		Msg("Business store initialized")

	// Platform services
	bc := bigcommerce.NewService(store, platformOptions(cfg, cfg.Platforms.BigCommerce.BaseURL))
	gads := googleads.NewService(store, cfg.Platforms.GoogleAds.DeveloperToken, platformOptions(cfg, cfg.Platforms.GoogleAds.BaseURL))
	meta := metaads.NewService(store, platformOptions(cfg, cfg.Platforms.Meta.BaseURL))
	gsc := searchconsole.NewService(store, platformOptions(cfg, cfg.Platforms.SearchConsole.Endpoint))
	ga := analytics.NewService(store, platformOptions(cfg, cfg.Platforms.GoogleAnalytics.Endpoint))
	defer func() {
		bc.Close()
		gads.Close()
		meta.Close()
		gsc.Close()
		ga.Close()
	}()
	logPlatformStatus(defaults)

	// Aggregation
	viewCache := cache.New(cache.WithName("views"))
	agg := aggregator.New(viewCache, aggregator.Sources{
		Store:     bc,
		GoogleAds: gads,
		MetaAds:   meta,
		Search:    gsc,
	}, aggregator.Options{ViewTTL: cfg.Aggregator.ViewTTL})

	// Events
	bus := events.NewBus(events.Config{
		BufferSize:           cfg.Events.BufferSize,
		RetryCount:           cfg.Events.RetryCount,
		RetryInitialInterval: cfg.Events.RetryInitialInterval,
		CloseTimeout:         cfg.Events.CloseTimeout,
	})
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()
	eventRouter, err := events.NewRouter(bus, agg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create event router")
	}

	// HTTP
	handler := api.NewHandler(api.Options{
		Aggregator: agg,
		Businesses: store,
		Events:     bus,
		Testers: map[string][]api.ConnectionTester{
			models.PlatformBigCommerce:     {bc},
			models.PlatformGoogle:          {gads, gsc},
			models.PlatformGoogleAnalytics: {ga},
			models.PlatformMeta:            {meta},
		},
		Forgetters: []api.ClientForgetter{bc, gads, meta, gsc, ga},
		Readers: api.Readers{
			Analytics: ga,
			Search:    gsc,
			GoogleAds: gads,
			Meta:      meta,
			Store:     bc,
		},
		WebhookSecret: cfg.Webhooks.BigCommerceSecret,
		Version:       version,
	})

	mwConfig := api.DefaultChiMiddlewareConfig()
	mwConfig.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mwConfig.RateLimitRequests = cfg.Security.RateLimitReqs
	mwConfig.RateLimitWindow = cfg.Security.RateLimitWindow
	mwConfig.RateLimitDisabled = cfg.Security.RateLimitDisabled
	router := api.NewRouter(handler, api.NewChiMiddleware(mwConfig))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Supervisor tree
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddDataService(services.NewRefreshSchedulerService(agg, store, cfg.Aggregator.RefreshInterval, cfg.Aggregator.RefreshOnStart))
	tree.AddDataService(services.NewCacheSweeperService(viewCache, cfg.Cache.CleanupInterval))
	tree.AddMessagingService(services.NewEventRouterService(eventRouter))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, handler.Wait))
	logging.Info().Str("addr", server.Addr).Dur("refresh_interval", cfg.Aggregator.RefreshInterval).Msg("Services added to supervisor tree")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Msg("Starting supervisor tree...")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("Application stopped gracefully")
}

// defaultCredentials maps the configured platform credentials to the
// process-level defaults used by the default tenant.
func defaultCredentials(cfg *config.Config) platform.Credentials {
	p := cfg.Platforms
	return platform.Credentials{
		BigCommerce: platform.BigCommerceCredentials{
			StoreHash:     p.BigCommerce.StoreHash,
			AccessToken:   p.BigCommerce.AccessToken,
			WebhookSecret: cfg.Webhooks.BigCommerceSecret,
		},
		Google: platform.GoogleCredentials{
			ClientID:           p.Google.ClientID,
			ClientSecret:       p.Google.ClientSecret,
			AccessToken:        p.Google.AccessToken,
			RefreshToken:       p.Google.RefreshToken,
			AdsCustomerID:      p.GoogleAds.CustomerID,
			AdsLoginCustomerID: p.GoogleAds.LoginCustomerID,
			SiteURL:            p.SearchConsole.SiteURL,
		},
		Analytics: platform.AnalyticsCredentials{
			PropertyID: p.GoogleAnalytics.PropertyID,
			Grant: platform.GoogleCredentials{
				ClientID:     p.Google.ClientID,
				ClientSecret: p.Google.ClientSecret,
				AccessToken:  p.Google.AccessToken,
				RefreshToken: p.Google.RefreshToken,
			},
		},
		Meta: platform.MetaCredentials{
			AppID:       p.Meta.AppID,
			AppSecret:   p.Meta.AppSecret,
			AccessToken: p.Meta.AccessToken,
			AdAccountID: p.Meta.AdAccountID,
		},
	}
}

func platformOptions(cfg *config.Config, baseURL string) platform.Options {
	p := cfg.Platforms
	limit := rate.Inf
	if p.RateLimitRPS > 0 {
		limit = rate.Limit(p.RateLimitRPS)
	}
	return platform.Options{
		BaseURL:      baseURL,
		Timeout:      p.Timeout,
		MockFallback: p.MockFallback,
		RateLimit:    limit,
		Burst:        p.RateLimitBurst,
		ClientTTL:    p.ClientTTL,
	}
}

func logPlatformStatus(defaults platform.Credentials) {
	logging.Info().
		Bool("bigcommerce", defaults.BigCommerce.Configured()).
		Bool("google_ads", defaults.Google.AdsConfigured()).
		Bool("search_console", defaults.Google.SearchConfigured()).
		Bool("google_analytics", defaults.Analytics.Configured()).
		Bool("meta", defaults.Meta.Configured()).
		Msg("Default platform credentials")
}
