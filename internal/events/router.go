// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/goccy/go-json"

	"github.com/tomtom215/adpulse/internal/logging"
	"github.com/tomtom215/adpulse/internal/metrics"
)

const invalidationHandler = "cache-invalidation"

// Invalidator drops cached views derived from one platform.
type Invalidator interface {
	InvalidateCache(platformName string) int
}

// Router consumes TopicPlatformUpdated and invalidates cached views.
//
// Middleware order (outer to inner):
//  1. Recoverer - catch panics and convert to errors
//  2. Retry - exponential backoff for handler errors
type Router struct {
	router      *message.Router
	invalidator Invalidator
}

// NewRouter builds the router. Call Run to start consuming.
func NewRouter(bus *Bus, invalidator Invalidator) (*Router, error) {
	wmRouter, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: bus.cfg.CloseTimeout,
	}, bus.logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	wmRouter.AddMiddleware(middleware.Recoverer)

	retry := middleware.Retry{
		MaxRetries:      bus.cfg.RetryCount,
		InitialInterval: bus.cfg.RetryInitialInterval,
		MaxInterval:     10 * bus.cfg.RetryInitialInterval,
		Multiplier:      2.0,
		Logger:          bus.logger,
	}
	wmRouter.AddMiddleware(retry.Middleware)

	r := &Router{router: wmRouter, invalidator: invalidator}
	wmRouter.AddConsumerHandler(invalidationHandler, TopicPlatformUpdated, bus.Subscriber(), r.handlePlatformUpdated)

	return r, nil
}

var errMalformed = errors.New("malformed event")

func (r *Router) handlePlatformUpdated(msg *message.Message) error {
	var evt PlatformUpdated
	if err := json.Unmarshal(msg.Payload, &evt); err != nil || evt.Platform == "" {
		// Retrying cannot fix a bad payload; ack and count it.
		metrics.EventsHandled.WithLabelValues(TopicPlatformUpdated, "malformed").Inc()
		logging.Warn().Str("message_id", msg.UUID).AnErr("error", errors.Join(errMalformed, err)).
			Msg("Dropping malformed platform event")
		return nil
	}

	start := time.Now()
	removed := r.invalidator.InvalidateCache(evt.Platform)
	metrics.EventsHandled.WithLabelValues(TopicPlatformUpdated, "success").Inc()

	logging.Info().
		Str("message_id", msg.UUID).
		Str("request_id", msg.Metadata.Get("request_id")).
		Str("platform", evt.Platform).
		Str("tenant_id", evt.TenantID).
		Str("event", evt.Event).
		Int("removed", removed).
		Dur("duration", time.Since(start)).
		Msg("Cache invalidated by platform event")
	return nil
}

// Run starts the router and blocks until ctx is canceled or Close is called.
func (r *Router) Run(ctx context.Context) error {
	return r.router.Run(ctx)
}

// Running returns a channel that closes once handlers are subscribed.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// Close stops the router, waiting for in-flight handlers.
func (r *Router) Close() error {
	return r.router.Close()
}
