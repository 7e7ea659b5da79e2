// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package services

import (
	"context"
	"fmt"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/adpulse/internal/logging"
)

// EventRouter matches the events.Router lifecycle.
type EventRouter interface {
	Run(ctx context.Context) error
	Close() error
}

// EventRouterService runs the event router under supervision.
//
// A watermill router cannot be run twice, so a router that stops on its
// own is logged and the service asks not to be restarted. Webhooks keep
// being accepted; cached views then expire by TTL only. Shutdown closes
// the router, waiting for in-flight handlers.
type EventRouterService struct {
	router EventRouter
	name   string
}

// NewEventRouterService creates a new event router service wrapper.
func NewEventRouterService(router EventRouter) *EventRouterService {
	return &EventRouterService{router: router, name: "event-router"}
}

// Serve implements suture.Service.
func (s *EventRouterService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.router.Run(ctx)
	}()

	select {
	case err := <-errCh:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logging.Error().Err(err).Str("component", s.name).Msg("Event router stopped; cache invalidation events are no longer handled")
		return suture.ErrDoNotRestart

	case <-ctx.Done():
		if err := s.router.Close(); err != nil {
			return fmt.Errorf("event router close failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

// String implements fmt.Stringer for suture logging.
func (s *EventRouterService) String() string {
	return s.name
}
