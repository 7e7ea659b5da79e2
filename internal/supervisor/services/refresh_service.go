// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/adpulse/internal/logging"
	"github.com/tomtom215/adpulse/internal/models"
)

// Refresher re-warms the cached views of one tenant. It is satisfied by
// *aggregator.Aggregator.
type Refresher interface {
	RefreshAllData(ctx context.Context, tenantID string) (bool, error)
}

// BusinessLister enumerates the configured businesses. It is satisfied by
// *business.Store.
type BusinessLister interface {
	List(ctx context.Context) ([]*models.Business, error)
}

// RefreshSchedulerService periodically refreshes the default tenant and
// every stored business, one tenant at a time.
type RefreshSchedulerService struct {
	refresher  Refresher
	businesses BusinessLister
	interval   time.Duration
	onStart    bool
	clock      clockwork.Clock
	name       string
}

// NewRefreshSchedulerService creates a scheduler ticking every interval.
// With onStart set, one refresh runs as soon as Serve starts.
func NewRefreshSchedulerService(refresher Refresher, businesses BusinessLister, interval time.Duration, onStart bool) *RefreshSchedulerService {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &RefreshSchedulerService{
		refresher:  refresher,
		businesses: businesses,
		interval:   interval,
		onStart:    onStart,
		clock:      clockwork.NewRealClock(),
		name:       "refresh-scheduler",
	}
}

// WithClock replaces the ticker clock. Used by tests.
func (s *RefreshSchedulerService) WithClock(clock clockwork.Clock) *RefreshSchedulerService {
	s.clock = clock
	return s
}

// Serve implements suture.Service. Refresh errors are logged and never
// end the service.
func (s *RefreshSchedulerService) Serve(ctx context.Context) error {
	ctx = logging.ContextWithRequestID(ctx, "scheduler")
	logger := logging.WithComponent(s.name)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Info().Dur("interval", s.interval).Bool("on_start", s.onStart).Msg("Refresh scheduler started")

	if s.onStart {
		s.runOnce(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			s.runOnce(ctx)
		}
	}
}

// runOnce refreshes every tenant and reports the combined errors.
func (s *RefreshSchedulerService) runOnce(ctx context.Context) {
	start := s.clock.Now()
	tenants := []string{""}

	list, err := s.businesses.List(ctx)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to list businesses; refreshing default tenant only")
	}
	for _, b := range list {
		tenants = append(tenants, b.ID)
	}

	var result *multierror.Error
	refreshed := 0
	for _, tenantID := range tenants {
		if ctx.Err() != nil {
			return
		}
		ran, err := s.refresher.RefreshAllData(logging.ContextWithTenant(ctx, tenantID), tenantID)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("tenant %q: %w", tenantID, err))
		}
		if ran {
			refreshed++
		}
	}

	event := logging.Ctx(ctx).Info()
	if err := result.ErrorOrNil(); err != nil {
		event = logging.Ctx(ctx).Warn().Err(err)
	}
	event.Int("tenants", len(tenants)).
		Int("refreshed", refreshed).
		Dur("duration", s.clock.Since(start)).
		Msg("Scheduled refresh finished")
}

// String implements fmt.Stringer for suture logging.
func (s *RefreshSchedulerService) String() string {
	return s.name
}
