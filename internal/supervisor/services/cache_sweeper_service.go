// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package services

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/adpulse/internal/logging"
)

// Sweeper evicts expired entries. It is satisfied by *cache.Cache.
type Sweeper interface {
	Cleanup() int
}

// CacheSweeperService calls Cleanup on an interval.
type CacheSweeperService struct {
	sweeper  Sweeper
	interval time.Duration
	clock    clockwork.Clock
	name     string
}

// NewCacheSweeperService creates a sweeper ticking every interval.
func NewCacheSweeperService(sweeper Sweeper, interval time.Duration) *CacheSweeperService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CacheSweeperService{
		sweeper:  sweeper,
		interval: interval,
		clock:    clockwork.NewRealClock(),
		name:     "cache-sweeper",
	}
}

// WithClock replaces the ticker clock. Used by tests.
func (s *CacheSweeperService) WithClock(clock clockwork.Clock) *CacheSweeperService {
	s.clock = clock
	return s
}

// Serve implements suture.Service.
func (s *CacheSweeperService) Serve(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			if removed := s.sweeper.Cleanup(); removed > 0 {
				logging.Debug().Str("component", s.name).Int("removed", removed).Msg("Swept expired cache entries")
			}
		}
	}
}

// String implements fmt.Stringer for suture logging.
func (s *CacheSweeperService) String() string {
	return s.name
}
