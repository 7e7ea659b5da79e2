// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package platform

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/adpulse/internal/logging"
	"github.com/tomtom215/adpulse/internal/metrics"
)

// Fetch runs fetch for the named platform and applies the degrade-to-mock
// policy: with mockFallback set, any error is logged and replaced by mock().
func Fetch[T any](ctx context.Context, name string, mockFallback bool, fetch func() (T, error), mock func() T) (T, error) {
	start := time.Now()
	value, err := fetch()
	elapsed := time.Since(start)

	if err == nil {
		metrics.RecordUpstreamFetch(name, metrics.FetchSuccess, elapsed)
		return value, nil
	}

	if mockFallback {
		event := logging.Ctx(ctx).Warn()
		if errors.Is(err, ErrNotConfigured) {
			event = logging.Ctx(ctx).Debug()
		}
		event.Str("platform", name).Err(err).Msg("Returning mock data")
		metrics.RecordUpstreamFetch(name, metrics.FetchMock, elapsed)
		return mock(), nil
	}

	metrics.RecordUpstreamFetch(name, metrics.FetchFailure, elapsed)
	var zero T
	return zero, err
}
