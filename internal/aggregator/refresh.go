// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package aggregator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/tomtom215/adpulse/internal/logging"
	"github.com/tomtom215/adpulse/internal/metrics"
	"github.com/tomtom215/adpulse/internal/platform"
)

// RefreshAllData clears the tenant's cached views and recomputes metrics,
// platforms and all charts for each of platform.RefreshPeriods.
//
// Only one refresh runs at a time across all tenants. A call made while
// another refresh is running returns (false, nil) without doing anything.
// Otherwise it returns true and the combined reduction errors, if any.
func (a *Aggregator) RefreshAllData(ctx context.Context, tenantID string) (bool, error) {
	tenant := tenantKey(tenantID)
	log := logging.Ctx(ctx).With().Str("tenant", tenant).Logger()

	if !a.refreshing.CompareAndSwap(false, true) {
		log.Info().Msg("Data refresh already in progress, skipping")
		metrics.RecordRefresh(metrics.RefreshSkipped, 0)
		return false, nil
	}
	defer a.refreshing.Store(false)

	start := time.Now()
	removed := a.clearTenant(tenant)
	log.Info().Int("cleared", removed).Msg("Starting data refresh")

	var (
		mu     sync.Mutex
		result *multierror.Error
	)
	collect := func(view string, period platform.Period, err error) {
		if err == nil {
			return
		}
		mu.Lock()
		result = multierror.Append(result, fmt.Errorf("%s %s: %w", view, period, err))
		mu.Unlock()
	}

	for _, period := range platform.RefreshPeriods {
		var wg sync.WaitGroup
		wg.Add(3)
		go func() {
			defer wg.Done()
			_, err := a.GetAggregatedMetrics(ctx, period, tenantID)
			collect(viewMetrics, period, err)
		}()
		go func() {
			defer wg.Done()
			_, err := a.GetPlatformData(ctx, period, tenantID)
			collect(viewPlatforms, period, err)
		}()
		go func() {
			defer wg.Done()
			_, err := a.GetChartData(ctx, period, ChartAll, tenantID)
			collect(viewCharts, period, err)
		}()
		wg.Wait()
	}

	elapsed := time.Since(start)
	if err := result.ErrorOrNil(); err != nil {
		log.Error().Err(err).Dur("duration", elapsed).Msg("Data refresh finished with errors")
		metrics.RecordRefresh(metrics.RefreshFailed, elapsed)
		return true, err
	}

	log.Info().Dur("duration", elapsed).Msg("Data refresh completed")
	metrics.RecordRefresh(metrics.RefreshCompleted, elapsed)
	return true, nil
}

// clearTenant deletes every key containing tenant as a substring.
func (a *Aggregator) clearTenant(tenant string) int {
	removed := 0
	for key := range a.cache.Keys() {
		if strings.Contains(key, tenant) {
			a.cache.Delete(key)
			removed++
		}
	}
	return removed
}

// InvalidateCache deletes every view whose key contains platformName, for
// all tenants. Returns the number of views removed.
func (a *Aggregator) InvalidateCache(platformName string) int {
	return a.cache.ClearByPattern("*" + platformName + "*")
}
