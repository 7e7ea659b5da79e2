// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package aggregator

import "github.com/tomtom215/adpulse/internal/platform"

// DefaultTenant keys views requested without a tenant.
const DefaultTenant = "default"

// Cache view names, also used as metric labels.
const (
	viewMetrics   = "metrics"
	viewPlatforms = "platforms"
	viewCharts    = "charts"
)

func tenantKey(tenantID string) string {
	if tenantID == "" {
		return DefaultTenant
	}
	return tenantID
}

func metricsKey(period platform.Period, tenantID string) string {
	return viewMetrics + "_" + period.String() + "_" + tenantKey(tenantID)
}

func platformsKey(period platform.Period, tenantID string) string {
	return viewPlatforms + "_" + period.String() + "_" + tenantKey(tenantID)
}

func chartsKey(period platform.Period, kind ChartKind, tenantID string) string {
	return viewCharts + "_" + period.String() + "_" + string(kind) + "_" + tenantKey(tenantID)
}
