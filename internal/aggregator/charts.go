// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package aggregator

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/tomtom215/adpulse/internal/platform"
)

// ChartKind selects one chart series, or all of them.
type ChartKind string

// Chart kinds.
const (
	ChartAll         ChartKind = "all"
	ChartRevenue     ChartKind = "revenue"
	ChartTraffic     ChartKind = "traffic"
	ChartConversions ChartKind = "conversions"
)

// ErrUnknownChartKind is returned for a kind other than the constants above.
var ErrUnknownChartKind = errors.New("unknown chart kind")

// directVisits is the fixed direct-traffic baseline added to the traffic mix.
const directVisits = 1000

// Traffic source colors.
const (
	colorOrganic = "#10B981"
	colorPaid    = "#3B82F6"
	colorSocial  = "#EC4899"
	colorDirect  = "#F59E0B"
)

// Charts maps a chart kind to its series.
type Charts map[ChartKind]any

// ConversionSeries is conversions per ads provider.
type ConversionSeries struct {
	GoogleAds int64 `json:"googleAds"`
	MetaAds   int64 `json:"metaAds"`
}

// ParseChartKind validates s. An empty string yields ChartAll.
func ParseChartKind(s string) (ChartKind, error) {
	switch k := ChartKind(s); k {
	case "":
		return ChartAll, nil
	case ChartAll, ChartRevenue, ChartTraffic, ChartConversions:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownChartKind, s)
	}
}

// GetChartData returns the chart series. All three series are computed on
// every miss since traffic needs clicks from several sources; a kind other
// than ChartAll narrows the cached and returned value to that series.
func (a *Aggregator) GetChartData(ctx context.Context, period platform.Period, kind ChartKind, tenantID string) (Charts, error) {
	if _, err := ParseChartKind(string(kind)); err != nil {
		return nil, err
	}
	if kind == "" {
		kind = ChartAll
	}

	return cachedView(ctx, a, viewCharts, chartsKey(period, kind, tenantID), func(ctx context.Context) (Charts, error) {
		charts := reduceCharts(a.fetchAll(ctx, period, tenantID))
		if kind == ChartAll {
			return charts, nil
		}
		return Charts{kind: charts[kind]}, nil
	})
}

func reduceCharts(s *snapshot) Charts {
	revenue := platform.DefaultDailyRevenue()
	if store := s.storeRecord(); store != nil && len(store.DailyRevenue) > 0 {
		revenue = store.DailyRevenue
	}

	gads, meta, search := adsRecord(s.googleAds), adsRecord(s.metaAds), s.searchRecord()

	return Charts{
		ChartRevenue:     revenue,
		ChartTraffic:     trafficSeries(search.Clicks, gads.Clicks, meta.Clicks),
		ChartConversions: ConversionSeries{GoogleAds: gads.Conversions, MetaAds: meta.Conversions},
	}
}

// trafficSeries splits visits into integer percentages of the total, with
// the direct baseline included in the total.
func trafficSeries(organic, paid, social int64) []platform.DataPoint {
	total := float64(organic + paid + social + directVisits)
	share := func(v int64) float64 {
		return math.Round(float64(v) / total * 100)
	}

	return []platform.DataPoint{
		{Name: "Organic", Value: share(organic), Color: colorOrganic},
		{Name: "Paid Ads", Value: share(paid), Color: colorPaid},
		{Name: "Social", Value: share(social), Color: colorSocial},
		{Name: "Direct", Value: share(directVisits), Color: colorDirect},
	}
}
