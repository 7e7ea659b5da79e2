// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

// Package analytics reads GA4 property reports through the Google Analytics
// Data API.
package analytics

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
	ga "google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/option"

	"github.com/tomtom215/adpulse/internal/platform"
)

// overviewMetrics are requested in this order; Overview reads them by index.
var overviewMetrics = []string{
	"totalUsers",
	"sessions",
	"screenPageViews",
	"bounceRate",
	"averageSessionDuration",
	"sessionsPerUser",
}

// Client runs reports against one GA4 property.
type Client struct {
	svc      *ga.Service
	property string
	limiter  *rate.Limiter
}

// NewClient creates a client. httpClient must attach OAuth bearer tokens;
// endpoint overrides the API root when non-empty. propertyID may be given
// with or without the properties/ prefix.
func NewClient(ctx context.Context, httpClient *http.Client, endpoint, propertyID string, limiter *rate.Limiter) (*Client, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	svc, err := ga.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating analytics data service: %w", err)
	}

	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Client{
		svc:      svc,
		property: "properties/" + strings.TrimPrefix(propertyID, "properties/"),
		limiter:  limiter,
	}, nil
}

func (c *Client) runReport(ctx context.Context, req *ga.RunReportRequest) (*ga.RunReportResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.svc.Properties.RunReport(c.property, req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("analytics report for %s failed: %w", c.property, err)
	}
	return resp, nil
}

func dateRanges(period platform.Period, now time.Time) []*ga.DateRange {
	since, until := period.DateRange(now)
	return []*ga.DateRange{{StartDate: since, EndDate: until}}
}

func metrics(names ...string) []*ga.Metric {
	out := make([]*ga.Metric, 0, len(names))
	for _, name := range names {
		out = append(out, &ga.Metric{Name: name})
	}
	return out
}

// Overview returns property totals for the period ending at now. The
// report has no dimension, so its single row is the period total.
func (c *Client) Overview(ctx context.Context, period platform.Period, now time.Time) (*platform.TrafficOverview, error) {
	resp, err := c.runReport(ctx, &ga.RunReportRequest{
		DateRanges: dateRanges(period, now),
		Metrics:    metrics(overviewMetrics...),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Rows) == 0 {
		return &platform.TrafficOverview{}, nil
	}
	return ReduceOverview(resp.Rows[0]), nil
}

// ReduceOverview converts a totals row. GA4 reports bounce rate as a
// fraction; it is returned in percent with 1 decimal.
func ReduceOverview(row *ga.Row) *platform.TrafficOverview {
	value := func(i int) float64 {
		if i >= len(row.MetricValues) {
			return 0
		}
		return parseFloat(row.MetricValues[i].Value)
	}
	return &platform.TrafficOverview{
		Users:              int64(math.Round(value(0))),
		Sessions:           int64(math.Round(value(1))),
		PageViews:          int64(math.Round(value(2))),
		BounceRate:         math.Round(value(3)*100*10) / 10,
		AvgSessionDuration: math.Round(value(4)*10) / 10,
		SessionsPerUser:    math.Round(value(5)*100) / 100,
	}
}

// TrafficSources returns sessions per default channel group, largest first.
func (c *Client) TrafficSources(ctx context.Context, period platform.Period, now time.Time) ([]platform.TrafficSource, error) {
	resp, err := c.runReport(ctx, &ga.RunReportRequest{
		DateRanges: dateRanges(period, now),
		Dimensions: []*ga.Dimension{{Name: "sessionDefaultChannelGroup"}},
		Metrics:    metrics("sessions"),
		OrderBys:   []*ga.OrderBy{{Desc: true, Metric: &ga.MetricOrderBy{MetricName: "sessions"}}},
	})
	if err != nil {
		return nil, err
	}

	sources := make([]platform.TrafficSource, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		if len(row.DimensionValues) == 0 || len(row.MetricValues) == 0 {
			continue
		}
		sources = append(sources, platform.TrafficSource{
			Source:   row.DimensionValues[0].Value,
			Sessions: int64(math.Round(parseFloat(row.MetricValues[0].Value))),
		})
	}
	return sources, nil
}

// PageViews returns daily page views, oldest first. Days without traffic
// are absent.
func (c *Client) PageViews(ctx context.Context, period platform.Period, now time.Time) ([]platform.PageViewPoint, error) {
	resp, err := c.runReport(ctx, &ga.RunReportRequest{
		DateRanges: dateRanges(period, now),
		Dimensions: []*ga.Dimension{{Name: "date"}},
		Metrics:    metrics("screenPageViews"),
		OrderBys:   []*ga.OrderBy{{Dimension: &ga.DimensionOrderBy{DimensionName: "date"}}},
	})
	if err != nil {
		return nil, err
	}

	points := make([]platform.PageViewPoint, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		if len(row.DimensionValues) == 0 || len(row.MetricValues) == 0 {
			continue
		}
		points = append(points, platform.PageViewPoint{
			Date:      formatDate(row.DimensionValues[0].Value),
			PageViews: int64(math.Round(parseFloat(row.MetricValues[0].Value))),
		})
	}
	return points, nil
}

// Ping fetches the property metadata, which fails for an unknown property
// or a grant without access to it.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := c.svc.Properties.GetMetadata(c.property + "/metadata").Context(ctx).Do(); err != nil {
		return fmt.Errorf("analytics metadata for %s failed: %w", c.property, err)
	}
	return nil
}

// formatDate turns the YYYYMMDD date dimension into YYYY-MM-DD. Other
// values pass through.
func formatDate(v string) string {
	d, err := time.Parse("20060102", v)
	if err != nil {
		return v
	}
	return d.Format(time.DateOnly)
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
