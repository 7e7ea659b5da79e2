// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

// Package searchconsole reads organic search performance through the Google
// Search Console API.
package searchconsole

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	sc "google.golang.org/api/searchconsole/v1"

	"github.com/tomtom215/adpulse/internal/platform"
)

// rowLimit is the number of daily rows requested per query.
const rowLimit = 1000

// ErrNoSite is returned when no site is configured and the account owns none.
var ErrNoSite = errors.New("no search console site available")

// Client queries Search Console for one Google account.
type Client struct {
	svc     *sc.Service
	siteURL string
	limiter *rate.Limiter
}

// NewClient creates a client. httpClient must attach OAuth bearer tokens;
// endpoint overrides the API root when non-empty. An empty siteURL selects
// the first site owned by the account.
func NewClient(ctx context.Context, httpClient *http.Client, endpoint, siteURL string, limiter *rate.Limiter) (*Client, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	svc, err := sc.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating search console service: %w", err)
	}

	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Client{svc: svc, siteURL: siteURL, limiter: limiter}, nil
}

// Sites lists the sites the account can read.
func (c *Client) Sites(ctx context.Context) ([]platform.Site, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.svc.Sites.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("search console sites request failed: %w", err)
	}

	sites := make([]platform.Site, 0, len(resp.SiteEntry))
	for _, entry := range resp.SiteEntry {
		sites = append(sites, platform.Site{URL: entry.SiteUrl, PermissionLevel: entry.PermissionLevel})
	}
	return sites, nil
}

func (c *Client) resolveSite(ctx context.Context) (string, error) {
	if c.siteURL != "" {
		return c.siteURL, nil
	}
	sites, err := c.Sites(ctx)
	if err != nil {
		return "", err
	}
	if len(sites) == 0 {
		return "", ErrNoSite
	}
	return sites[0].URL, nil
}

// GetPerformance returns search totals for the period ending at now.
func (c *Client) GetPerformance(ctx context.Context, period platform.Period, now time.Time) (*platform.SearchPerformance, error) {
	site, err := c.resolveSite(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	since, until := period.DateRange(now)
	req := &sc.SearchAnalyticsQueryRequest{
		StartDate:  since,
		EndDate:    until,
		Dimensions: []string{"date"},
		RowLimit:   rowLimit,
	}

	resp, err := c.svc.Searchanalytics.Query(site, req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("search console query for %s failed: %w", site, err)
	}
	return Reduce(resp.Rows), nil
}

// TopQueries returns up to limit search queries for the period ending at
// now, in the order Search Console ranks them (by clicks).
func (c *Client) TopQueries(ctx context.Context, period platform.Period, now time.Time, limit int) ([]platform.SearchQuery, error) {
	if limit <= 0 || limit > rowLimit {
		limit = rowLimit
	}
	site, err := c.resolveSite(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	since, until := period.DateRange(now)
	req := &sc.SearchAnalyticsQueryRequest{
		StartDate:  since,
		EndDate:    until,
		Dimensions: []string{"query"},
		RowLimit:   int64(limit),
	}

	resp, err := c.svc.Searchanalytics.Query(site, req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("search console queries for %s failed: %w", site, err)
	}

	queries := make([]platform.SearchQuery, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		if len(row.Keys) == 0 {
			continue
		}
		queries = append(queries, platform.SearchQuery{
			Query:       row.Keys[0],
			Clicks:      int64(math.Round(row.Clicks)),
			Impressions: int64(math.Round(row.Impressions)),
			CTR:         math.Round(row.Ctr*100*100) / 100,
			Position:    math.Round(row.Position*10) / 10,
		})
	}
	return queries, nil
}

// Reduce totals daily rows. CTR is clicks per impression in percent with 2
// decimals; position is the mean daily position with 1 decimal.
func Reduce(rows []*sc.ApiDataRow) *platform.SearchPerformance {
	var clicks, impressions, position float64
	for _, row := range rows {
		clicks += row.Clicks
		impressions += row.Impressions
		position += row.Position
	}

	perf := &platform.SearchPerformance{
		Clicks:      int64(math.Round(clicks)),
		Impressions: int64(math.Round(impressions)),
	}
	if impressions > 0 {
		perf.CTR = math.Round(clicks/impressions*100*100) / 100
	}
	if len(rows) > 0 {
		perf.Position = math.Round(position/float64(len(rows))*10) / 10
	}
	return perf
}
