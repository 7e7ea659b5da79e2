// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package analytics

import (
	"context"
	"time"

	"github.com/tomtom215/adpulse/internal/platform"
)

// Service resolves a tenant's GA4 property and serves its reports.
type Service struct {
	opts     platform.Options
	registry *platform.Registry[*tenantClient]
}

type tenantClient struct {
	api     *Client
	breaker *platform.Breaker
}

// NewService creates a service. opts.BaseURL overrides the API endpoint.
func NewService(source platform.CredentialSource, opts platform.Options) *Service {
	opts = opts.WithDefaults()
	s := &Service{opts: opts}
	s.registry = platform.NewRegistry(platform.NameGoogleAnalytics, source, opts.ClientTTL, s.build)
	return s
}

func (s *Service) build(creds *platform.Credentials) (*tenantClient, error) {
	a := creds.Analytics
	if !a.Configured() {
		return nil, platform.ErrNotConfigured
	}

	httpClient := platform.GoogleHTTPClient(platform.GoogleTokenSource(a.Grant, s.opts.HTTPClient), s.opts.HTTPClient)
	api, err := NewClient(context.Background(), httpClient, s.opts.BaseURL, a.PropertyID, s.opts.NewLimiter())
	if err != nil {
		return nil, err
	}

	tenant := creds.TenantID
	if tenant == "" {
		tenant = "default"
	}
	return &tenantClient{api: api, breaker: platform.NewBreaker("analytics-api/" + tenant)}, nil
}

// fetch runs one report for the tenant under the degrade-to-mock policy.
func fetch[T any](ctx context.Context, s *Service, tenantID string, report func(*Client, time.Time) (T, error), mock func() T) (T, error) {
	return platform.Fetch(ctx, platform.NameGoogleAnalytics, s.opts.MockFallback,
		func() (T, error) {
			tc, err := s.registry.Client(ctx, tenantID)
			if err != nil {
				var zero T
				return zero, err
			}
			return platform.Guard(tc.breaker, func() (T, error) {
				return report(tc.api, s.opts.Clock.Now())
			})
		},
		mock,
	)
}

// Overview returns the tenant's property totals for the period.
func (s *Service) Overview(ctx context.Context, period platform.Period, tenantID string) (*platform.TrafficOverview, error) {
	return fetch(ctx, s, tenantID, func(c *Client, now time.Time) (*platform.TrafficOverview, error) {
		return c.Overview(ctx, period, now)
	}, MockOverview)
}

// TrafficSources returns the tenant's sessions per channel for the period.
func (s *Service) TrafficSources(ctx context.Context, period platform.Period, tenantID string) ([]platform.TrafficSource, error) {
	return fetch(ctx, s, tenantID, func(c *Client, now time.Time) ([]platform.TrafficSource, error) {
		return c.TrafficSources(ctx, period, now)
	}, MockTrafficSources)
}

// PageViews returns the tenant's daily page views for the period.
func (s *Service) PageViews(ctx context.Context, period platform.Period, tenantID string) ([]platform.PageViewPoint, error) {
	now := s.opts.Clock.Now()
	return fetch(ctx, s, tenantID, func(c *Client, at time.Time) ([]platform.PageViewPoint, error) {
		return c.PageViews(ctx, period, at)
	}, func() []platform.PageViewPoint { return MockPageViews(now) })
}

// TestConnection reads the property metadata. Mock fallback does not apply.
func (s *Service) TestConnection(ctx context.Context, tenantID string) error {
	tc, err := s.registry.Client(ctx, tenantID)
	if err != nil {
		return err
	}
	_, err = platform.Guard(tc.breaker, func() (struct{}, error) {
		return struct{}{}, tc.api.Ping(ctx)
	})
	return err
}

// Forget drops the cached client for tenantID.
func (s *Service) Forget(tenantID string) {
	s.registry.Forget(tenantID)
}

// Close releases background resources.
func (s *Service) Close() {
	s.registry.Close()
}

// MockOverview returns placeholder property totals.
func MockOverview() *platform.TrafficOverview {
	return &platform.TrafficOverview{
		Users:              15420,
		Sessions:           23450,
		PageViews:          45670,
		BounceRate:         42.3,
		AvgSessionDuration: 185.7,
		SessionsPerUser:    1.52,
	}
}

// MockTrafficSources returns placeholder channel sessions.
func MockTrafficSources() []platform.TrafficSource {
	return []platform.TrafficSource{
		{Source: "Organic Search", Sessions: 12500},
		{Source: "Direct", Sessions: 6800},
		{Source: "Social", Sessions: 3200},
		{Source: "Referral", Sessions: 950},
	}
}

// mockPageViews is the placeholder weekly series, oldest day first.
var mockPageViews = []int64{3420, 3890, 4120, 3760, 4480, 3210, 3050}

// MockPageViews returns seven placeholder days ending on now's UTC date.
func MockPageViews(now time.Time) []platform.PageViewPoint {
	today := now.UTC()
	points := make([]platform.PageViewPoint, 0, len(mockPageViews))
	for i, views := range mockPageViews {
		day := today.AddDate(0, 0, i-len(mockPageViews)+1)
		points = append(points, platform.PageViewPoint{Date: day.Format(time.DateOnly), PageViews: views})
	}
	return points
}
