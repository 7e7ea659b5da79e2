// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package searchconsole

import (
	"context"
	"fmt"
	"math"

	"github.com/tomtom215/adpulse/internal/platform"
)

// Service resolves a tenant's Google grant and serves Search Console data.
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
	s.registry = platform.NewRegistry(platform.NameSearchConsole, source, opts.ClientTTL, s.build)
	return s
}

func (s *Service) build(creds *platform.Credentials) (*tenantClient, error) {
	g := creds.Google
	if !g.SearchConfigured() {
		return nil, platform.ErrNotConfigured
	}

	httpClient := platform.GoogleHTTPClient(platform.GoogleTokenSource(g, s.opts.HTTPClient), s.opts.HTTPClient)
	api, err := NewClient(context.Background(), httpClient, s.opts.BaseURL, g.SiteURL, s.opts.NewLimiter())
	if err != nil {
		return nil, err
	}

	tenant := creds.TenantID
	if tenant == "" {
		tenant = "default"
	}
	return &tenantClient{api: api, breaker: platform.NewBreaker("search-console-api/" + tenant)}, nil
}

// GetPerformance returns organic search totals for the tenant.
func (s *Service) GetPerformance(ctx context.Context, period platform.Period, tenantID string) (*platform.SearchPerformance, error) {
	return platform.Fetch(ctx, platform.NameSearchConsole, s.opts.MockFallback,
		func() (*platform.SearchPerformance, error) {
			tc, err := s.registry.Client(ctx, tenantID)
			if err != nil {
				return nil, err
			}
			return platform.Guard(tc.breaker, func() (*platform.SearchPerformance, error) {
				return tc.api.GetPerformance(ctx, period, s.opts.Clock.Now())
			})
		},
		MockPerformance,
	)
}

// Sites lists the sites the tenant's account can read.
func (s *Service) Sites(ctx context.Context, tenantID string) ([]platform.Site, error) {
	return platform.Fetch(ctx, platform.NameSearchConsole, s.opts.MockFallback,
		func() ([]platform.Site, error) {
			tc, err := s.registry.Client(ctx, tenantID)
			if err != nil {
				return nil, err
			}
			return platform.Guard(tc.breaker, func() ([]platform.Site, error) {
				return tc.api.Sites(ctx)
			})
		},
		MockSites,
	)
}

// TopQueries returns the tenant's top search queries for the period.
func (s *Service) TopQueries(ctx context.Context, period platform.Period, limit int, tenantID string) ([]platform.SearchQuery, error) {
	return platform.Fetch(ctx, platform.NameSearchConsole, s.opts.MockFallback,
		func() ([]platform.SearchQuery, error) {
			tc, err := s.registry.Client(ctx, tenantID)
			if err != nil {
				return nil, err
			}
			return platform.Guard(tc.breaker, func() ([]platform.SearchQuery, error) {
				return tc.api.TopQueries(ctx, period, s.opts.Clock.Now(), limit)
			})
		},
		func() []platform.SearchQuery { return MockQueries(limit) },
	)
}

// TestConnection lists the account's sites. Mock fallback does not apply.
func (s *Service) TestConnection(ctx context.Context, tenantID string) error {
	tc, err := s.registry.Client(ctx, tenantID)
	if err != nil {
		return err
	}
	_, err = platform.Guard(tc.breaker, func() ([]platform.Site, error) {
		return tc.api.Sites(ctx)
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

// MockPerformance returns placeholder search totals.
func MockPerformance() *platform.SearchPerformance {
	return &platform.SearchPerformance{
		Clicks:      48200,
		Impressions: 1200000,
		CTR:         4.01,
		Position:    12.5,
		Users:       12847,
	}
}

// MockSites returns a placeholder site list.
func MockSites() []platform.Site {
	return []platform.Site{{URL: "https://example.com/", PermissionLevel: "siteOwner"}}
}

// MockQueries returns up to 20 placeholder queries with falling clicks.
func MockQueries(limit int) []platform.SearchQuery {
	n := min(limit, 20)
	queries := make([]platform.SearchQuery, 0, max(n, 0))
	for i := 0; i < n; i++ {
		clicks := int64(1000 - i*45)
		impressions := clicks * 12
		queries = append(queries, platform.SearchQuery{
			Query:       fmt.Sprintf("search query %d", i+1),
			Clicks:      clicks,
			Impressions: impressions,
			CTR:         math.Round(float64(clicks)/float64(impressions)*100*100) / 100,
			Position:    math.Round((1.5+float64(i)*0.9)*10) / 10,
		})
	}
	return queries
}
