// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package metaads

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/tomtom215/adpulse/internal/platform"
)

// Service resolves a tenant's Meta ad account and serves its insights.
type Service struct {
	opts     platform.Options
	registry *platform.Registry[*tenantClient]
}

type tenantClient struct {
	api     *Client
	breaker *platform.Breaker
}

// NewService creates a service resolving credentials through source.
func NewService(source platform.CredentialSource, opts platform.Options) *Service {
	opts = opts.WithDefaults()
	s := &Service{opts: opts}
	s.registry = platform.NewRegistry(platform.NameMetaAds, source, opts.ClientTTL, s.build)
	return s
}

func (s *Service) build(creds *platform.Credentials) (*tenantClient, error) {
	m := creds.Meta
	if !m.Configured() {
		return nil, platform.ErrNotConfigured
	}
	tenant := creds.TenantID
	if tenant == "" {
		tenant = "default"
	}
	return &tenantClient{
		api:     NewClient(s.opts.BaseURL, m.AccessToken, m.AdAccountID, s.opts.HTTPClient, s.opts.NewLimiter()),
		breaker: platform.NewBreaker("meta-api/" + tenant),
	}, nil
}

// GetPerformance returns ad account performance for the tenant.
func (s *Service) GetPerformance(ctx context.Context, period platform.Period, tenantID string) (*platform.AdsPerformance, error) {
	return platform.Fetch(ctx, platform.NameMetaAds, s.opts.MockFallback,
		func() (*platform.AdsPerformance, error) {
			tc, err := s.registry.Client(ctx, tenantID)
			if err != nil {
				return nil, err
			}
			return platform.Guard(tc.breaker, func() (*platform.AdsPerformance, error) {
				return tc.api.GetInsights(ctx, period, s.opts.Clock.Now())
			})
		},
		MockInsights,
	)
}

// Campaigns returns the tenant's campaigns with their period performance.
func (s *Service) Campaigns(ctx context.Context, period platform.Period, tenantID string) ([]platform.Campaign, error) {
	return platform.Fetch(ctx, platform.NameMetaAds, s.opts.MockFallback,
		func() ([]platform.Campaign, error) {
			tc, err := s.registry.Client(ctx, tenantID)
			if err != nil {
				return nil, err
			}
			return platform.Guard(tc.breaker, func() ([]platform.Campaign, error) {
				return tc.api.GetCampaigns(ctx, period, s.opts.Clock.Now())
			})
		},
		MockCampaigns,
	)
}

// Accounts lists the ad accounts visible to the tenant's token.
func (s *Service) Accounts(ctx context.Context, tenantID string) ([]platform.AdAccount, error) {
	return platform.Fetch(ctx, platform.NameMetaAds, s.opts.MockFallback,
		func() ([]platform.AdAccount, error) {
			tc, err := s.registry.Client(ctx, tenantID)
			if err != nil {
				return nil, err
			}
			return platform.Guard(tc.breaker, func() ([]platform.AdAccount, error) {
				return tc.api.GetAdAccounts(ctx)
			})
		},
		MockAccounts,
	)
}

// Insights returns the tenant's period insights split by breakdown. An
// unsupported breakdown fails with ErrUnknownBreakdown before any upstream
// call and is never replaced by mock data.
func (s *Service) Insights(ctx context.Context, period platform.Period, breakdown, tenantID string) ([]platform.InsightRow, error) {
	if !ValidBreakdown(breakdown) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBreakdown, breakdown)
	}
	return platform.Fetch(ctx, platform.NameMetaAds, s.opts.MockFallback,
		func() ([]platform.InsightRow, error) {
			tc, err := s.registry.Client(ctx, tenantID)
			if err != nil {
				return nil, err
			}
			return platform.Guard(tc.breaker, func() ([]platform.InsightRow, error) {
				return tc.api.GetBreakdown(ctx, period, breakdown, s.opts.Clock.Now())
			})
		},
		func() []platform.InsightRow { return MockBreakdown(breakdown) },
	)
}

// TestConnection lists the token's ad accounts. Mock fallback does not apply.
func (s *Service) TestConnection(ctx context.Context, tenantID string) error {
	tc, err := s.registry.Client(ctx, tenantID)
	if err != nil {
		return err
	}
	_, err = platform.Guard(tc.breaker, func() ([]platform.AdAccount, error) {
		return tc.api.GetAdAccounts(ctx)
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

// MockInsights returns placeholder ad account performance.
func MockInsights() *platform.AdsPerformance {
	return &platform.AdsPerformance{
		Clicks:          8750,
		Impressions:     156300,
		Spend:           6720,
		Conversions:     312,
		ConversionValue: 19750,
		ROAS:            2.94,
	}
}

// MockAccounts returns a placeholder ad account.
func MockAccounts() []platform.AdAccount {
	return []platform.AdAccount{{ID: "act_123456789", Name: "Main Ad Account", Status: "ACTIVE", Currency: "USD"}}
}

// MockCampaigns returns three placeholder campaigns.
func MockCampaigns() []platform.Campaign {
	campaigns := make([]platform.Campaign, 0, 3)
	for i := 0; i < 3; i++ {
		campaigns = append(campaigns, platform.Campaign{
			ID:          strconv.Itoa(2000 + i),
			Name:        fmt.Sprintf("Meta Campaign %d", i+1),
			Status:      "ACTIVE",
			Clicks:      int64(480 - i*120),
			Impressions: int64(4800 - i*1100),
			Spend:       float64(950 - i*210),
			Conversions: int64(18 - i*5),
		})
	}
	return campaigns
}

// MockBreakdown returns five placeholder insight rows, or one totals row
// without a breakdown.
func MockBreakdown(breakdown string) []platform.InsightRow {
	if breakdown == "" {
		return []platform.InsightRow{{Clicks: 8750, Impressions: 156300, Spend: 6720, CTR: 5.6, CPM: 42.99}}
	}
	rows := make([]platform.InsightRow, 0, 5)
	for i := 0; i < 5; i++ {
		rows = append(rows, platform.InsightRow{
			Segment:     fmt.Sprintf("%s %d", breakdown, i+1),
			Clicks:      int64(190 - i*30),
			Impressions: int64(1900 - i*250),
			Spend:       float64(480 - i*70),
			CTR:         math.Round(float64(190-i*30)/float64(1900-i*250)*100*100) / 100,
			CPM:         math.Round(float64(480-i*70)/float64(1900-i*250)*1000*100) / 100,
		})
	}
	return rows
}
