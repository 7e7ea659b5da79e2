// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package googleads

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/tomtom215/adpulse/internal/platform"
)

// Service resolves a tenant's Google Ads account and serves its performance.
type Service struct {
	opts           platform.Options
	developerToken string
	registry       *platform.Registry[*tenantClient]
}

type tenantClient struct {
	api     *Client
	breaker *platform.Breaker
}

// NewService creates a service. developerToken is issued per application,
// not per tenant, so it comes from process configuration.
func NewService(source platform.CredentialSource, developerToken string, opts platform.Options) *Service {
	opts = opts.WithDefaults()
	s := &Service{opts: opts, developerToken: developerToken}
	s.registry = platform.NewRegistry(platform.NameGoogleAds, source, opts.ClientTTL, s.build)
	return s
}

func (s *Service) build(creds *platform.Credentials) (*tenantClient, error) {
	g := creds.Google
	if !g.AdsConfigured() {
		return nil, platform.ErrNotConfigured
	}

	httpClient := platform.GoogleHTTPClient(platform.GoogleTokenSource(g, s.opts.HTTPClient), s.opts.HTTPClient)
	tenant := creds.TenantID
	if tenant == "" {
		tenant = "default"
	}
	return &tenantClient{
		api:     NewClient(s.opts.BaseURL, s.developerToken, g.AdsCustomerID, g.AdsLoginCustomerID, httpClient, s.opts.NewLimiter()),
		breaker: platform.NewBreaker("google-ads-api/" + tenant),
	}, nil
}

// GetPerformance returns account totals for the tenant.
func (s *Service) GetPerformance(ctx context.Context, period platform.Period, tenantID string) (*platform.AdsPerformance, error) {
	return platform.Fetch(ctx, platform.NameGoogleAds, s.opts.MockFallback,
		func() (*platform.AdsPerformance, error) {
			tc, err := s.registry.Client(ctx, tenantID)
			if err != nil {
				return nil, err
			}
			return platform.Guard(tc.breaker, func() (*platform.AdsPerformance, error) {
				return tc.api.GetPerformance(ctx, period, s.opts.Clock.Now())
			})
		},
		MockPerformance,
	)
}

// Campaigns returns per-campaign metrics for the tenant.
func (s *Service) Campaigns(ctx context.Context, period platform.Period, tenantID string) ([]platform.Campaign, error) {
	return platform.Fetch(ctx, platform.NameGoogleAds, s.opts.MockFallback,
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

// Accounts lists the customer accounts the tenant's grant can access.
func (s *Service) Accounts(ctx context.Context, tenantID string) ([]platform.AdAccount, error) {
	return platform.Fetch(ctx, platform.NameGoogleAds, s.opts.MockFallback,
		func() ([]platform.AdAccount, error) {
			tc, err := s.registry.Client(ctx, tenantID)
			if err != nil {
				return nil, err
			}
			names, err := platform.Guard(tc.breaker, func() ([]string, error) {
				return tc.api.ListAccessibleCustomers(ctx)
			})
			if err != nil {
				return nil, err
			}
			accounts := make([]platform.AdAccount, 0, len(names))
			for _, name := range names {
				accounts = append(accounts, platform.AdAccount{ID: strings.TrimPrefix(name, "customers/")})
			}
			return accounts, nil
		},
		MockAccounts,
	)
}

// TestConnection lists accessible customers. Mock fallback does not apply.
func (s *Service) TestConnection(ctx context.Context, tenantID string) error {
	tc, err := s.registry.Client(ctx, tenantID)
	if err != nil {
		return err
	}
	_, err = platform.Guard(tc.breaker, func() ([]string, error) {
		return tc.api.ListAccessibleCustomers(ctx)
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

// MockPerformance returns placeholder account totals.
func MockPerformance() *platform.AdsPerformance {
	return &platform.AdsPerformance{
		Clicks:          15420,
		Impressions:     387500,
		Spend:           8940,
		Conversions:     456,
		ConversionValue: 28450,
		ROAS:            3.18,
	}
}

// MockAccounts returns placeholder customer accounts.
func MockAccounts() []platform.AdAccount {
	return []platform.AdAccount{{ID: "1234567890"}, {ID: "0987654321"}}
}

// MockCampaigns returns five placeholder campaigns.
func MockCampaigns() []platform.Campaign {
	campaigns := make([]platform.Campaign, 0, 5)
	for i := 0; i < 5; i++ {
		campaigns = append(campaigns, platform.Campaign{
			ID:          strconv.Itoa(1000 + i),
			Name:        fmt.Sprintf("Campaign %d", i+1),
			Status:      "ENABLED",
			Clicks:      int64(900 - i*150),
			Impressions: int64(9000 - i*1200),
			Spend:       float64(4200 - i*600),
			Conversions: int64(45 - i*8),
		})
	}
	return campaigns
}
