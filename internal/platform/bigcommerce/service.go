// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package bigcommerce

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/adpulse/internal/platform"
)

// Service resolves a tenant's BigCommerce store and serves its analytics.
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
	s.registry = platform.NewRegistry(platform.NameBigCommerce, source, opts.ClientTTL, s.build)
	return s
}

func (s *Service) build(creds *platform.Credentials) (*tenantClient, error) {
	bc := creds.BigCommerce
	if !bc.Configured() {
		return nil, platform.ErrNotConfigured
	}
	return &tenantClient{
		api:     NewClient(s.opts.BaseURL, bc.StoreHash, bc.AccessToken, s.opts.HTTPClient, s.opts.NewLimiter()),
		breaker: platform.NewBreaker(breakerName(creds.TenantID)),
	}, nil
}

func breakerName(tenantID string) string {
	if tenantID == "" {
		tenantID = "default"
	}
	return "bigcommerce-api/" + tenantID
}

// GetAnalytics returns order analytics for the tenant's store.
func (s *Service) GetAnalytics(ctx context.Context, period platform.Period, tenantID string) (*platform.StoreAnalytics, error) {
	return platform.Fetch(ctx, platform.NameBigCommerce, s.opts.MockFallback,
		func() (*platform.StoreAnalytics, error) {
			tc, err := s.registry.Client(ctx, tenantID)
			if err != nil {
				return nil, err
			}
			return platform.Guard(tc.breaker, func() (*platform.StoreAnalytics, error) {
				return tc.api.GetAnalytics(ctx, period, s.opts.Clock.Now())
			})
		},
		MockAnalytics,
	)
}

// StoreInfo returns the tenant's store metadata. Mock fallback does not
// apply.
func (s *Service) StoreInfo(ctx context.Context, tenantID string) (*platform.StoreInfo, error) {
	tc, err := s.registry.Client(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return platform.Guard(tc.breaker, func() (*platform.StoreInfo, error) {
		return tc.api.GetStoreInfo(ctx)
	})
}

// Orders returns up to limit of the tenant's most recent orders in the
// period.
func (s *Service) Orders(ctx context.Context, period platform.Period, limit int, tenantID string) ([]platform.StoreOrder, error) {
	now := s.opts.Clock.Now()
	return platform.Fetch(ctx, platform.NameBigCommerce, s.opts.MockFallback,
		func() ([]platform.StoreOrder, error) {
			tc, err := s.registry.Client(ctx, tenantID)
			if err != nil {
				return nil, err
			}
			return platform.Guard(tc.breaker, func() ([]platform.StoreOrder, error) {
				start, end := period.Range(now)
				return tc.api.ListOrders(ctx, start, end, limit)
			})
		},
		func() []platform.StoreOrder { return MockOrders(now, limit) },
	)
}

// Products returns up to limit of the tenant's catalog products.
func (s *Service) Products(ctx context.Context, limit int, tenantID string) ([]platform.Product, error) {
	return platform.Fetch(ctx, platform.NameBigCommerce, s.opts.MockFallback,
		func() ([]platform.Product, error) {
			tc, err := s.registry.Client(ctx, tenantID)
			if err != nil {
				return nil, err
			}
			return platform.Guard(tc.breaker, func() ([]platform.Product, error) {
				return tc.api.GetProducts(ctx, limit)
			})
		},
		func() []platform.Product { return MockProducts(limit) },
	)
}

// TestConnection probes the store API. Mock fallback does not apply.
func (s *Service) TestConnection(ctx context.Context, tenantID string) error {
	tc, err := s.registry.Client(ctx, tenantID)
	if err != nil {
		return err
	}
	_, err = platform.Guard(tc.breaker, func() (*platform.StoreInfo, error) {
		return tc.api.GetStoreInfo(ctx)
	})
	return err
}

// Forget drops the cached client so updated credentials take effect.
func (s *Service) Forget(tenantID string) {
	s.registry.Forget(tenantID)
}

// Close releases background resources.
func (s *Service) Close() {
	s.registry.Close()
}

// MockAnalytics returns the placeholder analytics shown when the store is
// unavailable.
func MockAnalytics() *platform.StoreAnalytics {
	return &platform.StoreAnalytics{
		Revenue:           28450,
		Orders:            1124,
		AverageOrderValue: 25.31,
		ConversionRate:    conversionRate,
		DailyRevenue:      platform.DefaultDailyRevenue(),
	}
}

// MockOrders returns up to 50 placeholder orders spaced three hours apart
// before now.
func MockOrders(now time.Time, limit int) []platform.StoreOrder {
	n := min(limit, 50)
	orders := make([]platform.StoreOrder, 0, max(n, 0))
	for i := 0; i < n; i++ {
		orders = append(orders, platform.StoreOrder{
			ID:        int64(1000 + i),
			Status:    "Completed",
			Total:     50 + float64((i*37)%150) + 0.99,
			CreatedAt: now.Add(-time.Duration(i*3) * time.Hour),
		})
	}
	return orders
}

// MockProducts returns up to 20 placeholder products.
func MockProducts(limit int) []platform.Product {
	n := min(limit, 20)
	products := make([]platform.Product, 0, max(n, 0))
	for i := 0; i < n; i++ {
		products = append(products, platform.Product{
			ID:             int64(100 + i),
			Name:           fmt.Sprintf("Product %d", i+1),
			Price:          10 + float64((i*13)%90) + 0.99,
			InventoryLevel: int64((i * 17) % 100),
		})
	}
	return products
}
