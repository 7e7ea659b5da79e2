// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/adpulse/internal/platform"
)

// Service health values.
const (
	StatusHealthy = "healthy"
	StatusError   = "error"
)

// CacheStatus summarizes the view cache.
type CacheStatus struct {
	Size    int    `json:"size"`
	HitRate string `json:"hitRate"`
}

// SystemStatus reports upstream connectivity and cache state.
type SystemStatus struct {
	Timestamp         string            `json:"timestamp"`
	BusinessID        string            `json:"businessId"`
	Services          map[string]string `json:"services"`
	Cache             CacheStatus       `json:"cache"`
	RefreshInProgress bool              `json:"refreshInProgress"`
}

type prober interface {
	TestConnection(ctx context.Context, tenantID string) error
}

// GetSystemStatus probes every source concurrently. It is never cached.
// A missing or unconfigured source reports StatusError.
func (a *Aggregator) GetSystemStatus(ctx context.Context, tenantID string) *SystemStatus {
	probes := map[string]prober{
		platform.NameBigCommerce:   a.sources.Store,
		platform.NameGoogleAds:     a.sources.GoogleAds,
		platform.NameMetaAds:       a.sources.MetaAds,
		platform.NameSearchConsole: a.sources.Search,
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		services = make(map[string]string, len(probes))
	)
	for name, p := range probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status := StatusHealthy
			if p == nil || p.TestConnection(ctx, tenantID) != nil {
				status = StatusError
			}
			mu.Lock()
			services[name] = status
			mu.Unlock()
		}()
	}
	wg.Wait()

	return &SystemStatus{
		Timestamp:  a.clock.Now().UTC().Format(time.RFC3339),
		BusinessID: tenantKey(tenantID),
		Services:   services,
		Cache: CacheStatus{
			Size:    a.cache.Size(),
			HitRate: a.cache.HitRate(),
		},
		RefreshInProgress: a.refreshing.Load(),
	}
}
