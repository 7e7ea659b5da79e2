// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// BuildFunc constructs a platform client from resolved credentials. It
// returns ErrNotConfigured when the credentials lack what the platform needs.
type BuildFunc[C any] func(creds *Credentials) (C, error)

// Registry caches one platform client per tenant so that rate limiters and
// OAuth token sources survive across requests. Entries expire after a fixed
// TTL so that credential changes are eventually picked up even without an
// explicit Forget.
type Registry[C any] struct {
	name    string
	source  CredentialSource
	build   BuildFunc[C]
	clients *ttlcache.Cache[string, C]
}

// NewRegistry creates a registry and starts its expiry loop. Call Close to
// stop it.
func NewRegistry[C any](name string, source CredentialSource, ttl time.Duration, build BuildFunc[C]) *Registry[C] {
	clients := ttlcache.New(
		ttlcache.WithTTL[string, C](ttl),
		ttlcache.WithDisableTouchOnHit[string, C](),
	)
	go clients.Start()

	return &Registry[C]{
		name:    name,
		source:  source,
		build:   build,
		clients: clients,
	}
}

// Client returns the cached client for tenantID, building it on first use.
// Build failures, including ErrNotConfigured, are not cached.
func (r *Registry[C]) Client(ctx context.Context, tenantID string) (C, error) {
	if item := r.clients.Get(tenantID); item != nil {
		return item.Value(), nil
	}

	var zero C
	creds, err := r.source.Credentials(ctx, tenantID)
	if err != nil {
		return zero, fmt.Errorf("resolve %s credentials: %w", r.name, err)
	}

	client, err := r.build(creds)
	if err != nil {
		return zero, err
	}

	r.clients.Set(tenantID, client, ttlcache.DefaultTTL)
	return client, nil
}

// Forget drops the cached client for tenantID.
func (r *Registry[C]) Forget(tenantID string) {
	r.clients.Delete(tenantID)
}

// Len returns the number of cached clients.
func (r *Registry[C]) Len() int {
	return r.clients.Len()
}

// Close stops the expiry loop.
func (r *Registry[C]) Close() {
	r.clients.Stop()
}
