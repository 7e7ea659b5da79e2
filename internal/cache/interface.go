// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

// Package cache provides the expiring key-value store behind the dashboard
// views.
package cache

import (
	"iter"
	"time"
)

// Cacher is the contract the aggregation layer depends on. Cache is the only
// implementation; the interface exists so orchestration tests can observe
// cache traffic.
type Cacher interface {
	// Set stores value under key for ttl, overwriting any existing entry.
	Set(key string, value any, ttl time.Duration)

	// Get returns a live value, evicting it first if it has expired.
	Get(key string) (any, bool)

	// Delete removes a key. No-op if absent.
	Delete(key string)

	// Clear removes all entries without resetting counters.
	Clear()

	// Keys enumerates stored keys, including expired ones not yet evicted.
	Keys() iter.Seq[string]

	// ClearByPattern deletes keys matching a '*' wildcard pattern.
	ClearByPattern(pattern string) int

	// Size counts stored entries, including expired ones not yet evicted.
	Size() int

	// HitRate returns the hit percentage with two decimals, or "0".
	HitRate() string

	// Cleanup sweeps expired entries.
	Cleanup() int
}

var _ Cacher = (*Cache)(nil)
