// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package api

import "errors"

// Error codes used in the response envelope.
const (
	codeValidation    = "VALIDATION_ERROR"
	codeNotFound      = "NOT_FOUND"
	codeConflict      = "CONFLICT"
	codeUnauthorized  = "UNAUTHORIZED"
	codeRateLimit     = "RATE_LIMIT_EXCEEDED"
	codeInternal      = "INTERNAL_ERROR"
	codeInvalidBody   = "INVALID_REQUEST"
	codeNotConfigured = "WEBHOOKS_DISABLED"

	codePlatformNotConfigured = "PLATFORM_NOT_CONFIGURED"
	codeUpstream              = "UPSTREAM_ERROR"
)

// ErrNoBusinesses is returned by legacy dashboard routes when the store is
// empty.
var ErrNoBusinesses = errors.New("no businesses configured")
