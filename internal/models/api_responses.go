// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package models

import (
	"time"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
// It provides consistent structure for both successful and error responses, with metadata
// for observability and caching information.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"totalRevenue": {"value": "$28,450", "change": "+12.5%", "trend": "up"}},
//	  "metadata": {
//	    "timestamp": "2026-03-08T12:00:00Z",
//	    "query_time_ms": 45
//	  }
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "message": "Invalid query parameters",
//	    "details": {"period": "must be one of 24h 7d 30d 90d"}
//	  },
//	  "metadata": {"timestamp": "2026-03-08T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string    `json:"status"`
	Data     any       `json:"data"`
	Metadata Metadata  `json:"metadata"`
	Error    *APIError `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
//
// Fields:
//   - Timestamp: Server time when response was generated (RFC3339 format)
//   - QueryTimeMS: Time spent computing the response in milliseconds
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid input parameters
//   - NOT_FOUND: Resource doesn't exist
//   - CONFLICT: Request conflicts with current state
//   - UNAUTHORIZED: Missing or invalid webhook signature
//   - RATE_LIMIT_EXCEEDED: Too many requests
//   - INTERNAL_ERROR: Unexpected server failure
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ConnectionTestResult is returned by the platform connection test endpoint.
//
// Status values: "connected", "error", "not_configured".
type ConnectionTestResult struct {
	Platform string `json:"platform"`
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
}

// RefreshResponse acknowledges a refresh request. The refresh itself runs in
// the background.
type RefreshResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status              string          `json:"status"`
	Version             string          `json:"version"`
	Uptime              float64         `json:"uptime_seconds"`
	Businesses          int             `json:"businesses"`
	ConfiguredPlatforms map[string]bool `json:"configured_platforms"`
	RefreshInProgress   bool            `json:"refresh_in_progress"`
}
