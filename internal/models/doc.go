// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

/*
Package models defines the data structures shared by the API and storage
layers.

Key Components:

  - APIResponse: Standardized API response envelope
  - Business: Tenant record holding per-platform credentials and settings
  - BusinessUpdate validation helpers for create and update payloads

Business records are persisted as JSON in the business store. Secrets are
never returned by the API in clear text; see Business.Redacted.
*/
package models
