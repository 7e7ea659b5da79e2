// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

/*
Package business persists tenant records in BadgerDB.

Each business is stored as JSON under "business:<id>". A secondary index
"business_store:<hash>" maps a BigCommerce store hash to its business so
inbound webhooks can be routed to the right tenant.

The Store also implements platform.CredentialSource: platform services ask it
for the credentials of a tenant, and the empty tenant ID resolves to the
process-level defaults loaded from configuration.
*/
package business
