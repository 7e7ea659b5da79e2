// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package platform

import "context"

// Credentials are the upstream secrets resolved for one tenant. A platform
// block left at its zero value means the platform is not configured.
type Credentials struct {
	TenantID    string
	BigCommerce BigCommerceCredentials
	Google      GoogleCredentials
	Analytics   AnalyticsCredentials
	Meta        MetaCredentials
}

// BigCommerceCredentials authenticate against one BigCommerce store.
type BigCommerceCredentials struct {
	StoreHash     string
	AccessToken   string
	WebhookSecret string
}

// Configured reports whether the store can be queried.
func (c BigCommerceCredentials) Configured() bool {
	return c.StoreHash != "" && c.AccessToken != ""
}

// GoogleCredentials hold the OAuth grant shared by Google Ads and Search
// Console, plus the per-product identifiers.
type GoogleCredentials struct {
	ClientID           string
	ClientSecret       string
	AccessToken        string
	RefreshToken       string
	AdsCustomerID      string
	AdsLoginCustomerID string
	SiteURL            string
}

// AdsConfigured reports whether Google Ads can be queried.
func (c GoogleCredentials) AdsConfigured() bool {
	return c.AccessToken != "" && c.AdsCustomerID != ""
}

// SearchConfigured reports whether Search Console can be queried.
func (c GoogleCredentials) SearchConfigured() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.AccessToken != "" && c.RefreshToken != ""
}

// AnalyticsCredentials select a GA4 property read with a Google grant.
type AnalyticsCredentials struct {
	PropertyID string
	Grant      GoogleCredentials
}

// Configured reports whether the property can be queried.
func (c AnalyticsCredentials) Configured() bool {
	return c.PropertyID != "" && c.Grant.AccessToken != ""
}

// MetaCredentials authenticate against one Meta ad account.
type MetaCredentials struct {
	AppID       string
	AppSecret   string
	AccessToken string
	AdAccountID string
}

// Configured reports whether the ad account can be queried.
func (c MetaCredentials) Configured() bool {
	return c.AccessToken != "" && c.AdAccountID != ""
}

// CredentialSource resolves the credentials of a tenant. An empty tenant ID
// selects the process-level default credentials.
type CredentialSource interface {
	Credentials(ctx context.Context, tenantID string) (*Credentials, error)
}

// StaticCredentials is a CredentialSource returning the same credentials
// for every tenant.
type StaticCredentials Credentials

// Credentials implements CredentialSource.
func (s StaticCredentials) Credentials(_ context.Context, tenantID string) (*Credentials, error) {
	creds := Credentials(s)
	creds.TenantID = tenantID
	return &creds, nil
}
