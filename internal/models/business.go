// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package models

import (
	"strings"
	"time"
)

// Platform configuration names accepted by the business config endpoints.
const (
	PlatformBigCommerce     = "bigcommerce"
	PlatformGoogle          = "google"
	PlatformGoogleAnalytics = "googleAnalytics"
	PlatformMeta            = "meta"
)

// Business is one tenant of the dashboard.
type Business struct {
	ID              string                `json:"id"`
	Name            string                `json:"name" validate:"required,max=100"`
	Description     string                `json:"description" validate:"max=500"`
	BigCommerce     BigCommerceConfig     `json:"bigcommerce"`
	Google          GoogleConfig          `json:"google"`
	GoogleAnalytics GoogleAnalyticsConfig `json:"googleAnalytics"`
	Meta            MetaConfig            `json:"meta"`
	Settings        BusinessSettings      `json:"settings"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// BigCommerceConfig holds a store's API account.
type BigCommerceConfig struct {
	StoreHash     string `json:"storeHash" validate:"omitempty,alphanum,max=64"`
	AccessToken   string `json:"accessToken"`
	WebhookSecret string `json:"webhookSecret,omitempty"`
	Enabled       bool   `json:"enabled"`
}

// GoogleConfig holds the OAuth grant shared by Google Ads and Search Console.
type GoogleConfig struct {
	ClientID           string `json:"clientId"`
	ClientSecret       string `json:"clientSecret"`
	AccessToken        string `json:"accessToken"`
	RefreshToken       string `json:"refreshToken"`
	AdsCustomerID      string `json:"adsCustomerId,omitempty" validate:"omitempty,max=16"`
	AdsLoginCustomerID string `json:"adsLoginCustomerId,omitempty" validate:"omitempty,max=16"`
	SiteURL            string `json:"siteUrl,omitempty" validate:"omitempty,max=2048"`
	Enabled            bool   `json:"enabled"`
}

// GoogleAnalyticsConfig holds a GA4 property. It reuses the Google grant.
type GoogleAnalyticsConfig struct {
	PropertyID string `json:"propertyId"`
	Enabled    bool   `json:"enabled"`
}

// MetaConfig holds a Meta app and ad account.
type MetaConfig struct {
	AppID       string `json:"appId"`
	AppSecret   string `json:"appSecret"`
	AccessToken string `json:"accessToken"`
	AdAccountID string `json:"adAccountId,omitempty"`
	Enabled     bool   `json:"enabled"`
}

// BusinessSettings are display preferences.
type BusinessSettings struct {
	Timezone   string `json:"timezone" validate:"omitempty,timezone"`
	Currency   string `json:"currency" validate:"omitempty,iso4217"`
	DateFormat string `json:"dateFormat" validate:"omitempty,max=32"`
}

// DefaultSettings are applied to empty settings fields on create.
func DefaultSettings() BusinessSettings {
	return BusinessSettings{Timezone: "UTC", Currency: "USD", DateFormat: "MM/DD/YYYY"}
}

// ApplyDefaults fills empty settings.
func (s *BusinessSettings) ApplyDefaults() {
	d := DefaultSettings()
	if s.Timezone == "" {
		s.Timezone = d.Timezone
	}
	if s.Currency == "" {
		s.Currency = d.Currency
	}
	if s.DateFormat == "" {
		s.DateFormat = d.DateFormat
	}
}

// Redacted returns a copy with every secret masked.
func (b Business) Redacted() Business {
	b.BigCommerce = b.BigCommerce.Redacted()
	b.Google = b.Google.Redacted()
	b.Meta = b.Meta.Redacted()
	return b
}

// Redacted returns a copy with secrets masked.
func (c BigCommerceConfig) Redacted() BigCommerceConfig {
	c.AccessToken = MaskSecret(c.AccessToken)
	c.WebhookSecret = MaskSecret(c.WebhookSecret)
	return c
}

// Redacted returns a copy with secrets masked.
func (c GoogleConfig) Redacted() GoogleConfig {
	c.ClientSecret = MaskSecret(c.ClientSecret)
	c.AccessToken = MaskSecret(c.AccessToken)
	c.RefreshToken = MaskSecret(c.RefreshToken)
	return c
}

// Redacted returns a copy with secrets masked.
func (c MetaConfig) Redacted() MetaConfig {
	c.AppSecret = MaskSecret(c.AppSecret)
	c.AccessToken = MaskSecret(c.AccessToken)
	return c
}

// MaskSecret keeps the last four characters of secrets longer than eight
// characters and masks everything else. Empty stays empty.
func MaskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "****"
	default:
		return strings.Repeat("*", 4) + s[len(s)-4:]
	}
}

// KeepSecretsFrom restores secrets that a client echoed back in their
// masked form, so a GET-edit-PUT round trip does not overwrite them.
func (b *Business) KeepSecretsFrom(old *Business) {
	keep := func(next *string, prev string) {
		if prev != "" && *next == MaskSecret(prev) {
			*next = prev
		}
	}
	keep(&b.BigCommerce.AccessToken, old.BigCommerce.AccessToken)
	keep(&b.BigCommerce.WebhookSecret, old.BigCommerce.WebhookSecret)
	keep(&b.Google.ClientSecret, old.Google.ClientSecret)
	keep(&b.Google.AccessToken, old.Google.AccessToken)
	keep(&b.Google.RefreshToken, old.Google.RefreshToken)
	keep(&b.Meta.AppSecret, old.Meta.AppSecret)
	keep(&b.Meta.AccessToken, old.Meta.AccessToken)
}
