// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

// Package config loads Adpulse configuration from defaults, an optional YAML
// file and environment variables, in that order of precedence (lowest first).
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
	Cache      CacheConfig      `koanf:"cache"`
	Aggregator AggregatorConfig `koanf:"aggregator"`
	Database   DatabaseConfig   `koanf:"database"`
	Platforms  PlatformsConfig  `koanf:"platforms"`
	Webhooks   WebhooksConfig   `koanf:"webhooks"`
	Events     EventsConfig     `koanf:"events"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// SecurityConfig holds CORS and inbound rate-limit settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// CacheConfig holds settings for the dashboard view cache.
type CacheConfig struct {
	// CleanupInterval is how often expired entries are swept.
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// AggregatorConfig holds settings for the aggregation orchestrator.
type AggregatorConfig struct {
	// ViewTTL is how long a computed dashboard view stays cached.
	ViewTTL time.Duration `koanf:"view_ttl"`

	// RefreshInterval is the period of the scheduled cache warm-up.
	RefreshInterval time.Duration `koanf:"refresh_interval"`

	// RefreshOnStart triggers one warm-up as soon as the scheduler starts.
	RefreshOnStart bool `koanf:"refresh_on_start"`
}

// DatabaseConfig holds settings for the business configuration store.
type DatabaseConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// PlatformsConfig holds shared upstream client settings and the
// process-level default credentials used when no tenant is given.
type PlatformsConfig struct {
	Timeout        time.Duration `koanf:"timeout"`
	MockFallback   bool          `koanf:"mock_fallback"`
	RateLimitRPS   float64       `koanf:"rate_limit_rps"`
	RateLimitBurst int           `koanf:"rate_limit_burst"`
	ClientTTL      time.Duration `koanf:"client_ttl"`

	BigCommerce     BigCommerceConfig     `koanf:"bigcommerce"`
	Google          GoogleConfig          `koanf:"google"`
	GoogleAds       GoogleAdsConfig       `koanf:"google_ads"`
	GoogleAnalytics GoogleAnalyticsConfig `koanf:"google_analytics"`
	Meta            MetaConfig            `koanf:"meta"`
	SearchConsole   SearchConsoleConfig   `koanf:"search_console"`
}

// BigCommerceConfig holds default BigCommerce credentials.
type BigCommerceConfig struct {
	StoreHash   string `koanf:"store_hash"`
	AccessToken string `koanf:"access_token"`
	BaseURL     string `koanf:"base_url"`
}

// GoogleConfig holds default Google OAuth credentials shared by Ads,
// Analytics and Search Console.
type GoogleConfig struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	AccessToken  string `koanf:"access_token"`
	RefreshToken string `koanf:"refresh_token"`
}

// GoogleAdsConfig holds Google Ads settings.
type GoogleAdsConfig struct {
	DeveloperToken  string `koanf:"developer_token"`
	CustomerID      string `koanf:"customer_id"`
	LoginCustomerID string `koanf:"login_customer_id"`
	BaseURL         string `koanf:"base_url"`
}

// GoogleAnalyticsConfig holds the default GA4 property.
type GoogleAnalyticsConfig struct {
	PropertyID string `koanf:"property_id"`
	Endpoint   string `koanf:"endpoint"`
}

// MetaConfig holds default Meta Marketing API credentials.
type MetaConfig struct {
	AppID       string `koanf:"app_id"`
	AppSecret   string `koanf:"app_secret"`
	AccessToken string `koanf:"access_token"`
	AdAccountID string `koanf:"ad_account_id"`
	BaseURL     string `koanf:"base_url"`
}

// SearchConsoleConfig holds Search Console settings.
type SearchConsoleConfig struct {
	SiteURL  string `koanf:"site_url"`
	Endpoint string `koanf:"endpoint"`
}

// WebhooksConfig holds inbound webhook settings.
type WebhooksConfig struct {
	// BigCommerceSecret signs BigCommerce webhook payloads. Tenants may
	// override it with their own secret.
	BigCommerceSecret string `koanf:"bigcommerce_secret"`
}

// EventsConfig holds in-process event bus settings.
type EventsConfig struct {
	BufferSize           int64         `koanf:"buffer_size"`
	RetryCount           int           `koanf:"retry_count"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load reads configuration from all layers. See LoadWithKoanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
