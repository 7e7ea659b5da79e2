// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/adpulse/config.yaml",
	"/etc/adpulse/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        3001,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Cache: CacheConfig{
			CleanupInterval: time.Minute,
		},
		Aggregator: AggregatorConfig{
			ViewTTL:         900 * time.Second,
			RefreshInterval: 15 * time.Minute,
			RefreshOnStart:  false,
		},
		Database: DatabaseConfig{
			Path:     "/data/adpulse",
			InMemory: false,
		},
		Platforms: PlatformsConfig{
			Timeout:        30 * time.Second,
			MockFallback:   true, // dashboards stay populated until credentials are configured
			RateLimitRPS:   5,
			RateLimitBurst: 10,
			ClientTTL:      10 * time.Minute,
		},
		Events: EventsConfig{
			BufferSize:           64,
			RetryCount:           3,
			RetryInitialInterval: 100 * time.Millisecond,
			CloseTimeout:         30 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any mapped setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated env values to slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Names follow the variables the dashboard has always read, so existing
// .env files keep working.
var envMappings = map[string]string{
	// Server
	"port":         "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// Security
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Cache and aggregation
	"cache_cleanup_interval": "cache.cleanup_interval",
	"view_cache_ttl":         "aggregator.view_ttl",
	"refresh_interval":       "aggregator.refresh_interval",
	"refresh_on_start":       "aggregator.refresh_on_start",

	// Business store
	"database_path":      "database.path",
	"database_in_memory": "database.in_memory",

	// Platforms
	"platform_timeout":          "platforms.timeout",
	"platform_mock_fallback":    "platforms.mock_fallback",
	"platform_rate_limit_rps":   "platforms.rate_limit_rps",
	"platform_rate_limit_burst": "platforms.rate_limit_burst",
	"platform_client_ttl":       "platforms.client_ttl",

	"bigcommerce_store_hash":   "platforms.bigcommerce.store_hash",
	"bigcommerce_access_token": "platforms.bigcommerce.access_token",
	"bigcommerce_base_url":     "platforms.bigcommerce.base_url",

	"google_client_id":     "platforms.google.client_id",
	"google_client_secret": "platforms.google.client_secret",
	"google_access_token":  "platforms.google.access_token",
	"google_refresh_token": "platforms.google.refresh_token",

	"google_ads_developer_token":     "platforms.google_ads.developer_token",
	"google_ads_customer_id":         "platforms.google_ads.customer_id",
	"google_ads_manager_customer_id": "platforms.google_ads.login_customer_id",
	"google_ads_base_url":            "platforms.google_ads.base_url",

	"google_analytics_property_id": "platforms.google_analytics.property_id",
	"google_analytics_endpoint":    "platforms.google_analytics.endpoint",

	"meta_app_id":        "platforms.meta.app_id",
	"meta_app_secret":    "platforms.meta.app_secret",
	"meta_access_token":  "platforms.meta.access_token",
	"meta_ad_account_id": "platforms.meta.ad_account_id",
	"meta_base_url":      "platforms.meta.base_url",

	"search_console_site_url": "platforms.search_console.site_url",
	"search_console_endpoint": "platforms.search_console.endpoint",

	// Webhooks
	"bigcommerce_webhook_secret": "webhooks.bigcommerce_secret",

	// Events
	"events_buffer_size":    "events.buffer_size",
	"events_retry_count":    "events.retry_count",
	"events_retry_interval": "events.retry_initial_interval",
	"events_close_timeout":  "events.close_timeout",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped.
//
// Examples:
//   - PORT -> server.port
//   - BIGCOMMERCE_STORE_HASH -> platforms.bigcommerce.store_hash
//   - REFRESH_INTERVAL -> aggregator.refresh_interval
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
