// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package platform

import (
	"errors"
	"time"
)

// Platform names as used in cache keys, webhook events and status reports.
const (
	NameBigCommerce     = "bigcommerce"
	NameGoogleAds       = "googleAds"
	NameGoogleAnalytics = "googleAnalytics"
	NameMetaAds         = "metaAds"
	NameSearchConsole   = "searchConsole"
)

var (
	// ErrNotConfigured is returned when a tenant has no usable credentials
	// for a platform.
	ErrNotConfigured = errors.New("platform not configured")

	// ErrUnknownPeriod is returned for an unsupported period selector.
	ErrUnknownPeriod = errors.New("unknown period")
)

// DataPoint is one labelled value in a chart series.
type DataPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color,omitempty"`
}

// StoreAnalytics summarizes e-commerce orders over a period.
type StoreAnalytics struct {
	Revenue           float64     `json:"revenue"`
	Orders            int64       `json:"orders"`
	AverageOrderValue float64     `json:"averageOrderValue"`
	ConversionRate    float64     `json:"conversionRate"`
	DailyRevenue      []DataPoint `json:"dailyRevenue,omitempty"`
}

// AdsPerformance summarizes a paid-ads account over a period.
type AdsPerformance struct {
	Clicks          int64   `json:"clicks"`
	Impressions     int64   `json:"impressions"`
	Spend           float64 `json:"spend"`
	Conversions     int64   `json:"conversions"`
	ConversionValue float64 `json:"conversionValue"`
	ROAS            float64 `json:"roas"`
}

// SearchPerformance summarizes organic search over a period.
type SearchPerformance struct {
	Clicks      int64   `json:"clicks"`
	Impressions int64   `json:"impressions"`
	CTR         float64 `json:"ctr"`
	Position    float64 `json:"position"`
	Users       int64   `json:"users"`
}

// TrafficOverview is the GA4 property summary over a period. BounceRate is
// a percentage; AvgSessionDuration is in seconds.
type TrafficOverview struct {
	Users              int64   `json:"totalUsers"`
	Sessions           int64   `json:"sessions"`
	PageViews          int64   `json:"pageViews"`
	BounceRate         float64 `json:"bounceRate"`
	AvgSessionDuration float64 `json:"avgSessionDuration"`
	SessionsPerUser    float64 `json:"sessionsPerUser"`
}

// TrafficSource is the session count of one default channel group.
type TrafficSource struct {
	Source   string `json:"source"`
	Sessions int64  `json:"sessions"`
}

// PageViewPoint is the page view count of one day (YYYY-MM-DD).
type PageViewPoint struct {
	Date      string `json:"date"`
	PageViews int64  `json:"pageViews"`
}

// Site is a Search Console property the account can read.
type Site struct {
	URL             string `json:"siteUrl"`
	PermissionLevel string `json:"permissionLevel,omitempty"`
}

// SearchQuery is the organic performance of one search query.
type SearchQuery struct {
	Query       string  `json:"query"`
	Clicks      int64   `json:"clicks"`
	Impressions int64   `json:"impressions"`
	CTR         float64 `json:"ctr"`
	Position    float64 `json:"position"`
}

// AdAccount is an advertising account visible to the tenant's grant.
type AdAccount struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Status   string `json:"status,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// Campaign is the performance of one ad campaign over a period.
type Campaign struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Status      string  `json:"status"`
	Clicks      int64   `json:"clicks"`
	Impressions int64   `json:"impressions"`
	Spend       float64 `json:"spend"`
	Conversions int64   `json:"conversions"`
}

// InsightRow is one row of an ads insights breakdown. Segment is the value
// of the breakdown dimension, empty for account totals.
type InsightRow struct {
	Segment     string  `json:"segment,omitempty"`
	Clicks      int64   `json:"clicks"`
	Impressions int64   `json:"impressions"`
	Spend       float64 `json:"spend"`
	CTR         float64 `json:"ctr"`
	CPM         float64 `json:"cpm"`
}

// StoreInfo identifies an e-commerce store.
type StoreInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// StoreOrder is one order as shown in order listings.
type StoreOrder struct {
	ID        int64     `json:"id"`
	Status    string    `json:"status"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}

// Product is one catalog product.
type Product struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	SKU            string  `json:"sku,omitempty"`
	Price          float64 `json:"price"`
	InventoryLevel int64   `json:"inventoryLevel"`
}

// DefaultDailyRevenue is the placeholder revenue series shown when the
// store reports no daily breakdown.
func DefaultDailyRevenue() []DataPoint {
	return []DataPoint{
		{Name: "Mon", Value: 6800},
		{Name: "Tue", Value: 7200},
		{Name: "Wed", Value: 6900},
		{Name: "Thu", Value: 8100},
		{Name: "Fri", Value: 7800},
		{Name: "Sat", Value: 9200},
		{Name: "Sun", Value: 8900},
	}
}
