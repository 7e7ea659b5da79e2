// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package aggregator

import (
	"context"

	"golang.org/x/text/message"

	"github.com/tomtom215/adpulse/internal/platform"
)

// PlatformCard is the display record of one platform. Only the fields of
// that platform's kind are set. Orders and Conversions are raw counts, so a
// card of their kind reports 0 rather than omitting them.
type PlatformCard struct {
	Name  string `json:"name"`
	Color string `json:"color"`

	// Store
	Revenue        string `json:"revenue,omitempty"`
	Orders         *int64 `json:"orders,omitempty"`
	ConversionRate string `json:"conversionRate,omitempty"`

	// Search
	Impressions string `json:"impressions,omitempty"`
	Clicks      string `json:"clicks,omitempty"`
	CTR         string `json:"ctr,omitempty"`

	// Ads
	Spend       string `json:"spend,omitempty"`
	Conversions *int64 `json:"conversions,omitempty"`
	ROAS        string `json:"roas,omitempty"`
}

// GetPlatformData returns one card per platform that answered, in the fixed
// order BigCommerce, Google Search Console, Google Ads, Meta Ads.
func (a *Aggregator) GetPlatformData(ctx context.Context, period platform.Period, tenantID string) ([]PlatformCard, error) {
	return cachedView(ctx, a, viewPlatforms, platformsKey(period, tenantID), func(ctx context.Context) ([]PlatformCard, error) {
		return reducePlatforms(a.fetchAll(ctx, period, tenantID)), nil
	})
}

func reducePlatforms(s *snapshot) []PlatformCard {
	p := newPrinter()
	cards := make([]PlatformCard, 0, 4)

	if store := s.storeRecord(); store != nil {
		cards = append(cards, PlatformCard{
			Name:           "BigCommerce",
			Color:          "from-blue-500 to-blue-700",
			Revenue:        formatCurrency(p, store.Revenue),
			Orders:         count(store.Orders),
			ConversionRate: formatPlain(store.ConversionRate) + "%",
		})
	}
	if s.search.OK() && s.search.Value != nil {
		search := s.search.Value
		cards = append(cards, PlatformCard{
			Name:        "Google Search Console",
			Color:       "from-green-500 to-green-700",
			Impressions: formatLargeNumber(search.Impressions),
			Clicks:      formatLargeNumber(search.Clicks),
			CTR:         formatPlain(search.CTR) + "%",
		})
	}
	if s.googleAds.OK() && s.googleAds.Value != nil {
		cards = append(cards, adsCard(p, "Google Ads", "from-yellow-500 to-orange-600", s.googleAds.Value))
	}
	if s.metaAds.OK() && s.metaAds.Value != nil {
		cards = append(cards, adsCard(p, "Meta Ads", "from-pink-500 to-purple-600", s.metaAds.Value))
	}
	return cards
}

func adsCard(p *message.Printer, name, color string, perf *platform.AdsPerformance) PlatformCard {
	return PlatformCard{
		Name:        name,
		Color:       color,
		Spend:       formatCurrency(p, perf.Spend),
		Conversions: count(perf.Conversions),
		ROAS:        formatPlain(perf.ROAS) + "x",
	}
}

func count(n int64) *int64 {
	return &n
}
