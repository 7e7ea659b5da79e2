// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

// Package googleads reads account performance from the Google Ads REST API.
package googleads

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/adpulse/internal/platform"
)

const (
	// DefaultBaseURL is the Google Ads API root.
	DefaultBaseURL = "https://googleads.googleapis.com"

	apiVersion = "v18"
)

// Client queries one Google Ads customer account. The HTTP client is expected
// to attach OAuth bearer tokens (see platform.GoogleHTTPClient).
type Client struct {
	baseURL         string
	developerToken  string
	customerID      string
	loginCustomerID string
	httpClient      *http.Client
	limiter         *rate.Limiter
}

// NewClient creates a client. Customer IDs may contain dashes.
func NewClient(baseURL, developerToken, customerID, loginCustomerID string, httpClient *http.Client, limiter *rate.Limiter) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Client{
		baseURL:         strings.TrimSuffix(baseURL, "/") + "/" + apiVersion,
		developerToken:  developerToken,
		customerID:      normalizeCustomerID(customerID),
		loginCustomerID: normalizeCustomerID(loginCustomerID),
		httpClient:      httpClient,
		limiter:         limiter,
	}
}

func normalizeCustomerID(id string) string {
	return strings.ReplaceAll(strings.TrimSpace(id), "-", "")
}

// searchRequest is the body of googleAds:search.
type searchRequest struct {
	Query string `json:"query"`
}

// searchResponse is the subset of a googleAds:search reply we read. int64
// metrics are encoded as JSON strings by the API.
type searchResponse struct {
	Results []struct {
		Metrics struct {
			Clicks           int64   `json:"clicks,string"`
			Impressions      int64   `json:"impressions,string"`
			CostMicros       int64   `json:"costMicros,string"`
			Conversions      float64 `json:"conversions"`
			ConversionsValue float64 `json:"conversionsValue"`
		} `json:"metrics"`
	} `json:"results"`
}

// campaignResponse is the subset of a campaign search reply we read.
type campaignResponse struct {
	Results []struct {
		Campaign struct {
			ID     string `json:"id"`
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"campaign"`
		Metrics struct {
			Clicks      int64   `json:"clicks,string"`
			Impressions int64   `json:"impressions,string"`
			CostMicros  int64   `json:"costMicros,string"`
			Conversions float64 `json:"conversions"`
		} `json:"metrics"`
	} `json:"results"`
}

// dateClause returns the segments.date condition for the period.
func dateClause(period platform.Period, now time.Time) string {
	switch period {
	case platform.Period24h:
		return "DURING YESTERDAY"
	case platform.Period7d:
		return "DURING LAST_7_DAYS"
	case platform.Period30d:
		return "DURING LAST_30_DAYS"
	default:
		since, until := period.DateRange(now)
		return fmt.Sprintf("BETWEEN '%s' AND '%s'", since, until)
	}
}

// BuildQuery returns the GAQL query for account totals over the period.
func BuildQuery(period platform.Period, now time.Time) string {
	return "SELECT metrics.clicks, metrics.impressions, metrics.cost_micros, " +
		"metrics.conversions, metrics.conversions_value " +
		"FROM customer WHERE segments.date " + dateClause(period, now)
}

// BuildCampaignQuery returns the GAQL query for per-campaign metrics over
// the period.
func BuildCampaignQuery(period platform.Period, now time.Time) string {
	return "SELECT campaign.id, campaign.name, campaign.status, metrics.clicks, " +
		"metrics.impressions, metrics.cost_micros, metrics.conversions " +
		"FROM campaign WHERE segments.date " + dateClause(period, now)
}

// GetPerformance returns account totals for the period ending at now.
func (c *Client) GetPerformance(ctx context.Context, period platform.Period, now time.Time) (*platform.AdsPerformance, error) {
	var result searchResponse
	if err := c.search(ctx, BuildQuery(period, now), &result); err != nil {
		return nil, err
	}

	perf := &platform.AdsPerformance{}
	var costMicros int64
	var conversions float64
	for _, row := range result.Results {
		perf.Clicks += row.Metrics.Clicks
		perf.Impressions += row.Metrics.Impressions
		costMicros += row.Metrics.CostMicros
		conversions += row.Metrics.Conversions
		perf.ConversionValue += row.Metrics.ConversionsValue
	}
	perf.Spend = float64(costMicros) / 1e6
	perf.Conversions = int64(math.Round(conversions))
	perf.ROAS = roas(perf.ConversionValue, perf.Spend)
	return perf, nil
}

// GetCampaigns returns per-campaign metrics for the period ending at now.
func (c *Client) GetCampaigns(ctx context.Context, period platform.Period, now time.Time) ([]platform.Campaign, error) {
	var result campaignResponse
	if err := c.search(ctx, BuildCampaignQuery(period, now), &result); err != nil {
		return nil, err
	}

	campaigns := make([]platform.Campaign, 0, len(result.Results))
	for _, row := range result.Results {
		campaigns = append(campaigns, platform.Campaign{
			ID:          row.Campaign.ID,
			Name:        row.Campaign.Name,
			Status:      row.Campaign.Status,
			Clicks:      row.Metrics.Clicks,
			Impressions: row.Metrics.Impressions,
			Spend:       float64(row.Metrics.CostMicros) / 1e6,
			Conversions: int64(math.Round(row.Metrics.Conversions)),
		})
	}
	return campaigns, nil
}

// search runs a GAQL query against the customer and decodes the reply.
func (c *Client) search(ctx context.Context, query string, dst any) error {
	body, err := json.Marshal(searchRequest{Query: query})
	if err != nil {
		return fmt.Errorf("failed to encode google ads query: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/customers/"+c.customerID+"/googleAds:search", body)
	if err != nil {
		return fmt.Errorf("google ads search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp, "search"); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode google ads search: %w", err)
	}
	return nil
}

// ListAccessibleCustomers returns the resource names the token can access.
func (c *Client) ListAccessibleCustomers(ctx context.Context) ([]string, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/customers:listAccessibleCustomers", nil)
	if err != nil {
		return nil, fmt.Errorf("google ads list customers request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp, "listAccessibleCustomers"); err != nil {
		return nil, err
	}

	var result struct {
		ResourceNames []string `json:"resourceNames"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode google ads customers: %w", err)
	}
	return result.ResourceNames, nil
}

// roas is conversion value per unit spend, rounded to 2 decimals. Zero spend
// yields 0.
func roas(value, spend float64) float64 {
	if spend == 0 {
		return 0
	}
	return math.Round(value/spend*100) / 100
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, body []byte) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("developer-token", c.developerToken)
	if c.loginCustomerID != "" {
		req.Header.Set("login-customer-id", c.loginCustomerID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func checkStatus(resp *http.Response, what string) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("google ads %s returned status %d (failed to read body)", what, resp.StatusCode)
	}
	return fmt.Errorf("google ads %s returned status %d: %s", what, resp.StatusCode, string(body))
}
