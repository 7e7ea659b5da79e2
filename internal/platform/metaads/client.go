// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

// Package metaads reads ad account insights from the Meta Marketing API.
package metaads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/adpulse/internal/platform"
)

const (
	// DefaultBaseURL is the Graph API root.
	DefaultBaseURL = "https://graph.facebook.com"

	apiVersion = "v18.0"

	insightFields = "clicks,impressions,spend,actions,action_values"

	breakdownFields = "clicks,impressions,spend,ctr,cpm"
)

// Breakdowns are the insight breakdown dimensions served by Insights.
var Breakdowns = []string{
	"age", "gender", "country", "region",
	"publisher_platform", "device_platform", "impression_device",
}

// accountStatuses names the numeric account_status values.
var accountStatuses = map[int]string{
	1:   "ACTIVE",
	2:   "DISABLED",
	3:   "UNSETTLED",
	7:   "PENDING_RISK_REVIEW",
	8:   "PENDING_SETTLEMENT",
	9:   "IN_GRACE_PERIOD",
	100: "PENDING_CLOSURE",
	101: "CLOSED",
}

// ErrUnknownBreakdown is returned for a breakdown outside Breakdowns.
var ErrUnknownBreakdown = errors.New("unknown insights breakdown")

// conversionActions are the action types counted as conversions.
var conversionActions = map[string]bool{
	"purchase":              true,
	"lead":                  true,
	"complete_registration": true,
}

// Action is one entry of the actions or action_values arrays. Graph API
// encodes every number as a string.
type Action struct {
	ActionType string `json:"action_type"`
	Value      string `json:"value"`
}

// Insight is one row of an insights response.
type Insight struct {
	Clicks       string   `json:"clicks"`
	Impressions  string   `json:"impressions"`
	Spend        string   `json:"spend"`
	Actions      []Action `json:"actions"`
	ActionValues []Action `json:"action_values"`
}

// campaign is one row of a campaigns response with its nested insights.
type campaign struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Insights struct {
		Data []Insight `json:"data"`
	} `json:"insights"`
}

// breakdownRow is one row of a breakdown insights response.
type breakdownRow struct {
	Clicks      string `json:"clicks"`
	Impressions string `json:"impressions"`
	Spend       string `json:"spend"`
	CTR         string `json:"ctr"`
	CPM         string `json:"cpm"`
}

// Client queries one Meta ad account.
type Client struct {
	baseURL     string
	accessToken string
	accountID   string
	httpClient  *http.Client
	limiter     *rate.Limiter
}

// NewClient creates a client. The account ID may be given with or without
// the act_ prefix.
func NewClient(baseURL, accessToken, adAccountID string, httpClient *http.Client, limiter *rate.Limiter) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/") + "/" + apiVersion,
		accessToken: accessToken,
		accountID:   "act_" + strings.TrimPrefix(adAccountID, "act_"),
		httpClient:  httpClient,
		limiter:     limiter,
	}
}

// GetInsights returns account performance for the period ending at now.
func (c *Client) GetInsights(ctx context.Context, period platform.Period, now time.Time) (*platform.AdsPerformance, error) {
	timeRange, err := encodeTimeRange(period, now)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("fields", insightFields)
	query.Set("time_range", timeRange)

	resp, err := c.doRequest(ctx, "/"+c.accountID+"/insights", query)
	if err != nil {
		return nil, fmt.Errorf("meta insights request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp, "insights"); err != nil {
		return nil, err
	}

	var result struct {
		Data []Insight `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode meta insights: %w", err)
	}

	if len(result.Data) == 0 {
		return &platform.AdsPerformance{}, nil
	}
	return Reduce(result.Data[0]), nil
}

// encodeTimeRange returns the period as a Graph API time_range object.
func encodeTimeRange(period platform.Period, now time.Time) (string, error) {
	since, until := period.DateRange(now)
	timeRange, err := json.Marshal(struct {
		Since string `json:"since"`
		Until string `json:"until"`
	}{since, until})
	if err != nil {
		return "", fmt.Errorf("failed to encode time range: %w", err)
	}
	return string(timeRange), nil
}

// GetCampaigns returns the account's campaigns with their performance over
// the period ending at now. Campaigns without delivery report zero metrics.
func (c *Client) GetCampaigns(ctx context.Context, period platform.Period, now time.Time) ([]platform.Campaign, error) {
	timeRange, err := encodeTimeRange(period, now)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("fields", "id,name,status,insights.time_range("+timeRange+"){clicks,impressions,spend,actions}")
	query.Set("limit", "100")

	resp, err := c.doRequest(ctx, "/"+c.accountID+"/campaigns", query)
	if err != nil {
		return nil, fmt.Errorf("meta campaigns request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp, "campaigns"); err != nil {
		return nil, err
	}

	var result struct {
		Data []campaign `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode meta campaigns: %w", err)
	}

	campaigns := make([]platform.Campaign, 0, len(result.Data))
	for _, row := range result.Data {
		out := platform.Campaign{ID: row.ID, Name: row.Name, Status: row.Status}
		if len(row.Insights.Data) > 0 {
			perf := Reduce(row.Insights.Data[0])
			out.Clicks = perf.Clicks
			out.Impressions = perf.Impressions
			out.Spend = perf.Spend
			out.Conversions = perf.Conversions
		}
		campaigns = append(campaigns, out)
	}
	return campaigns, nil
}

// ValidBreakdown reports whether b is a supported breakdown. The empty
// string selects account totals.
func ValidBreakdown(b string) bool {
	return b == "" || slices.Contains(Breakdowns, b)
}

// GetBreakdown returns account insights over the period split by the
// breakdown dimension, or a single totals row when breakdown is empty.
func (c *Client) GetBreakdown(ctx context.Context, period platform.Period, breakdown string, now time.Time) ([]platform.InsightRow, error) {
	if !ValidBreakdown(breakdown) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBreakdown, breakdown)
	}
	timeRange, err := encodeTimeRange(period, now)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("fields", breakdownFields)
	query.Set("time_range", timeRange)
	if breakdown != "" {
		query.Set("breakdowns", breakdown)
	}

	resp, err := c.doRequest(ctx, "/"+c.accountID+"/insights", query)
	if err != nil {
		return nil, fmt.Errorf("meta insights request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp, "insights"); err != nil {
		return nil, err
	}

	var result struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode meta insights: %w", err)
	}

	rows := make([]platform.InsightRow, 0, len(result.Data))
	for _, raw := range result.Data {
		var row breakdownRow
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("failed to decode meta insights row: %w", err)
		}
		out := platform.InsightRow{
			Clicks:      parseInt(row.Clicks),
			Impressions: parseInt(row.Impressions),
			Spend:       parseFloat(row.Spend),
			CTR:         parseFloat(row.CTR),
			CPM:         parseFloat(row.CPM),
		}
		if breakdown != "" {
			var segment map[string]any
			if err := json.Unmarshal(raw, &segment); err == nil {
				out.Segment = fmt.Sprint(segment[breakdown])
			}
		}
		rows = append(rows, out)
	}
	return rows, nil
}

// Reduce converts an insights row to account performance. Conversions count
// purchase, lead and registration actions; conversion value counts
// purchases only.
func Reduce(row Insight) *platform.AdsPerformance {
	perf := &platform.AdsPerformance{
		Clicks:      parseInt(row.Clicks),
		Impressions: parseInt(row.Impressions),
		Spend:       parseFloat(row.Spend),
	}

	var conversions float64
	for _, a := range row.Actions {
		if conversionActions[a.ActionType] {
			conversions += parseFloat(a.Value)
		}
	}
	perf.Conversions = int64(math.Round(conversions))

	for _, a := range row.ActionValues {
		if a.ActionType == "purchase" {
			perf.ConversionValue += parseFloat(a.Value)
		}
	}

	if perf.Spend > 0 {
		perf.ROAS = math.Round(perf.ConversionValue/perf.Spend*100) / 100
	}
	return perf
}

// GetAdAccounts lists the ad accounts visible to the token.
func (c *Client) GetAdAccounts(ctx context.Context) ([]platform.AdAccount, error) {
	query := url.Values{}
	query.Set("fields", "id,name,account_status,currency")

	resp, err := c.doRequest(ctx, "/me/adaccounts", query)
	if err != nil {
		return nil, fmt.Errorf("meta ad accounts request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp, "adaccounts"); err != nil {
		return nil, err
	}

	var result struct {
		Data []struct {
			ID            string `json:"id"`
			Name          string `json:"name"`
			AccountStatus int    `json:"account_status"`
			Currency      string `json:"currency"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode meta ad accounts: %w", err)
	}

	accounts := make([]platform.AdAccount, 0, len(result.Data))
	for _, a := range result.Data {
		status, ok := accountStatuses[a.AccountStatus]
		if !ok {
			status = strconv.Itoa(a.AccountStatus)
		}
		accounts = append(accounts, platform.AdAccount{ID: a.ID, Name: a.Name, Status: status, Currency: a.Currency})
	}
	return accounts, nil
}

func parseInt(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func (c *Client) doRequest(ctx context.Context, endpoint string, query url.Values) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query.Set("access_token", c.accessToken)
	fullURL := c.baseURL + endpoint + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

func checkStatus(resp *http.Response, what string) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("meta %s returned status %d (failed to read body)", what, resp.StatusCode)
	}
	return fmt.Errorf("meta %s returned status %d: %s", what, resp.StatusCode, string(body))
}
