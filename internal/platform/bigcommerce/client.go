// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

// Package bigcommerce fetches order analytics from the BigCommerce REST API.
package bigcommerce

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/adpulse/internal/platform"
)

// DefaultBaseURL is the BigCommerce API root.
const DefaultBaseURL = "https://api.bigcommerce.com"

const (
	// pageSize is the largest page the orders endpoint serves.
	pageSize = 250

	// maxPages caps one analytics fetch at 1000 orders.
	maxPages = 4

	// conversionRate is reported as a fixed estimate; the orders API
	// carries no visit data.
	conversionRate = 4.2
)

// Order is the subset of a BigCommerce order used for analytics.
type Order struct {
	ID          int64  `json:"id"`
	Status      string `json:"status"`
	TotalIncTax string `json:"total_inc_tax"`
	DateCreated string `json:"date_created"`
}

// Total parses the tax-inclusive order total. Unparseable totals count as 0.
func (o Order) Total() float64 {
	v, err := strconv.ParseFloat(o.TotalIncTax, 64)
	if err != nil {
		return 0
	}
	return v
}

// Created parses the RFC 1123 creation timestamp.
func (o Order) Created() (time.Time, error) {
	return time.Parse(time.RFC1123Z, o.DateCreated)
}

// Summary converts the order to its listing form. Unparseable creation
// dates are left zero.
func (o Order) Summary() platform.StoreOrder {
	created, _ := o.Created()
	return platform.StoreOrder{ID: o.ID, Status: o.Status, Total: o.Total(), CreatedAt: created}
}

// Product is the subset of a v3 catalog product we read.
type Product struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	SKU            string  `json:"sku"`
	Price          float64 `json:"price"`
	InventoryLevel int64   `json:"inventory_level"`
}

// Client talks to a single BigCommerce store.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	limiter     *rate.Limiter
}

// NewClient creates a client for the store identified by storeHash.
//
// Parameters:
//   - baseURL: API root, DefaultBaseURL in production
//   - storeHash: store identifier from the API account
//   - accessToken: API account access token (X-Auth-Token)
func NewClient(baseURL, storeHash, accessToken string, httpClient *http.Client, limiter *rate.Limiter) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/") + "/stores/" + url.PathEscape(storeHash),
		accessToken: accessToken,
		httpClient:  httpClient,
		limiter:     limiter,
	}
}

// GetStoreInfo retrieves store metadata. Also used as a connectivity probe.
func (c *Client) GetStoreInfo(ctx context.Context) (*platform.StoreInfo, error) {
	resp, err := c.doRequest(ctx, "/v2/store", nil)
	if err != nil {
		return nil, fmt.Errorf("bigcommerce store request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp, "store"); err != nil {
		return nil, err
	}

	var info platform.StoreInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode bigcommerce store: %w", err)
	}
	return &info, nil
}

// GetOrders retrieves orders created in [start, end], newest first, up to
// maxPages pages.
func (c *Client) GetOrders(ctx context.Context, start, end time.Time) ([]Order, error) {
	var orders []Order
	for page := 1; page <= maxPages; page++ {
		query := url.Values{}
		query.Set("min_date_created", start.UTC().Format(time.RFC3339))
		query.Set("max_date_created", end.UTC().Format(time.RFC3339))
		query.Set("sort", "date_created:desc")
		query.Set("limit", strconv.Itoa(pageSize))
		query.Set("page", strconv.Itoa(page))

		batch, err := c.getOrdersPage(ctx, query)
		if err != nil {
			return nil, err
		}
		orders = append(orders, batch...)
		if len(batch) < pageSize {
			break
		}
	}
	return orders, nil
}

// ListOrders returns up to limit orders created in [start, end], newest
// first. limit is capped at one page.
func (c *Client) ListOrders(ctx context.Context, start, end time.Time, limit int) ([]platform.StoreOrder, error) {
	if limit <= 0 || limit > pageSize {
		limit = pageSize
	}
	query := url.Values{}
	query.Set("min_date_created", start.UTC().Format(time.RFC3339))
	query.Set("max_date_created", end.UTC().Format(time.RFC3339))
	query.Set("sort", "date_created:desc")
	query.Set("limit", strconv.Itoa(limit))

	orders, err := c.getOrdersPage(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]platform.StoreOrder, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.Summary())
	}
	return out, nil
}

// GetProducts returns the first limit catalog products.
func (c *Client) GetProducts(ctx context.Context, limit int) ([]platform.Product, error) {
	if limit <= 0 || limit > pageSize {
		limit = pageSize
	}
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("include_fields", "name,sku,price,inventory_level")

	resp, err := c.doRequest(ctx, "/v3/catalog/products", query)
	if err != nil {
		return nil, fmt.Errorf("bigcommerce products request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp, "products"); err != nil {
		return nil, err
	}

	var result struct {
		Data []Product `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode bigcommerce products: %w", err)
	}

	products := make([]platform.Product, 0, len(result.Data))
	for _, p := range result.Data {
		products = append(products, platform.Product{
			ID:             p.ID,
			Name:           p.Name,
			SKU:            p.SKU,
			Price:          p.Price,
			InventoryLevel: p.InventoryLevel,
		})
	}
	return products, nil
}

func (c *Client) getOrdersPage(ctx context.Context, query url.Values) ([]Order, error) {
	resp, err := c.doRequest(ctx, "/v2/orders", query)
	if err != nil {
		return nil, fmt.Errorf("bigcommerce orders request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// The v2 API answers an empty result set with 204.
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if err := checkStatus(resp, "orders"); err != nil {
		return nil, err
	}

	var orders []Order
	if err := json.NewDecoder(resp.Body).Decode(&orders); err != nil {
		return nil, fmt.Errorf("failed to decode bigcommerce orders: %w", err)
	}
	return orders, nil
}

// GetAnalytics summarizes orders for the period ending at now.
func (c *Client) GetAnalytics(ctx context.Context, period platform.Period, now time.Time) (*platform.StoreAnalytics, error) {
	start, end := period.Range(now)
	orders, err := c.GetOrders(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return Summarize(orders, period, now), nil
}

// Summarize reduces orders to store analytics. Daily revenue has one point
// per calendar day of the period (in now's location), oldest first, named by
// short weekday and rounded to whole currency units.
func Summarize(orders []Order, period platform.Period, now time.Time) *platform.StoreAnalytics {
	days := period.Days()
	daily := make([]float64, days)
	today := truncateDay(now)

	var revenue float64
	for _, order := range orders {
		total := order.Total()
		revenue += total

		created, err := order.Created()
		if err != nil {
			continue
		}
		offset := calendarDaysBetween(created.In(now.Location()), now)
		if offset >= 0 && offset < days {
			daily[days-1-offset] += total
		}
	}

	points := make([]platform.DataPoint, days)
	for i := range days {
		date := today.AddDate(0, 0, i-(days-1))
		points[i] = platform.DataPoint{
			Name:  date.Format("Mon"),
			Value: math.Round(daily[i]),
		}
	}

	analytics := &platform.StoreAnalytics{
		Revenue:        revenue,
		Orders:         int64(len(orders)),
		ConversionRate: conversionRate,
		DailyRevenue:   points,
	}
	if analytics.Orders > 0 {
		analytics.AverageOrderValue = revenue / float64(analytics.Orders)
	}
	return analytics
}

// calendarDaysBetween counts date changes from a to b by wall-clock date,
// so days shortened or lengthened by DST still count as one.
func calendarDaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from) / (24 * time.Hour))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// doRequest performs an authenticated GET against the store API.
func (c *Client) doRequest(ctx context.Context, endpoint string, query url.Values) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	fullURL := c.baseURL + endpoint
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Auth-Token", c.accessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}

func checkStatus(resp *http.Response, what string) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("bigcommerce %s returned status %d (failed to read body)", what, resp.StatusCode)
	}
	return fmt.Errorf("bigcommerce %s returned status %d: %s", what, resp.StatusCode, string(body))
}
