// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/adpulse/internal/metrics"
	"github.com/tomtom215/adpulse/internal/models"
)

const orderCreated = `{"scope":"store/order/created","store_id":"1025646","data":{"type":"order","id":250},"hash":"dd70c0976e06b67aaf671e73f49dcb79230ebf9d","created_at":1561479335,"producer":"stores/abc123"}`

func sign(body, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestBigCommerceWebhookBusinessSecret(t *testing.T) {
	ts := setupTestServer(t, withWebhookSecret("global-secret"))
	b := ts.seed(t, &models.Business{
		Name:        "Acme",
		BigCommerce: models.BigCommerceConfig{StoreHash: "abc123", WebhookSecret: "store-secret", Enabled: true},
	})
	before := testutil.ToFloat64(metrics.WebhookEvents.WithLabelValues(models.PlatformBigCommerce, webhookAccepted))

	w := ts.do(t, http.MethodPost, "/api/webhooks/bigcommerce", orderCreated, SignatureHeader, sign(orderCreated, "store-secret"))
	if w.Code != http.StatusAccepted {
		t.Fatalf("HTTP status = %d, want 202 (body %s)", w.Code, w.Body.String())
	}

	var resp map[string]any
	decodeData(t, w, &resp)
	if resp["received"] != true || resp["event"] != "store/order/created" {
		t.Errorf("response = %v", resp)
	}

	published := ts.publisher.published()
	if len(published) != 1 {
		t.Fatalf("published %d events, want 1", len(published))
	}
	evt := published[0]
	if evt.Platform != models.PlatformBigCommerce || evt.TenantID != b.ID || evt.Event != "store/order/created" {
		t.Errorf("event = %+v", evt)
	}
	if evt.ReceivedAt.IsZero() {
		t.Error("event should carry the receive time")
	}

	after := testutil.ToFloat64(metrics.WebhookEvents.WithLabelValues(models.PlatformBigCommerce, webhookAccepted))
	if after != before+1 {
		t.Errorf("accepted webhooks = %v, want %v", after, before+1)
	}
}

func TestBigCommerceWebhookGlobalSecretFallback(t *testing.T) {
	ts := setupTestServer(t, withWebhookSecret("global-secret"))

	// Unknown store: verified with the global secret, published without tenant.
	w := ts.do(t, http.MethodPost, "/api/webhooks/bigcommerce", orderCreated,
		SignatureHeader, strings.ToUpper(sign(orderCreated, "global-secret")))
	if w.Code != http.StatusAccepted {
		t.Fatalf("HTTP status = %d, want 202 (body %s)", w.Code, w.Body.String())
	}
	published := ts.publisher.published()
	if len(published) != 1 || published[0].TenantID != "" {
		t.Errorf("published = %+v, want one event without tenant", published)
	}
}

func TestBigCommerceWebhookRejected(t *testing.T) {
	tests := []struct {
		name      string
		secret    string
		body      string
		signature string
		status    int
		code      string
	}{
		{"missing signature", "global-secret", orderCreated, "", http.StatusUnauthorized, codeUnauthorized},
		{"wrong secret", "global-secret", orderCreated, sign(orderCreated, "other"), http.StatusUnauthorized, codeUnauthorized},
		{"tampered body", "global-secret", strings.Replace(orderCreated, "250", "251", 1), sign(orderCreated, "global-secret"), http.StatusUnauthorized, codeUnauthorized},
		{"webhooks disabled", "", orderCreated, sign(orderCreated, ""), http.StatusNotFound, codeNotConfigured},
		{"malformed json", "global-secret", `{"scope":`, "", http.StatusBadRequest, codeInvalidBody},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupTestServer(t, withWebhookSecret(tt.secret))
			headers := []string{}
			if tt.signature != "" {
				headers = append(headers, SignatureHeader, tt.signature)
			}

			w := ts.do(t, http.MethodPost, "/api/webhooks/bigcommerce", tt.body, headers...)
			expectError(t, w, tt.status, tt.code)
			if n := len(ts.publisher.published()); n != 0 {
				t.Errorf("published %d events, want 0", n)
			}
		})
	}
}

func TestBigCommerceWebhookScopes(t *testing.T) {
	tests := []struct {
		scope     string
		status    int
		published int
	}{
		{"store/order/created", http.StatusAccepted, 1},
		{"store/order/statusUpdated", http.StatusAccepted, 1},
		{"store/product/updated", http.StatusAccepted, 1},
		{"store/customer/created", http.StatusOK, 0},
		{"store/app/uninstalled", http.StatusOK, 0},
	}
	for _, tt := range tests {
		t.Run(tt.scope, func(t *testing.T) {
			ts := setupTestServer(t, withWebhookSecret("global-secret"))
			body := strings.Replace(orderCreated, "store/order/created", tt.scope, 1)

			w := ts.do(t, http.MethodPost, "/api/webhooks/bigcommerce", body, SignatureHeader, sign(body, "global-secret"))
			if w.Code != tt.status {
				t.Fatalf("HTTP status = %d, want %d (body %s)", w.Code, tt.status, w.Body.String())
			}

			var resp map[string]any
			decodeData(t, w, &resp)
			if resp["received"] != true || resp["event"] != tt.scope {
				t.Errorf("response = %v", resp)
			}
			if n := len(ts.publisher.published()); n != tt.published {
				t.Errorf("published %d events, want %d", n, tt.published)
			}
		})
	}
}

func TestBigCommerceWebhookIgnoredScopeStillVerified(t *testing.T) {
	ts := setupTestServer(t, withWebhookSecret("global-secret"))
	body := strings.Replace(orderCreated, "store/order/created", "store/customer/created", 1)

	w := ts.do(t, http.MethodPost, "/api/webhooks/bigcommerce", body, SignatureHeader, sign(body, "other"))
	expectError(t, w, http.StatusUnauthorized, codeUnauthorized)
}

func TestBigCommerceWebhookPublishFailure(t *testing.T) {
	ts := setupTestServer(t, withWebhookSecret("global-secret"))
	ts.publisher.err = errUpstream

	w := ts.do(t, http.MethodPost, "/api/webhooks/bigcommerce", orderCreated, SignatureHeader, sign(orderCreated, "global-secret"))
	expectError(t, w, http.StatusInternalServerError, codeInternal)
}

func TestBigCommerceWebhookStoreHash(t *testing.T) {
	tests := []struct {
		producer string
		want     string
	}{
		{"stores/abc123", "abc123"},
		{"abc123", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := (BigCommerceWebhook{Producer: tt.producer}).StoreHash(); got != tt.want {
			t.Errorf("StoreHash(%q) = %q, want %q", tt.producer, got, tt.want)
		}
	}
}
