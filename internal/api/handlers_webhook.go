// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/adpulse/internal/business"
	"github.com/tomtom215/adpulse/internal/events"
	"github.com/tomtom215/adpulse/internal/logging"
	"github.com/tomtom215/adpulse/internal/metrics"
	"github.com/tomtom215/adpulse/internal/models"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw webhook body.
const SignatureHeader = "X-Webhook-Signature"

// Webhook results recorded in metrics.WebhookEvents.
const (
	webhookAccepted     = "accepted"
	webhookUnauthorized = "unauthorized"
	webhookInvalid      = "invalid"
	webhookDisabled     = "disabled"
	webhookFailed       = "failed"
	webhookIgnored      = "ignored"
)

// BigCommerceWebhook is the BigCommerce webhook envelope.
//
// Example:
//
//	{
//	  "scope": "store/order/created",
//	  "store_id": "1025646",
//	  "data": {"type": "order", "id": 250},
//	  "hash": "dd70c0976e06b67aaf671e73f49dcb79230ebf9d",
//	  "created_at": 1561479335,
//	  "producer": "stores/abc123"
//	}
type BigCommerceWebhook struct {
	Scope     string          `json:"scope"`
	StoreID   string          `json:"store_id"`
	Data      json.RawMessage `json:"data"`
	Hash      string          `json:"hash"`
	CreatedAt int64           `json:"created_at"`
	Producer  string          `json:"producer"`
}

// StoreHash extracts the store hash from the producer ("stores/{hash}").
func (w BigCommerceWebhook) StoreHash() string {
	hash, ok := strings.CutPrefix(w.Producer, "stores/")
	if !ok {
		return ""
	}
	return hash
}

// invalidates reports whether a webhook scope can change cached views. Only
// order and product events do.
func invalidates(scope string) bool {
	return strings.Contains(scope, "order") || strings.Contains(scope, "product")
}

// BigCommerceWebhookHandler verifies a BigCommerce webhook and publishes a
// platform.updated event for order and product scopes. Other verified
// deliveries are acknowledged with 200 and no event.
//
// Security:
//   - The body must carry a valid X-Webhook-Signature computed with the
//     owning business's webhook secret, or the global secret when the
//     business has none
//   - Without any secret the endpoint answers 404
func (h *Handler) BigCommerceWebhookHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		metrics.WebhookEvents.WithLabelValues(models.PlatformBigCommerce, webhookInvalid).Inc()
		respondError(w, http.StatusBadRequest, codeInvalidBody, "Failed to read request body", err)
		return
	}

	var hook BigCommerceWebhook
	if err := json.Unmarshal(body, &hook); err != nil {
		metrics.WebhookEvents.WithLabelValues(models.PlatformBigCommerce, webhookInvalid).Inc()
		respondError(w, http.StatusBadRequest, codeInvalidBody, "Failed to parse webhook JSON", err)
		return
	}

	tenantID, secret := h.webhookTenant(r, hook.StoreHash())
	if secret == "" {
		metrics.WebhookEvents.WithLabelValues(models.PlatformBigCommerce, webhookDisabled).Inc()
		respondError(w, http.StatusNotFound, codeNotConfigured, "BigCommerce webhooks are not configured", nil)
		return
	}

	if !verifyWebhookSignature(body, r.Header.Get(SignatureHeader), secret) {
		metrics.WebhookEvents.WithLabelValues(models.PlatformBigCommerce, webhookUnauthorized).Inc()
		logging.Ctx(r.Context()).Warn().Str("producer", sanitizeLogValue(hook.Producer)).Msg("Rejected webhook with invalid signature")
		respondError(w, http.StatusUnauthorized, codeUnauthorized, "Webhook signature verification failed", nil)
		return
	}

	if !invalidates(hook.Scope) {
		metrics.WebhookEvents.WithLabelValues(models.PlatformBigCommerce, webhookIgnored).Inc()
		logging.Ctx(r.Context()).Debug().Str("scope", sanitizeLogValue(hook.Scope)).Msg("Webhook scope does not affect views")
		respondData(w, http.StatusOK, map[string]any{
			"received": true,
			"event":    hook.Scope,
		}, start)
		return
	}

	evt := events.PlatformUpdated{
		Platform:   models.PlatformBigCommerce,
		TenantID:   tenantID,
		Event:      hook.Scope,
		ReceivedAt: start.UTC(),
	}
	if err := h.events.PublishPlatformUpdated(r.Context(), evt); err != nil {
		metrics.WebhookEvents.WithLabelValues(models.PlatformBigCommerce, webhookFailed).Inc()
		respondError(w, http.StatusInternalServerError, codeInternal, "Failed to queue webhook event", err)
		return
	}

	metrics.WebhookEvents.WithLabelValues(models.PlatformBigCommerce, webhookAccepted).Inc()
	logging.Ctx(r.Context()).Info().
		Str("scope", sanitizeLogValue(hook.Scope)).
		Str("tenant_id", tenantID).
		Msg("Webhook received")

	respondData(w, http.StatusAccepted, map[string]any{
		"received": true,
		"event":    hook.Scope,
	}, start)
}

// webhookTenant resolves the business owning storeHash and the secret to
// verify with. An unknown store falls back to the global secret with no
// tenant.
func (h *Handler) webhookTenant(r *http.Request, storeHash string) (tenantID, secret string) {
	b, err := h.businesses.FindByStoreHash(r.Context(), storeHash)
	switch {
	case err == nil:
		if b.BigCommerce.WebhookSecret != "" {
			return b.ID, b.BigCommerce.WebhookSecret
		}
		return b.ID, h.webhookSecret
	case !errors.Is(err, business.ErrNotFound):
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to resolve webhook store")
	}
	return "", h.webhookSecret
}

// verifyWebhookSignature verifies the HMAC-SHA256 signature of the webhook payload
func verifyWebhookSignature(body []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(strings.ToLower(signature)), []byte(expected))
}
