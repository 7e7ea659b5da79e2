// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/adpulse/internal/business"
	"github.com/tomtom215/adpulse/internal/models"
	"github.com/tomtom215/adpulse/internal/platform"
)

// Connection test results.
const (
	connConnected     = "connected"
	connError         = "error"
	connNotConfigured = "not_configured"
)

var errInvalidPatch = errors.New("invalid business patch")

// mergePatch decodes a JSON object onto an existing record. Absent fields
// keep their value; nested objects merge field by field.
func mergePatch(patch json.RawMessage, dst *models.Business) error {
	if err := json.Unmarshal(patch, dst); err != nil {
		return fmt.Errorf("%w: %w", errInvalidPatch, err)
	}
	return nil
}

// requestValidationError carries a validation failure out of a store
// update callback.
type requestValidationError struct {
	apiErr *models.APIError
}

func (e *requestValidationError) Error() string {
	return e.apiErr.Message
}

// ListBusinesses returns every business with secrets redacted.
func (h *Handler) ListBusinesses(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	all, err := h.businesses.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "Failed to list businesses", err)
		return
	}

	out := make([]models.Business, 0, len(all))
	for _, b := range all {
		out = append(out, b.Redacted())
	}
	respondData(w, http.StatusOK, out, start)
}

// GetBusiness returns one business with secrets redacted.
func (h *Handler) GetBusiness(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	b, err := h.businesses.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, b.Redacted(), start)
}

// CreateBusiness stores a new business. ID and timestamps are assigned by
// the server.
func (h *Handler) CreateBusiness(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var b models.Business
	if err := decodeJSONBody(w, r, &b); err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidBody, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&b); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	created, err := h.businesses.Create(r.Context(), &b)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "Failed to create business", err)
		return
	}
	respondData(w, http.StatusCreated, created.Redacted(), start)
}

// UpdateBusiness merges the JSON body onto the stored business: fields
// absent from the body keep their value, nested platform blocks are merged
// field by field, and secrets echoed back masked are left unchanged.
func (h *Handler) UpdateBusiness(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")

	var patch json.RawMessage
	if err := decodeJSONBody(w, r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidBody, "Invalid JSON body", err)
		return
	}

	updated, err := h.businesses.Update(r.Context(), id, func(next *models.Business) error {
		old := *next
		if err := mergePatch(patch, next); err != nil {
			return err
		}
		next.KeepSecretsFrom(&old)
		if apiErr := validateRequest(next); apiErr != nil {
			return &requestValidationError{apiErr: apiErr}
		}
		return nil
	})

	var verr *requestValidationError
	switch {
	case errors.As(err, &verr):
		respondAPIError(w, http.StatusBadRequest, verr.apiErr)
		return
	case errors.Is(err, errInvalidPatch):
		respondError(w, http.StatusBadRequest, codeInvalidBody, "Invalid JSON body", err)
		return
	case err != nil:
		h.respondStoreError(w, err)
		return
	}

	h.forget(id)
	respondData(w, http.StatusOK, updated.Redacted(), start)
}

// DeleteBusiness removes a business. The last business cannot be deleted.
func (h *Handler) DeleteBusiness(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")

	if err := h.businesses.Delete(r.Context(), id); err != nil {
		h.respondStoreError(w, err)
		return
	}

	h.forget(id)
	respondData(w, http.StatusOK, models.RefreshResponse{
		Success: true,
		Message: "Business deleted successfully",
	}, start)
}

// TestBusinessConnection probes one platform with the business credentials.
func (h *Handler) TestBusinessConnection(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")
	name := chi.URLParam(r, "platform")

	b, err := h.businesses.Get(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	respondData(w, http.StatusOK, h.testConnection(r.Context(), b, name), start)
}

func (h *Handler) testConnection(ctx context.Context, b *models.Business, name string) models.ConnectionTestResult {
	result := models.ConnectionTestResult{Platform: name}

	switch name {
	case models.PlatformBigCommerce, models.PlatformGoogle, models.PlatformGoogleAnalytics, models.PlatformMeta:
	default:
		result.Status = connError
		result.Message = "Unknown platform"
		return result
	}

	result.Status = connNotConfigured
	result.Message = "Platform not configured"
	for _, tester := range h.testers[name] {
		err := tester.TestConnection(ctx, b.ID)
		switch {
		case errors.Is(err, platform.ErrNotConfigured):
			continue
		case err != nil:
			result.Status = connError
			result.Message = err.Error()
		default:
			result.Status = connConnected
			result.Message = "Connection successful"
		}
		return result
	}
	return result
}

// GetBusinessConfig returns the redacted configuration of one platform, or
// null when the platform is disabled.
func (h *Handler) GetBusinessConfig(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	cfg, err := h.businesses.PlatformConfig(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "platform"))
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, cfg, start)
}

// respondStoreError maps business store errors to HTTP responses.
func (h *Handler) respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, business.ErrNotFound):
		respondError(w, http.StatusNotFound, codeNotFound, "Business not found", nil)
	case errors.Is(err, business.ErrLastBusiness):
		respondError(w, http.StatusConflict, codeConflict, "Cannot delete the last business", nil)
	case errors.Is(err, business.ErrUnknownPlatform):
		respondError(w, http.StatusBadRequest, codeValidation, "Unknown platform", nil)
	default:
		respondError(w, http.StatusInternalServerError, codeInternal, "Business store error", err)
	}
}
