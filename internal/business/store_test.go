// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package business

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/adpulse/internal/models"
	"github.com/tomtom215/adpulse/internal/platform"
)

// setupStore creates a store backed by in-memory badger and a fake clock.
func setupStore(t *testing.T, defaults platform.Credentials) (*Store, *clockwork.FakeClock) {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("Failed to open badger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC))
	return New(db, defaults, clock), clock
}

func mustCreate(t *testing.T, s *Store, b *models.Business) *models.Business {
	t.Helper()
	created, err := s.Create(context.Background(), b)
	if err != nil {
		t.Fatalf("Create(%q) error = %v", b.Name, err)
	}
	return created
}

// ===================================================================================================
// CRUD
// ===================================================================================================

func TestCreateAssignsIDAndDefaults(t *testing.T) {
	s, clock := setupStore(t, platform.Credentials{})

	b := mustCreate(t, s, &models.Business{ID: "ignored", Name: "Acme"})

	if !strings.HasPrefix(b.ID, "biz_") || len(b.ID) != len("biz_")+32 {
		t.Errorf("ID = %q, want biz_ followed by 32 hex chars", b.ID)
	}
	if !b.CreatedAt.Equal(clock.Now()) || !b.UpdatedAt.Equal(clock.Now()) {
		t.Errorf("timestamps = %v/%v, want %v", b.CreatedAt, b.UpdatedAt, clock.Now())
	}
	if b.Settings != models.DefaultSettings() {
		t.Errorf("Settings = %+v, want defaults", b.Settings)
	}

	got, err := s.Get(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "Acme" {
		t.Errorf("Name = %q, want Acme", got.Name)
	}
}

func TestGetNotFound(t *testing.T) {
	s, _ := setupStore(t, platform.Credentials{})

	_, err := s.Get(context.Background(), "biz_missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestListOrderedByCreation(t *testing.T) {
	s, clock := setupStore(t, platform.Credentials{})

	first := mustCreate(t, s, &models.Business{Name: "First"})
	clock.Advance(time.Minute)
	second := mustCreate(t, s, &models.Business{Name: "Second"})
	clock.Advance(time.Minute)
	third := mustCreate(t, s, &models.Business{Name: "Third"})

	all, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List() returned %d, want 3", len(all))
	}
	want := []string{first.ID, second.ID, third.ID}
	for i, b := range all {
		if b.ID != want[i] {
			t.Errorf("List()[%d] = %s, want %s", i, b.ID, want[i])
		}
	}

	got, err := s.First(context.Background())
	if err != nil || got.ID != first.ID {
		t.Errorf("First() = %v, %v; want %s", got, err, first.ID)
	}
}

func TestUpdate(t *testing.T) {
	s, clock := setupStore(t, platform.Credentials{})
	b := mustCreate(t, s, &models.Business{Name: "Acme"})
	clock.Advance(time.Hour)

	updated, err := s.Update(context.Background(), b.ID, func(next *models.Business) error {
		next.ID = "hijacked"
		next.CreatedAt = time.Time{}
		next.Description = "Outdoor gear"
		next.Meta.Enabled = true
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.ID != b.ID {
		t.Errorf("ID changed to %q", updated.ID)
	}
	if !updated.CreatedAt.Equal(b.CreatedAt) {
		t.Errorf("CreatedAt changed to %v", updated.CreatedAt)
	}
	if !updated.UpdatedAt.Equal(clock.Now()) {
		t.Errorf("UpdatedAt = %v, want %v", updated.UpdatedAt, clock.Now())
	}
	if updated.Name != "Acme" || updated.Description != "Outdoor gear" || !updated.Meta.Enabled {
		t.Errorf("Update() = %+v", updated)
	}
}

func TestUpdateMutateErrorAborts(t *testing.T) {
	s, _ := setupStore(t, platform.Credentials{})
	b := mustCreate(t, s, &models.Business{Name: "Acme"})

	boom := errors.New("boom")
	_, err := s.Update(context.Background(), b.ID, func(next *models.Business) error {
		next.Name = "Changed"
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update() error = %v, want boom", err)
	}

	got, _ := s.Get(context.Background(), b.ID)
	if got.Name != "Acme" {
		t.Errorf("Name = %q after aborted update, want Acme", got.Name)
	}
}

func TestUpdateNotFound(t *testing.T) {
	s, _ := setupStore(t, platform.Credentials{})

	_, err := s.Update(context.Background(), "biz_missing", func(*models.Business) error { return nil })
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	s, _ := setupStore(t, platform.Credentials{})
	a := mustCreate(t, s, &models.Business{Name: "A"})
	b := mustCreate(t, s, &models.Business{Name: "B"})

	if err := s.Delete(context.Background(), a.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(context.Background(), a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}

	if err := s.Delete(context.Background(), b.ID); !errors.Is(err, ErrLastBusiness) {
		t.Errorf("Delete(last) error = %v, want ErrLastBusiness", err)
	}
	if err := s.Delete(context.Background(), "biz_missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrNotFound", err)
	}
}

func TestEnsureDefault(t *testing.T) {
	s, _ := setupStore(t, platform.Credentials{})

	b, err := s.EnsureDefault(context.Background())
	if err != nil {
		t.Fatalf("EnsureDefault() error = %v", err)
	}
	if b.Name != DefaultName || b.Description != DefaultDescription {
		t.Errorf("EnsureDefault() = %q/%q", b.Name, b.Description)
	}

	again, err := s.EnsureDefault(context.Background())
	if err != nil {
		t.Fatalf("EnsureDefault() second call error = %v", err)
	}
	if again.ID != b.ID {
		t.Errorf("EnsureDefault() created a second business %s", again.ID)
	}
	if n, _ := s.Count(context.Background()); n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestFirstEmpty(t *testing.T) {
	s, _ := setupStore(t, platform.Credentials{})

	if _, err := s.First(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Errorf("First() error = %v, want ErrNotFound", err)
	}
}

// ===================================================================================================
// Store hash index
// ===================================================================================================

func TestFindByStoreHash(t *testing.T) {
	s, _ := setupStore(t, platform.Credentials{})
	mustCreate(t, s, &models.Business{Name: "Other"})
	b := mustCreate(t, s, &models.Business{
		Name:        "Shop",
		BigCommerce: models.BigCommerceConfig{StoreHash: "abc123", AccessToken: "tok", Enabled: true},
	})

	got, err := s.FindByStoreHash(context.Background(), "ABC123")
	if err != nil || got.ID != b.ID {
		t.Fatalf("FindByStoreHash() = %v, %v; want %s", got, err, b.ID)
	}

	// Changing the hash drops the old index entry.
	if _, err := s.Update(context.Background(), b.ID, func(next *models.Business) error {
		next.BigCommerce.StoreHash = "xyz789"
		return nil
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if _, err := s.FindByStoreHash(context.Background(), "abc123"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByStoreHash(old) error = %v, want ErrNotFound", err)
	}

	if err := s.Delete(context.Background(), b.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.FindByStoreHash(context.Background(), "xyz789"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByStoreHash(deleted) error = %v, want ErrNotFound", err)
	}
	if _, err := s.FindByStoreHash(context.Background(), ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByStoreHash(empty) error = %v, want ErrNotFound", err)
	}
}

// ===================================================================================================
// Platform config and credentials
// ===================================================================================================

func TestPlatformConfig(t *testing.T) {
	s, _ := setupStore(t, platform.Credentials{})
	b := mustCreate(t, s, &models.Business{
		Name:        "Shop",
		BigCommerce: models.BigCommerceConfig{StoreHash: "abc123", AccessToken: "supersecrettoken", Enabled: true},
		Meta:        models.MetaConfig{AccessToken: "meta-token-value", AdAccountID: "42"},
	})

	tests := []struct {
		name     string
		platform string
		wantNil  bool
		wantErr  error
	}{
		{"enabled block", models.PlatformBigCommerce, false, nil},
		{"disabled block", models.PlatformMeta, true, nil},
		{"disabled google", models.PlatformGoogle, true, nil},
		{"disabled analytics", models.PlatformGoogleAnalytics, true, nil},
		{"unknown platform", "tiktok", true, ErrUnknownPlatform},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.PlatformConfig(context.Background(), b.ID, tt.platform)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("PlatformConfig() error = %v, want %v", err, tt.wantErr)
			}
			if (got == nil) != tt.wantNil {
				t.Errorf("PlatformConfig() = %v, wantNil %v", got, tt.wantNil)
			}
		})
	}

	got, _ := s.PlatformConfig(context.Background(), b.ID, models.PlatformBigCommerce)
	cfg, ok := got.(models.BigCommerceConfig)
	if !ok {
		t.Fatalf("PlatformConfig() type = %T", got)
	}
	if cfg.AccessToken != "****oken" {
		t.Errorf("AccessToken = %q, want redacted", cfg.AccessToken)
	}
	if cfg.StoreHash != "abc123" {
		t.Errorf("StoreHash = %q, want abc123", cfg.StoreHash)
	}
}

func TestCredentials(t *testing.T) {
	defaults := platform.Credentials{
		BigCommerce: platform.BigCommerceCredentials{StoreHash: "env", AccessToken: "env-token"},
	}
	s, _ := setupStore(t, defaults)
	b := mustCreate(t, s, &models.Business{
		Name:        "Shop",
		BigCommerce: models.BigCommerceConfig{StoreHash: "abc123", AccessToken: "tok", Enabled: true},
		Google:      models.GoogleConfig{AccessToken: "g", AdsCustomerID: "123"},
		Meta:        models.MetaConfig{AccessToken: "m", AdAccountID: "42", Enabled: true},
	})

	t.Run("empty tenant uses defaults", func(t *testing.T) {
		creds, err := s.Credentials(context.Background(), "")
		if err != nil {
			t.Fatalf("Credentials() error = %v", err)
		}
		if creds.BigCommerce.StoreHash != "env" {
			t.Errorf("StoreHash = %q, want env", creds.BigCommerce.StoreHash)
		}
	})

	t.Run("tenant credentials", func(t *testing.T) {
		creds, err := s.Credentials(context.Background(), b.ID)
		if err != nil {
			t.Fatalf("Credentials() error = %v", err)
		}
		if creds.TenantID != b.ID {
			t.Errorf("TenantID = %q, want %q", creds.TenantID, b.ID)
		}
		if !creds.BigCommerce.Configured() || creds.BigCommerce.StoreHash != "abc123" {
			t.Errorf("BigCommerce = %+v", creds.BigCommerce)
		}
		if !creds.Meta.Configured() {
			t.Errorf("Meta should be configured: %+v", creds.Meta)
		}
		if creds.Google.AdsConfigured() {
			t.Errorf("disabled Google block should resolve to zero credentials: %+v", creds.Google)
		}
	})

	t.Run("analytics borrows the google grant", func(t *testing.T) {
		ga := mustCreate(t, s, &models.Business{
			Name:            "Analytics Only",
			Google:          models.GoogleConfig{ClientID: "cid", AccessToken: "ya29", RefreshToken: "1//r", AdsCustomerID: "9"},
			GoogleAnalytics: models.GoogleAnalyticsConfig{PropertyID: "314159", Enabled: true},
		})
		creds, err := s.Credentials(context.Background(), ga.ID)
		if err != nil {
			t.Fatalf("Credentials() error = %v", err)
		}
		if !creds.Analytics.Configured() || creds.Analytics.PropertyID != "314159" {
			t.Errorf("Analytics = %+v, want configured property 314159", creds.Analytics)
		}
		if creds.Analytics.Grant.RefreshToken != "1//r" || creds.Analytics.Grant.AdsCustomerID != "" {
			t.Errorf("Grant = %+v, want the OAuth fields only", creds.Analytics.Grant)
		}
		if creds.Google.AdsConfigured() {
			t.Errorf("disabled Google block leaked into Ads credentials: %+v", creds.Google)
		}

		plain, _ := s.Credentials(context.Background(), b.ID)
		if plain.Analytics.Configured() {
			t.Errorf("disabled analytics should resolve to zero credentials: %+v", plain.Analytics)
		}
	})

	t.Run("unknown tenant", func(t *testing.T) {
		if _, err := s.Credentials(context.Background(), "biz_missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Credentials() error = %v, want ErrNotFound", err)
		}
	})
}

func TestOpenPersists(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir, platform.Credentials{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	b, err := s.Create(context.Background(), &models.Business{Name: "Durable"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s, err = Open(dir, platform.Credentials{})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer func() { _ = s.Close() }()

	got, err := s.Get(context.Background(), b.ID)
	if err != nil || got.Name != "Durable" {
		t.Errorf("Get() after reopen = %v, %v", got, err)
	}
}
