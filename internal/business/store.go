// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package business

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/adpulse/internal/logging"
	"github.com/tomtom215/adpulse/internal/metrics"
	"github.com/tomtom215/adpulse/internal/models"
	"github.com/tomtom215/adpulse/internal/platform"
)

// Key prefixes for BadgerDB storage
const (
	businessKeyPrefix  = "business:"
	storeHashKeyPrefix = "business_store:"
)

// Default business created on first start.
const (
	DefaultName        = "My Business"
	DefaultDescription = "Default business configuration"
)

var (
	// ErrNotFound is returned when no business has the requested ID.
	ErrNotFound = errors.New("business not found")

	// ErrLastBusiness is returned when deleting the only business.
	ErrLastBusiness = errors.New("cannot delete the last business")

	// ErrUnknownPlatform is returned for an unsupported platform config name.
	ErrUnknownPlatform = errors.New("unknown platform")
)

// Store is a BadgerDB-backed business repository.
type Store struct {
	db       *badger.DB
	owned    bool
	defaults platform.Credentials
	clock    clockwork.Clock

	// mu serializes writes that must check the record count first.
	mu sync.Mutex
}

var _ platform.CredentialSource = (*Store)(nil)

// Open opens (or creates) a store at path.
func Open(path string, defaults platform.Credentials) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open business store: %w", err)
	}
	s := New(db, defaults, nil)
	s.owned = true
	return s, nil
}

// OpenInMemory opens a store that keeps nothing on disk.
func OpenInMemory(defaults platform.Credentials) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open in-memory business store: %w", err)
	}
	s := New(db, defaults, nil)
	s.owned = true
	return s, nil
}

// New wraps an existing database. The caller keeps ownership of db.
func New(db *badger.DB, defaults platform.Credentials, clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{db: db, defaults: defaults, clock: clock}
}

// Close closes the database if the store opened it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// List returns every business ordered by creation time.
func (s *Store) List(_ context.Context) ([]*models.Business, error) {
	var out []*models.Business

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(businessKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var b models.Business
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &b)
			}); err != nil {
				return err
			}
			out = append(out, &b)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Count returns the number of stored businesses.
func (s *Store) Count(_ context.Context) (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		n = countBusinesses(txn)
		return nil
	})
	return n, err
}

func countBusinesses(txn *badger.Txn) int {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	n := 0
	prefix := []byte(businessKeyPrefix)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		n++
	}
	return n
}

// Get returns the business with the given ID.
func (s *Store) Get(_ context.Context, id string) (*models.Business, error) {
	var b *models.Business
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		b, err = getBusiness(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func getBusiness(txn *badger.Txn, id string) (*models.Business, error) {
	item, err := txn.Get([]byte(businessKeyPrefix + id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get business: %w", err)
	}

	var b models.Business
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &b)
	}); err != nil {
		return nil, fmt.Errorf("decode business %s: %w", id, err)
	}
	return &b, nil
}

func putBusiness(txn *badger.Txn, b *models.Business) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal business: %w", err)
	}
	if err := txn.Set([]byte(businessKeyPrefix+b.ID), data); err != nil {
		return fmt.Errorf("set business: %w", err)
	}
	return nil
}

func setStoreIndex(txn *badger.Txn, old, b *models.Business) error {
	if old != nil && old.BigCommerce.StoreHash != "" && old.BigCommerce.StoreHash != b.BigCommerce.StoreHash {
		if err := txn.Delete(storeHashKey(old.BigCommerce.StoreHash)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete store index: %w", err)
		}
	}
	if b.BigCommerce.StoreHash == "" {
		return nil
	}
	if err := txn.Set(storeHashKey(b.BigCommerce.StoreHash), []byte(b.ID)); err != nil {
		return fmt.Errorf("set store index: %w", err)
	}
	return nil
}

func storeHashKey(hash string) []byte {
	return []byte(storeHashKeyPrefix + strings.ToLower(hash))
}

// NewID returns a fresh business ID.
func NewID() string {
	return "biz_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Create stores a new business. ID and timestamps are assigned here; empty
// settings get their defaults.
func (s *Store) Create(ctx context.Context, b *models.Business) (*models.Business, error) {
	created := *b
	created.ID = NewID()
	now := s.clock.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now
	created.Settings.ApplyDefaults()

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := putBusiness(txn, &created); err != nil {
			return err
		}
		return setStoreIndex(txn, nil, &created)
	})
	if err != nil {
		return nil, err
	}

	s.reportCount(ctx)
	logging.Info().Str("business_id", created.ID).Str("name", created.Name).Msg("Business created")
	return &created, nil
}

// Update applies mutate to the stored business inside one transaction and
// persists the result. ID and CreatedAt cannot be changed; UpdatedAt is
// bumped.
func (s *Store) Update(_ context.Context, id string, mutate func(*models.Business) error) (*models.Business, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated *models.Business
	err := s.db.Update(func(txn *badger.Txn) error {
		old, err := getBusiness(txn, id)
		if err != nil {
			return err
		}
		next := *old
		if err := mutate(&next); err != nil {
			return err
		}
		next.ID = old.ID
		next.CreatedAt = old.CreatedAt
		next.UpdatedAt = s.clock.Now().UTC()

		if err := putBusiness(txn, &next); err != nil {
			return err
		}
		if err := setStoreIndex(txn, old, &next); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.Info().Str("business_id", id).Msg("Business updated")
	return updated, nil
}

// Delete removes a business. The last remaining business cannot be deleted.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(txn *badger.Txn) error {
		b, err := getBusiness(txn, id)
		if err != nil {
			return err
		}
		if countBusinesses(txn) <= 1 {
			return ErrLastBusiness
		}
		if err := txn.Delete([]byte(businessKeyPrefix + id)); err != nil {
			return fmt.Errorf("delete business: %w", err)
		}
		if b.BigCommerce.StoreHash != "" {
			if err := txn.Delete(storeHashKey(b.BigCommerce.StoreHash)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete store index: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.reportCount(ctx)
	logging.Info().Str("business_id", id).Msg("Business deleted")
	return nil
}

// EnsureDefault creates the default business when the store is empty and
// returns the first business.
func (s *Store) EnsureDefault(ctx context.Context) (*models.Business, error) {
	n, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return s.Create(ctx, &models.Business{
			Name:        DefaultName,
			Description: DefaultDescription,
		})
	}
	s.reportCount(ctx)
	return s.First(ctx)
}

// First returns the oldest business, or ErrNotFound when the store is empty.
func (s *Store) First(ctx context.Context) (*models.Business, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, ErrNotFound
	}
	return all[0], nil
}

// FindByStoreHash returns the business owning a BigCommerce store.
func (s *Store) FindByStoreHash(ctx context.Context, hash string) (*models.Business, error) {
	if hash == "" {
		return nil, ErrNotFound
	}
	var id string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(storeHashKey(hash))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// PlatformConfig returns the redacted configuration block of one platform,
// or nil when the platform is disabled.
func (s *Store) PlatformConfig(ctx context.Context, id, name string) (any, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	r := b.Redacted()

	switch name {
	case models.PlatformBigCommerce:
		if !r.BigCommerce.Enabled {
			return nil, nil
		}
		return r.BigCommerce, nil
	case models.PlatformGoogle:
		if !r.Google.Enabled {
			return nil, nil
		}
		return r.Google, nil
	case models.PlatformGoogleAnalytics:
		if !r.GoogleAnalytics.Enabled {
			return nil, nil
		}
		return r.GoogleAnalytics, nil
	case models.PlatformMeta:
		if !r.Meta.Enabled {
			return nil, nil
		}
		return r.Meta, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, name)
	}
}

// Credentials implements platform.CredentialSource. The empty tenant ID
// returns the process-level defaults. Disabled platform blocks resolve to
// zero credentials.
func (s *Store) Credentials(ctx context.Context, tenantID string) (*platform.Credentials, error) {
	if tenantID == "" {
		creds := s.defaults
		return &creds, nil
	}

	b, err := s.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return CredentialsOf(b), nil
}

// CredentialsOf maps a business record to platform credentials.
func CredentialsOf(b *models.Business) *platform.Credentials {
	creds := &platform.Credentials{TenantID: b.ID}
	if b.BigCommerce.Enabled {
		creds.BigCommerce = platform.BigCommerceCredentials{
			StoreHash:     b.BigCommerce.StoreHash,
			AccessToken:   b.BigCommerce.AccessToken,
			WebhookSecret: b.BigCommerce.WebhookSecret,
		}
	}
	if b.Google.Enabled {
		creds.Google = platform.GoogleCredentials{
			ClientID:           b.Google.ClientID,
			ClientSecret:       b.Google.ClientSecret,
			AccessToken:        b.Google.AccessToken,
			RefreshToken:       b.Google.RefreshToken,
			AdsCustomerID:      b.Google.AdsCustomerID,
			AdsLoginCustomerID: b.Google.AdsLoginCustomerID,
			SiteURL:            b.Google.SiteURL,
		}
	}
	// GA4 reads with the business's Google grant even when Ads and Search
	// Console are disabled.
	if b.GoogleAnalytics.Enabled {
		creds.Analytics = platform.AnalyticsCredentials{
			PropertyID: b.GoogleAnalytics.PropertyID,
			Grant: platform.GoogleCredentials{
				ClientID:     b.Google.ClientID,
				ClientSecret: b.Google.ClientSecret,
				AccessToken:  b.Google.AccessToken,
				RefreshToken: b.Google.RefreshToken,
			},
		}
	}
	if b.Meta.Enabled {
		creds.Meta = platform.MetaCredentials{
			AppID:       b.Meta.AppID,
			AppSecret:   b.Meta.AppSecret,
			AccessToken: b.Meta.AccessToken,
			AdAccountID: b.Meta.AdAccountID,
		}
	}
	return creds
}

// Defaults returns the process-level default credentials.
func (s *Store) Defaults() platform.Credentials {
	return s.defaults
}

func (s *Store) reportCount(ctx context.Context) {
	n, err := s.Count(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to count businesses")
		return
	}
	metrics.BusinessesTotal.Set(float64(n))
}
