// Package memory provides the in-memory implementation of the URL store.
// All records live in a single map guarded by one mutex; records are handed
// out as copies so callers can never mutate the store's state directly.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/RoystonDAlmeida/url-shortener-service/internal/models"
	"github.com/RoystonDAlmeida/url-shortener-service/internal/storage"
)

type urlRecord struct {
	originalURL string
	clicks      int64
	createdAt   time.Time
}

func (r *urlRecord) toURL(shortCode string) *models.URL {
	return &models.URL{
		ShortCode:   shortCode,
		OriginalURL: r.originalURL,
		Clicks:      r.clicks,
		CreatedAt:   r.createdAt,
	}
}

// URLStore is a thread-safe in-memory table of short code -> URL record.
type URLStore struct {
	mu   sync.RWMutex
	urls map[string]urlRecord
}

// NewURLStore creates an empty URLStore.
func NewURLStore() *URLStore {
	return &URLStore{
		urls: make(map[string]urlRecord),
	}
}

// Save inserts a new URL record under the given short code.
// The existence check and the insert happen atomically, so of two concurrent
// saves with the same short code exactly one succeeds and the other receives
// storage.ErrShortCodeExists.
func (s *URLStore) Save(_ context.Context, shortCode, originalURL string) (*models.URL, error) {
	const op = "storage.memory.URLStore.Save"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.urls[shortCode]; ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrShortCodeExists)
	}

	rec := urlRecord{
		originalURL: originalURL,
		createdAt:   time.Now(),
	}
	s.urls[shortCode] = rec

	return rec.toURL(shortCode), nil
}

// GetByShortCode retrieves a copy of the URL record without changing it.
func (s *URLStore) GetByShortCode(_ context.Context, shortCode string) (*models.URL, error) {
	const op = "storage.memory.URLStore.GetByShortCode"

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.urls[shortCode]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrURLNotFound)
	}

	return rec.toURL(shortCode), nil
}

// RegisterClick atomically increments the click counter of the record and
// returns the updated copy. Each call accounts for exactly one click.
func (s *URLStore) RegisterClick(_ context.Context, shortCode string) (*models.URL, error) {
	const op = "storage.memory.URLStore.RegisterClick"

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.urls[shortCode]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrURLNotFound)
	}

	rec.clicks++
	s.urls[shortCode] = rec

	return rec.toURL(shortCode), nil
}

// Snapshot returns a copy of every record currently in the store.
func (s *URLStore) Snapshot(_ context.Context) (map[string]*models.URL, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	urls := make(map[string]*models.URL, len(s.urls))
	for shortCode, rec := range s.urls {
		urls[shortCode] = rec.toURL(shortCode)
	}

	return urls, nil
}
