// Package service implements the URL shortening business logic: URL
// validation, unique short code allocation and click accounting.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/RoystonDAlmeida/url-shortener-service/internal/models"
	"github.com/RoystonDAlmeida/url-shortener-service/internal/storage"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// alphanum is the alphabet short codes are drawn from.
	alphanum = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// shortCodeLength is the fixed length of every generated short code.
	shortCodeLength = 6
	// maxRetries bounds the generate-and-insert loop. With 62^6 possible
	// codes a collision is vanishingly rare, so exhausting the budget
	// signals a bug or a full code space rather than bad luck.
	maxRetries = 10
)

var (
	// ErrInvalidURL is returned when the submitted URL is not an absolute
	// HTTP or HTTPS URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrMaxRetriesExceeded is returned when the maximum number of retries
	// for generating a unique short code is exceeded.
	ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating short code")
)

// IsHTTPURL reports whether s is an absolute URL with an http or https
// scheme and a non-empty host. It never returns an error: anything that
// fails to parse is simply not a valid URL.
func IsHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// URLRepository defines the interface for working with URLs at the business logic layer.
type URLRepository interface {
	// Save inserts a new shortened URL into the repository iff the short
	// code is absent. Returns storage.ErrShortCodeExists on collision.
	Save(ctx context.Context, shortCode, originalURL string) (*models.URL, error)

	// GetByShortCode retrieves a URL by its short code without changing it.
	// Returns storage.ErrURLNotFound if the short code doesn't exist.
	GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error)

	// RegisterClick atomically increments the click counter of a URL and
	// returns the updated record.
	RegisterClick(ctx context.Context, shortCode string) (*models.URL, error)

	// Snapshot returns a copy of all stored URL records keyed by short code.
	Snapshot(ctx context.Context) (map[string]*models.URL, error)
}

// URLService provides methods to manage URL shortening operations.
type URLService struct {
	repo URLRepository
}

// NewURLService creates a new instance of URLService with the provided repository.
func NewURLService(repo URLRepository) *URLService {
	return &URLService{
		repo: repo,
	}
}

// ShortenURL generates a short code for the provided original URL and stores
// it in the repository. Code generation happens outside the store so no lock
// is ever held across it; uniqueness comes from retrying the conditional
// insert, up to a maximum number of attempts.
func (s *URLService) ShortenURL(ctx context.Context, originalURL string) (*models.URL, error) {
	const op = "service.URLService.ShortenURL"

	if !IsHTTPURL(originalURL) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidURL)
	}

	for i := 0; i < maxRetries; i++ {
		shortCode, err := gonanoid.Generate(alphanum, shortCodeLength)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate short code: %w", op, err)
		}

		url, err := s.repo.Save(ctx, shortCode, originalURL)
		if err != nil {
			if errors.Is(err, storage.ErrShortCodeExists) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return url, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}

// ResolveShortCode retrieves the original URL associated with the provided
// short code, registering exactly one click on it.
func (s *URLService) ResolveShortCode(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "service.URLService.ResolveShortCode"

	url, err := s.repo.RegisterClick(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	return url, nil
}

// GetURLStats retrieves the record for the provided short code without
// registering a click.
func (s *URLService) GetURLStats(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "service.URLService.GetURLStats"

	url, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get url stats: %w", op, err)
	}

	return url, nil
}

// Mappings returns a snapshot of every stored mapping for diagnostics.
func (s *URLService) Mappings(ctx context.Context) (map[string]*models.URL, error) {
	const op = "service.URLService.Mappings"

	urls, err := s.repo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get mappings: %w", op, err)
	}

	return urls, nil
}
