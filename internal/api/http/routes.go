// Package http provides the HTTP delivery layer of the URL shortener:
// the router, the request handlers and the wire-level payloads.
package http

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/RoystonDAlmeida/url-shortener-service/internal/models"
)

// URLService defines the interface for the core URL shortening business logic.
type URLService interface {
	// ShortenURL allocates a fresh short code for the original URL.
	// It returns service.ErrInvalidURL for non-HTTP(S) URLs and
	// service.ErrMaxRetriesExceeded when no unique code could be allocated.
	ShortenURL(ctx context.Context, originalURL string) (*models.URL, error)

	// ResolveShortCode retrieves the URL for a short code and registers
	// exactly one click on it. Returns storage.ErrURLNotFound for unknown codes.
	ResolveShortCode(ctx context.Context, shortCode string) (*models.URL, error)

	// GetURLStats retrieves the URL record without registering a click.
	GetURLStats(ctx context.Context, shortCode string) (*models.URL, error)

	// Mappings returns a snapshot of every stored mapping.
	Mappings(ctx context.Context) (map[string]*models.URL, error)
}

// getValidate initializes a new validator instance for validating incoming request payloads.
// It customizes tag name extraction from struct fields to match JSON tags.
func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

// NewRouter initializes and returns a new HTTP router with all routes and middleware configured.
func NewRouter(logger *httplog.Logger, urlSvc URLService) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"POST", "GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/", handleHealthCheck)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))
	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./docs/swagger.yml")
	})

	r.Route("/api", func(r chi.Router) {
		validate := getValidate()

		r.Get("/health", handleAPIHealth)
		r.Get("/debug/mappings", handleDebugMappings(urlSvc))
		r.Post("/shorten", handleShortenURL(urlSvc, validate))
		r.Get("/stats/{shortCode}", handleURLStats(urlSvc))
		r.Get("/{shortCode}", handleRedirect(urlSvc))
	})

	return r
}
