package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/RoystonDAlmeida/url-shortener-service/internal/models"
	"github.com/RoystonDAlmeida/url-shortener-service/internal/service"
	"github.com/RoystonDAlmeida/url-shortener-service/internal/storage"
	"github.com/RoystonDAlmeida/url-shortener-service/pkg/response"
)

// createdAtLayout is the wire format of created_at timestamps: local time,
// second precision.
const createdAtLayout = "2006-01-02T15:04:05"

// healthResponse is the body of the root health check.
type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// apiHealthResponse is the body of the API health check.
type apiHealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// shortenRequest represents the request payload for shortening a URL.
// URL is a pointer so a present-but-empty url field is distinguishable from
// a missing one: the former fails URL validation, the latter the required check.
type shortenRequest struct {
	URL *string `json:"url" validate:"required"`
}

// shortenResponse represents the response payload for a successful shorten.
type shortenResponse struct {
	ShortCode string `json:"short_code"`
	ShortURL  string `json:"short_url"`
}

// statsResponse represents the response payload for URL statistics.
type statsResponse struct {
	URL       string `json:"url"`
	Clicks    int64  `json:"clicks"`
	CreatedAt string `json:"created_at"`
}

// toStatsResponse converts a URL model from the business layer into a stats payload.
func toStatsResponse(url *models.URL) statsResponse {
	return statsResponse{
		URL:       url.OriginalURL,
		Clicks:    url.Clicks,
		CreatedAt: url.CreatedAt.Format(createdAtLayout),
	}
}

// requestOrigin reconstructs the origin the client used to reach the server,
// so short URLs point back at the host that issued them.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// handleHealthCheck handles health check requests to ensure the server is running.
func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, healthResponse{
		Status:  "healthy",
		Service: "URL Shortener API",
	})
}

// handleAPIHealth handles API health check requests used for monitoring.
func handleAPIHealth(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, apiHealthResponse{
		Status:  "ok",
		Message: "URL Shortener API is running",
	})
}

// handleShortenURL handles POST requests to shorten a URL.
//
// The request must declare a JSON content type and carry a valid absolute
// HTTP(S) URL. On success the handler returns the generated short code and
// the full short URL built from the request's own origin.
func handleShortenURL(svc URLService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleShortenURL"

	return func(w http.ResponseWriter, r *http.Request) {
		contentType := r.Header.Get("Content-Type")
		if !strings.Contains(contentType, "application/json") {
			render.Status(r, http.StatusUnsupportedMediaType)
			render.JSON(w, r, response.UnsupportedMediaTypeResponse)
			return
		}

		var req shortenRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.URLRequiredResponse)
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.URLRequiredResponse)
			return
		}

		url, err := svc.ShortenURL(r.Context(), *req.URL)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidURL):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.InvalidURLResponse)
			case errors.Is(err, service.ErrMaxRetriesExceeded):
				httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.CodeGenerationFailedResponse)
			default:
				httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.ServerErrorResponse)
			}
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, shortenResponse{
			ShortCode: url.ShortCode,
			ShortURL:  requestOrigin(r) + "/" + url.ShortCode,
		})
	}
}

// handleRedirect handles GET requests to resolve a short code.
//
// The handler registers exactly one click and redirects the client to the
// original URL with a 302, or returns a 404 for unknown codes.
func handleRedirect(svc URLService) http.HandlerFunc {
	const op = "api.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		url, err := svc.ResolveShortCode(r.Context(), shortCode)
		if err != nil {
			if errors.Is(err, storage.ErrURLNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ShortCodeNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		http.Redirect(w, r, url.OriginalURL, http.StatusFound)
	}
}

// handleURLStats handles GET requests to retrieve usage statistics for a
// short code. The lookup is read-only and does not count as a click.
func handleURLStats(svc URLService) http.HandlerFunc {
	const op = "api.http.handleURLStats"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		url, err := svc.GetURLStats(r.Context(), shortCode)
		if err != nil {
			if errors.Is(err, storage.ErrURLNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ShortCodeNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, toStatsResponse(url))
	}
}

// handleDebugMappings handles GET requests for the development-only dump of
// the whole mapping table.
func handleDebugMappings(svc URLService) http.HandlerFunc {
	const op = "api.http.handleDebugMappings"

	return func(w http.ResponseWriter, r *http.Request) {
		urls, err := svc.Mappings(r.Context())
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		mappings := make(map[string]statsResponse, len(urls))
		for shortCode, url := range urls {
			mappings[shortCode] = toStatsResponse(url)
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, mappings)
	}
}
