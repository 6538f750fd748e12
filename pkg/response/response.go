// Package response defines the JSON error payloads shared by the HTTP
// handlers. Every failure the API reports is an object with a single
// "error" field.
package response

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

var (
	// UnsupportedMediaTypeResponse is returned when a shorten request does
	// not declare a JSON content type.
	UnsupportedMediaTypeResponse = ErrorResponse{
		Error: "Content-Type must be application/json",
	}
	// URLRequiredResponse is returned when the request body is empty,
	// malformed or missing the url field.
	URLRequiredResponse = ErrorResponse{
		Error: "'url' parameter is required in request body",
	}
	// InvalidURLResponse is returned when the submitted URL is not an
	// absolute HTTP(S) URL.
	InvalidURLResponse = ErrorResponse{
		Error: "Invalid URL",
	}
	// ShortCodeNotFoundResponse is returned when the requested short code
	// doesn't exist.
	ShortCodeNotFoundResponse = ErrorResponse{
		Error: "Short code not found",
	}
	// CodeGenerationFailedResponse is returned when no unique short code
	// could be allocated within the retry budget.
	CodeGenerationFailedResponse = ErrorResponse{
		Error: "Could not generate unique code",
	}
	// ServerErrorResponse is returned for any unexpected internal failure.
	ServerErrorResponse = ErrorResponse{
		Error: "Internal server error",
	}
)
