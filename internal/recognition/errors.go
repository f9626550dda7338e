package recognition

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"vinscan/internal/services"
)

var (
	// ErrNoVIN reports a successful call in which the service found no VIN.
	ErrNoVIN = errors.New("no VIN recognized")
	// ErrNotConfigured reports a missing API key.
	ErrNotConfigured = services.Wrap(services.ErrConfiguration, "recognition", "", "api key not set (recognition.api_key or VINSCAN_API_KEY)", nil)
	// ErrUnsupportedImage reports bytes that are not a decodable still image.
	ErrUnsupportedImage = fmt.Errorf("%w: unsupported image", services.ErrValidation)
)

// TransportError wraps network, HTTP status and response decoding failures.
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	b.WriteString("recognition ")
	b.WriteString(e.Op)
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, ": http %d", e.StatusCode)
		if body := summarizePayloadSnippet(e.Body); body != "<empty>" {
			b.WriteString(": ")
			b.WriteString(body)
		}
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is matches services.ErrTransport, and services.ErrConfiguration when the
// service rejected the API key.
func (e *TransportError) Is(target error) bool {
	switch target {
	case services.ErrTransport:
		return true
	case services.ErrConfiguration:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	default:
		return false
	}
}

func summarizePayloadSnippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	const limit = 160
	if runes := []rune(clean); len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
