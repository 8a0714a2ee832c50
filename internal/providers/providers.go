package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/lehigh-university-libraries/captioner/internal/pricing"
)

// ErrMalformedResponse is returned when a 200 response does not carry a caption
// where one is expected.
var ErrMalformedResponse = errors.New("malformed response")

// Request is a single captioning call: one prompt and one PNG image.
type Request struct {
	Model       string
	APIKey      string
	Prompt      string
	ImageBase64 string
}

// Response is the caption returned by a provider. Usage is nil when the
// provider did not report token counts.
type Response struct {
	Text  string
	Usage *pricing.Usage
	Raw   []byte
}

// StatusError is returned when the provider answers with a non-200 status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d - %s", e.Code, e.Body)
}

// Provider captions an image.
type Provider interface {
	Name() string
	// Endpoint describes where the request for model is sent, with secrets redacted.
	Endpoint(model string) string
	Caption(ctx context.Context, req Request) (*Response, error)
}

// ModelLister lists the model identifiers available to an API key.
type ModelLister interface {
	ListModels(ctx context.Context, apiKey string) ([]string, error)
}
