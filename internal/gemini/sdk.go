package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/lehigh-university-libraries/captioner/internal/pricing"
	"github.com/lehigh-university-libraries/captioner/internal/providers"
)

// SDK is a provider for Google Gemini using the official Go client
type SDK struct {
	// Options are appended to the API key option when creating clients.
	Options []option.ClientOption
}

// NewSDK returns a new SDK-backed Gemini provider
func NewSDK(opts ...option.ClientOption) *SDK {
	return &SDK{Options: opts}
}

// Name returns the provider name
func (s *SDK) Name() string {
	return "gemini-sdk"
}

// Endpoint describes the model the client will call
func (s *SDK) Endpoint(model string) string {
	return "genai:" + model
}

func (s *SDK) client(ctx context.Context, apiKey string) (*genai.Client, error) {
	opts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, s.Options...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create new gemini client: %w", err)
	}
	return client, nil
}

// Caption generates a caption through the genai client
func (s *SDK) Caption(ctx context.Context, req providers.Request) (*providers.Response, error) {
	png, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}

	client, err := s.client(ctx, req.APIKey)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	model := client.GenerativeModel(req.Model)
	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt), genai.ImageData("png", png))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	result := &providers.Response{}
	if resp.UsageMetadata != nil {
		result.Usage = &pricing.Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}

	if len(resp.Candidates) == 0 {
		return result, fmt.Errorf("%w: no candidates returned from Gemini", providers.ErrMalformedResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return result, fmt.Errorf("%w: empty content returned from Gemini", providers.ErrMalformedResponse)
	}

	txt, ok := candidate.Content.Parts[0].(genai.Text)
	if !ok {
		return result, fmt.Errorf("%w: unexpected response format from Gemini", providers.ErrMalformedResponse)
	}

	result.Text = string(txt)
	return result, nil
}

// ListModels returns the model names visible to apiKey
func (s *SDK) ListModels(ctx context.Context, apiKey string) ([]string, error) {
	client, err := s.client(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	var names []string
	it := client.ListModels(ctx)
	for {
		m, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return names, fmt.Errorf("failed to list models: %w", err)
		}
		names = append(names, m.Name)
	}
	return names, nil
}
