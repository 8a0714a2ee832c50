package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/captioner/internal/pricing"
	"github.com/lehigh-university-libraries/captioner/internal/providers"
)

// DefaultURL is where a local Ollama listens.
const DefaultURL = "http://localhost:11434"

// Ollama is a provider for Ollama
type Ollama struct {
	URL        string
	HTTPClient *http.Client
}

// New returns a new Ollama provider
func New(ollamaURL string) *Ollama {
	if ollamaURL == "" {
		ollamaURL = DefaultURL
	}
	return &Ollama{
		URL:        strings.TrimRight(ollamaURL, "/"),
		HTTPClient: &http.Client{},
	}
}

// Name returns the provider name
func (o *Ollama) Name() string {
	return "ollama"
}

// Endpoint returns the generate URL
func (o *Ollama) Endpoint(model string) string {
	return o.URL + "/api/generate"
}

// Caption sends the prompt and image to /api/generate. The API key is not used.
func (o *Ollama) Caption(ctx context.Context, req providers.Request) (*providers.Response, error) {
	requestBody, err := json.Marshal(map[string]interface{}{
		"model":  req.Model,
		"prompt": req.Prompt,
		"images": []string{req.ImageBase64},
		"stream": false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.Endpoint(req.Model), bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &providers.StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	result := &providers.Response{Raw: body}

	var response struct {
		Response        *string `json:"response"`
		PromptEvalCount *int    `json:"prompt_eval_count"`
		EvalCount       *int    `json:"eval_count"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return result, fmt.Errorf("%w: %v", providers.ErrMalformedResponse, err)
	}
	if response.Response == nil {
		return result, fmt.Errorf("%w: no response field returned from Ollama", providers.ErrMalformedResponse)
	}

	result.Text = *response.Response
	if response.PromptEvalCount != nil && response.EvalCount != nil {
		result.Usage = &pricing.Usage{
			InputTokens:  *response.PromptEvalCount,
			OutputTokens: *response.EvalCount,
		}
	}
	return result, nil
}

// ListModels returns the locally pulled model names
func (o *Ollama) ListModels(ctx context.Context, _ string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", o.URL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create new request: %w", err)
	}

	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &providers.StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var response struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	names := make([]string, 0, len(response.Models))
	for _, m := range response.Models {
		names = append(names, m.Name)
	}
	return names, nil
}
