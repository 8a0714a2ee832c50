package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/lehigh-university-libraries/captioner/internal/pricing"
	"github.com/lehigh-university-libraries/captioner/internal/providers"
)

// DefaultBaseURL is the public Generative Language API host.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// Models are the model identifiers offered by the captioning node.
var Models = []string{
	"gemini-1.5-pro",
	"gemini-1.5-flash",
	"gemini-1.5-flash-8b",
	"gemini-2.0-flash-exp",
	"gemini-2.0-flash",
	"gemini-2.5-flash",
	"gemini-2.5-pro",
}

// Gemini is a provider for Google Gemini over the REST API
type Gemini struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New returns a new Gemini provider talking to baseURL, or the public API when empty
func New(baseURL string) *Gemini {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Gemini{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
	}
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

// Name returns the provider name
func (g *Gemini) Name() string {
	return "gemini"
}

// Endpoint returns the generateContent URL for model with the key redacted
func (g *Gemini) Endpoint(model string) string {
	return g.generateURL(model, "***")
}

func (g *Gemini) generateURL(model, apiKey string) string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.BaseURL, model, url.QueryEscape(apiKey))
}

// Caption sends the prompt and image to generateContent and returns the first candidate's text
func (g *Gemini) Caption(ctx context.Context, req providers.Request) (*providers.Response, error) {
	requestBody, err := json.Marshal(generateRequest{
		Contents: []content{
			{
				Parts: []part{
					{Text: req.Prompt},
					{InlineData: &inlineData{MimeType: "image/png", Data: req.ImageBase64}},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", g.generateURL(req.Model, req.APIKey), bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", redact(err, req.APIKey))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &providers.StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	return parseResponse(body)
}

func parseResponse(body []byte) (*providers.Response, error) {
	result := &providers.Response{Raw: body}

	var response generateResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return result, fmt.Errorf("%w: %v", providers.ErrMalformedResponse, err)
	}

	if len(response.Candidates) == 0 {
		return result, fmt.Errorf("%w: no candidates returned from Gemini", providers.ErrMalformedResponse)
	}
	candidate := response.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return result, fmt.Errorf("%w: empty content returned from Gemini", providers.ErrMalformedResponse)
	}
	if candidate.Content.Parts[0].Text == nil {
		return result, fmt.Errorf("%w: first part has no text", providers.ErrMalformedResponse)
	}

	result.Text = *candidate.Content.Parts[0].Text
	if response.UsageMetadata != nil {
		result.Usage = &pricing.Usage{
			InputTokens:  response.UsageMetadata.PromptTokenCount,
			OutputTokens: response.UsageMetadata.CandidatesTokenCount,
		}
	}
	return result, nil
}

// ListModels returns the model names visible to apiKey
func (g *Gemini) ListModels(ctx context.Context, apiKey string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/v1beta/models?key=%s", g.BaseURL, url.QueryEscape(apiKey))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create new request: %w", err)
	}

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", redact(err, apiKey))
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

// redact strips the API key from transport errors, which quote the request URL.
func redact(err error, apiKey string) error {
	if apiKey == "" {
		return err
	}
	msg := err.Error()
	escaped := url.QueryEscape(apiKey)
	if !strings.Contains(msg, escaped) && !strings.Contains(msg, apiKey) {
		return err
	}
	msg = strings.ReplaceAll(msg, escaped, "***")
	msg = strings.ReplaceAll(msg, apiKey, "***")
	return fmt.Errorf("%s", msg)
}
