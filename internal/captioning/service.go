package captioning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/captioner/internal/images"
	"github.com/lehigh-university-libraries/captioner/internal/pricing"
	"github.com/lehigh-university-libraries/captioner/internal/prompt"
	"github.com/lehigh-university-libraries/captioner/internal/providers"
)

// DefaultTxtName is the caption filename used when none is given.
const DefaultTxtName = "caption"

// CostImageFailed replaces the cost summary when the image could not be encoded.
const CostImageFailed = "Cost unavailable: image could not be encoded"

// Options are the per-call inputs of a captioning run.
type Options struct {
	Style      prompt.Style
	Model      string
	KeyPath    string
	MaxWords   int
	Structure  string
	Ignore     string
	Emphasis   string
	Dictionary string
	SaveDir    string
	TxtName    string
	// CostAware fills Result.CostSummary.
	CostAware bool
}

// PromptRequest returns the prompt options carried by o.
func (o Options) PromptRequest() prompt.Request {
	return prompt.Request{
		Style:      o.Style,
		Structure:  o.Structure,
		Ignore:     o.Ignore,
		Emphasis:   o.Emphasis,
		Dictionary: o.Dictionary,
		MaxWords:   o.MaxWords,
	}
}

// Service captions images through a provider.
type Service struct {
	Provider  providers.Provider
	Lister    providers.ModelLister
	Prices    pricing.Table
	Templates prompt.Templates
}

// NewService returns a service using the built-in prices and wording. If the
// provider can list models it is also used for 404 diagnostics.
func NewService(provider providers.Provider) *Service {
	s := &Service{
		Provider:  provider,
		Prices:    pricing.DefaultTable(),
		Templates: prompt.DefaultTemplates(),
	}
	if lister, ok := provider.(providers.ModelLister); ok {
		s.Lister = lister
	}
	return s
}

// Caption runs the full pipeline for one image. It never returns an error;
// failures are recorded on the result alongside the log.
func (s *Service) Caption(ctx context.Context, img images.Image, opts Options) *Result {
	result := &Result{}
	result.logf("Starting image captioning with %s (%s)...", s.Provider.Name(), opts.Model)

	apiKey, err := ReadAPIKey(opts.KeyPath)
	if err != nil {
		result.logf("%v", err)
		result.fail(StageKey, ErrKeyUnavailable, err)
		if opts.CostAware {
			result.CostSummary = pricing.NoAPIKey
		}
		return result
	}
	result.logf("API key loaded from %s", opts.KeyPath)

	imageBase64, err := img.EncodeBase64PNG()
	if err != nil {
		result.logf("Error processing image: %v", err)
		result.fail(StageImage, ErrImageEncoding, err)
		if opts.CostAware {
			result.CostSummary = CostImageFailed
		}
		return result
	}
	result.logf("Image processed and converted to base64.")

	result.Prompt = s.Templates.Build(opts.PromptRequest())
	result.logf("Prompt constructed.")

	result.logf("Sending request to %s...", s.Provider.Endpoint(opts.Model))
	resp, err := s.Provider.Caption(ctx, providers.Request{
		Model:       opts.Model,
		APIKey:      apiKey,
		Prompt:      result.Prompt,
		ImageBase64: imageBase64,
	})
	s.handleResponse(ctx, result, resp, err, apiKey)

	if opts.CostAware {
		s.accountCost(result, resp, err, opts.Model)
	}

	if !isBlank(opts.SaveDir) {
		path, err := saveCaption(opts.SaveDir, opts.TxtName, result.Caption)
		if err != nil {
			result.logf("Error saving to file: %v", err)
			result.fail(StageSave, ErrFilesystem, err)
		} else {
			result.SavedPath = path
			result.logf("Saved caption to %s", path)
		}
	}

	if result.Failed() {
		slog.Warn("Captioning finished with errors", "provider", s.Provider.Name(), "model", opts.Model, "stage", result.FailedStage(), "err", result.Err())
	} else {
		slog.Info("Generated caption", "provider", s.Provider.Name(), "model", opts.Model, "length", len(result.Caption))
	}
	return result
}

func (s *Service) handleResponse(ctx context.Context, result *Result, resp *providers.Response, err error, apiKey string) {
	var statusErr *providers.StatusError
	switch {
	case err == nil:
		result.Caption = resp.Text
		result.Usage = resp.Usage
		result.logf("Received successful response from %s.", s.Provider.Name())
	case errors.As(err, &statusErr):
		result.logf("API Error: %d - %s", statusErr.Code, statusErr.Body)
		result.fail(StageResponse, ErrTransport, err)
		if statusErr.Code == 404 {
			s.logAvailableModels(ctx, result, apiKey)
		}
	case errors.Is(err, providers.ErrMalformedResponse):
		result.logf("Error parsing JSON response: %v", err)
		if resp != nil {
			result.logf("Full response: %s", resp.Raw)
		}
		result.fail(StageResponse, ErrResponseParse, err)
	default:
		result.logf("Request Exception: %v", err)
		result.fail(StageRequest, ErrTransport, err)
	}
}

// logAvailableModels is a best-effort diagnostic for unknown model names.
func (s *Service) logAvailableModels(ctx context.Context, result *Result, apiKey string) {
	if s.Lister == nil {
		result.logf("Model listing is not supported by %s.", s.Provider.Name())
		return
	}

	names, err := s.Lister.ListModels(ctx, apiKey)
	if err != nil {
		result.logf("Could not list available models: %v", err)
		return
	}
	result.logf("Available models: %s", strings.Join(names, ", "))
}

func (s *Service) accountCost(result *Result, resp *providers.Response, err error, model string) {
	if err != nil || resp == nil || resp.Usage == nil {
		result.CostSummary = pricing.NoUsage
		result.logf("%s", pricing.NoUsage)
		return
	}
	result.CostSummary = s.Prices.Summary(model, *resp.Usage)
	result.logf("%s", result.CostSummary)
}

// ReadAPIKey reads and trims the key stored at path.
func ReadAPIKey(path string) (string, error) {
	if isBlank(path) {
		return "", errors.New("API key path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("API key path invalid or not found: %s", path)
		}
		return "", fmt.Errorf("error reading API key file %s: %w", path, err)
	}

	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("no API key found in %s", path)
	}
	return key, nil
}

// saveCaption writes caption to dir/name.txt, creating dir as needed.
func saveCaption(dir, name, caption string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create caption directory: %w", err)
	}

	filename := strings.TrimSpace(name)
	if filename == "" {
		filename = DefaultTxtName
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".txt") {
		filename += ".txt"
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(caption), 0644); err != nil {
		return "", fmt.Errorf("failed to write caption: %w", err)
	}
	return path, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
