package cmd

import (
	"fmt"

	"github.com/lehigh-university-libraries/captioner/internal/captioning"
	"github.com/lehigh-university-libraries/captioner/internal/gemini"
	"github.com/lehigh-university-libraries/captioner/internal/ollama"
	"github.com/lehigh-university-libraries/captioner/internal/openai"
	"github.com/lehigh-university-libraries/captioner/internal/pricing"
	"github.com/lehigh-university-libraries/captioner/internal/prompt"
	"github.com/lehigh-university-libraries/captioner/internal/providers"
)

func (a *app) provider(name string) (providers.Provider, error) {
	if name == "" {
		name = a.cfg.Provider
	}

	switch name {
	case "gemini":
		return gemini.New(a.cfg.GeminiBaseURL), nil
	case "gemini-sdk":
		return gemini.NewSDK(), nil
	case "openai":
		return openai.New(a.cfg.OpenAIBaseURL), nil
	case "ollama":
		return ollama.New(a.cfg.OllamaURL), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}

// service builds a captioning service, applying price and template overrides
// from the config.
func (a *app) service(providerName string) (*captioning.Service, error) {
	p, err := a.provider(providerName)
	if err != nil {
		return nil, err
	}

	svc := captioning.NewService(p)
	if a.cfg.PricesFile != "" {
		prices, err := pricing.Load(a.cfg.PricesFile)
		if err != nil {
			return nil, err
		}
		svc.Prices = prices
	}
	if a.cfg.TemplatesFile != "" {
		templates, err := prompt.LoadTemplates(a.cfg.TemplatesFile)
		if err != nil {
			return nil, err
		}
		svc.Templates = templates
	}
	return svc, nil
}

// models returns the model choices offered for the provider.
func (a *app) models(p providers.Provider) []string {
	switch p.(type) {
	case *gemini.Gemini, *gemini.SDK:
		models := append([]string(nil), gemini.Models...)
		for _, m := range models {
			if m == a.cfg.Model {
				return models
			}
		}
		return append([]string{a.cfg.Model}, models...)
	default:
		return []string{a.cfg.Model}
	}
}

func (a *app) keyPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return a.cfg.APIKeyPath
}

func (a *app) model(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return a.cfg.Model
}
