package cmd

import (
	"fmt"

	"github.com/lehigh-university-libraries/captioner/internal/captioning"
	"github.com/lehigh-university-libraries/captioner/internal/providers"
	"github.com/spf13/cobra"
)

func newModelsCmd(a *app) *cobra.Command {
	var provider string
	var keyPath string

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the models a provider offers",
		Example: `  captioner models --key ~/.gemini.key
  captioner models --provider gemini-sdk --key ~/.gemini.key
  captioner models --provider ollama`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.provider(provider)
			if err != nil {
				return err
			}
			lister, ok := p.(providers.ModelLister)
			if !ok {
				return fmt.Errorf("provider %s cannot list models", p.Name())
			}

			var apiKey string
			if path := a.keyPath(keyPath); path != "" {
				apiKey, err = captioning.ReadAPIKey(path)
				if err != nil {
					return err
				}
			}

			models, err := lister.ListModels(cmd.Context(), apiKey)
			if err != nil {
				return err
			}
			for _, m := range models {
				fmt.Fprintln(cmd.OutOrStdout(), m)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider (gemini, gemini-sdk, openai, or ollama)")
	cmd.Flags().StringVar(&keyPath, "key", "", "Path to a file holding the API key")

	return cmd
}
