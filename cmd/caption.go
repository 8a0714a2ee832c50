package cmd

import (
	"fmt"

	"github.com/lehigh-university-libraries/captioner/internal/captioning"
	"github.com/lehigh-university-libraries/captioner/internal/images"
	"github.com/lehigh-university-libraries/captioner/internal/prompt"
	"github.com/spf13/cobra"
)

// promptFlags are the prompt and output options shared by caption and batch.
type promptFlags struct {
	provider   string
	model      string
	keyPath    string
	style      string
	length     int
	structure  string
	ignore     string
	emphasis   string
	dictionary string
	cost       bool
}

func (f *promptFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.provider, "provider", "", "LLM provider (gemini, gemini-sdk, openai, or ollama)")
	cmd.Flags().StringVar(&f.model, "model", "", "Model name (defaults to config)")
	cmd.Flags().StringVar(&f.keyPath, "key", "", "Path to a file holding the API key")
	cmd.Flags().StringVar(&f.style, "style", string(prompt.StyleSDXL), `Prompt type ("SD1.5 – SDXL" or "FLUX")`)
	cmd.Flags().IntVar(&f.length, "length", 0, "Maximum number of words in the prompt (0 for no limit)")
	cmd.Flags().StringVar(&f.structure, "structure", "", "Custom prompt structure")
	cmd.Flags().StringVar(&f.ignore, "ignore", "", "Things the prompt must not mention")
	cmd.Flags().StringVar(&f.emphasis, "emphasis", "", "Things the prompt should emphasize")
	cmd.Flags().StringVar(&f.dictionary, "dictionary", "", "Preferred vocabulary")
	cmd.Flags().BoolVar(&f.cost, "cost", false, "Report token usage and estimated cost")
}

func (f *promptFlags) options(a *app) (captioning.Options, error) {
	style, err := prompt.ParseStyle(f.style)
	if err != nil {
		return captioning.Options{}, err
	}
	if f.length < 0 || f.length > 1000 {
		return captioning.Options{}, fmt.Errorf("--length must be between 0 and 1000")
	}

	return captioning.Options{
		Style:      style,
		Model:      a.model(f.model),
		KeyPath:    a.keyPath(f.keyPath),
		MaxWords:   f.length,
		Structure:  f.structure,
		Ignore:     f.ignore,
		Emphasis:   f.emphasis,
		Dictionary: f.dictionary,
		CostAware:  f.cost,
	}, nil
}

func newCaptionCmd(a *app) *cobra.Command {
	var flags promptFlags
	var saveTo string
	var txtName string
	var showPrompt bool

	cmd := &cobra.Command{
		Use:   "caption IMAGE|URL",
		Short: "Generate a text prompt describing an image",
		Long: `Sends an image to a vision-capable LLM and prints a caption written as a
text prompt for a generative image model.

The run log is printed to stderr. The caption can optionally be written to a
text file.`,
		Example: `  # Keyword-style caption with Gemini
  captioner caption house.jpg --key ~/.gemini.key

  # Caption a remote image
  captioner caption https://example.org/house.png --key ~/.gemini.key

  # Natural language caption, at most 60 words, saved next to the dataset
  captioner caption house.jpg --style FLUX --length 60 --save-to ./captions --txt-name house --cost`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(a)
			if err != nil {
				return err
			}
			opts.SaveDir = saveTo
			opts.TxtName = txtName

			svc, err := a.service(flags.provider)
			if err != nil {
				return err
			}

			img, err := images.NewFetcher().Open(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			result := svc.Caption(cmd.Context(), img, opts)

			fmt.Fprintln(cmd.ErrOrStderr(), result.LogText())
			if showPrompt {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", result.Prompt)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Caption)
			if opts.CostAware {
				fmt.Fprintln(cmd.OutOrStdout(), result.CostSummary)
			}
			return result.Err()
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&saveTo, "save-to", "", "Directory to write the caption text file to")
	cmd.Flags().StringVar(&txtName, "txt-name", "", `Caption filename (default "caption.txt")`)
	cmd.Flags().BoolVar(&showPrompt, "show-prompt", false, "Print the prompt sent to the model")

	return cmd
}
