package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/captioner/internal/config"
	"github.com/spf13/cobra"
)

// app carries the loaded configuration to subcommands.
type app struct {
	configPath string
	verbose    bool
	cfg        *config.Config
}

func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "captioner",
		Short: "Image captioning and dataset folder nodes for generative-art pipelines",
		Long: `Captioner turns images into text prompts for generative image models.

It captions images with vision-capable LLMs (Gemini by default), iterates image
folders as a dataset source, and can host both as nodes for a graph runner.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.verbose {
				cfg.LogLevel = "debug"
			}
			a.cfg = cfg

			handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})
			slog.SetDefault(slog.New(handler))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (default ./captioner.yaml)")
	cmd.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "Verbose logging")

	// Add subcommands
	cmd.AddCommand(newCaptionCmd(a))
	cmd.AddCommand(newFolderCmd(a))
	cmd.AddCommand(newBatchCmd(a))
	cmd.AddCommand(newModelsCmd(a))
	cmd.AddCommand(newServeCmd(a))

	return cmd
}
