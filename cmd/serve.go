package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/captioner/internal/handlers"
	"github.com/lehigh-university-libraries/captioner/internal/nodes"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var port string
	var provider string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host the captioning and dataset folder nodes over HTTP",
		Long: `Starts an HTTP node host on the specified port.

A graph runner lists node definitions, creates node instances and executes
them with JSON inputs. Images travel as base64-encoded PNG. Each instance keeps
its own state, so two Dataset Folder instances iterate independently.`,
		Example: `  # Start server on the configured port (default 8888)
  captioner serve

  # Start server on custom port with a local Ollama model
  captioner serve --port 3000 --provider ollama`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(provider)
			if err != nil {
				return err
			}
			registry := nodes.NewDefaultRegistry(svc, a.models(svc.Provider))

			mux := http.NewServeMux()
			handlers.New(registry).Routes(mux)

			if port == "" {
				port = a.cfg.Port
			}
			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Node host available", "addr", addr, "url", "http://localhost"+addr, "provider", svc.Provider.Name())
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (defaults to config, 8888)")
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider (gemini, gemini-sdk, openai, or ollama)")

	return cmd
}
