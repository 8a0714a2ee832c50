package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/captioner/internal/folder"
	"github.com/lehigh-university-libraries/captioner/internal/images"
	"github.com/lehigh-university-libraries/captioner/internal/report"
	"github.com/spf13/cobra"
)

func newBatchCmd(a *app) *cobra.Command {
	var flags promptFlags
	var saveTo string
	var yamlPath string
	var parquetPath string

	cmd := &cobra.Command{
		Use:   "batch DIR",
		Short: "Caption every image of a dataset folder",
		Long: `Walks a dataset folder once in sorted order, captions each image and writes
the caption to a text file named after the image. This is the usual layout
for training datasets: house.png gets house.txt.

A YAML report with token usage and cost is written at the end. With --parquet
the per-image rows are also written as a Parquet table.`,
		Example: `  # Caption a dataset in place
  captioner batch ./dataset --key ~/.gemini.key --style FLUX

  # Write captions elsewhere and keep a parquet report
  captioner batch ./dataset --save-to ./captions --parquet report.parquet`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			opts, err := flags.options(a)
			if err != nil {
				return err
			}
			// usage is needed for the report even without --cost
			opts.CostAware = true
			opts.SaveDir = saveTo
			if opts.SaveDir == "" {
				opts.SaveDir = dir
			}

			svc, err := a.service(flags.provider)
			if err != nil {
				return err
			}

			listing := folder.List(dir)
			if len(listing) == 0 {
				return fmt.Errorf("no supported images found in %s", dir)
			}

			timestamp := time.Now().Format("2006-01-02_15-04-05")
			if yamlPath == "" {
				yamlPath = filepath.Join(opts.SaveDir, fmt.Sprintf("captions_%s.yaml", timestamp))
			}

			rep := &report.Report{Config: report.Config{
				Provider:  svc.Provider.Name(),
				Model:     opts.Model,
				Style:     string(opts.Style),
				Folder:    dir,
				Timestamp: timestamp,
			}}

			for i, file := range listing {
				if err := cmd.Context().Err(); err != nil {
					return err
				}

				name := strings.TrimSuffix(file, filepath.Ext(file))
				slog.Info("Captioning image", "index", i+1, "total", len(listing), "name", name)

				entry := report.Entry{Filename: file}
				img, err := images.Load(filepath.Join(dir, file))
				if err != nil {
					slog.Warn("Skipping unreadable image", "file", file, "err", err)
					entry.FailedStage = "load"
					entry.Error = err.Error()
					rep.Add(entry)
					continue
				}

				opts.TxtName = name
				result := svc.Caption(cmd.Context(), img, opts)
				entry.Caption = result.Caption
				entry.CaptionPath = result.SavedPath
				if result.Usage != nil {
					entry.InputTokens = int64(result.Usage.InputTokens)
					entry.OutputTokens = int64(result.Usage.OutputTokens)
					entry.Cost = svc.Prices.Cost(opts.Model, *result.Usage)
				}
				if result.Failed() {
					entry.FailedStage = string(result.FailedStage())
					entry.Error = result.Err().Error()
				}
				rep.Add(entry)

				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", file, result.Caption)
			}

			if err := rep.SaveYAML(yamlPath); err != nil {
				return err
			}
			if parquetPath != "" {
				if err := rep.SaveParquet(parquetPath); err != nil {
					return err
				}
			}

			s := rep.Summary
			fmt.Fprintf(cmd.ErrOrStderr(), "Captioned %d of %d images (%d failed). Input tokens: %d | Output tokens: %d | Cost: $%.6f\n",
				s.Captioned, s.Images, s.Failed, s.InputTokens, s.OutputTokens, s.Cost)
			if s.Failed > 0 {
				return fmt.Errorf("%d images failed, see %s", s.Failed, yamlPath)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&saveTo, "save-to", "", "Directory for caption files (defaults to DIR)")
	cmd.Flags().StringVar(&yamlPath, "report", "", "YAML report path (defaults to captions_<timestamp>.yaml in the save directory)")
	cmd.Flags().StringVar(&parquetPath, "parquet", "", "Also write the report rows as Parquet")

	return cmd
}
