package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lehigh-university-libraries/captioner/internal/folder"
	"github.com/spf13/cobra"
)

func newFolderCmd(a *app) *cobra.Command {
	var ticks int
	var outDir string

	cmd := &cobra.Command{
		Use:   "folder DIR",
		Short: "Step through a dataset folder the way the Dataset Folder node does",
		Long: `Advances a dataset folder iterator once per tick and prints the name it
emits. Files are visited in sorted order and the cursor wraps around, so a
tick count larger than the folder revisits images.

With --out, each emitted image is also written as a PNG.`,
		Example: `  # Preview the first 10 ticks
  captioner folder ./dataset --ticks 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ticks < 1 {
				return fmt.Errorf("--ticks must be at least 1")
			}
			if outDir != "" {
				if err := os.MkdirAll(outDir, 0755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}

			it := folder.NewIterator()
			for i := range ticks {
				img, name := it.Next(args[0])
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%dx%d\n", i, name, img.Width, img.Height)

				if outDir == "" {
					continue
				}
				data, err := img.EncodePNG()
				if err != nil {
					return err
				}
				path := filepath.Join(outDir, fmt.Sprintf("%04d_%s.png", i, name))
				if err := os.WriteFile(path, data, 0644); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&ticks, "ticks", "n", 1, "Number of ticks to run")
	cmd.Flags().StringVar(&outDir, "out", "", "Directory to write emitted images to")

	return cmd
}
