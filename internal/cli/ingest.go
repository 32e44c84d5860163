package cli

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mvp-joe/blockpulse/internal/files"
)

var ingestQuiet bool

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest <dir>",
	Short: "Load document export files into the content store",
	Long: `Ingest discovers document export files (JSON, filtered by the configured
glob patterns) under the given directory and upserts them into the content
store. Existing documents with the same id are replaced.

Example:
  blockpulse ingest ./exports
`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().BoolVarP(&ingestQuiet, "quiet", "q", false, "Disable progress output")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	loaded, skipped, err := ingestDir(cmd.Context(), a, args[0], ingestQuiet)
	if err != nil {
		return err
	}
	fmt.Printf("Ingested %d documents (%d files skipped)\n", loaded, skipped)
	return nil
}

// ingestDir loads every matching export file under dir into the store.
// Unreadable or malformed files are skipped with a warning, not fatal: one
// broken export must not block the rest of the batch.
func ingestDir(ctx context.Context, a *app, dir string, quiet bool) (loaded, skipped int, err error) {
	discovery, err := files.NewDiscovery(dir, a.cfg.Paths.Include, a.cfg.Paths.Ignore)
	if err != nil {
		return 0, 0, err
	}
	paths, err := discovery.Discover()
	if err != nil {
		return 0, 0, err
	}

	var bar *progressbar.ProgressBar
	if !quiet {
		bar = progressbar.NewOptions(len(paths),
			progressbar.OptionSetDescription("Ingesting documents"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
		)
	}

	for _, path := range paths {
		if ctx.Err() != nil {
			return loaded, skipped, ctx.Err()
		}
		doc, err := files.ReadDocument(path)
		if err != nil {
			a.logger.Warn("skipping document file", zap.String("path", path), zap.Error(err))
			skipped++
		} else if err := a.store.UpsertDocument(ctx, doc); err != nil {
			return loaded, skipped, err
		} else {
			loaded++
		}
		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		bar.Finish()
		fmt.Println()
	}
	return loaded, skipped, nil
}
