package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mvp-joe/blockpulse/internal/files"
	"github.com/mvp-joe/blockpulse/internal/watcher"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Watch a document export directory and track saves as they land",
	Long: `Watch monitors the given directory for created or modified document
export files. Each matching file is ingested into the content store and run
through the tracking pipeline as a fresh save.

Example:
  blockpulse watch ./exports
`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	dir := args[0]
	discovery, err := files.NewDiscovery(dir, cfg.Paths.Include, cfg.Paths.Ignore)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted! Stopping watch...")
		cancel()
	}()

	w, err := watcher.New(dir, discovery.Matches, logger)
	if err != nil {
		return err
	}
	defer w.Stop()

	w.Start(ctx, func(changed []string) {
		for _, path := range changed {
			doc, err := files.ReadDocument(path)
			if err != nil {
				logger.Warn("skipping document file", zap.String("path", path), zap.Error(err))
				continue
			}
			if err := a.store.UpsertDocument(ctx, doc); err != nil {
				logger.Warn("failed to store document", zap.Int64("id", doc.ID), zap.Error(err))
				continue
			}
			emitted := a.tracker.HandleSave(ctx, a.save(doc))
			fmt.Printf("tracked %s: %d event(s)\n", path, emitted)
		}
	})

	fmt.Printf("Watching %s for document saves (Ctrl+C to stop)\n", dir)
	<-ctx.Done()
	return nil
}
