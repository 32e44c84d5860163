// Package cli implements the blockpulse command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mvp-joe/blockpulse/internal/config"
)

var (
	rootDir string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "blockpulse",
	Short: "Block-usage analytics for storefront content",
	Long: `blockpulse measures product-collection block usage across saved
storefront content: it walks each document's block tree, resolves template
parts and synced patterns, classifies every instance, and emits one
analytics event per instance.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", ".", "project root holding .blockpulse/")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the configuration relative to --root.
func loadConfig() (*config.Config, error) {
	return config.NewLoader(rootDir).Load()
}

// newLogger builds the CLI logger; --verbose switches to the development
// config with debug output.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}
