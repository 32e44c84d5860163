package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/blockpulse/internal/refgraph"
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Check the stored content for reference cycles and dangling references",
	Long: `Audit builds the template-part and synced-pattern reference graph over
the content store. Reference cycles are tolerated at tracking time (the
walker refuses to re-enter a reference), but they are always an authoring
mistake worth fixing; dangling references point at deleted documents.
`,
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
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

	report, err := refgraph.Audit(cmd.Context(), a.store)
	if err != nil {
		return err
	}

	fmt.Printf("Documents:  %d\n", report.Documents)
	fmt.Printf("References: %d\n", report.References)

	for _, ref := range report.Dangling {
		fmt.Printf("dangling: %s -> %s\n", ref.From, ref.To)
	}
	for _, ref := range report.Cycles {
		fmt.Printf("cycle:    %s -> %s\n", ref.From, ref.To)
	}

	if len(report.Cycles) > 0 {
		return fmt.Errorf("found %d reference cycle(s)", len(report.Cycles))
	}
	fmt.Println("No reference cycles found")
	return nil
}
