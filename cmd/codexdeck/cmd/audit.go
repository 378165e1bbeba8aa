package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/codexdeck/codexdeck/internal/audit"
	"github.com/codexdeck/codexdeck/internal/config"
)

var auditLimit int

// auditCmd shows recent workspace operation records.
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent workspace operations",
	Long: `Show the most recent workspace operations recorded in the local audit
store, newest first.`,
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().IntVarP(&auditLimit, "limit", "n", 20, "maximum number of records to show")
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.Audit.Enabled {
		return fmt.Errorf("audit store is disabled; enable it in %s", config.DefaultConfigPath())
	}

	store, err := audit.NewStore(cfg.Audit.Path)
	if err != nil {
		return fmt.Errorf("failed to open audit store: %w", err)
	}
	defer store.Close()

	records, err := store.Recent(auditLimit)
	if err != nil {
		return fmt.Errorf("failed to read audit records: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No audit records.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSOURCE\tOPERATION\tDETAILS")
	for _, rec := range records {
		details := ""
		if len(rec.Payload) > 0 {
			if data, err := json.Marshal(rec.Payload); err == nil {
				details = clip(string(data), 60)
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			rec.Timestamp.Local().Format(time.DateTime),
			rec.Source,
			rec.Label,
			details,
		)
	}
	return w.Flush()
}

func clip(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
