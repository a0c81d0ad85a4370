package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Zentre-Ai/mcp-servers/internal/metrics"
)

var (
	statsDB   string
	statsJSON bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cumulative tool invocation counts",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsDB, "db", "", "Stats database path (default STATS_DB_PATH or ~/.mcp-servers/stats.db)")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Print JSON instead of a table")
}

func runStats(cmd *cobra.Command, _ []string) error {
	path := statsDB
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path = cfg.StatsDBPath
	}

	store, err := metrics.NewStore(path)
	if err != nil {
		return fmt.Errorf("failed to open stats database: %w", err)
	}
	defer store.Close()

	totals, err := store.Totals()
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	out := cmd.OutOrStdout()
	if statsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(totals)
	}
	if len(totals) == 0 {
		fmt.Fprintln(out, "No invocations recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INTEGRATION\tTOOL\tCALLS\tERRORS")
	for _, t := range totals {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", t.Integration, t.Tool, t.Calls, t.Errors)
	}
	return tw.Flush()
}
