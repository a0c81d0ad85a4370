package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Zentre-Ai/mcp-servers/internal/integrations"
	"github.com/Zentre-Ai/mcp-servers/internal/restclient"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list [integration...]",
	Short: "List integrations, their credential headers and tools",
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print JSON instead of text")
}

func runList(cmd *cobra.Command, args []string) error {
	names := args
	if len(names) == 0 {
		names = integrations.Names()
	}

	summaries := make([]integrations.Summary, 0, len(names))
	for _, name := range names {
		integ, err := integrations.Lookup(name, restclient.Options{})
		if err != nil {
			return err
		}
		s, err := integrations.Describe(cmd.Context(), integ)
		if err != nil {
			return err
		}
		summaries = append(summaries, s)
	}

	out := cmd.OutOrStdout()
	if listJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	for i, s := range summaries {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s: %s\n", s.Name, s.Description)
		fmt.Fprintf(out, "  headers: %s\n", strings.Join(s.Headers, ", "))
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, t := range s.Tools {
			fmt.Fprintf(tw, "  %s\t%s\n", t.Name, t.Description)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}
