package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var envFiles []string

var rootCmd = &cobra.Command{
	Use:   "mcp-servers",
	Short: "MCP servers for SaaS APIs",
	Long: `mcp-servers exposes third-party SaaS APIs (GitHub, Jira, Datadog, Stripe,
Miro, BambooHR, Xero, Slack) as MCP tools. Each integration is served on its
own; callers pass their vendor credentials in HTTP headers on every request, or
through the environment when serving over stdio.

It also scaffolds new integration projects from a template.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

// normalizeFlagName accepts snake_case spellings of flags.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func init() {
	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load before reading the environment (default .env)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(scaffoldCmd)
	rootCmd.AddCommand(statsCmd)
}
