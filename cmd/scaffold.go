package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zentre-Ai/mcp-servers/internal/scaffold"
)

var (
	scaffoldName        string
	scaffoldDescription string
	scaffoldAuthor      string
	scaffoldOutput      string
	scaffoldTemplate    string
	scaffoldInstall     bool
)

var scaffoldCmd = &cobra.Command{
	Use:   "scaffold",
	Short: "Generate a new MCP server project from a template",
	Long: `
Generate a new MCP server project in <output>/<name>.

{{SERVER_NAME}}, {{DESCRIPTION}} and {{AUTHOR}} are replaced in file contents
(binary files are copied as-is) and in path names. A template may carry a
template.yaml listing extra ignore globs and the install command.

Examples:
  mcp-servers scaffold --name acme-crm --description "Acme CRM" --author "Platform Team"
  mcp-servers scaffold --name acme-crm --description "Acme CRM" --author me --template ./my-template --install
`,
	Args: cobra.NoArgs,
	RunE: runScaffold,
}

func init() {
	scaffoldCmd.Flags().StringVarP(&scaffoldName, "name", "n", "", "Project name (lowercase letters, digits and hyphens)")
	scaffoldCmd.Flags().StringVarP(&scaffoldDescription, "description", "d", "", "One-line project description")
	scaffoldCmd.Flags().StringVarP(&scaffoldAuthor, "author", "a", "", "Project author")
	scaffoldCmd.Flags().StringVarP(&scaffoldOutput, "output", "o", ".", "Parent directory of the generated project")
	scaffoldCmd.Flags().StringVar(&scaffoldTemplate, "template", "", "Template directory (default: built-in template)")
	scaffoldCmd.Flags().BoolVar(&scaffoldInstall, "install", false, "Run the template's install command after generating")

	_ = scaffoldCmd.MarkFlagRequired("name")
	_ = scaffoldCmd.MarkFlagRequired("description")
	_ = scaffoldCmd.MarkFlagRequired("author")
}

func runScaffold(cmd *cobra.Command, _ []string) error {
	res, err := scaffold.Generate(cmd.Context(), scaffold.Options{
		Name:        scaffoldName,
		Description: scaffoldDescription,
		Author:      scaffoldAuthor,
		OutputDir:   scaffoldOutput,
		TemplateDir: scaffoldTemplate,
		Install:     scaffoldInstall,
		Output:      cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s (%d files)\n", res.Dir, len(res.Files))
	for _, f := range res.Files {
		fmt.Fprintf(out, "  %s\n", f)
	}
	return nil
}
