package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"accesstop/internal/config"
	"accesstop/internal/logfmt"
	"accesstop/internal/query"
)

var avgCmd = &cobra.Command{
	Use:   "avg <field>...",
	Short: "Print the average of the given fields",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan := query.Avg(args)
		return run(resolvedOptions(), &plan)
	},
}

var sumCmd = &cobra.Command{
	Use:   "sum <field>...",
	Short: "Compute the sum of the given fields",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan := query.Sum(args)
		return run(resolvedOptions(), &plan)
	},
}

var printCmd = &cobra.Command{
	Use:   "print <field>...",
	Short: "Print the distinct combinations of the given fields",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan := query.Print(args)
		return run(resolvedOptions(), &plan)
	},
}

var topCmd = &cobra.Command{
	Use:   "top <field>...",
	Short: "Find the top values for the given fields",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := resolvedOptions()
		plan := query.Top(args, opts.Limit)
		return run(opts, &plan)
	},
}

var (
	queryFields []string
	queryText   string
)

var queryCmd = &cobra.Command{
	Use:   "query --fields <field>... --query <sql>",
	Short: "Run a custom query against the stored fields",
	Long: `Run a user-supplied query against the log table. The fields listed
with --fields become the table's columns; the query string is passed to the
engine verbatim, so quote it in your shell.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(queryFields) == 0 {
			return fmt.Errorf("query: at least one --fields value is required")
		}
		if queryText == "" {
			return fmt.Errorf("query: --query is required")
		}
		plan := query.Custom(queryFields, queryText)
		return run(resolvedOptions(), &plan)
	},
}

var (
	styleLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	styleValue = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the resolved source, format, and queryable fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := resolvedOptions()

		source := opts.AccessLog
		if source == "" {
			source = config.StdinSource
		}

		template, err := logfmt.Resolve(opts.Format)
		if err != nil {
			return err
		}
		matcher, err := logfmt.Compile(template)
		if err != nil {
			return err
		}

		printInfo("access log file", source)
		printInfo("access log format", opts.Format)
		printInfo("available variables to query", strings.Join(matcher.Directives(), ", "))
		return nil
	},
}

func printInfo(label, value string) {
	fmt.Fprintf(os.Stdout, "%s %s\n",
		styleLabel.Render(label+":"), styleValue.Render(value))
}

func init() {
	queryCmd.Flags().StringSliceVar(&queryFields, "fields", nil, "fields to store as table columns")
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "the query to run, verbatim")

	rootCmd.AddCommand(avgCmd, sumCmd, printCmd, topCmd, queryCmd, infoCmd)
}
