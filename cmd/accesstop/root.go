package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"accesstop/internal/config"
)

// rootCmd runs the default summary report when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "accesstop",
	Short: "top for web-server access logs",
	Long: `Accesstop analyzes web-server access logs and prints ranked,
aggregated traffic statistics. It reads a log file or standard input once,
or follows a growing file and refreshes the report on an interval.`,
	Version:       fmt.Sprintf("%s (%s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(resolvedOptions(), nil)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringP("access-log", "a", "", "the access log to parse (default: stdin when piped)")
	pf.StringP("format", "f", "combined", "log format name or a literal $directive template")
	pf.StringP("group-by", "g", "request_path", "group the default report by this field")
	pf.Uint64P("having", "w", 1, "minimum per-group count shown by the default report")
	pf.DurationP("interval", "i", 2*time.Second, "refresh interval in follow mode, with unit (e.g. 2s, 500ms)")
	pf.BoolP("follow", "t", false, "tail the log file (cannot follow stdin)")
	pf.Uint64P("limit", "l", 10, "limit each query to this many records")
	pf.StringP("order-by", "o", "count", "order the default queries by this field")
	pf.Bool("verbose", false, "log the generated statements")

	for _, name := range []string{
		"access-log", "format", "group-by", "having",
		"interval", "follow", "limit", "order-by", "verbose",
	} {
		if err := viper.BindPFlag(name, pf.Lookup(name)); err != nil {
			cobra.CheckErr(err)
		}
	}
}

func initConfig() {
	viper.SetEnvPrefix("ACCESSTOP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// resolvedOptions snapshots flags, environment, and defaults into the
// immutable run configuration.
func resolvedOptions() config.Options {
	return config.Options{
		AccessLog: viper.GetString("access-log"),
		Format:    viper.GetString("format"),
		GroupBy:   viper.GetString("group-by"),
		Having:    viper.GetUint64("having"),
		Interval:  viper.GetDuration("interval"),
		Follow:    viper.GetBool("follow"),
		Limit:     viper.GetUint64("limit"),
		OrderBy:   viper.GetString("order-by"),
		Verbose:   viper.GetBool("verbose"),
	}
}
