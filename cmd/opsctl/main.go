// Command opsctl inspects opsboard data from the shell: finance dashboards,
// the cube summary, persisted board views and the automation rules.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"opsboard/internal/cli"
	"opsboard/internal/config"
	"opsboard/internal/log"
)

// skipValidation marks commands that run before the configuration is complete.
const skipValidation = "opsctl/skip-validation"

var (
	// Global flags
	verbose bool
	envFile string

	cfg    *config.Config
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "opsctl",
	Short: "Inspect opsboard finance data, board views and automation rules",
	Long: `opsctl reads the same configuration as the opsboard server
(environment variables, optionally from a .env file) and prints JSON.

Examples:
  opsctl aggregate --range month --urgency critical
  opsctl cube
  opsctl view tasks
  opsctl sort --file billing.json --sort amount:desc
  opsctl sheets-auth --port 8085`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			cli.LoadEnvFile(envFile)
		} else {
			cli.LoadEnvFile()
		}

		cfg = config.Load()
		level := log.ParseLevel(cfg.LogLevel)
		if verbose {
			level = slog.LevelDebug
		}
		// Logs go to stderr so stdout stays parseable.
		logger = log.New(log.Config{Level: level, Component: log.ComponentApp, Output: cmd.ErrOrStderr()})

		if _, skip := cmd.Annotations[skipValidation]; skip {
			return nil
		}
		return cfg.Validate()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment from this file instead of .env")

	rootCmd.AddCommand(aggregateCmd, cubeCmd, viewCmd, rulesCmd)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
