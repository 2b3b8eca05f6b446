package main

import (
	"github.com/spf13/cobra"

	"opsboard/internal/automation"
	"opsboard/internal/backend"
	"opsboard/internal/boards"
	"opsboard/internal/schema"
)

var viewCmd = &cobra.Command{
	Use:   "view [board]",
	Short: "Print the persisted sort and filters of a board",
	Long: `Opens the configured view store (VIEW_STORE) and prints the sort
and filter set a board would start with.`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the automation rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(cmd.OutOrStdout(), automation.NewService(nil, nil, logger).Rules())
	},
}

func runView(cmd *cobra.Command, args []string) error {
	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	validator, err := schema.NewValidator()
	if err != nil {
		return err
	}
	be, err := backend.NewFactory(logger, validator).CreateBackend(cmd.Context(), backendConfig)
	if err != nil {
		return err
	}
	if be.Cleanup != nil {
		defer be.Cleanup()
	}

	board, err := boards.NewEngine(be.Views, logger).Configure(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), board.View())
}
