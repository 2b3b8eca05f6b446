package main

import (
	"github.com/spf13/cobra"

	"opsboard/internal/finance"
	"opsboard/internal/finance/exports"
)

var (
	rangeFlag   string
	statusFlag  string
	urgencyFlag string
	typeFlag    string
	exportsDir  string
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Print the filtered finance dashboard",
	Long: `Loads the bookkeeping exports and prints the filtered invoices, the
filtered debtors and the dashboard statistics.

Ranges: today, yesterday, week, month, last_month, year, all.`,
	Args: cobra.NoArgs,
	RunE: runAggregate,
}

var cubeCmd = &cobra.Command{
	Use:   "cube",
	Short: "Print the overdue/open summary card",
	Args:  cobra.NoArgs,
	RunE:  runCube,
}

func init() {
	for _, c := range []*cobra.Command{aggregateCmd, cubeCmd} {
		c.Flags().StringVar(&exportsDir, "exports-dir", "", "Read JSON exports from this directory (overrides EXPORTS_SOURCE)")
	}
	aggregateCmd.Flags().StringVar(&rangeFlag, "range", "all", "Date range selector")
	aggregateCmd.Flags().StringVar(&statusFlag, "status", finance.All, "Invoice status filter")
	aggregateCmd.Flags().StringVar(&urgencyFlag, "urgency", finance.All, "Debtor urgency filter")
	aggregateCmd.Flags().StringVar(&typeFlag, "type", finance.All, "Invoice document type filter")
}

func financeService(cmd *cobra.Command) (*finance.Service, error) {
	var source finance.Source
	if exportsDir != "" {
		source = exports.NewJSONDirSource(exportsDir, logger)
	} else {
		var err error
		source, err = exports.FromConfig(cmd.Context(), cfg, logger)
		if err != nil {
			return nil, err
		}
	}
	return finance.NewService(source, logger), nil
}

func runAggregate(cmd *cobra.Command, args []string) error {
	svc, err := financeService(cmd)
	if err != nil {
		return err
	}
	res, err := svc.Dashboard(cmd.Context(), rangeFlag, finance.Filters{
		Status:  statusFlag,
		Urgency: urgencyFlag,
		Type:    typeFlag,
	})
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}

func runCube(cmd *cobra.Command, args []string) error {
	svc, err := financeService(cmd)
	if err != nil {
		return err
	}
	summary, err := svc.Cube(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), summary)
}
