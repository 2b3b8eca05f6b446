package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"opsboard/internal/boards"
	"opsboard/internal/core"
)

var (
	rowsFile    string
	sortFlag    string
	filterFlags []string
)

var sortCmd = &cobra.Command{
	Use:   "sort",
	Short: "Filter and sort a JSON array of records offline",
	Long: `Reads a JSON array of records and prints it through the board engine.

Sort is column:asc|desc. Filters are column:operator:value and may repeat;
operators: equals, contains, startsWith, endsWith, greaterThan, lessThan.

Example:
  opsctl sort --file billing.json --sort amount:desc --filter status:equals:pending`,
	Args: cobra.NoArgs,
	RunE: runSort,
}

func init() {
	sortCmd.Flags().StringVarP(&rowsFile, "file", "f", "", "JSON file holding an array of records")
	sortCmd.Flags().StringVar(&sortFlag, "sort", "", "Sort as column:direction")
	sortCmd.Flags().StringArrayVar(&filterFlags, "filter", nil, "Filter as column:operator:value")
	_ = sortCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(sortCmd)
}

func parseSortFlag(s string) (*boards.SortSpec, error) {
	if s == "" {
		return nil, nil
	}
	column, dir, ok := strings.Cut(s, ":")
	if !ok {
		dir = string(boards.Asc)
	}
	spec := boards.SortSpec{Column: column, Direction: boards.Direction(strings.ToLower(dir))}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

func parseFilterFlag(s string) (boards.FilterSpec, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return boards.FilterSpec{}, fmt.Errorf("invalid filter %q: want column:operator:value", s)
	}
	f := boards.FilterSpec{Column: parts[0], Operator: boards.Operator(parts[1]), Value: parts[2]}
	return f, f.Validate()
}

func runSort(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(rowsFile)
	if err != nil {
		return err
	}
	var records []core.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return fmt.Errorf("decode %s: %w", rowsFile, err)
	}

	spec, err := parseSortFlag(sortFlag)
	if err != nil {
		return err
	}
	filters := make([]boards.FilterSpec, 0, len(filterFlags))
	for _, s := range filterFlags {
		f, err := parseFilterFlag(s)
		if err != nil {
			return err
		}
		filters = append(filters, f)
	}

	logger.DebugContext(cmd.Context(), "Sorting records offline", "rows", len(records), "filters", len(filters))
	return printJSON(cmd.OutOrStdout(), boards.Apply(records, spec, filters))
}
