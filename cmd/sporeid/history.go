// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/sporeid/internal/history"
	"github.com/pdiddy/sporeid/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show, clear or export past classifications",
	Long: `History manages the list of past classifications, most recent first.
With the sqlite backend the list persists between runs; with the memory
backend it only lasts for the current command.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past classifications, most recent first",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	records, err := a.svc.History(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(w, "No classifications yet.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tFAMILY\tCONFIDENCE")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%.1f%%\n", r.Time().Format(time.DateTime), r.Label, r.Confidence*100)
	}
	return tw.Flush()
}

// --- clear subcommand ---

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every past classification",
	RunE:  runHistoryClear,
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	records, err := a.svc.History(cmd.Context())
	if err != nil {
		return err
	}
	if err := a.svc.ClearHistory(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d record(s).\n", len(records))
	return nil
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the history as YAML or JSON",
	RunE:  runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	var write func(io.Writer, []types.HistoryRecord) error
	switch format {
	case "yaml", "yml":
		write = history.WriteYAML
	case "json":
		write = history.WriteJSON
	default:
		return fmt.Errorf("unsupported format %q (use yaml or json)", format)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	records, err := a.svc.History(cmd.Context())
	if err != nil {
		return err
	}

	if output == "" || output == "-" {
		return write(cmd.OutOrStdout(), records)
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", output, err)
	}
	if err := write(f, records); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Exported %d record(s) to %s\n", len(records), output)
	return nil
}

func init() {
	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	historyExportCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
