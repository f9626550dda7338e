package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vinscan/internal/config"
	"vinscan/internal/history"
	"vinscan/internal/location"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"stock"},
		Short:   "List, export or clear saved vehicles",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryExportCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))

	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var locationFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved vehicles, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(_ context.Context, a *app) error {
				records := filterByLocation(a.history.Records(), locationFilter)
				if jsonOutput {
					if records == nil {
						records = []history.Record{}
					}
					return writeJSON(cmd, records)
				}
				out := cmd.OutOrStdout()
				if len(records) == 0 {
					fmt.Fprintln(out, "No vehicles in stock")
					return nil
				}
				fmt.Fprintln(out, renderHistoryTable(records))
				fmt.Fprintf(out, "%d vehicles\n", len(records))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit records as JSON")
	cmd.Flags().StringVar(&locationFilter, "location", "", "Only show vehicles saved at this location")
	return cmd
}

func filterByLocation(records []history.Record, code string) []history.Record {
	code = location.Normalize(code)
	if code == "" {
		return records
	}
	filtered := make([]history.Record, 0, len(records))
	for _, rec := range records {
		if rec.Location == code {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

func renderHistoryTable(records []history.Record) string {
	headers := []string{"#", "VIN", "Make", "Model", "Year", "Location", "Saved", "Remarks"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft}
	rows := make([][]string, 0, len(records))
	for i, rec := range records {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			rec.VIN,
			rec.Make,
			rec.Model,
			rec.Year,
			rec.Location,
			strings.TrimSpace(rec.Date + " " + rec.Time),
			rec.Remarks,
		})
	}
	return renderTable(headers, rows, aligns)
}

func newHistoryExportCommand(ctx *commandContext) *cobra.Command {
	var outDir string
	var stdout bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stock list as a CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(_ context.Context, a *app) error {
				if a.history.Len() == 0 {
					msgOut := cmd.OutOrStdout()
					if stdout {
						msgOut = cmd.ErrOrStderr()
					}
					fmt.Fprintln(msgOut, "No vehicles in stock; nothing to export")
					return nil
				}
				company := a.settings.Company()
				if stdout {
					return a.history.ExportCSV(cmd.OutOrStdout(), company)
				}
				dir := a.cfg.Paths.ExportDir
				if trimmed := strings.TrimSpace(outDir); trimmed != "" {
					expanded, err := config.ExpandPath(trimmed)
					if err != nil {
						return fmt.Errorf("resolve export directory: %w", err)
					}
					dir = expanded
				}
				path, err := a.history.WriteExport(dir, company, a.now())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d vehicles to %s\n", a.history.Len(), path)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory for the CSV file (default paths.export_dir)")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Write the CSV to stdout instead of a file")
	return cmd
}

var errClearNotConfirmed = errors.New("history not cleared; pass --yes to confirm")

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every saved vehicle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(runCtx context.Context, a *app) error {
				count := a.history.Len()
				if count == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "History is already empty")
					return nil
				}
				if !yes {
					ok, err := confirm(cmd, fmt.Sprintf("Delete all %d saved vehicles?", count))
					if err != nil {
						return err
					}
					if !ok {
						return errClearNotConfirmed
					}
				}
				if err := a.history.Clear(runCtx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d vehicles\n", count)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
