package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"vinscan/internal/logging"
	"vinscan/internal/recognition"
	"vinscan/internal/session"
	"vinscan/internal/vin"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Recognize vehicles from photos",
	}
	scanCmd.AddCommand(newScanVINCommand(ctx))
	return scanCmd
}

func newScanVINCommand(ctx *commandContext) *cobra.Command {
	var enrich bool

	cmd := &cobra.Command{
		Use:   "vin IMAGE",
		Short: "Read the VIN plate in a photo into the pending vehicle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(runCtx context.Context, a *app) error {
				img, err := recognition.LoadImage(args[0], a.cfg.Recognition.MaxImageBytes)
				if err != nil {
					return err
				}
				draft, err := a.session.ScanVehicle(runCtx, img)
				if err != nil {
					return err
				}
				if enrich && (draft.Model == "" || draft.Year == "") {
					draft = enrichDraft(runCtx, a, draft)
				}
				printDraft(cmd.OutOrStdout(), draft)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&enrich, "enrich", false, "Ask the service for model and year when the photo lacks them")
	return cmd
}

// enrichDraft fills a missing model or year from DescribeVIN. Failures are
// logged and leave the draft as it was.
func enrichDraft(ctx context.Context, a *app, draft session.Draft) session.Draft {
	client, err := a.requireRecognition()
	if err != nil {
		return draft
	}
	info, err := client.DescribeVIN(ctx, draft.VIN)
	if err != nil {
		logging.WarnWithContext(a.logger, "vin enrichment failed", "enrichment_failed",
			logging.String(logging.FieldVIN, draft.VIN),
			logging.Error(err),
			logging.String(logging.FieldImpact, "draft kept without model details"),
		)
		return draft
	}
	var update session.DraftUpdate
	if draft.Model == "" && info.Model != "" {
		update.Model = &info.Model
	}
	if draft.Year == "" && info.Year != "" {
		update.Year = &info.Year
	}
	updated, err := a.session.UpdateDraft(update)
	if err != nil {
		return draft
	}
	return updated
}

func newVINCommand(ctx *commandContext) *cobra.Command {
	vinCmd := &cobra.Command{
		Use:   "vin",
		Short: "Enter or edit the pending vehicle",
	}

	vinCmd.AddCommand(newVINEnterCommand(ctx))
	vinCmd.AddCommand(newVINEditCommand(ctx))
	vinCmd.AddCommand(newVINShowCommand(ctx))
	vinCmd.AddCommand(newVINDiscardCommand(ctx))

	return vinCmd
}

func newVINEnterCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "enter VIN",
		Short: "Type a VIN by hand",
		Long:  "Type a VIN by hand. Letters I, O and Q and any other character outside A-Z and 0-9 are dropped as they are typed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(_ context.Context, a *app) error {
				draft, err := a.session.EnterVIN(args[0])
				if err != nil {
					return err
				}
				printDraft(cmd.OutOrStdout(), draft)
				return nil
			})
		},
	}
}

func newVINEditCommand(ctx *commandContext) *cobra.Command {
	var makeFlag, modelFlag, yearFlag, remarksFlag string

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit make, model, year or remarks of the pending vehicle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var update session.DraftUpdate
			flags := cmd.Flags()
			if flags.Changed("make") {
				update.Make = &makeFlag
			}
			if flags.Changed("model") {
				update.Model = &modelFlag
			}
			if flags.Changed("year") {
				update.Year = &yearFlag
			}
			if flags.Changed("remarks") {
				update.Remarks = &remarksFlag
			}
			return ctx.withSession(cmd, func(_ context.Context, a *app) error {
				draft, err := a.session.UpdateDraft(update)
				if err != nil {
					return err
				}
				printDraft(cmd.OutOrStdout(), draft)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&makeFlag, "make", "", "Vehicle make")
	cmd.Flags().StringVar(&modelFlag, "model", "", "Vehicle model")
	cmd.Flags().StringVar(&yearFlag, "year", "", "Model year")
	cmd.Flags().StringVar(&remarksFlag, "remarks", "", "Free-text remarks")
	return cmd
}

func newVINShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the pending vehicle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(_ context.Context, a *app) error {
				draft, ok := a.session.Draft()
				if !ok {
					return session.ErrNoDraft
				}
				printDraft(cmd.OutOrStdout(), draft)
				return nil
			})
		},
	}
}

func newVINDiscardCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "discard",
		Short: "Drop the pending vehicle without saving",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(_ context.Context, a *app) error {
				if _, ok := a.session.Draft(); !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "No pending vehicle")
					return nil
				}
				a.session.DiscardDraft()
				fmt.Fprintln(cmd.OutOrStdout(), "Pending vehicle discarded")
				return nil
			})
		},
	}
}

func newSaveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Save the pending vehicle to stock at the locked location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(runCtx context.Context, a *app) error {
				rec, err := a.session.Save(runCtx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s %s %s) at %s on %s %s; %d vehicles in stock\n",
					rec.VIN, rec.Year, rec.Make, rec.Model, rec.Location, rec.Date, rec.Time, a.history.Len())
				return nil
			})
		},
	}
}

func newDescribeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "describe VIN",
		Short: "Decode a VIN and ask the service for its model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			canonical, err := vin.Validate(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return ctx.withApp(cmd, func(runCtx context.Context, a *app) error {
				manufacturer := vin.InferMake(canonical)
				if manufacturer == "" {
					manufacturer = "unknown"
				}
				fmt.Fprintf(out, "VIN:          %s\n", canonical)
				fmt.Fprintf(out, "Manufacturer: %s\n", manufacturer)
				fmt.Fprintf(out, "Model year:   %s\n", orDash(vin.ModelYearString(canonical, a.now().Year()+1)))
				fmt.Fprintf(out, "Check digit:  %s\n", checkDigitLabel(vin.CheckDigitValid(canonical)))
				if rec, ok := a.history.Find(canonical); ok {
					fmt.Fprintf(out, "In stock:     %s since %s %s\n", rec.Location, rec.Date, rec.Time)
				}

				client, err := a.requireRecognition()
				if err != nil {
					fmt.Fprintln(out, "Model:        (recognition not configured)")
					return nil
				}
				info, err := client.DescribeVIN(runCtx, canonical)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Model:        %s\n", orDash(info.Model))
				if info.Year != "" {
					fmt.Fprintf(out, "Service year: %s\n", info.Year)
				}
				return nil
			})
		},
	}
}

func printDraft(w io.Writer, d session.Draft) {
	fmt.Fprintf(w, "VIN:         %s\n", d.VIN)
	fmt.Fprintf(w, "Make:        %s\n", orDash(d.Make))
	fmt.Fprintf(w, "Model:       %s\n", orDash(d.Model))
	fmt.Fprintf(w, "Year:        %s\n", orDash(d.Year))
	if d.Remarks != "" {
		fmt.Fprintf(w, "Remarks:     %s\n", d.Remarks)
	}
	fmt.Fprintf(w, "Check digit: %s\n", checkDigitLabel(d.CheckDigitOK))
	if d.Confidence > 0 {
		fmt.Fprintf(w, "Confidence:  %.0f%%\n", d.Confidence*100)
	}
	if notes := strings.TrimSpace(d.Notes); notes != "" {
		fmt.Fprintf(w, "Notes:       %s\n", notes)
	}
	fmt.Fprintln(w, "Run `vinscan save` to add it to stock")
}

func checkDigitLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "mismatch (not required outside North America)"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
