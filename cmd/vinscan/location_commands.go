package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"vinscan/internal/recognition"
)

func newLocationCommand(ctx *commandContext) *cobra.Command {
	locationCmd := &cobra.Command{
		Use:   "location",
		Short: "Choose and confirm the storage location being scanned",
	}

	locationCmd.AddCommand(newLocationSelectCommand(ctx))
	locationCmd.AddCommand(newLocationScanCommand(ctx))
	locationCmd.AddCommand(newLocationLockCommand(ctx))
	locationCmd.AddCommand(newLocationChangeCommand(ctx))
	locationCmd.AddCommand(newLocationResetCommand(ctx))

	return locationCmd
}

func newLocationSelectCommand(ctx *commandContext) *cobra.Command {
	var lock bool

	cmd := &cobra.Command{
		Use:   "select CODE",
		Short: "Pick a location from the allowed list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(_ context.Context, a *app) error {
				if err := a.session.SelectLocation(args[0]); err != nil {
					return err
				}
				return reportLocation(cmd, a, lock)
			})
		},
	}

	cmd.Flags().BoolVar(&lock, "lock", false, "Confirm the location immediately")
	return cmd
}

func newLocationScanCommand(ctx *commandContext) *cobra.Command {
	var lock bool

	cmd := &cobra.Command{
		Use:   "scan IMAGE",
		Short: "Read a location code from a photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(runCtx context.Context, a *app) error {
				img, err := recognition.LoadImage(args[0], a.cfg.Recognition.MaxImageBytes)
				if err != nil {
					return err
				}
				_, found, err := a.session.ScanLocation(runCtx, img)
				if err != nil {
					return err
				}
				if !found {
					fmt.Fprintln(cmd.OutOrStdout(), "No location code recognized; try another photo or use `vinscan location select CODE`")
					return nil
				}
				return reportLocation(cmd, a, lock)
			})
		},
	}

	cmd.Flags().BoolVar(&lock, "lock", false, "Confirm the recognized location immediately")
	return cmd
}

func newLocationLockCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "lock",
		Short: "Confirm the active location so scanning can start",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(_ context.Context, a *app) error {
				return reportLocation(cmd, a, true)
			})
		},
	}
}

func newLocationChangeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "change",
		Short: "Unlock the location to pick another one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(_ context.Context, a *app) error {
				a.session.ChangeLocation()
				gate := a.session.Gate()
				if gate.Active() == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "Location unlocked")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Location unlocked (was %s)\n", gate.Active())
				return nil
			})
		},
	}
}

var errResetNotConfirmed = errors.New("session not reset; pass --yes to drop the pending vehicle")

func newLocationResetCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget the location and any pending vehicle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(_ context.Context, a *app) error {
				if draft, ok := a.session.Draft(); ok && !yes {
					confirmed, err := confirm(cmd, fmt.Sprintf("Discard pending vehicle %s?", draft.VIN))
					if err != nil {
						return err
					}
					if !confirmed {
						return errResetNotConfirmed
					}
				}
				a.session.Reset()
				fmt.Fprintln(cmd.OutOrStdout(), "Session reset; select a location to continue")
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// reportLocation optionally locks the gate and prints its state.
func reportLocation(cmd *cobra.Command, a *app, lock bool) error {
	if lock && !a.session.Gate().Locked() {
		if err := a.session.LockLocation(); err != nil {
			return err
		}
	}
	gate := a.session.Gate()
	out := cmd.OutOrStdout()
	if gate.Locked() {
		fmt.Fprintf(out, "Location %s locked; ready to scan\n", gate.Active())
		return nil
	}
	fmt.Fprintf(out, "Location %s selected; confirm with `vinscan location lock`\n", gate.Active())
	return nil
}
