package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vinscan/internal/location"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Company name and allowed locations",
	}

	settingsCmd.AddCommand(newSettingsShowCommand(ctx))
	settingsCmd.AddCommand(newSettingsCompanyCommand(ctx))
	settingsCmd.AddCommand(newSettingsLocationCommand(ctx))
	settingsCmd.AddCommand(newSettingsStrictCommand(ctx))

	return settingsCmd
}

func newSettingsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(_ context.Context, a *app) error {
				current := a.settings.Get()
				if jsonOutput {
					return writeJSON(cmd, current)
				}
				locations := "(any code accepted)"
				if len(current.AllowedLocations) > 0 {
					locations = strings.Join(current.AllowedLocations, ", ")
				}
				rows := [][]string{
					{"Company", current.CompanyName},
					{"Allowed locations", locations},
					{"Strict location mode", yesNo(current.StrictLocationMode)},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Setting", "Value"}, rows, nil))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit settings as JSON")
	return cmd
}

func newSettingsCompanyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "company NAME",
		Short: "Rename the company shown on exports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(runCtx context.Context, a *app) error {
				if err := a.settings.SetCompany(runCtx, strings.Join(args, " ")); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Company set to %s\n", a.settings.Company())
				return nil
			})
		},
	}
}

func newSettingsLocationCommand(ctx *commandContext) *cobra.Command {
	locationCmd := &cobra.Command{
		Use:   "location",
		Short: "Edit the allowed location list",
	}

	locationCmd.AddCommand(&cobra.Command{
		Use:   "add CODE...",
		Short: "Allow one or more location codes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(runCtx context.Context, a *app) error {
				out := cmd.OutOrStdout()
				for _, code := range args {
					added, err := a.settings.AddLocation(runCtx, code)
					if err != nil {
						return err
					}
					if added {
						fmt.Fprintf(out, "Added %s\n", location.Normalize(code))
					} else {
						fmt.Fprintf(out, "%s already allowed\n", location.Normalize(code))
					}
				}
				return nil
			})
		},
	})

	locationCmd.AddCommand(&cobra.Command{
		Use:   "remove CODE...",
		Short: "Remove location codes from the allowed list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(runCtx context.Context, a *app) error {
				out := cmd.OutOrStdout()
				for _, code := range args {
					removed, err := a.settings.RemoveLocation(runCtx, code)
					if err != nil {
						return err
					}
					if removed {
						fmt.Fprintf(out, "Removed %s\n", location.Normalize(code))
					} else {
						fmt.Fprintf(out, "%s was not listed\n", location.Normalize(code))
					}
				}
				return nil
			})
		},
	})

	return locationCmd
}

func newSettingsStrictCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "strict on|off",
		Short:     "Toggle strict location mode",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			on := args[0] == "on"
			return ctx.withSession(cmd, func(runCtx context.Context, a *app) error {
				if err := a.settings.SetStrictLocationMode(runCtx, on); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Strict location mode: %s\n", yesNo(on))
				return nil
			})
		},
	}
}
