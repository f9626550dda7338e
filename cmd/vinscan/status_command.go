package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vinscan/internal/location"
	"vinscan/internal/preflight"
	"vinscan/internal/session"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the scan session, stock count and readiness checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(runCtx context.Context, a *app) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				var lines []string
				lines = append(lines, renderSectionHeader("Session", colorize)...)
				lines = append(lines, renderStatusLine("Company", statusInfo, a.settings.Company(), colorize))
				lines = append(lines, gateLine(a.session.Gate(), colorize))
				lines = append(lines, draftLines(a.session, colorize)...)
				lines = append(lines, renderStatusLine("Vehicles in stock", statusInfo, fmt.Sprintf("%d", a.history.Len()), colorize))
				lines = append(lines, "")

				results := preflight.RunAll(runCtx, a.cfg, remote)
				lines = append(lines, renderSectionHeader("Checks", colorize)...)
				lines = append(lines, preflightLines(results, colorize)...)

				fmt.Fprintln(out, strings.Join(lines, "\n"))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Also contact the recognition service")
	return cmd
}

func gateLine(g *location.Gate, colorize bool) string {
	switch {
	case g.Locked():
		return renderStatusLine("Location", statusOK, g.Active()+" (locked)", colorize)
	case g.Active() != "":
		return renderStatusLine("Location", statusWarn, g.Active()+" (not confirmed)", colorize)
	default:
		return renderStatusLine("Location", statusWarn, "none selected", colorize)
	}
}

func draftLines(s *session.Session, colorize bool) []string {
	draft, ok := s.Draft()
	if !ok {
		return []string{renderStatusLine("Pending vehicle", statusInfo, "none", colorize)}
	}
	kind := statusOK
	if !draft.CheckDigitOK {
		kind = statusWarn
	}
	return []string{renderStatusLine("Pending vehicle", kind, describeDraft(draft), colorize)}
}

func preflightLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		kind := statusOK
		if !r.Passed {
			kind = statusError
		}
		lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
	}
	return lines
}

// describeDraft renders a one-line summary of a pending vehicle.
func describeDraft(d session.Draft) string {
	parts := []string{d.VIN}
	if desc := strings.TrimSpace(strings.Join([]string{d.Year, d.Make, d.Model}, " ")); desc != "" {
		parts = append(parts, desc)
	}
	if !d.CheckDigitOK {
		parts = append(parts, "check digit mismatch")
	}
	return strings.Join(parts, " | ")
}
