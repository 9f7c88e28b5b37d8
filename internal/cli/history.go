package cli

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sealbox/sealbox/internal/auditlog"
)

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the tamper-evident operation history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := app.audit.Entries()
			if len(entries) == 0 {
				color.Yellow("History is empty")
				return nil
			}

			for _, e := range entries {
				status := color.GreenString("✓")
				if e.Status != auditlog.StatusSuccess {
					status = color.RedString("✗")
				}
				cmd.Printf("%s  %s  %-10s %-30s %s\n", status, e.DisplayTime, e.Action, e.Filename, e.User)
			}
			return nil
		},
	}

	cmd.AddCommand(newHistoryVerifyCmd(app), newHistoryClearCmd(app))
	return cmd
}

func newHistoryVerifyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the integrity chain of the history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, report := app.audit.Verify()
			if !ok {
				color.Red("✗ %s", report)
				return nil
			}
			color.Green("✓ %s", report)
			return nil
		},
	}
}

func newHistoryClearCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Discard the whole history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				ok, err := confirm(app.reader, "Discard all history entries?", os.Stdout)
				if err != nil {
					return err
				}
				if !ok {
					color.Yellow("Aborted")
					return nil
				}
			}

			if err := app.audit.Clear(); err != nil {
				color.Red("✗ Clear failed: %s", err.Error())
				return nil
			}
			color.Green("✓ History cleared")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
