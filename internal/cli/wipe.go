package cli

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sealbox/sealbox/internal/auditlog"
	"github.com/sealbox/sealbox/internal/wipe"
)

func newWipeCmd(app *App) *cobra.Command {
	var (
		passes int
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "wipe <path>",
		Short: "Overwrite and delete a file or directory tree beyond recovery",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]

			if !yes {
				ok, err := confirm(app.reader, "Permanently destroy "+target+"?", os.Stdout)
				if err != nil {
					return err
				}
				if !ok {
					color.Yellow("Aborted")
					return nil
				}
			}

			if passes <= 0 {
				passes = app.config.WipePasses
			}

			s, cleanup := startSpinner("Wiping...")
			defer cleanup()

			info, statErr := os.Stat(target)

			var err error
			if statErr == nil && info.IsDir() {
				err = wipe.WipeTree(target)
			} else {
				err = wipe.Wipe(target, passes)
			}
			if err != nil {
				app.recordAudit("WIPE", target, auditlog.StatusFailed, map[string]string{"reason": err.Error()})
				s.FinalMSG = color.RedString("✗") + " Wipe failed\n" +
					color.RedString("Error: ") + err.Error()
				return nil
			}

			app.recordAudit("WIPE", target, auditlog.StatusSuccess, nil)
			s.FinalMSG = color.GreenString("✓") + " Wiped " + color.YellowString(target)
			return nil
		},
	}

	cmd.Flags().IntVar(&passes, "passes", 0, "overwrite passes (default: configured value)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}
