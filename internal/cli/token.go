package cli

import (
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sealbox/sealbox/internal/auditlog"
)

func newTokenCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Create and check time-lock tokens",
		Long: "A time-lock token carries an envelope password signed with the\n" +
			"install's token key and stops working after its expiry. Hand it to\n" +
			"someone instead of the password itself; use it with\n" +
			"'sealbox decrypt --token'.",
	}

	cmd.AddCommand(newTokenCreateCmd(app), newTokenCheckCmd(app))
	return cmd
}

func newTokenCreateCmd(app *App) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Wrap an envelope password into an expiring token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := getPassword("Envelope password", os.Stdout)
			if err != nil {
				return err
			}

			token, expiry, err := app.signer.Create(password, ttl)
			if err != nil {
				return err
			}

			app.recordAudit("TOKEN", "time-lock", auditlog.StatusSuccess,
				map[string]string{"expires": time.Unix(expiry, 0).Format(time.RFC3339)})

			color.Green("✓ Token created, valid until %s", time.Unix(expiry, 0).Format("2006-01-02 15:04:05"))
			cmd.Println(token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime (e.g. 30m, 24h)")
	return cmd
}

func newTokenCheckCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check <token>",
		Short: "Check whether a token is still valid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := app.signer.Validate(args[0])
			if err != nil {
				color.Red("✗ %s", tokenFailureReason(err))
				return nil
			}
			color.Green("✓ Token is valid")
			return nil
		},
	}
}
