package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sealbox/sealbox/internal/auditlog"
	"github.com/sealbox/sealbox/internal/cryptox"
	"github.com/sealbox/sealbox/internal/envelope"
)

func newEncryptCmd(app *App) *cobra.Command {
	var (
		inPlace bool
		oneTime bool
		owner   string
	)

	cmd := &cobra.Command{
		Use:   "encrypt <file>",
		Short: "Encrypt a file into a .enc envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := args[0]

			password, err := getNewPassword(os.Stdout)
			if err != nil {
				return err
			}

			score := cryptox.PasswordStrength(password)
			fmt.Printf("Password strength: %d/100 (%s)\n", score, cryptox.StrengthLabel(score))

			if owner == "" {
				owner = app.currentUser()
			}
			opts := envelope.Options{OneTimeDecrypt: oneTime, OwnerInfo: owner}

			s, cleanup := startSpinner("Encrypting...")
			defer cleanup()
			opts.Progress = progressSuffix(s, "Encrypting")

			var outPath string
			if inPlace {
				outPath = src
				err = envelope.EncryptInPlace(src, password, opts)
			} else {
				outPath, err = envelope.Encrypt(src, password, opts)
			}
			if err != nil {
				app.recordAudit("ENCRYPT", src, auditlog.StatusFailed, map[string]string{"reason": err.Error()})
				s.FinalMSG = color.RedString("✗") + " Encryption failed\n" +
					color.RedString("Error: ") + err.Error()
				return nil
			}

			app.recordAudit("ENCRYPT", src, auditlog.StatusSuccess, nil)
			s.FinalMSG = color.GreenString("✓") + " Encrypted to " + color.YellowString(outPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&inPlace, "in-place", false, "overwrite the original file instead of writing <file>.enc")
	cmd.Flags().BoolVar(&oneTime, "one-time", false, "mark the envelope for one-time decrypt")
	cmd.Flags().StringVar(&owner, "owner", "", "owner info to hide inside the envelope (default: logged-in user)")

	return cmd
}
