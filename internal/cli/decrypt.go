package cli

import (
	"errors"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sealbox/sealbox/internal/auditlog"
	"github.com/sealbox/sealbox/internal/envelope"
	"github.com/sealbox/sealbox/internal/timelock"
	"github.com/sealbox/sealbox/internal/wipe"
)

func newDecryptCmd(app *App) *cobra.Command {
	var (
		outPath string
		token   string
	)

	cmd := &cobra.Command{
		Use:   "decrypt <file.enc>",
		Short: "Decrypt an envelope back into the original file",
		Long: "Decrypts an envelope using a password or a time-lock token.\n" +
			"A one-time envelope is destroyed after its first successful decrypt.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			encPath := args[0]

			password := ""
			if token != "" {
				var err error
				password, err = app.signer.Validate(token)
				if err != nil {
					app.recordAudit("DECRYPT", encPath, auditlog.StatusFailed, map[string]string{"reason": tokenFailureReason(err)})
					color.Red("✗ %s", tokenFailureReason(err))
					return nil
				}
			} else {
				var err error
				password, err = getPassword("Enter password", os.Stdout)
				if err != nil {
					return err
				}
			}

			s, cleanup := startSpinner("Decrypting...")
			defer cleanup()

			plainPath, wasOTD, err := envelope.Decrypt(encPath, password, outPath, progressSuffix(s, "Decrypting"))
			if err != nil {
				app.recordAudit("DECRYPT", encPath, auditlog.StatusFailed, map[string]string{"reason": err.Error()})
				s.FinalMSG = color.RedString("✗") + " Decryption failed\n" +
					color.RedString("Error: ") + err.Error()
				return nil
			}

			app.recordAudit("DECRYPT", encPath, auditlog.StatusSuccess, nil)
			final := color.GreenString("✓") + " Decrypted to " + color.YellowString(plainPath)

			// One-time envelopes must not survive a successful decrypt.
			if wasOTD {
				if err := wipe.Wipe(encPath, app.config.WipePasses); err != nil {
					app.recordAudit("DESTROY", encPath, auditlog.StatusFailed, map[string]string{"reason": err.Error()})
					final += "\n" + color.RedString("✗") + " Failed to destroy one-time envelope: " + err.Error()
				} else {
					app.recordAudit("DESTROY", encPath, auditlog.StatusSuccess, map[string]string{"reason": "one-time decrypt"})
					final += "\n" + color.CyanString("→") + " One-time envelope destroyed"
				}
			}

			s.FinalMSG = final
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (default: strip .enc)")
	cmd.Flags().StringVar(&token, "token", "", "time-lock token carrying the password")

	return cmd
}

func tokenFailureReason(err error) string {
	switch {
	case errors.Is(err, timelock.ErrExpired):
		return "token expired"
	case errors.Is(err, timelock.ErrTampered):
		return "token signature mismatch"
	default:
		return "malformed token"
	}
}

func newPeekCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "peek <file.enc>",
		Short: "Show the hidden metadata of an envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			encPath := args[0]

			meta, ok := envelope.ReadOwnerInfo(encPath)
			if !ok {
				color.Yellow("No hidden metadata in %s", encPath)
				return nil
			}

			color.Green("✓ Hidden metadata found")
			cmd.Printf("  Owner:      %s\n", meta.Owner)
			cmd.Printf("  Sealed at:  %s\n", time.Unix(int64(meta.TS), 0).Format("2006-01-02 15:04:05"))
			if envelope.IsOneTimeDecrypt(encPath) {
				cmd.Printf("  One-time:   yes\n")
			}
			return nil
		},
	}
}
