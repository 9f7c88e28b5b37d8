package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sealbox/sealbox/internal/auditlog"
	"github.com/sealbox/sealbox/internal/cryptox"
	"github.com/sealbox/sealbox/internal/vault"
)

// verifyMobile runs the one-time-password exchange for mobile. There is
// no SMS gateway; the code is shown on the terminal and must be typed
// back, which still exercises expiry and the attempt cap.
func verifyMobile(app *App, mobile string, purpose vault.Purpose, username string) error {
	code, err := app.vault.GenerateOTP(mobile, purpose, username)
	if err != nil {
		return err
	}
	fmt.Printf("Verification code for %s (delivery simulated): %s\n", mobile, color.CyanString(code))

	for {
		submitted, err := getSimpleText(app.reader, "Enter the verification code", os.Stdout)
		if err != nil {
			return err
		}
		err = app.vault.VerifyOTP(mobile, submitted)
		if err == nil {
			app.vault.ClearOTP(mobile)
			return nil
		}
		if errors.Is(err, vault.ErrOTPMismatch) {
			color.Yellow("Wrong code, try again")
			continue
		}
		return err
	}
}

func newRegisterCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Create a new user account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := getSimpleText(app.reader, "Username", os.Stdout)
			if err != nil {
				return err
			}
			fullName, err := getSimpleText(app.reader, "Full name", os.Stdout)
			if err != nil {
				return err
			}
			email, err := getSimpleText(app.reader, "Email", os.Stdout)
			if err != nil {
				return err
			}
			mobile, err := getSimpleText(app.reader, "Mobile number", os.Stdout)
			if err != nil {
				return err
			}

			if err := verifyMobile(app, mobile, vault.PurposeRegister, username); err != nil {
				color.Red("✗ Mobile verification failed: %s", err.Error())
				return nil
			}

			password, err := getNewPassword(os.Stdout)
			if err != nil {
				return err
			}
			score := cryptox.PasswordStrength(password)
			fmt.Printf("Password strength: %d/100 (%s)\n", score, cryptox.StrengthLabel(score))

			if err := app.vault.Register(username, password, email, mobile, fullName); err != nil {
				app.recordAudit("REGISTER", username, auditlog.StatusFailed, map[string]string{"reason": err.Error()})
				color.Red("✗ Registration failed: %s", err.Error())
				return nil
			}

			app.recordAudit("REGISTER", username, auditlog.StatusSuccess, nil)
			color.Green("✓ Account %s created", username)
			return nil
		},
	}
}

func newLoginCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session across invocations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := getSimpleText(app.reader, "Username", os.Stdout)
			if err != nil {
				return err
			}
			password, err := getPassword("Enter password", os.Stdout)
			if err != nil {
				return err
			}

			res := app.vault.Authenticate(username, password)
			if !res.OK {
				app.recordAudit("LOGIN", username, auditlog.StatusFailed, map[string]string{"reason": res.Message})
				color.Red("✗ %s", res.Message)
				return nil
			}

			if err := app.saveLogin(username); err != nil {
				return err
			}
			app.sess.Login(username)

			app.recordAudit("LOGIN", username, auditlog.StatusSuccess, nil)
			color.Green("✓ Logged in as %s", username)
			return nil
		},
	}
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and drop the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			username := app.currentUser()
			if username == "" {
				color.Yellow("Not logged in")
				return nil
			}

			app.clearLogin()
			app.sess.Logout()

			app.recordAudit("LOGOUT", username, auditlog.StatusSuccess, nil)
			color.Green("✓ Logged out")
			return nil
		},
	}
}

func newLockCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "lock",
		Short: "Panic lock: drop the session and wipe the scratch directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.clearLogin()
			err := app.sess.PanicLock(app.config.TempDir)
			if err != nil {
				app.recordAudit("LOCK", app.config.TempDir, auditlog.StatusFailed, map[string]string{"reason": err.Error()})
				color.Red("✗ Locked, but scratch cleanup failed: %s", err.Error())
				return nil
			}

			app.recordAudit("LOCK", app.config.TempDir, auditlog.StatusSuccess, nil)
			color.Green("✓ Locked, scratch files wiped")
			return nil
		},
	}
}

func newOtpCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "otp <mobile>",
		Short: "Run a mobile verification round",
		Long: "Generates a one-time code for the given mobile number and checks\n" +
			"the typed-back value against it. Codes expire after five minutes\n" +
			"and allow three attempts.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mobile := args[0]

			username, _ := app.vault.UsernameByMobile(mobile)
			if err := verifyMobile(app, mobile, vault.PurposeRegister, username); err != nil {
				color.Red("✗ Verification failed: %s", err.Error())
				return nil
			}
			color.Green("✓ Mobile number verified")
			return nil
		},
	}
}

func newResetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset a forgotten password via mobile verification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mobile, err := getSimpleText(app.reader, "Registered mobile number", os.Stdout)
			if err != nil {
				return err
			}

			username, err := app.vault.UsernameByMobile(mobile)
			if err != nil {
				color.Red("✗ No account with that mobile number")
				return nil
			}

			if err := verifyMobile(app, mobile, vault.PurposeReset, username); err != nil {
				app.recordAudit("RESET", username, auditlog.StatusFailed, map[string]string{"reason": err.Error()})
				color.Red("✗ Mobile verification failed: %s", err.Error())
				return nil
			}

			password, err := getNewPassword(os.Stdout)
			if err != nil {
				return err
			}

			if err := app.vault.ResetPassword(username, password); err != nil {
				app.recordAudit("RESET", username, auditlog.StatusFailed, map[string]string{"reason": err.Error()})
				color.Red("✗ Reset failed: %s", err.Error())
				return nil
			}

			app.recordAudit("RESET", username, auditlog.StatusSuccess, nil)
			color.Green("✓ Password for %s updated", username)
			return nil
		},
	}
}
