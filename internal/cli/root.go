package cli

import (
	"github.com/spf13/cobra"

	"github.com/sealbox/sealbox/internal/buildinfo"
)

// NewRootCmd assembles the sealbox command tree.
func NewRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sealbox",
		Short: "Encrypt, decrypt and securely erase files",
		Long: "sealbox protects files with AES-256-CBC envelopes, keeps a\n" +
			"tamper-evident history of every operation, and manages the local\n" +
			"credential vault used to sign in.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newEncryptCmd(app),
		newDecryptCmd(app),
		newPeekCmd(app),
		newWipeCmd(app),
		newRegisterCmd(app),
		newLoginCmd(app),
		newLogoutCmd(app),
		newLockCmd(app),
		newOtpCmd(app),
		newResetCmd(app),
		newHistoryCmd(app),
		newTokenCmd(app),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}
