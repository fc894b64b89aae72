package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rafaeltorresng/Sheets-to-Docs/internal/gdocs"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize access to Google Docs, Sheets and Drive",
	Long: `Run the OAuth consent flow for the client secret in credentials_file and
store the resulting token in token_file. Service account credentials need no
authorization and are only validated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := gdocs.Authenticate(cmd.Context(), gdocs.AuthConfig{
			CredentialsFile: appConfig.CredentialsFile,
			TokenFile:       appConfig.TokenFile,
			RedirectAddr:    appConfig.RedirectAddr,
			Prompt:          cmd.ErrOrStderr(),
			Logger:          logger,
		}); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Authenticated with Google")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
}
