package cli

import (
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorise access to external services",
}

var authGmailCmd = &cobra.Command{
	Use:   "gmail",
	Short: "Authorise read-only Gmail access",
	Long: `Opens a browser to grant pulse-brief read-only access to your mailbox and
caches the resulting token. Requires an OAuth client secret JSON at the
configured gmail.credentials_file (default ~/.pulse-brief/credentials.json).

Run again whenever Gmail reports the token as expired or revoked.`,
	Args: cobra.NoArgs,
	RunE: runAuthGmail,
}

func init() {
	authCmd.AddCommand(authGmailCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthGmail(cmd *cobra.Command, _ []string) error {
	if gmailAuthoriser == nil {
		return errNotConfigured("gmail authoriser")
	}
	if err := gmailAuthoriser.Authorise(cmd.Context(), cmd.OutOrStdout()); err != nil {
		return err
	}
	cmd.Println(successStyle.Render("Gmail authorised."))
	return nil
}
