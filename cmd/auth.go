package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/calmcp/calmcp/internal/google"
)

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google Calendar",
		Long: `Run the interactive OAuth consent flow and store the resulting token.

A browser window opens at the Google consent page; after access is
granted, the token bundle is written to the token file and refreshed
automatically from then on. Re-running this command replaces any stored
credentials.

Requires the OAuth client-secret file of a Google Cloud desktop-app
client. Its path is taken from the GOOGLE_CLIENT_SECRET_FILE environment
variable, falling back to the default config directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuth()
		},
	}
}

func runAuth() error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	credentials, err := google.NewManagerFromFiles()
	if err != nil {
		return fmt.Errorf("failed to load OAuth client configuration: %w", err)
	}
	credentials.AllowConsent = true

	fmt.Println("Opening browser for Google consent...")
	if err := credentials.Authorize(ctx); err != nil {
		return err
	}

	fmt.Printf("Authorization complete. Token saved to %s\n", google.TokenPath())
	return nil
}
