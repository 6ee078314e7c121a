package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the calmcp application
var rootCmd = &cobra.Command{
	Use:   "calmcp",
	Short: "MCP server for Google Calendar",
	Long: `calmcp exposes Google Calendar as tools for AI assistants over the
Model Context Protocol: listing and searching events, fetching event
details, creating events and listing calendars.

Authentication uses the OAuth 2.0 desktop-app flow; run "calmcp auth"
once to authorize, after which tokens are refreshed automatically.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "calmcp version %s\n" .Version}}`)

	// Optional .env file for GOOGLE_* and metrics settings; absence is fine.
	_ = godotenv.Load()

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
