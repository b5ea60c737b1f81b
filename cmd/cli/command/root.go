package command

// root.go defines the root command for the mrpCLI application and its global flags.

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mrp/cmd/cli/authentication"
	"mrp/cmd/cli/command/client"
)

const requestTimeout = 15 * time.Second

var (
	apiURL  string // Global flag for API server URL
	noColor bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mrpCLI",
	Short: "mrpCLI - Media Ratings Platform command line client",
	Long: `mrpCLI talks to the Media Ratings Platform API. Use it to:
- Register and log in
- Browse, filter and manage media entries
- Rate media, confirm your comments and like other users' ratings
- Look at profiles, favorites, the leaderboard and recommendations

Use "mrpCLI [command] --help" to see all available commands.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "✗", err)
		os.Exit(1)
	}
}

func init() {
	defaultURL := "http://localhost:8080/api"
	if env := os.Getenv("MRP_API_URL"); env != "" {
		defaultURL = env
	}

	// Global persistent flags = available to all subcommands
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultURL, "API base URL (env MRP_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(authCmd, mediaCmd, ratingCmd, userCmd)
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), requestTimeout)
}

// GetAuthenticatedClient returns a client carrying the stored session token.
func GetAuthenticatedClient() (*client.HTTPClient, error) {
	creds, err := authentication.GetTokens()
	if err != nil {
		return nil, err
	}
	httpClient := client.NewHTTPClient(apiURL)
	httpClient.SetToken(creds.Token)
	return httpClient, nil
}

func success(format string, a ...any) {
	color.Green("✓ "+format, a...)
}

func heading(format string, a ...any) {
	color.New(color.Bold, color.FgCyan).Printf(format+"\n", a...)
}

func fail(err error, action string) error {
	return fmt.Errorf("%s: %w", action, err)
}
