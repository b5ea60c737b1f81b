package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"mrp/cmd/cli/authentication"
	"mrp/cmd/cli/command/client"
	"mrp/internal/microservices/http-api/dto"
)

// authCmd represents the auth command for authentication related subcommands
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Authenticate with the MRP API server. Supports register, login, logout and whoami.`,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.RegisterRequest
		req.Username, _ = cmd.Flags().GetString("username")
		req.Password, _ = cmd.Flags().GetString("password")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		response, err := client.NewHTTPClient(apiURL).Register(ctx, &req)
		if err != nil {
			return fail(err, "registration failed")
		}

		success("Registration successful! Please login to continue.")
		fmt.Printf("UserID: %s\n", response.ID)
		return nil
	},
}

// loginCmd stores the new token; logging in elsewhere invalidates it.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to your account",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.LoginRequest
		req.Username, _ = cmd.Flags().GetString("username")
		req.Password, _ = cmd.Flags().GetString("password")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		response, err := client.NewHTTPClient(apiURL).Login(ctx, &req)
		if err != nil {
			return fail(err, "login failed")
		}

		err = authentication.StoreTokens(&authentication.StoredCredentials{
			Token:    response.Token,
			Username: response.Username,
			UserID:   response.UserID,
		})
		if err != nil {
			return fail(err, "could not store session")
		}

		success("Logged in as %s", response.Username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authentication.DeleteTokens(); err != nil {
			return fail(err, "logout failed")
		}
		success("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the stored session's user",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := authentication.GetTokens()
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s)\n", creds.Username, creds.UserID)
		return nil
	},
}

func init() {
	authCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd)

	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().StringP("username", "u", "", "account username")
		c.Flags().StringP("password", "p", "", "account password")
		_ = c.MarkFlagRequired("username")
		_ = c.MarkFlagRequired("password")
	}
}
