package command

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mrp/cmd/cli/authentication"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Profiles, favorites, leaderboard and recommendations",
}

// usernameArg falls back to the logged-in user when no name is given.
func usernameArg(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	creds, err := authentication.GetTokens()
	if err != nil {
		return "", err
	}
	return creds.Username, nil
}

var profileCmd = &cobra.Command{
	Use:   "profile [username]",
	Short: "Show a user's statistics",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username, err := usernameArg(args)
		if err != nil {
			return err
		}
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		p, err := httpClient.Profile(ctx, username)
		if err != nil {
			return fail(err, "failed to get profile")
		}

		heading("%s", p.Username)
		fmt.Printf("Member since: %s\n", p.CreatedAt.Format("2006-01-02"))
		fmt.Printf("Ratings: %d (avg %.2f stars)\n", p.TotalRatings, p.AverageStarsGiven)
		fmt.Printf("Favorites: %d\n", p.FavoritesCount)
		fmt.Printf("Media created: %d\n", p.MediaCreated)
		return nil
	},
}

var userFavoritesCmd = &cobra.Command{
	Use:   "favorites [username]",
	Short: "List a user's favorite media",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username, err := usernameArg(args)
		if err != nil {
			return err
		}
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		list, err := httpClient.UserFavorites(ctx, username)
		if err != nil {
			return fail(err, "failed to list favorites")
		}
		if len(list) == 0 {
			fmt.Println("No favorites yet.")
			return nil
		}
		printMediaTable(os.Stdout, list)
		return nil
	},
}

var userRatingsCmd = &cobra.Command{
	Use:   "ratings [username]",
	Short: "List a user's ratings",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username, err := usernameArg(args)
		if err != nil {
			return err
		}
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		list, err := httpClient.UserRatings(ctx, username)
		if err != nil {
			return fail(err, "failed to list ratings")
		}
		if len(list) == 0 {
			fmt.Println("No ratings found.")
			return nil
		}
		printRatings(os.Stdout, list)
		return nil
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the most active raters",
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		entries, err := httpClient.Leaderboard(ctx)
		if err != nil {
			return fail(err, "failed to get leaderboard")
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "RANK\tUSER\tRATINGS")
		for _, e := range entries {
			fmt.Fprintf(tw, "%d\t%s\t%d\n", e.Rank, e.Username, e.RatingCount)
		}
		return tw.Flush()
	},
}

var recommendationsCmd = &cobra.Command{
	Use:   "recommendations",
	Short: "Suggest media based on what you rated highly",
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		list, err := httpClient.Recommendations(ctx)
		if err != nil {
			return fail(err, "failed to get recommendations")
		}
		if len(list) == 0 {
			fmt.Println("Nothing to recommend yet.")
			return nil
		}
		printMediaTable(os.Stdout, list)
		return nil
	},
}

func init() {
	userCmd.AddCommand(profileCmd, userFavoritesCmd, userRatingsCmd, leaderboardCmd, recommendationsCmd)
}
