package command

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mrp/internal/microservices/http-api/dto"
	"mrp/internal/microservices/http-api/models"
)

var mediaCmd = &cobra.Command{
	Use:   "media",
	Short: "Media management commands",
	Long:  `Browse, filter, create, update and delete media entries, and manage favorites.`,
}

var listMediaCmd = &cobra.Command{
	Use:   "list",
	Short: "List media, optionally filtered and sorted",
	Example: `  mrpCLI media list --type movie --year 1999
  mrpCLI media list --genre sci-fi --sort rating`,
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}

		query := url.Values{}
		for _, flag := range []string{"search", "type", "genre", "year", "age", "sort"} {
			if v, _ := cmd.Flags().GetString(flag); v != "" {
				query.Set(flag, v)
			}
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		list, err := httpClient.ListMedia(ctx, query)
		if err != nil {
			return fail(err, "failed to list media")
		}
		if len(list) == 0 {
			fmt.Println("No media found.")
			return nil
		}

		heading("Found %d media:", len(list))
		printMediaTable(os.Stdout, list)
		return nil
	},
}

var getMediaCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show a media entry with its ratings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseUUID(args[0], "media")
		if err != nil {
			return err
		}
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		m, err := httpClient.GetMedia(ctx, id)
		if err != nil {
			return fail(err, "failed to get media")
		}

		heading("%s", m.Title)
		fmt.Printf("ID: %s\n", m.ID)
		fmt.Printf("Type: %s\n", m.MediaType)
		fmt.Printf("Year: %s\n", formatYear(m.ReleaseYear))
		if m.Genres != "" {
			fmt.Printf("Genres: %s\n", m.Genres)
		}
		if m.AgeRestriction != "" {
			fmt.Printf("Age: %s\n", m.AgeRestriction)
		}
		if m.Description != "" {
			fmt.Printf("Description: %s\n", m.Description)
		}
		fmt.Printf("Creator: %s\n", m.CreatorUsername)
		fmt.Printf("Rating: %.2f (%d ratings)\n", m.AverageRating, m.TotalRatings)

		if len(m.Ratings) > 0 {
			fmt.Println(strings.Repeat("-", 50))
			printRatings(os.Stdout, m.Ratings)
		}
		return nil
	},
}

var createMediaCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a media entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := mediaRequestFromFlags(cmd)
		if err != nil {
			return err
		}
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		entry, err := httpClient.CreateMedia(ctx, req)
		if err != nil {
			return fail(err, "failed to create media")
		}
		success("Media created: %s", entry.ID)
		return nil
	},
}

// updateMediaCmd replaces every field, like the API does.
var updateMediaCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Replace a media entry you created",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseUUID(args[0], "media")
		if err != nil {
			return err
		}
		req, err := mediaRequestFromFlags(cmd)
		if err != nil {
			return err
		}
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		if _, err := httpClient.UpdateMedia(ctx, id, req); err != nil {
			return fail(err, "failed to update media")
		}
		success("Media updated.")
		return nil
	},
}

// messageCommand builds a command that takes one id and prints the API's message.
func messageCommand(use, short, entity string, call func(*cobra.Command, uuid.UUID) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUUID(args[0], entity)
			if err != nil {
				return err
			}
			msg, err := call(cmd, id)
			if err != nil {
				return fail(err, use+" failed")
			}
			success("%s", msg)
			return nil
		},
	}
}

var deleteMediaCmd = messageCommand("delete", "Delete a media entry you created", "media",
	func(cmd *cobra.Command, id uuid.UUID) (string, error) {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return "", err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()
		return httpClient.DeleteMedia(ctx, id)
	})

var favoriteCmd = messageCommand("favorite", "Add a media entry to your favorites", "media",
	func(cmd *cobra.Command, id uuid.UUID) (string, error) {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return "", err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()
		return httpClient.AddFavorite(ctx, id)
	})

var unfavoriteCmd = messageCommand("unfavorite", "Remove a media entry from your favorites", "media",
	func(cmd *cobra.Command, id uuid.UUID) (string, error) {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return "", err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()
		return httpClient.RemoveFavorite(ctx, id)
	})

func init() {
	mediaCmd.AddCommand(listMediaCmd, getMediaCmd, createMediaCmd, updateMediaCmd, deleteMediaCmd, favoriteCmd, unfavoriteCmd)

	listMediaCmd.Flags().StringP("search", "s", "", "case-insensitive title substring")
	listMediaCmd.Flags().StringP("type", "t", "", "movie, series or game")
	listMediaCmd.Flags().StringP("genre", "g", "", "genre substring")
	listMediaCmd.Flags().StringP("year", "y", "", "exact release year")
	listMediaCmd.Flags().StringP("age", "a", "", "exact age restriction")
	listMediaCmd.Flags().String("sort", "", "title (default), year or rating")

	for _, c := range []*cobra.Command{createMediaCmd, updateMediaCmd} {
		c.Flags().String("title", "", "title")
		c.Flags().String("description", "", "description")
		c.Flags().String("type", "", "movie, series or game")
		c.Flags().Int("year", 0, "release year (0 for none)")
		c.Flags().String("genres", "", "comma separated genres")
		c.Flags().String("age", "", "age restriction")
		_ = c.MarkFlagRequired("title")
		_ = c.MarkFlagRequired("type")
	}
}

func mediaRequestFromFlags(cmd *cobra.Command) (*dto.MediaRequest, error) {
	var req dto.MediaRequest
	req.Title, _ = cmd.Flags().GetString("title")
	req.Description, _ = cmd.Flags().GetString("description")
	req.MediaType, _ = cmd.Flags().GetString("type")
	req.Genres, _ = cmd.Flags().GetString("genres")
	req.AgeRestriction, _ = cmd.Flags().GetString("age")

	year, err := cmd.Flags().GetInt("year")
	if err != nil {
		return nil, err
	}
	if year < 0 {
		return nil, fmt.Errorf("invalid year: %d", year)
	}
	if year > 0 {
		req.ReleaseYear = &year
	}
	return &req, nil
}

func parseUUID(raw, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s ID: %q", entity, raw)
	}
	return id, nil
}

func formatYear(y *int) string {
	if y == nil {
		return "-"
	}
	return strconv.Itoa(*y)
}

func printMediaTable(w io.Writer, list []models.MediaSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tYEAR\tRATING\tCOUNT")
	for _, m := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%d\n",
			m.ID, m.Title, m.MediaType, formatYear(m.ReleaseYear), m.AverageRating, m.TotalRatings)
	}
	tw.Flush()
}

func printRatings(w io.Writer, ratings []models.RatingView) {
	for _, r := range ratings {
		state := ""
		if !r.Confirmed {
			state = " (unconfirmed)"
		}
		title := r.Username
		if r.MediaTitle != "" {
			title = r.MediaTitle
		}
		fmt.Fprintf(w, "[%s] %s %s%s  likes:%d\n", r.ID, title, strings.Repeat("★", r.Stars), state, r.LikeCount)
		if r.Comment != "" {
			fmt.Fprintf(w, "    %s\n", r.Comment)
		}
	}
}
