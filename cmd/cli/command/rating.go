package command

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mrp/internal/microservices/http-api/dto"
)

var ratingCmd = &cobra.Command{
	Use:   "rating",
	Short: "Rating management commands",
	Long:  `Rate media, edit or delete your ratings, confirm your comments and like other users' ratings.`,
}

var rateCmd = &cobra.Command{
	Use:   "rate [media-id] [stars]",
	Short: "Rate a media entry (1-5 stars)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mediaID, err := parseUUID(args[0], "media")
		if err != nil {
			return err
		}
		req, err := ratingRequest(cmd, args[1])
		if err != nil {
			return err
		}
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		rating, err := httpClient.Rate(ctx, mediaID, req)
		if err != nil {
			return fail(err, "failed to rate media")
		}

		success("Rating submitted: %s", rating.ID)
		if rating.Comment != "" {
			fmt.Println("Your comment stays hidden from other users until you run 'mrpCLI rating confirm'.")
		}
		return nil
	},
}

var editRatingCmd = &cobra.Command{
	Use:   "edit [rating-id] [stars]",
	Short: "Change one of your ratings",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseUUID(args[0], "rating")
		if err != nil {
			return err
		}
		req, err := ratingRequest(cmd, args[1])
		if err != nil {
			return err
		}
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		rating, err := httpClient.UpdateRating(ctx, id, req)
		if err != nil {
			return fail(err, "failed to update rating")
		}
		success("Rating updated.")
		if !rating.Confirmed && rating.Comment != "" {
			fmt.Println("The comment changed and must be confirmed again.")
		}
		return nil
	},
}

var deleteRatingCmd = messageCommand("delete", "Delete one of your ratings", "rating",
	func(cmd *cobra.Command, id uuid.UUID) (string, error) {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return "", err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()
		return httpClient.DeleteRating(ctx, id)
	})

var confirmRatingCmd = messageCommand("confirm", "Publish the comment of one of your ratings", "rating",
	func(cmd *cobra.Command, id uuid.UUID) (string, error) {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return "", err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()
		return httpClient.ConfirmRating(ctx, id)
	})

var likeRatingCmd = messageCommand("like", "Like another user's rating", "rating",
	func(cmd *cobra.Command, id uuid.UUID) (string, error) {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return "", err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()
		return httpClient.LikeRating(ctx, id)
	})

var unlikeRatingCmd = messageCommand("unlike", "Withdraw a like", "rating",
	func(cmd *cobra.Command, id uuid.UUID) (string, error) {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return "", err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()
		return httpClient.UnlikeRating(ctx, id)
	})

func init() {
	ratingCmd.AddCommand(rateCmd, editRatingCmd, deleteRatingCmd, confirmRatingCmd, likeRatingCmd, unlikeRatingCmd)

	for _, c := range []*cobra.Command{rateCmd, editRatingCmd} {
		c.Flags().StringP("comment", "c", "", "optional comment")
	}
}

func ratingRequest(cmd *cobra.Command, rawStars string) (*dto.RatingRequest, error) {
	stars, err := strconv.Atoi(rawStars)
	if err != nil {
		return nil, fmt.Errorf("invalid stars: %w", err)
	}
	if stars < 1 || stars > 5 {
		return nil, fmt.Errorf("stars must be between 1 and 5")
	}
	comment, _ := cmd.Flags().GetString("comment")
	return &dto.RatingRequest{Stars: stars, Comment: comment}, nil
}
