package commands

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/glambook/glambook-cli/internal/appctx"
	"github.com/glambook/glambook-cli/internal/models"
	"github.com/glambook/glambook-cli/internal/output"
)

// NewReviewsCmd creates the reviews command group.
func NewReviewsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Browse reviews",
	}

	cmd.AddCommand(
		newReviewsListCmd(),
		newReviewsShowCmd(),
		newReviewsApproveCmd(),
		newReviewsRejectCmd(),
	)

	return cmd
}

func newReviewsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <business-id>",
		Short: "List a business's reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}

			resp, err := app.API.Get(cmd.Context(), "/reviews/business/"+url.PathEscape(args[0]))
			if err != nil {
				return err
			}

			var reviews []models.Review
			if err := resp.UnmarshalData(&reviews); err != nil {
				return err
			}

			return app.OK(reviews, output.WithSummary(fmt.Sprintf("%d reviews", len(reviews))))
		},
	}
}

func newReviewsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}

			resp, err := app.API.Get(cmd.Context(), "/reviews/"+url.PathEscape(args[0]))
			if err != nil {
				return err
			}

			var review models.Review
			if err := resp.UnmarshalData(&review); err != nil {
				return err
			}

			return app.OK(review, output.WithSummary(fmt.Sprintf("%d stars", review.Rating)))
		},
	}
}

func newReviewsApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <id>",
		Short: "Publish a pending review (owner)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}

			resp, err := app.API.Post(cmd.Context(), "/owner/reviews/"+url.PathEscape(args[0])+"/approve", nil)
			if err != nil {
				return err
			}

			var review models.Review
			if err := resp.UnmarshalData(&review); err != nil {
				return err
			}

			return app.OK(review, output.WithSummary("Review published"))
		},
	}
}

func newReviewsRejectCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a pending review (owner)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}

			resp, err := app.API.Post(cmd.Context(), "/owner/reviews/"+url.PathEscape(args[0])+"/reject", map[string]string{
				"reason": reason,
			})
			if err != nil {
				return err
			}

			var review models.Review
			if err := resp.UnmarshalData(&review); err != nil {
				return err
			}

			return app.OK(review, output.WithSummary("Review rejected"))
		},
	}

	cmd.Args = cobra.ExactArgs(1)
	cmd.Flags().StringVar(&reason, "reason", "", "Reason kept with the moderation record")

	return cmd
}

// NewReviewCmd creates the review shortcut command.
func NewReviewCmd() *cobra.Command {
	var appointmentID, businessID, comment string
	var rating int

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review a completed appointment",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}
			if appointmentID == "" || businessID == "" {
				return output.ErrUsage("Pass --appointment and --business")
			}
			if rating < 1 || rating > 5 {
				return output.ErrUsage("Rating must be between 1 and 5")
			}

			userID, err := currentUserID(cmd, app)
			if err != nil {
				return err
			}

			resp, err := app.API.Post(cmd.Context(), "/reviews", map[string]any{
				"userId":        userID,
				"appointmentId": appointmentID,
				"businessId":    businessID,
				"rating":        rating,
				"comment":       comment,
			})
			if err != nil {
				return err
			}

			var review models.Review
			if err := resp.UnmarshalData(&review); err != nil {
				return err
			}

			return app.OK(review, output.WithSummary("Review submitted"))
		},
	}

	cmd.Flags().StringVar(&appointmentID, "appointment", "", "Appointment ID")
	cmd.Flags().StringVar(&businessID, "business", "", "Business ID")
	cmd.Flags().IntVar(&rating, "rating", 0, "Rating (1-5)")
	cmd.Flags().StringVar(&comment, "comment", "", "Review text")

	return cmd
}
