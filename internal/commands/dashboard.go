package commands

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/glambook/glambook-cli/internal/appctx"
	"github.com/glambook/glambook-cli/internal/models"
	"github.com/glambook/glambook-cli/internal/output"
)

// NewDashboardCmd creates the owner dashboard command.
func NewDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the owner dashboard",
		Long:  "Summarize your business: appointment load, pending approvals, and review standing.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}

			app.Session.Hydrate(cmd.Context())
			if user, ok := app.Session.Current(); ok && user.Role != models.RoleOwner {
				return output.ErrForbidden("The dashboard is only available to owner accounts")
			}

			var business models.Business
			resp, err := app.API.Get(cmd.Context(), "/owner/business")
			if err != nil {
				return err
			}
			if err := resp.UnmarshalData(&business); err != nil {
				return err
			}

			var appointments []models.Appointment
			var pendingReviews []models.Review

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				resp, err := app.API.Get(ctx, "/owner/appointments")
				if err != nil {
					return err
				}
				return resp.UnmarshalData(&appointments)
			})
			g.Go(func() error {
				q := url.Values{}
				q.Set("businessId", business.ID)
				q.Set("status", "PENDING")
				resp, err := app.API.Get(ctx, "/owner/reviews?"+q.Encode())
				if err != nil {
					return err
				}
				return resp.UnmarshalData(&pendingReviews)
			})
			if err := g.Wait(); err != nil {
				return err
			}

			today := time.Now().Format("2006-01-02")
			stats := models.DashboardStats{
				TotalAppointments: len(appointments),
				AverageRating:     business.AverageRating,
				ReviewCount:       business.ReviewCount,
			}
			for _, a := range appointments {
				if a.Status == models.AppointmentPending {
					stats.PendingAppointments++
				}
				if a.Date == today {
					stats.TodayAppointments++
				}
			}

			return app.OK(map[string]any{
				"business":        business,
				"stats":           stats,
				"pending_reviews": pendingReviews,
			}, output.WithSummary(fmt.Sprintf("%s: %d appointments today, %d pending, %d reviews awaiting approval",
				business.Name, stats.TodayAppointments, stats.PendingAppointments, len(pendingReviews))))
		},
	}
}
