package commands

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glambook/glambook-cli/internal/appctx"
	"github.com/glambook/glambook-cli/internal/models"
	"github.com/glambook/glambook-cli/internal/output"
)

// NewAppointmentsCmd creates the appointments command group.
func NewAppointmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "appointments",
		Aliases: []string{"appts"},
		Short:   "Manage your appointments",
	}

	cmd.AddCommand(
		newAppointmentsListCmd(),
		newAppointmentsShowCmd(),
		newAppointmentsApproveCmd(),
		newAppointmentsRejectCmd(),
		newAppointmentsCompleteCmd(),
	)

	return cmd
}

func newAppointmentsListCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}

			resp, err := app.API.Get(cmd.Context(), "/appointments")
			if err != nil {
				return err
			}

			var appointments []models.Appointment
			if err := resp.UnmarshalData(&appointments); err != nil {
				return err
			}

			if status != "" {
				want := models.AppointmentStatus(strings.ToUpper(status))
				filtered := appointments[:0]
				for _, a := range appointments {
					if a.Status == want {
						filtered = append(filtered, a)
					}
				}
				appointments = filtered
			}

			return app.OK(appointments, output.WithSummary(fmt.Sprintf("%d appointments", len(appointments))))
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending, approved, rejected, cancelled, completed)")

	return cmd
}

func newAppointmentsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}

			resp, err := app.API.Get(cmd.Context(), "/appointments/"+url.PathEscape(args[0]))
			if err != nil {
				return err
			}

			var appointment models.Appointment
			if err := resp.UnmarshalData(&appointment); err != nil {
				return err
			}

			return app.OK(appointment, output.WithSummary(fmt.Sprintf("Appointment %s (%s)", appointment.ID, appointment.Status)))
		},
	}
}

func newAppointmentsApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a pending appointment (owner)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}

			resp, err := app.API.Post(cmd.Context(), "/owner/appointments/"+url.PathEscape(args[0])+"/approve", nil)
			if err != nil {
				return err
			}

			var appointment models.Appointment
			if err := resp.UnmarshalData(&appointment); err != nil {
				return err
			}

			return app.OK(appointment, output.WithSummary("Appointment approved"))
		},
	}
}

func newAppointmentsRejectCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a pending appointment (owner)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}

			resp, err := app.API.Post(cmd.Context(), "/owner/appointments/"+url.PathEscape(args[0])+"/reject", map[string]string{
				"reason": reason,
			})
			if err != nil {
				return err
			}

			var appointment models.Appointment
			if err := resp.UnmarshalData(&appointment); err != nil {
				return err
			}

			return app.OK(appointment, output.WithSummary("Appointment rejected"))
		},
	}

	cmd.Args = cobra.ExactArgs(1)
	cmd.Flags().StringVar(&reason, "reason", "", "Reason shown to the customer")

	return cmd
}

func newAppointmentsCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark an appointment as completed (owner)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}

			resp, err := app.API.Post(cmd.Context(), "/owner/appointments/"+url.PathEscape(args[0])+"/complete", nil)
			if err != nil {
				return err
			}

			var appointment models.Appointment
			if err := resp.UnmarshalData(&appointment); err != nil {
				return err
			}

			return app.OK(appointment, output.WithSummary("Appointment completed"))
		},
	}
}

// NewBookCmd creates the book shortcut command.
func NewBookCmd() *cobra.Command {
	var businessID, employeeID, serviceID, date, timeSlot string

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book an appointment",
		Long: `Book a service with an employee at a business.

A slot someone else grabbed first comes back as a conflict; pick another
slot and try again:

  gbk book --business b1 --employee e1 --service s1 --date 2026-09-02 --slot 14:00`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}
			if businessID == "" || employeeID == "" || serviceID == "" || date == "" || timeSlot == "" {
				return output.ErrUsage("Pass --business, --employee, --service, --date and --slot")
			}

			resp, err := app.API.Post(cmd.Context(), "/appointments", map[string]string{
				"businessId": businessID,
				"employeeId": employeeID,
				"serviceId":  serviceID,
				"date":       date,
				"timeSlot":   timeSlot,
			})
			if err != nil {
				return err
			}

			var appointment models.Appointment
			if err := resp.UnmarshalData(&appointment); err != nil {
				return err
			}

			return app.OK(appointment, output.WithSummary(fmt.Sprintf("Booked %s at %s", date, timeSlot)))
		},
	}

	cmd.Flags().StringVar(&businessID, "business", "", "Business ID")
	cmd.Flags().StringVar(&employeeID, "employee", "", "Employee ID")
	cmd.Flags().StringVar(&serviceID, "service", "", "Service ID")
	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&timeSlot, "slot", "", "Time slot (HH:MM)")

	return cmd
}

// NewCancelCmd creates the cancel shortcut command.
func NewCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}

			if _, err := app.API.Post(cmd.Context(), "/appointments/"+url.PathEscape(args[0])+"/cancel", nil); err != nil {
				return err
			}

			return app.OK(map[string]string{
				"id":     args[0],
				"status": "cancelled",
			}, output.WithSummary("Appointment cancelled"))
		},
	}
}
