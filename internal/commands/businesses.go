package commands

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/glambook/glambook-cli/internal/appctx"
	"github.com/glambook/glambook-cli/internal/models"
	"github.com/glambook/glambook-cli/internal/output"
)

// NewBusinessesCmd creates the businesses command group.
func NewBusinessesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "businesses",
		Aliases: []string{"business"},
		Short:   "Browse businesses",
	}

	cmd.AddCommand(
		newBusinessesListCmd(),
		newBusinessesShowCmd(),
		newBusinessesServicesCmd(),
		newBusinessesEmployeesCmd(),
		newBusinessesSlotsCmd(),
		newBusinessesRecommendedCmd(),
	)

	return cmd
}

func newBusinessesListCmd() *cobra.Command {
	var search, city string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List businesses",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}

			q := url.Values{}
			if search != "" {
				q.Set("search", search)
			}
			if city != "" {
				q.Set("city", city)
			}
			path := "/businesses"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}

			resp, err := app.API.Get(cmd.Context(), path)
			if err != nil {
				return err
			}

			var businesses []models.Business
			if err := resp.UnmarshalData(&businesses); err != nil {
				return err
			}

			return app.OK(businesses, output.WithSummary(fmt.Sprintf("%d businesses", len(businesses))))
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Filter by name")
	cmd.Flags().StringVar(&city, "city", "", "Filter by city")

	return cmd
}

func newBusinessesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a business",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}

			resp, err := app.API.Get(cmd.Context(), "/businesses/"+url.PathEscape(args[0]))
			if err != nil {
				return err
			}

			var business models.Business
			if err := resp.UnmarshalData(&business); err != nil {
				return err
			}

			return app.OK(business, output.WithSummary(business.Name))
		},
	}
}

func newBusinessesServicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "services <id>",
		Short: "List a business's services",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}

			resp, err := app.API.Get(cmd.Context(), "/businesses/"+url.PathEscape(args[0])+"/services")
			if err != nil {
				return err
			}

			var services []models.Service
			if err := resp.UnmarshalData(&services); err != nil {
				return err
			}

			return app.OK(services, output.WithSummary(fmt.Sprintf("%d services", len(services))))
		},
	}
}

func newBusinessesEmployeesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "employees <id>",
		Short: "List a business's staff",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}

			resp, err := app.API.Get(cmd.Context(), "/businesses/"+url.PathEscape(args[0])+"/employees")
			if err != nil {
				return err
			}

			var employees []models.Employee
			if err := resp.UnmarshalData(&employees); err != nil {
				return err
			}

			return app.OK(employees, output.WithSummary(fmt.Sprintf("%d employees", len(employees))))
		},
	}
}

func newBusinessesSlotsCmd() *cobra.Command {
	var employeeID, date string

	cmd := &cobra.Command{
		Use:   "slots <id>",
		Short: "Show time slots for an employee on a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}
			if employeeID == "" || date == "" {
				return output.ErrUsage("Pass --employee and --date")
			}

			q := url.Values{}
			q.Set("employeeId", employeeID)
			q.Set("date", date)

			resp, err := app.API.Get(cmd.Context(),
				"/businesses/"+url.PathEscape(args[0])+"/time-slots?"+q.Encode())
			if err != nil {
				return err
			}

			var slots []struct {
				Time      string `json:"time"`
				Available bool   `json:"available"`
			}
			if err := resp.UnmarshalData(&slots); err != nil {
				return err
			}

			free := 0
			for _, s := range slots {
				if s.Available {
					free++
				}
			}

			return app.OK(slots, output.WithSummary(fmt.Sprintf("%d of %d slots free on %s", free, len(slots), date)))
		},
	}

	cmd.Flags().StringVar(&employeeID, "employee", "", "Employee ID")
	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD)")

	return cmd
}

func newBusinessesRecommendedCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recommended",
		Short: "List recommended businesses",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}

			resp, err := app.API.Get(cmd.Context(), "/businesses/recommended?limit="+strconv.Itoa(limit))
			if err != nil {
				return err
			}

			var businesses []models.Business
			if err := resp.UnmarshalData(&businesses); err != nil {
				return err
			}

			return app.OK(businesses, output.WithSummary(fmt.Sprintf("%d recommended", len(businesses))))
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of results")

	return cmd
}
