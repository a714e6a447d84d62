package commands

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/glambook/glambook-cli/internal/appctx"
	"github.com/glambook/glambook-cli/internal/models"
	"github.com/glambook/glambook-cli/internal/output"
)

// NewEmployeesCmd creates the employees command group for owners managing
// their staff. Customers browse staff via `businesses employees`.
func NewEmployeesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employees",
		Short: "Manage your business's staff (owner)",
	}

	cmd.AddCommand(
		newEmployeesAddCmd(),
		newEmployeesUpdateCmd(),
		newEmployeesRemoveCmd(),
	)

	return cmd
}

func newEmployeesAddCmd() *cobra.Command {
	var businessID, name, photo string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a staff member to a business",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}
			if businessID == "" || name == "" {
				return output.ErrUsage("Pass --business and --name")
			}

			resp, err := app.API.Post(cmd.Context(), "/owner/employees", map[string]any{
				"businessId": businessID,
				"fullName":   name,
				"photoUrl":   photo,
			})
			if err != nil {
				return err
			}

			var employee models.Employee
			if err := resp.UnmarshalData(&employee); err != nil {
				return err
			}

			return app.OK(employee, output.WithSummary(fmt.Sprintf("Added %s", employee.FullName)))
		},
	}

	cmd.Flags().StringVar(&businessID, "business", "", "Business ID")
	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&photo, "photo", "", "Photo URL")

	return cmd
}

func newEmployeesUpdateCmd() *cobra.Command {
	var name, photo string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a staff member",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}

			fields := map[string]any{}
			if cmd.Flags().Changed("name") {
				fields["fullName"] = name
			}
			if cmd.Flags().Changed("photo") {
				fields["photoUrl"] = photo
			}
			if len(fields) == 0 {
				return output.ErrUsage("Pass at least one of --name, --photo")
			}

			resp, err := app.API.Put(cmd.Context(), "/owner/employees/"+url.PathEscape(args[0]), fields)
			if err != nil {
				return err
			}

			var employee models.Employee
			if err := resp.UnmarshalData(&employee); err != nil {
				return err
			}

			return app.OK(employee, output.WithSummary(fmt.Sprintf("Updated %s", employee.FullName)))
		},
	}

	cmd.Args = cobra.ExactArgs(1)
	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&photo, "photo", "", "Photo URL")

	return cmd
}

func newEmployeesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a staff member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}

			if _, err := app.API.Delete(cmd.Context(), "/owner/employees/"+url.PathEscape(args[0])); err != nil {
				return err
			}

			return app.OK(map[string]string{
				"id":      args[0],
				"removed": "true",
			}, output.WithSummary("Employee removed"))
		},
	}
}
