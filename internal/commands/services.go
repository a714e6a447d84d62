package commands

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/glambook/glambook-cli/internal/appctx"
	"github.com/glambook/glambook-cli/internal/models"
	"github.com/glambook/glambook-cli/internal/output"
)

// NewServicesCmd creates the services command group for owners managing
// their catalog. Customers browse services via `businesses services`.
func NewServicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "services",
		Short: "Manage your business's services (owner)",
	}

	cmd.AddCommand(
		newServicesAddCmd(),
		newServicesUpdateCmd(),
		newServicesRemoveCmd(),
	)

	return cmd
}

func newServicesAddCmd() *cobra.Command {
	var businessID, name, description string
	var price float64
	var duration int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a service to a business",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}
			if businessID == "" || name == "" {
				return output.ErrUsage("Pass --business and --name")
			}
			if price <= 0 {
				return output.ErrUsage("Pass a positive --price")
			}
			if duration <= 0 {
				return output.ErrUsage("Pass a positive --duration in minutes")
			}

			resp, err := app.API.Post(cmd.Context(), "/owner/services", map[string]any{
				"businessId":  businessID,
				"name":        name,
				"description": description,
				"price":       price,
				"durationMin": duration,
			})
			if err != nil {
				return err
			}

			var service models.Service
			if err := resp.UnmarshalData(&service); err != nil {
				return err
			}

			return app.OK(service, output.WithSummary(fmt.Sprintf("Added %s", service.Name)))
		},
	}

	cmd.Flags().StringVar(&businessID, "business", "", "Business ID")
	cmd.Flags().StringVar(&name, "name", "", "Service name")
	cmd.Flags().StringVar(&description, "description", "", "Service description")
	cmd.Flags().Float64Var(&price, "price", 0, "Price")
	cmd.Flags().IntVar(&duration, "duration", 0, "Duration in minutes")

	return cmd
}

func newServicesUpdateCmd() *cobra.Command {
	var name, description string
	var price float64
	var duration int

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a service",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}

			// The backend replaces the record, so only send what changed.
			fields := map[string]any{}
			if cmd.Flags().Changed("name") {
				fields["name"] = name
			}
			if cmd.Flags().Changed("description") {
				fields["description"] = description
			}
			if cmd.Flags().Changed("price") {
				fields["price"] = price
			}
			if cmd.Flags().Changed("duration") {
				fields["durationMin"] = duration
			}
			if len(fields) == 0 {
				return output.ErrUsage("Pass at least one of --name, --description, --price, --duration")
			}

			resp, err := app.API.Put(cmd.Context(), "/owner/services/"+url.PathEscape(args[0]), fields)
			if err != nil {
				return err
			}

			var service models.Service
			if err := resp.UnmarshalData(&service); err != nil {
				return err
			}

			return app.OK(service, output.WithSummary(fmt.Sprintf("Updated %s", service.Name)))
		},
	}

	cmd.Args = cobra.ExactArgs(1)
	cmd.Flags().StringVar(&name, "name", "", "Service name")
	cmd.Flags().StringVar(&description, "description", "", "Service description")
	cmd.Flags().Float64Var(&price, "price", 0, "Price")
	cmd.Flags().IntVar(&duration, "duration", 0, "Duration in minutes")

	return cmd
}

func newServicesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}

			if _, err := app.API.Delete(cmd.Context(), "/owner/services/"+url.PathEscape(args[0])); err != nil {
				return err
			}

			return app.OK(map[string]string{
				"id":      args[0],
				"removed": "true",
			}, output.WithSummary("Service removed"))
		},
	}
}
