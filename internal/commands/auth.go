// Package commands implements the CLI commands.
package commands

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/glambook/glambook-cli/internal/appctx"
	"github.com/glambook/glambook-cli/internal/models"
	"github.com/glambook/glambook-cli/internal/output"
	"github.com/glambook/glambook-cli/internal/session"
)

// NewAuthCmd creates the auth command group.
func NewAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication",
		Long:  "Manage Glambook authentication including login, registration, logout, and status.",
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthRegisterCmd(),
		newAuthLogoutCmd(),
		newAuthStatusCmd(),
		newAuthRefreshCmd(),
	)

	return cmd
}

// resolveRole validates a role string from flags or config. Empty means no
// role check on login.
func resolveRole(s string) (models.Role, error) {
	if s == "" {
		return "", nil
	}
	role := models.NormalizeRole(s)
	if role != models.RoleUser && role != models.RoleOwner {
		return "", output.ErrUsage(fmt.Sprintf("Invalid role %q. Use 'user' or 'owner'", s))
	}
	return role, nil
}

func newAuthLoginCmd() *cobra.Command {
	var email, password, roleFlag string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to Glambook",
		Long: `Authenticate with email and password.

The --role flag pins the expected account type. When the account's actual
role differs, login is rejected and nothing is stored:

  gbk auth login --role owner`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}

			if roleFlag == "" {
				roleFlag = app.Config.DefaultRole
			}
			role, err := resolveRole(roleFlag)
			if err != nil {
				return err
			}

			if email == "" || password == "" {
				if !app.IsInteractive() {
					return output.ErrUsageHint("Missing credentials", "Pass --email and --password, or run interactively")
				}
				form := huh.NewForm(huh.NewGroup(
					huh.NewInput().Title("Email").Value(&email),
					huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password),
				))
				if err := form.Run(); err != nil {
					return output.ErrCancelled("Login cancelled")
				}
			}

			user, err := app.Session.Login(cmd.Context(), session.Credentials{
				Email:    email,
				Password: password,
			}, role)
			if err != nil {
				return err
			}

			return app.OK(user, output.WithSummary(fmt.Sprintf("Logged in as %s (%s)", user.Name, user.Role)))
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().StringVar(&roleFlag, "role", "", "Expected account role: 'user' or 'owner'")

	return cmd
}

func newAuthRegisterCmd() *cobra.Command {
	var in session.RegisterInput

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a Glambook account",
		Long: `Create an account and log it in.

Pass --owner together with --business-name to register a business owner
account with its initial listing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}

			if in.Owner && in.BusinessName == "" && app.IsInteractive() {
				form := huh.NewForm(huh.NewGroup(
					huh.NewInput().Title("Business name").Value(&in.BusinessName),
				))
				if err := form.Run(); err != nil {
					return output.ErrCancelled("Registration cancelled")
				}
			}

			if in.FullName == "" || in.Email == "" || in.Password == "" {
				if !app.IsInteractive() {
					return output.ErrUsageHint("Missing account details", "Pass --name, --email and --password, or run interactively")
				}
				form := huh.NewForm(huh.NewGroup(
					huh.NewInput().Title("Full name").Value(&in.FullName),
					huh.NewInput().Title("Email").Value(&in.Email),
					huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&in.Password),
					huh.NewInput().Title("Phone (optional)").Value(&in.Phone),
				))
				if err := form.Run(); err != nil {
					return output.ErrCancelled("Registration cancelled")
				}
			}
			if in.Owner && in.BusinessName == "" {
				return output.ErrUsage("Owner registration requires --business-name")
			}

			user, err := app.Session.Register(cmd.Context(), in)
			if err != nil {
				return err
			}

			return app.OK(user, output.WithSummary(fmt.Sprintf("Welcome to Glambook, %s!", user.Name)))
		},
	}

	cmd.Flags().StringVar(&in.FullName, "name", "", "Full name")
	cmd.Flags().StringVar(&in.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "Account password")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "Phone number")
	cmd.Flags().BoolVar(&in.Owner, "owner", false, "Register a business owner account")
	cmd.Flags().StringVar(&in.BusinessName, "business-name", "", "Business name (owner accounts)")

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and remove stored credentials",
		Long:  "End the session. Local credentials are removed even when the server cannot be reached.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}

			if err := app.Session.Logout(cmd.Context()); err != nil {
				return err
			}

			return app.OK(map[string]string{
				"status": "logged_out",
			}, output.WithSummary("Logged out"))
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		Long:  "Display the current session, the API host, and where each config value came from.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}

			app.Session.Hydrate(cmd.Context())

			status := map[string]any{
				"base_url": app.Config.BaseURL,
				"sources":  app.Config.Sources,
			}

			user, ok := app.Session.Current()
			if !ok {
				status["authenticated"] = false
				return app.OK(status, output.WithSummary("Not logged in"))
			}

			status["authenticated"] = true
			status["user"] = user
			return app.OK(status, output.WithSummary(fmt.Sprintf("Logged in as %s (%s)", user.Name, user.Role)))
		},
	}
}

func newAuthRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the access token",
		Long:  "Force a token refresh. A rejected refresh ends the session.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}

			if err := app.Session.Refresh(cmd.Context()); err != nil {
				return err
			}

			return app.OK(map[string]string{
				"status": "refreshed",
			}, output.WithSummary("Token refreshed"))
		},
	}
}

// NewMeCmd creates the me command.
func NewMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the current user profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}

			resp, err := app.API.Get(cmd.Context(), "/auth/me")
			if err != nil {
				return err
			}

			var user models.UserProfile
			if err := resp.UnmarshalData(&user); err != nil {
				return err
			}
			user.Role = models.NormalizeRole(string(user.Role))

			return app.OK(user, output.WithSummary(fmt.Sprintf("%s (%s)", user.Name, user.Role)))
		},
	}
}
