package commands

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/glambook/glambook-cli/internal/appctx"
	"github.com/glambook/glambook-cli/internal/models"
	"github.com/glambook/glambook-cli/internal/output"
)

// NewProfileCmd creates the profile command group.
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage your profile",
	}

	cmd.AddCommand(
		newProfileUpdateCmd(),
		newProfilePasswordCmd(),
	)

	return cmd
}

// currentUserID hydrates the session and returns the logged-in user's ID.
func currentUserID(cmd *cobra.Command, app *appctx.App) (string, error) {
	app.Session.Hydrate(cmd.Context())
	user, ok := app.Session.Current()
	if !ok {
		return "", output.ErrAuth("Not logged in")
	}
	return user.ID, nil
}

func newProfileUpdateCmd() *cobra.Command {
	var name, phone, avatar string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update profile details",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}

			userID, err := currentUserID(cmd, app)
			if err != nil {
				return err
			}

			body := map[string]string{}
			if name != "" {
				body["name"] = name
			}
			if phone != "" {
				body["phone"] = phone
			}
			if avatar != "" {
				body["avatar"] = avatar
			}
			if len(body) == 0 {
				return output.ErrUsage("Nothing to update. Pass --name, --phone or --avatar")
			}

			resp, err := app.API.Put(cmd.Context(), "/auth/profile/"+url.PathEscape(userID), body)
			if err != nil {
				return err
			}

			var user models.UserProfile
			if err := resp.UnmarshalData(&user); err != nil {
				return err
			}
			user.Role = models.NormalizeRole(string(user.Role))

			return app.OK(user, output.WithSummary("Profile updated"))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&avatar, "avatar", "", "Avatar URL")

	return cmd
}

func newProfilePasswordCmd() *cobra.Command {
	var current, next string

	cmd := &cobra.Command{
		Use:   "change-password",
		Short: "Change your password",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if app == nil {
				return fmt.Errorf("app not initialized")
			}
			if current == "" || next == "" {
				return output.ErrUsage("Pass --current and --new")
			}

			userID, err := currentUserID(cmd, app)
			if err != nil {
				return err
			}

			if _, err := app.API.Post(cmd.Context(), "/auth/change-password/"+url.PathEscape(userID), map[string]string{
				"currentPassword": current,
				"newPassword":     next,
			}); err != nil {
				return err
			}

			return app.OK(map[string]string{
				"status": "password_changed",
			}, output.WithSummary("Password changed"))
		},
	}

	cmd.Flags().StringVar(&current, "current", "", "Current password")
	cmd.Flags().StringVar(&next, "new", "", "New password")

	return cmd
}
