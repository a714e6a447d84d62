// Package cli wires the root command, global flags, and exit-code handling.
package cli

import (
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/glambook/glambook-cli/internal/appctx"
	"github.com/glambook/glambook-cli/internal/commands"
	"github.com/glambook/glambook-cli/internal/config"
	"github.com/glambook/glambook-cli/internal/output"
	"github.com/glambook/glambook-cli/internal/version"
)

// NewRootCmd creates the root cobra command.
func NewRootCmd() *cobra.Command {
	var flags appctx.GlobalFlags

	cmd := &cobra.Command{
		Use:           "gbk",
		Short:         "Command-line interface for Glambook",
		Long:          "gbk is a CLI for Glambook: browse businesses, book appointments, and manage your account.",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip setup for help and version commands
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}

			cfg, err := config.Load(config.FlagOverrides{
				Host:   flags.Host,
				Role:   flags.Role,
				Format: formatFromFlags(flags),
			})
			if err != nil {
				return err
			}

			app := appctx.NewApp(cfg)
			app.Flags = flags
			app.ApplyFlags()

			cmd.SetContext(appctx.WithApp(cmd.Context(), app))
			return nil
		},
	}

	// Allow flags anywhere in the command line
	cmd.Flags().SetInterspersed(true)
	cmd.PersistentFlags().SetInterspersed(true)

	// Output format flags
	cmd.PersistentFlags().BoolVarP(&flags.JSON, "json", "j", false, "Output as JSON")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Output data only, no envelope")
	cmd.PersistentFlags().BoolVar(&flags.Styled, "styled", false, "Force styled output (ANSI colors)")
	cmd.PersistentFlags().StringVar(&flags.JQ, "jq", "", "Filter output data with a jq expression")

	// Context flags
	cmd.PersistentFlags().StringVar(&flags.Host, "host", "", "API host (e.g., localhost:3000, staging.glambook.app)")
	cmd.PersistentFlags().StringVar(&flags.Role, "role", "", "Default account role for login (user or owner)")

	// Behavior flags
	cmd.PersistentFlags().CountVarP(&flags.Verbose, "verbose", "v", "Verbose output (-v for requests, -vv for lifecycle events)")
	cmd.PersistentFlags().BoolVar(&flags.Stats, "stats", false, "Show session statistics")

	return cmd
}

// formatFromFlags maps output flags onto the config format value so flag
// precedence is recorded in Sources like any other override.
func formatFromFlags(flags appctx.GlobalFlags) string {
	switch {
	case flags.Quiet:
		return "quiet"
	case flags.JSON:
		return "json"
	case flags.Styled:
		return "styled"
	}
	return ""
}

// Execute runs the root command.
func Execute() {
	cmd := NewRootCmd()

	cmd.AddCommand(commands.NewAuthCmd())
	cmd.AddCommand(commands.NewMeCmd())
	cmd.AddCommand(commands.NewProfileCmd())
	cmd.AddCommand(commands.NewBusinessesCmd())
	cmd.AddCommand(commands.NewServicesCmd())
	cmd.AddCommand(commands.NewEmployeesCmd())
	cmd.AddCommand(commands.NewAppointmentsCmd())
	cmd.AddCommand(commands.NewBookCmd())
	cmd.AddCommand(commands.NewCancelCmd())
	cmd.AddCommand(commands.NewReviewsCmd())
	cmd.AddCommand(commands.NewReviewCmd())
	cmd.AddCommand(commands.NewDashboardCmd())

	// Use ExecuteC to get the executed command (for correct context access)
	executedCmd, err := cmd.ExecuteC()
	if err != nil {
		err = transformCobraError(err)
		apiErr := output.AsError(err)

		// Use app.Err() when the app is available (for --stats support)
		if app := appctx.FromContext(executedCmd.Context()); app != nil {
			_ = app.Err(err)
			os.Exit(apiErr.ExitCode())
		}

		// Fallback: app not available, e.g. setup failed
		writer := output.New(output.Options{
			Format: fallbackFormat(cmd.PersistentFlags()),
			Writer: os.Stdout,
		})
		_ = writer.Err(err)

		os.Exit(apiErr.ExitCode())
	}
}

// fallbackFormat resolves the output format straight from the parsed flag
// set, for errors raised before the app exists.
func fallbackFormat(pf *pflag.FlagSet) output.Format {
	quiet, _ := pf.GetBool("quiet")
	jsonFlag, _ := pf.GetBool("json")
	styled, _ := pf.GetBool("styled")
	switch {
	case quiet:
		return output.FormatQuiet
	case jsonFlag:
		return output.FormatJSON
	case styled:
		return output.FormatStyled
	}
	return output.FormatAuto
}

var shorthandFlagRe = regexp.MustCompile(`unknown shorthand flag: '.' in (-\w)`)

// transformCobraError rewrites cobra's flag errors into the usage error code
// so they exit with the usage status like every other bad invocation.
func transformCobraError(err error) error {
	msg := err.Error()

	if flag, ok := strings.CutPrefix(msg, "flag needs an argument: "); ok {
		return output.ErrUsage(flag + " requires a value")
	}
	if flag, ok := strings.CutPrefix(msg, "unknown flag: "); ok {
		return output.ErrUsage("Unknown option: " + flag)
	}
	if matches := shorthandFlagRe.FindStringSubmatch(msg); len(matches) > 1 {
		return output.ErrUsage("Unknown option: " + matches[1])
	}
	if strings.Contains(msg, "unknown command") ||
		strings.Contains(msg, "invalid argument") ||
		strings.Contains(msg, "accepts") && strings.Contains(msg, "arg(s)") {
		return output.ErrUsage(msg)
	}
	return err
}
