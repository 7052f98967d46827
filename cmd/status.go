package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bedrocksmith/bsmith/internal/aws"
	"github.com/bedrocksmith/bsmith/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show resolved settings and authentication status",
	Long: `Display the settings the viewer would use and verify the AWS credentials
of the selected profile.

Examples:
  bsmith status
  bsmith status --profile prod --region us-west-2`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Current Status")
	fmt.Fprintln(out, ui.MutedStyle.Render("─────────────────────────────────"))
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Config:    %s\n", ui.MutedStyle.Render(s.ConfigPath))
	fmt.Fprintf(out, "Log group: %s\n", ui.HeaderStyle.Render(s.LogGroup))
	fmt.Fprintf(out, "Region:    %s\n", s.Region)
	fmt.Fprintf(out, "Lookback:  %dh\n", s.LookbackHours)
	fmt.Fprintf(out, "Limit:     %d\n", s.Limit)
	displayProfile(out, s.Profile)
	fmt.Fprintln(out)

	// Try to get caller identity
	fmt.Fprint(out, "Auth:      ")
	b := newBackend(s, newLogger(cmd.ErrOrStderr()))
	identity, err := b.CallerIdentity(cmd.Context())
	if err != nil {
		fmt.Fprintln(out, ui.ErrorStyle.Render("✗ Not authenticated"))
		fmt.Fprintf(out, "           %s\n", ui.MutedStyle.Render(err.Error()))
		if s.Profile != "" {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "To authenticate:")
			fmt.Fprintf(out, "  aws sso login --profile %s\n", s.Profile)
		}
		return nil
	}

	fmt.Fprintln(out, ui.SuccessStyle.Render("✓ Authenticated"))
	fmt.Fprintf(out, "Account:   %s\n", identity.Account)
	fmt.Fprintf(out, "User:      %s\n", identity.UserID)
	if identity.Arn != "" {
		fmt.Fprintf(out, "ARN:       %s\n", ui.MutedStyle.Render(identity.Arn))
	}
	return nil
}

func displayProfile(out io.Writer, profile string) {
	if profile == "" {
		fmt.Fprintf(out, "Profile:   %s\n", ui.MutedStyle.Render("(default credential chain)"))
		return
	}

	credentials, configFile := aws.SharedConfigFiles()
	profiles := aws.ListProfiles(credentials, configFile)
	if aws.HasProfile(profiles, profile) {
		fmt.Fprintf(out, "Profile:   %s\n", profile)
		return
	}
	fmt.Fprintf(out, "Profile:   %s %s\n", profile, ui.ErrorStyle.Render("(not found in shared config)"))
}
