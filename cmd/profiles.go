package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bedrocksmith/bsmith/internal/aws"
	"github.com/bedrocksmith/bsmith/internal/ui"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List AWS profiles from the shared config files",
	Long: `List the profiles found in ~/.aws/credentials and ~/.aws/config (or the
files named by AWS_SHARED_CREDENTIALS_FILE and AWS_CONFIG_FILE).

Examples:
  bsmith profiles
  bsmith view --profile <name>`,
	Args: cobra.NoArgs,
	RunE: runProfiles,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}

func runProfiles(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	credentials, configFile := aws.SharedConfigFiles()
	profiles := aws.ListProfiles(credentials, configFile)
	if len(profiles) == 0 {
		fmt.Fprintln(out, "No AWS profiles found.")
		return nil
	}

	fmt.Fprintln(out, ui.HeaderStyle.Render("AWS Profiles"))
	fmt.Fprintln(out, ui.MutedStyle.Render("─────────────────────────────────"))
	for _, p := range profiles {
		region := p.Region
		if region == "" {
			region = "-"
		}
		fmt.Fprintf(out, "  %-24s %-16s %s\n", p.Name, region, ui.MutedStyle.Render(p.Source))
	}
	return nil
}
