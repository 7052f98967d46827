package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bedrocksmith/bsmith/internal/config"
	"github.com/bedrocksmith/bsmith/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the BedrockSmith config file",
	Long: `Show and change the defaults stored in the config file.

Keys: profile, region, log_group, lookback_hours, limit, listen_addr

Examples:
  bsmith config show
  bsmith config set log_group my-bedrock-logs
  bsmith config get limit
  bsmith config path`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one stored setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store one setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), configPath())
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	path := configPath()
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	effective := cfg.WithDefaults()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s %s\n\n", ui.HeaderStyle.Render("Config"), ui.MutedStyle.Render(path))
	for _, key := range config.Keys {
		stored, _ := cfg.Get(key)
		value, _ := effective.Get(key)
		if stored == "" || stored == "0" {
			if value == "" {
				value = ui.MutedStyle.Render("(not set)")
			} else {
				value += " " + ui.MutedStyle.Render("(default)")
			}
		}
		fmt.Fprintf(out, "  %-15s %s\n", key+":", value)
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configPath())
	if err != nil {
		return err
	}
	value, err := cfg.WithDefaults().Get(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	path := configPath()
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	if err := cfg.Set(args[0], args[1]); err != nil {
		return err
	}
	if err := config.SaveConfig(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", ui.SuccessStyle.Render("✓"), args[0], args[1])
	return nil
}
