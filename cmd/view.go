package cmd

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bedrocksmith/bsmith/internal/ui"
)

const viewLogFile = "bsmith-debug.log"

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Browse invocations in an interactive terminal viewer",
	Long: `Open the interactive viewer. The most recent invocations are fetched on start
and listed newest first; the selected one is shown as input, output and metadata.

Keys:
  ↑/↓ j/k   move            enter   select
  tab t     text/raw/record  r       fetch again
  + -       change limit     h       cycle lookback hours
  o         load S3 input    /       search
  q esc     quit

Examples:
  bsmith view
  bsmith view --log-group my-bedrock-logs --hours 6
  bsmith view -v            # debug log in ./bsmith-debug.log`,
	Args: cobra.NoArgs,
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	// The viewer owns the terminal, so diagnostics go to a file
	var logOut io.Writer = io.Discard
	if verbose {
		f, err := tea.LogToFile(viewLogFile, "bsmith")
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	b := newBackend(s, newLogger(logOut))

	return ui.RunViewer(cmd.Context(), s.Query(), b.Fetch, b)
}
