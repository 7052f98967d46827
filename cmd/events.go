package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bedrocksmith/bsmith/internal/session"
	"github.com/bedrocksmith/bsmith/internal/ui"
)

var (
	showRaw    bool
	showView   string
	showLoadS3 bool
	showWidth  int
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print invocation events without the interactive viewer",
	Long: `Fetch the most recent Converse invocations of the log group and print them.

Examples:
  bsmith events list
  bsmith events list --hours 1 --limit 20
  bsmith events show 1
  bsmith events show 1 --view raw
  bsmith events show 38151717249798656923511233166437529380037446868181090304 --raw`,
}

var eventsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recent invocations",
	Args:    cobra.NoArgs,
	RunE:    runEventsList,
}

var eventsShowCmd = &cobra.Command{
	Use:   "show <#|event-id>",
	Short: "Show one invocation",
	Long: `Show the input, output and metadata of one invocation. The event is named by
its position in 'bsmith events list' (1 is the newest) or by its event ID.`,
	Args: cobra.ExactArgs(1),
	RunE: runEventsShow,
}

func init() {
	eventsShowCmd.Flags().BoolVar(&showRaw, "raw", false, "print the log message as JSON")
	eventsShowCmd.Flags().StringVar(&showView, "view", "text", "detail view: text, raw or record")
	eventsShowCmd.Flags().BoolVar(&showLoadS3, "load-s3", false, "load an input body that was offloaded to S3")
	eventsShowCmd.Flags().IntVar(&showWidth, "width", 100, "wrap width of the detail")

	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsShowCmd)
	rootCmd.AddCommand(eventsCmd)
}

// fetchState runs one fetch and returns the resulting session state
func fetchState(cmd *cobra.Command) (session.State, *backend, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return session.State{}, nil, err
	}
	logger := newLogger(cmd.ErrOrStderr())
	b := newBackend(s, logger)

	q := s.Query()
	records, err := b.Fetch(cmd.Context(), q)
	if err != nil {
		return session.State{}, nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	return session.New(q).WithFetchResult(records, nil, time.Now()), b, nil
}

func runEventsList(cmd *cobra.Command, args []string) error {
	st, _, err := fetchState(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(st.Records) == 0 {
		q := st.Query
		fmt.Fprintf(out, "No events found in %s in the last %dh.\n", q.LogGroup, q.LookbackHours)
		return nil
	}

	ui.PrintEventTable(out, st.Summaries())
	return nil
}

func runEventsShow(cmd *cobra.Command, args []string) error {
	st, b, err := fetchState(cmd)
	if err != nil {
		return err
	}

	rec, err := session.Lookup(st.Records, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if showRaw {
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(rec.Message), "", "  "); err != nil {
			fmt.Fprintln(out, rec.Message)
			return nil
		}
		fmt.Fprintln(out, buf.String())
		return nil
	}

	d := session.NewDetail(rec)
	opts := ui.DetailOptions{Mode: ui.ParseViewMode(showView), Width: showWidth}

	if showLoadS3 && d.Err == nil {
		if path, ok := d.Event.ExternalPath(); ok {
			body, err := b.GetObject(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("failed to load offloaded input: %w", err)
			}
			opts.External = map[string][]byte{path: body}
		}
	}

	ui.PrintDetail(out, d, opts)
	return nil
}
