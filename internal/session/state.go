// Package session holds the viewer state as an explicit value. Every user
// interaction is a pure transition from one State to the next; the
// presentation layer decides where the current State lives
package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bedrocksmith/bsmith/internal/invocation"
	"github.com/bedrocksmith/bsmith/pkg/provider"
	"github.com/bedrocksmith/bsmith/pkg/types"
)

// ErrUnknownEvent is returned when a selection names no fetched record
var ErrUnknownEvent = fmt.Errorf("unknown event: %w", provider.ErrNotFound)

// Query holds the user-facing fetch controls
type Query struct {
	LogGroup      string `json:"logGroup"`
	Region        string `json:"region"`
	LookbackHours int    `json:"lookbackHours"`
	Limit         int    `json:"limit"`
}

// FetchFunc fetches the records of a query, newest first
type FetchFunc func(ctx context.Context, q Query) ([]types.LogRecord, error)

// LogsQuery converts q to a provider query
func (q Query) LogsQuery() *provider.LogsQuery {
	return &provider.LogsQuery{
		LogGroup:      q.LogGroup,
		LookbackHours: q.LookbackHours,
		Limit:         q.Limit,
		Operations:    provider.DefaultOperations,
	}
}

// State is the viewer state of one interactive session
type State struct {
	Query     Query
	Records   []types.LogRecord // newest first
	Selected  string            // event ID, empty when nothing is selected
	FetchErr  error             // error of the last fetch, if it failed
	FetchedAt time.Time         // time of the last successful fetch
}

// New returns an empty state for q
func New(q Query) State {
	return State{Query: q}
}

// WithQuery returns s with the fetch controls replaced
func (s State) WithQuery(q Query) State {
	s.Query = q
	return s
}

// WithFetchResult applies the outcome of a fetch. A failed fetch keeps the
// previously displayed records and selection. A successful one replaces
// the records and selects the newest
func (s State) WithFetchResult(records []types.LogRecord, err error, at time.Time) State {
	if err != nil {
		s.FetchErr = err
		return s
	}

	s.Records = records
	s.FetchErr = nil
	s.FetchedAt = at
	s.Selected = ""
	if len(records) > 0 {
		s.Selected = records[0].EventID
	}
	return s
}

// Select returns s with eventID selected
func (s State) Select(eventID string) (State, error) {
	if _, ok := indexOf(s.Records, eventID); !ok {
		return s, fmt.Errorf("%w: %s", ErrUnknownEvent, eventID)
	}
	s.Selected = eventID
	return s, nil
}

// SelectedRecord returns the selected record
func (s State) SelectedRecord() (types.LogRecord, bool) {
	i, ok := indexOf(s.Records, s.Selected)
	if !ok {
		return types.LogRecord{}, false
	}
	return s.Records[i], true
}

// SelectedIndex returns the position of the selected record, or -1
func (s State) SelectedIndex() int {
	i, ok := indexOf(s.Records, s.Selected)
	if !ok {
		return -1
	}
	return i
}

// Summaries parses every record for list rendering
func (s State) Summaries() []Summary {
	out := make([]Summary, 0, len(s.Records))
	for _, rec := range s.Records {
		out = append(out, Summarize(rec))
	}
	return out
}

// Detail parses the selected record for the detail pane
func (s State) Detail() (Detail, bool) {
	rec, ok := s.SelectedRecord()
	if !ok {
		return Detail{}, false
	}
	return NewDetail(rec), true
}

// Lookup resolves ref against records: a 1-based list position or an
// event ID
func Lookup(records []types.LogRecord, ref string) (types.LogRecord, error) {
	if i, ok := indexOf(records, ref); ok {
		return records[i], nil
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(records) {
		return records[n-1], nil
	}
	return types.LogRecord{}, fmt.Errorf("%w: %s", ErrUnknownEvent, ref)
}

func indexOf(records []types.LogRecord, eventID string) (int, bool) {
	if eventID == "" {
		return 0, false
	}
	for i, r := range records {
		if r.EventID == eventID {
			return i, true
		}
	}
	return 0, false
}

// Summary is the list entry of one record. Err is set when the record
// could not be parsed; such entries are still listed
type Summary struct {
	Record    types.LogRecord
	Metadata  invocation.Metadata
	Tags      []invocation.Tag
	Timestamp string
	ErrorCode string
	Err       error
}

// Summarize parses rec into a list entry
func Summarize(rec types.LogRecord) Summary {
	sum := Summary{Record: rec}
	ev, err := invocation.Parse(rec.Message)
	if err != nil {
		sum.Err = err
		sum.Timestamp = rec.Time().Format(time.RFC3339)
		return sum
	}
	sum.Metadata = ev.Metadata
	sum.Tags = invocation.BuildTags(ev.Metadata, ev.ErrorCode)
	sum.Timestamp = ev.Metadata.Timestamp()
	sum.ErrorCode = ev.ErrorCode
	return sum
}

// Detail is the parsed form of the selected record
type Detail struct {
	Record types.LogRecord
	Event  *invocation.Event // nil when Err is set
	Err    error
}

// NewDetail parses rec for the detail pane
func NewDetail(rec types.LogRecord) Detail {
	ev, err := invocation.Parse(rec.Message)
	return Detail{Record: rec, Event: ev, Err: err}
}
