package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bedrocksmith/bsmith/internal/invocation"
	"github.com/bedrocksmith/bsmith/pkg/provider"
	"github.com/bedrocksmith/bsmith/pkg/types"
)

const okMessage = `{"timestamp":"2024-06-01T00:00:02Z","modelId":"m1","operation":"Converse",` +
	`"output":{"outputBodyJson":{"stopReason":"end_turn","usage":{"inputTokens":1,"outputTokens":2,"totalTokens":3},"metrics":{"latencyMs":1500}}}}`

const errMessage = `{"timestamp":"2024-06-01T00:00:01Z","modelId":"m1","operation":"ConverseStream","errorCode":"ValidationException"}`

func records() []types.LogRecord {
	return []types.LogRecord{
		{EventID: "e3", Timestamp: 3000, Message: okMessage},
		{EventID: "e2", Timestamp: 2000, Message: errMessage},
		{EventID: "e1", Timestamp: 1000, Message: `not json`},
	}
}

func TestWithFetchResult_SelectsNewest(t *testing.T) {
	at := time.Unix(10, 0)
	s := New(Query{LogGroup: "g"}).WithFetchResult(records(), nil, at)

	require.Equal(t, "e3", s.Selected)
	require.Equal(t, at, s.FetchedAt)
	require.NoError(t, s.FetchErr)
	require.Equal(t, 0, s.SelectedIndex())
}

func TestWithFetchResult_FailureKeepsList(t *testing.T) {
	s := New(Query{}).WithFetchResult(records(), nil, time.Unix(10, 0))
	s, err := s.Select("e2")
	require.NoError(t, err)

	failed := errors.New("ExpiredTokenException")
	next := s.WithFetchResult(nil, failed, time.Unix(20, 0))

	require.ErrorIs(t, next.FetchErr, failed)
	require.Len(t, next.Records, 3)
	require.Equal(t, "e2", next.Selected)
	require.Equal(t, time.Unix(10, 0), next.FetchedAt)

	// the original value is untouched
	require.NoError(t, s.FetchErr)
}

func TestWithFetchResult_Empty(t *testing.T) {
	s := New(Query{}).WithFetchResult(records(), nil, time.Unix(1, 0))
	s = s.WithFetchResult(nil, nil, time.Unix(2, 0))

	require.Empty(t, s.Records)
	require.Empty(t, s.Selected)
	_, ok := s.Detail()
	require.False(t, ok)
}

func TestSelect(t *testing.T) {
	s := New(Query{}).WithFetchResult(records(), nil, time.Unix(1, 0))

	s, err := s.Select("e1")
	require.NoError(t, err)
	rec, ok := s.SelectedRecord()
	require.True(t, ok)
	require.Equal(t, "e1", rec.EventID)

	_, err = s.Select("missing")
	require.ErrorIs(t, err, ErrUnknownEvent)
}

func TestSummaries(t *testing.T) {
	s := New(Query{}).WithFetchResult(records(), nil, time.Unix(1, 0))
	sums := s.Summaries()
	require.Len(t, sums, 3)

	require.NoError(t, sums[0].Err)
	require.Len(t, sums[0].Tags, 4)
	require.Equal(t, "1.5 s", sums[0].Tags[1].Label)
	require.Equal(t, "2024-06-01T00:00:02Z", sums[0].Timestamp)

	require.Equal(t, "ValidationException", sums[1].ErrorCode)
	require.Len(t, sums[1].Tags, 5)

	require.ErrorIs(t, sums[2].Err, invocation.ErrMalformedRecord)
	require.Equal(t, "1970-01-01T00:00:01Z", sums[2].Timestamp)
}

func TestDetail(t *testing.T) {
	s := New(Query{}).WithFetchResult(records(), nil, time.Unix(1, 0))
	d, ok := s.Detail()
	require.True(t, ok)
	require.NoError(t, d.Err)
	require.True(t, d.Event.HasOutput())

	s, _ = s.Select("e1")
	d, ok = s.Detail()
	require.True(t, ok)
	require.ErrorIs(t, d.Err, invocation.ErrMalformedRecord)
	require.Nil(t, d.Event)
}

func TestLookup(t *testing.T) {
	recs := records()

	rec, err := Lookup(recs, "2")
	require.NoError(t, err)
	require.Equal(t, "e2", rec.EventID)

	rec, err = Lookup(recs, "e1")
	require.NoError(t, err)
	require.Equal(t, "e1", rec.EventID)

	_, err = Lookup(recs, "4")
	require.ErrorIs(t, err, ErrUnknownEvent)
	require.ErrorIs(t, err, provider.ErrNotFound)
	_, err = Lookup(recs, "")
	require.ErrorIs(t, err, ErrUnknownEvent)
}

func TestQuery_LogsQuery(t *testing.T) {
	q := Query{LogGroup: "g", Region: "us-east-1", LookbackHours: 12, Limit: 30}.LogsQuery()
	require.Equal(t, "g", q.LogGroup)
	require.Equal(t, 12, q.LookbackHours)
	require.Equal(t, 30, q.Limit)
	require.Equal(t, []string{"Converse", "ConverseStream"}, q.Operations)
}
