package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bedrocksmith/bsmith/internal/session"
	"github.com/bedrocksmith/bsmith/pkg/types"
)

func TestPrintEventTable(t *testing.T) {
	records := append(testRecords(), types.LogRecord{EventID: "e0", Timestamp: 1717200000000, Message: "{"})
	s := session.New(session.Query{}).WithFetchResult(records, nil, time.Now())

	var buf bytes.Buffer
	PrintEventTable(&buf, s.Summaries())
	out := buf.String()

	require.Contains(t, out, "Model")
	require.Contains(t, out, "anthropic.claude-3-haiku")
	require.Contains(t, out, "0.82 s")
	require.Contains(t, out, "ThrottlingException")
	require.Contains(t, out, "malformed record")
	require.Contains(t, out, "3 events")
	require.Contains(t, out, "1 failed")
	require.Contains(t, out, "1 malformed")
}

func TestPrintDetail(t *testing.T) {
	var buf bytes.Buffer
	PrintDetail(&buf, session.NewDetail(testRecords()[0]), DetailOptions{Width: 80})
	require.Contains(t, buf.String(), "A programming language.")
}
