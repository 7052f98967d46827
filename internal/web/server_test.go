package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bedrocksmith/bsmith/internal/session"
	"github.com/bedrocksmith/bsmith/pkg/provider"
	"github.com/bedrocksmith/bsmith/pkg/types"
)

const (
	converseMessage = `{"timestamp":"2024-06-01T00:00:02Z","modelId":"anthropic.claude-3-haiku","operation":"Converse",` +
		`"input":{"inputBodyJson":{"system":[{"text":"Answer briefly."}],"messages":[{"role":"user","content":[{"text":"What is Go?"}]}]}},` +
		`"output":{"outputBodyJson":{"output":{"message":{"role":"assistant","content":[{"text":"A programming language."}]}},` +
		`"stopReason":"end_turn","usage":{"inputTokens":12,"outputTokens":5,"totalTokens":17},"metrics":{"latencyMs":820}}}}`

	offloadedMessage = `{"timestamp":"2024-06-01T00:00:01Z","modelId":"anthropic.claude-3-haiku","operation":"ConverseStream",` +
		`"input":{"inputBodyS3Path":"s3://invocation-logs/input/1.json"},"errorCode":"ThrottlingException"}`
)

type fakeObjects struct {
	calls int
	err   error
}

func (f *fakeObjects) GetObject(_ context.Context, uri string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte(`{"messages":[{"role":"user","content":[{"text":"prompt from s3"}]}]}`), nil
}

type fakeFetch struct {
	records []types.LogRecord
	err     error
	queries []session.Query
}

func (f *fakeFetch) fetch(_ context.Context, q session.Query) ([]types.LogRecord, error) {
	f.queries = append(f.queries, q)
	return f.records, f.err
}

func testRecords() []types.LogRecord {
	return []types.LogRecord{
		{EventID: "e2", Timestamp: 1717200002000, Message: converseMessage},
		{EventID: "e1", Timestamp: 1717200001000, Message: offloadedMessage},
		{EventID: "e0", Timestamp: 1717200000000, Message: `{"modelId":"m"}`},
	}
}

func newTestServer(t *testing.T, f *fakeFetch, objects *fakeObjects) (*Server, *httptest.Server) {
	t.Helper()
	q := session.Query{LogGroup: "bedrock-invoke-logging-us-east-1", Region: "us-east-1", LookbackHours: 24, Limit: 100}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var s *Server
	if objects == nil {
		s = NewServer(q, f.fetch, nil, logger)
	} else {
		s = NewServer(q, f.fetch, objects, logger)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func noRedirect(t *testing.T) *http.Client {
	t.Helper()
	return &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
}

func get(t *testing.T, target string) (int, string) {
	t.Helper()
	resp, err := http.Get(target)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func postFetch(t *testing.T, ts *httptest.Server, form url.Values) *http.Response {
	t.Helper()
	resp, err := noRedirect(t).PostForm(ts.URL+"/fetch", form)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, &fakeFetch{}, nil)

	code, body := get(t, ts.URL+"/health")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, `"ok":true`)
}

func TestIndex_Empty(t *testing.T) {
	_, ts := newTestServer(t, &fakeFetch{}, nil)

	code, body := get(t, ts.URL+"/")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "No events found")
	require.Contains(t, body, "No event selected")
	require.Contains(t, body, `value="bedrock-invoke-logging-us-east-1"`)
}

func TestFetch_SelectsNewest(t *testing.T) {
	f := &fakeFetch{records: testRecords()}
	s, ts := newTestServer(t, f, nil)

	resp := postFetch(t, ts, url.Values{"hours": {"6"}, "limit": {"50"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	require.Len(t, f.queries, 1)
	require.Equal(t, 6, f.queries[0].LookbackHours)
	require.Equal(t, 50, f.queries[0].Limit)
	require.Equal(t, "bedrock-invoke-logging-us-east-1", f.queries[0].LogGroup)
	require.Equal(t, "e2", s.State().Selected)

	_, body := get(t, ts.URL+"/")
	require.Contains(t, body, "3 events, 1 failed")
	require.Contains(t, body, "malformed record")
	require.Contains(t, body, "A programming language.")
	require.Contains(t, body, "Answer briefly.")
	require.Contains(t, body, "0.82 s")
	require.Contains(t, body, "17 tokens")
}

func TestFetch_InvalidSettings(t *testing.T) {
	f := &fakeFetch{records: testRecords()}
	_, ts := newTestServer(t, f, nil)

	resp := postFetch(t, ts, url.Values{"hours": {"5"}})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postFetch(t, ts, url.Values{"limit": {"5000"}})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Empty(t, f.queries)
}

func TestFetch_FailureKeepsRecords(t *testing.T) {
	f := &fakeFetch{records: testRecords()}
	s, ts := newTestServer(t, f, nil)
	postFetch(t, ts, url.Values{})

	f.records, f.err = nil, errors.New("AccessDeniedException: not authorized")
	postFetch(t, ts, url.Values{})

	st := s.State()
	require.Len(t, st.Records, 3)
	require.Equal(t, "e2", st.Selected)
	require.Error(t, st.FetchErr)

	_, body := get(t, ts.URL+"/")
	require.Contains(t, body, "Fetch failed: AccessDeniedException")
	require.Contains(t, body, "A programming language.")
}

func TestIndex_SelectAndViews(t *testing.T) {
	f := &fakeFetch{records: testRecords()}
	s, ts := newTestServer(t, f, nil)
	postFetch(t, ts, url.Values{})

	_, body := get(t, ts.URL+"/?event=e1")
	require.Equal(t, "e1", s.State().Selected)
	require.Contains(t, body, "Input body was offloaded to S3")
	require.Contains(t, body, "s3://invocation-logs/input/1.json")
	require.Contains(t, body, "Error: ThrottlingException")
	require.Contains(t, body, "No output recorded in this log entry.")

	_, body = get(t, ts.URL+"/?event=e2&view=raw")
	require.Contains(t, body, "&#34;stopReason&#34;: &#34;end_turn&#34;")

	_, body = get(t, ts.URL+"/?event=e2&view=record")
	require.Contains(t, body, "<h3>Record</h3>")
	require.NotContains(t, body, "<h3>Metadata</h3>")

	_, body = get(t, ts.URL+"/?event=e0")
	require.Contains(t, body, "Malformed record")

	_, _ = get(t, ts.URL+"/?event=missing")
	require.Equal(t, "e0", s.State().Selected)
}

func TestLoad_OffloadedInput(t *testing.T) {
	f := &fakeFetch{records: testRecords()}
	objects := &fakeObjects{}
	_, ts := newTestServer(t, f, objects)
	postFetch(t, ts, url.Values{})

	resp, err := noRedirect(t).PostForm(ts.URL+"/load", url.Values{})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, _ = get(t, ts.URL+"/?event=e1")
	resp, err = noRedirect(t).PostForm(ts.URL+"/load", url.Values{"view": {"text"}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, 1, objects.calls)

	_, body := get(t, ts.URL+"/")
	require.Contains(t, body, "prompt from s3")
}

func TestLoad_MissingObject(t *testing.T) {
	f := &fakeFetch{records: testRecords()}
	objects := &fakeObjects{err: fmt.Errorf("%w: s3://invocation-logs/input/1.json", provider.ErrNotFound)}
	_, ts := newTestServer(t, f, objects)
	postFetch(t, ts, url.Values{})
	_, _ = get(t, ts.URL+"/?event=e1")

	resp, err := noRedirect(t).PostForm(ts.URL+"/load", url.Values{})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	objects.err = errors.New("AccessDenied")
	resp, err = noRedirect(t).PostForm(ts.URL+"/load", url.Values{})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestLoad_WithoutObjectStore(t *testing.T) {
	f := &fakeFetch{records: testRecords()}
	_, ts := newTestServer(t, f, nil)
	postFetch(t, ts, url.Values{})
	_, _ = get(t, ts.URL+"/?event=e1")

	resp, err := noRedirect(t).PostForm(ts.URL+"/load", url.Values{})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAPI_Events(t *testing.T) {
	f := &fakeFetch{records: testRecords()}
	_, ts := newTestServer(t, f, nil)
	postFetch(t, ts, url.Values{})

	code, body := get(t, ts.URL+"/api/events")
	require.Equal(t, http.StatusOK, code)

	var list struct {
		OK    bool `json:"ok"`
		Items []struct {
			Number    int    `json:"number"`
			EventID   string `json:"event_id"`
			ErrorCode string `json:"error_code"`
			Malformed bool   `json:"malformed"`
			Tags      []struct {
				Label string `json:"label"`
				Color string `json:"color"`
			} `json:"tags"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	require.True(t, list.OK)
	require.Len(t, list.Items, 3)
	require.Equal(t, "e2", list.Items[0].EventID)
	require.Equal(t, "BLUE", list.Items[0].Tags[0].Color)
	require.Equal(t, "ThrottlingException", list.Items[1].ErrorCode)
	require.True(t, list.Items[2].Malformed)

	code, body = get(t, ts.URL+"/api/events/e2")
	require.Equal(t, http.StatusOK, code)
	require.True(t, strings.Contains(body, `"metadata":{"timestamp":"2024-06-01T00:00:02Z","modelId":"anthropic.claude-3-haiku"`))

	code, body = get(t, ts.URL+"/api/events/2")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, `"input_s3_path":"s3://invocation-logs/input/1.json"`)

	code, body = get(t, ts.URL+"/api/events/e0")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, `"malformed":true`)

	code, _ = get(t, ts.URL+"/api/events/nope")
	require.Equal(t, http.StatusNotFound, code)
}
