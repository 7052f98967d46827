// Package invocation parses Amazon Bedrock model invocation log records into
// a normalized view of input, output and metadata
package invocation

import (
	"encoding/json"

	"github.com/valyala/fastjson"
)

// Input is the input body of an invocation. It is exactly one of
// InlineInput, ExternalInput or AbsentInput
type Input interface {
	isInput()
}

// InlineInput carries the request body embedded in the log record
type InlineInput struct {
	Body json.RawMessage
}

// ExternalInput points at a request body that was offloaded to S3
// because it was too large to log inline
type ExternalInput struct {
	Path string
}

// AbsentInput means the record carries no input at all
type AbsentInput struct{}

func (InlineInput) isInput()   {}
func (ExternalInput) isInput() {}
func (AbsentInput) isInput()   {}

// Event is the parsed form of one invocation log record
type Event struct {
	Input     Input
	Output    json.RawMessage // nil when the call produced no output
	Metadata  Metadata
	ErrorCode string // empty when the call succeeded
}

// InlineBody returns the inline input body, if any
func (e *Event) InlineBody() (json.RawMessage, bool) {
	in, ok := e.Input.(InlineInput)
	if !ok {
		return nil, false
	}
	return in.Body, true
}

// ExternalPath returns the S3 pointer of an offloaded input, if any
func (e *Event) ExternalPath() (string, bool) {
	in, ok := e.Input.(ExternalInput)
	if !ok {
		return "", false
	}
	return in.Path, true
}

// HasOutput reports whether the record carries an output body
func (e *Event) HasOutput() bool {
	return e.Output != nil
}

// Usage holds the token counts of one invocation
type Usage struct {
	InputTokens  int64 `json:"inputTokens"`
	OutputTokens int64 `json:"outputTokens"`
	TotalTokens  int64 `json:"totalTokens"`
}

// Field is a single metadata entry. Value is compact JSON
type Field struct {
	Key   string
	Value json.RawMessage
}

// Metadata is the ordered metadata summary of an event
type Metadata struct {
	fields []Field
}

// Fields returns the metadata entries in extraction order
func (m Metadata) Fields() []Field {
	return m.fields
}

// Len returns the number of entries
func (m Metadata) Len() int {
	return len(m.fields)
}

// Get returns the raw JSON value stored under key
func (m Metadata) Get(key string) (json.RawMessage, bool) {
	for _, f := range m.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Text returns the value under key as display text. Strings are unquoted,
// everything else is returned as JSON
func (m Metadata) Text(key string) string {
	v, ok := m.Get(key)
	if !ok {
		return ""
	}
	return ScalarText(v)
}

// ModelID returns the modelId entry
func (m Metadata) ModelID() string { return m.Text(KeyModelID) }

// Operation returns the operation entry
func (m Metadata) Operation() string { return m.Text(KeyOperation) }

// Timestamp returns the timestamp entry as display text
func (m Metadata) Timestamp() string { return m.Text(KeyTimestamp) }

// Usage returns the token counts. It is always populated by Parse
func (m Metadata) Usage() Usage {
	raw, _ := m.Get(KeyUsage)
	v, err := fastjson.ParseBytes(raw)
	if err != nil {
		return Usage{}
	}
	return Usage{
		InputTokens:  tokenCount(v, "inputTokens"),
		OutputTokens: tokenCount(v, "outputTokens"),
		TotalTokens:  tokenCount(v, "totalTokens"),
	}
}

// tokenCount reads an integer count, accepting numbers written with a fraction
func tokenCount(usage *fastjson.Value, key string) int64 {
	n := usage.Get(key)
	if n == nil {
		return 0
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	return int64(n.GetFloat64())
}

// LatencyMs returns the invocation latency. It is always populated by Parse
func (m Metadata) LatencyMs() float64 {
	v, _ := m.Get(KeyLatencyMs)
	return fastjson.GetFloat64(v)
}

// MarshalJSON encodes the entries as a JSON object in extraction order
func (m Metadata) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, f := range m.fields {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, f.Value...)
	}
	return append(buf, '}'), nil
}

func (m *Metadata) set(key string, value json.RawMessage) {
	for i := range m.fields {
		if m.fields[i].Key == key {
			m.fields[i].Value = value
			return
		}
	}
	m.fields = append(m.fields, Field{Key: key, Value: value})
}

// ScalarText is ValueText for raw JSON. Invalid JSON is returned as is
func ScalarText(raw json.RawMessage) string {
	v, err := fastjson.ParseBytes(raw)
	if err != nil {
		return string(raw)
	}
	return ValueText(v)
}
