package web

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/valyala/fastjson"

	"github.com/bedrocksmith/bsmith/internal/config"
	"github.com/bedrocksmith/bsmith/internal/invocation"
	"github.com/bedrocksmith/bsmith/internal/session"
)

const (
	viewText   = "text"
	viewRaw    = "raw"
	viewRecord = "record"
)

var viewNames = []string{viewText, viewRaw, viewRecord}

func parseView(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, v := range viewNames {
		if s == v {
			return v
		}
	}
	return viewText
}

// eventItem is one sidebar entry, also served by the list API
type eventItem struct {
	Number    int              `json:"number"`
	EventID   string           `json:"event_id"`
	Timestamp string           `json:"timestamp"`
	Tags      []invocation.Tag `json:"tags,omitempty"`
	ErrorCode string           `json:"error_code,omitempty"`
	Malformed bool             `json:"malformed,omitempty"`
	Error     string           `json:"error,omitempty"`
	Selected  bool             `json:"-"`
}

func newEventItem(n int, sum session.Summary) eventItem {
	item := eventItem{
		Number:    n,
		EventID:   sum.Record.EventID,
		Timestamp: sum.Timestamp,
		Tags:      sum.Tags,
		ErrorCode: sum.ErrorCode,
	}
	if sum.Err != nil {
		item.Malformed = true
		item.Error = sum.Err.Error()
	}
	return item
}

// eventDetail is the detail API payload of a well-formed record
type eventDetail struct {
	EventID     string              `json:"event_id"`
	Tags        []invocation.Tag    `json:"tags"`
	ErrorCode   string              `json:"error_code,omitempty"`
	Input       json.RawMessage     `json:"input,omitempty"`
	InputS3Path string              `json:"input_s3_path,omitempty"`
	Output      json.RawMessage     `json:"output,omitempty"`
	Metadata    invocation.Metadata `json:"metadata"`
}

func newEventDetail(d session.Detail) eventDetail {
	ev := d.Event
	out := eventDetail{
		EventID:   d.Record.EventID,
		Tags:      invocation.BuildTags(ev.Metadata, ev.ErrorCode),
		ErrorCode: ev.ErrorCode,
		Output:    ev.Output,
		Metadata:  ev.Metadata,
	}
	if body, ok := ev.InlineBody(); ok {
		out.Input = body
	}
	if path, ok := ev.ExternalPath(); ok {
		out.InputS3Path = path
	}
	return out
}

type page struct {
	Query           session.Query
	LookbackChoices []int
	MinLimit        int
	MaxLimit        int
	LimitStep       int
	View            string
	Views           []string
	Items           []eventItem
	Failed          int
	FetchError      string
	FetchedAt       string
	Detail          *detailView
}

type detailView struct {
	EventID   string
	Timestamp string
	Tags      []invocation.Tag
	Malformed string
	Record    string // whole message, set in record view and for malformed records
	Input     bodyView
	Output    bodyView
	Metadata  []metaRow
}

type bodyView struct {
	Notice    string
	S3Path    string
	Loadable  bool
	ErrorCode string
	System    string
	Blocks    []invocation.TextBlock
	JSON      string
	TextError string
}

type metaRow struct {
	Key      string
	Value    string
	Children []metaRow
}

func newPage(st session.State, view string, external map[string][]byte) page {
	p := page{
		Query:           st.Query,
		LookbackChoices: config.LookbackChoices,
		MinLimit:        config.MinLimit,
		MaxLimit:        config.MaxLimit,
		LimitStep:       config.LimitStep,
		View:            view,
		Views:           viewNames,
	}
	if st.FetchErr != nil {
		p.FetchError = st.FetchErr.Error()
	}
	if !st.FetchedAt.IsZero() {
		p.FetchedAt = st.FetchedAt.Format("2006-01-02 15:04:05")
	}

	for i, sum := range st.Summaries() {
		item := newEventItem(i+1, sum)
		item.Selected = sum.Record.EventID == st.Selected
		if sum.ErrorCode != "" {
			p.Failed++
		}
		p.Items = append(p.Items, item)
	}

	if d, ok := st.Detail(); ok {
		dv := newDetailView(d, view, external)
		p.Detail = &dv
	}
	return p
}

func newDetailView(d session.Detail, view string, external map[string][]byte) detailView {
	dv := detailView{EventID: d.Record.EventID}
	if d.Err != nil {
		dv.Malformed = d.Err.Error()
		dv.Record = indentJSON([]byte(d.Record.Message))
		return dv
	}

	ev := d.Event
	dv.Timestamp = ev.Metadata.Timestamp()
	dv.Tags = invocation.BuildTags(ev.Metadata, ev.ErrorCode)
	if view == viewRecord {
		dv.Record = indentJSON([]byte(d.Record.Message))
		return dv
	}

	switch in := ev.Input.(type) {
	case invocation.InlineInput:
		dv.Input = newBodyView(in.Body, invocation.InputBody, view)
	case invocation.ExternalInput:
		dv.Input.S3Path = in.Path
		if body, ok := external[in.Path]; ok {
			loaded := newBodyView(body, invocation.InputBody, view)
			loaded.S3Path = in.Path
			dv.Input = loaded
		} else {
			dv.Input.Loadable = true
		}
	default:
		dv.Input.Notice = "No input recorded in this log entry."
	}

	if ev.HasOutput() {
		dv.Output = newBodyView(ev.Output, invocation.OutputBody, view)
	} else {
		dv.Output.Notice = "No output recorded in this log entry."
	}
	dv.Output.ErrorCode = ev.ErrorCode

	dv.Metadata = newMetaRows(ev.Metadata)
	return dv
}

func newBodyView(body json.RawMessage, kind invocation.BodyKind, view string) bodyView {
	if view != viewText {
		return bodyView{JSON: indentJSON(body)}
	}

	var bv bodyView
	if kind == invocation.InputBody {
		bv.System, _ = invocation.SystemPrompt(body)
	}
	blocks, err := invocation.ExtractTextBlocks(body, kind)
	if err != nil {
		bv.TextError = err.Error()
		bv.JSON = indentJSON(body)
		return bv
	}
	bv.Blocks = blocks
	if len(blocks) == 0 && bv.System == "" {
		bv.Notice = "No text content."
	}
	return bv
}

func newMetaRows(md invocation.Metadata) []metaRow {
	rows := make([]metaRow, 0, md.Len())
	for _, f := range md.Fields() {
		row := metaRow{Key: f.Key}
		v, err := fastjson.ParseBytes(f.Value)
		if err == nil && v.Type() == fastjson.TypeObject {
			obj, _ := v.Object()
			obj.Visit(func(key []byte, vv *fastjson.Value) {
				row.Children = append(row.Children, metaRow{
					Key:   string(key),
					Value: invocation.ValueText(vv),
				})
			})
		} else {
			row.Value = invocation.ScalarText(f.Value)
		}
		rows = append(rows, row)
	}
	return rows
}

func indentJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
