package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/valyala/fastjson"

	"github.com/bedrocksmith/bsmith/internal/invocation"
	"github.com/bedrocksmith/bsmith/internal/session"
)

// ViewMode selects how input and output bodies are rendered
type ViewMode int

const (
	ViewText   ViewMode = iota // conversation text blocks
	ViewRaw                    // indented JSON bodies
	ViewRecord                 // the whole log message as indented JSON
)

var viewModeNames = [...]string{"Text", "Raw", "Record"}

func (v ViewMode) String() string {
	if v < 0 || int(v) >= len(viewModeNames) {
		return fmt.Sprintf("ViewMode(%d)", int(v))
	}
	return viewModeNames[v]
}

// Next returns the mode after v, wrapping around
func (v ViewMode) Next() ViewMode {
	return (v + 1) % ViewMode(len(viewModeNames))
}

// ParseViewMode parses a mode name, case-insensitively. Unknown names
// yield ViewText
func ParseViewMode(s string) ViewMode {
	for i, name := range viewModeNames {
		if strings.EqualFold(s, name) {
			return ViewMode(i)
		}
	}
	return ViewText
}

// DetailOptions controls RenderDetail
type DetailOptions struct {
	Mode  ViewMode
	Width int
	// External holds input bodies already loaded from S3, keyed by path
	External map[string][]byte
}

// RenderDetail renders the input, output and metadata panes of a record
// as plain lines no wider than opts.Width
func RenderDetail(d session.Detail, opts DetailOptions) []string {
	w := opts.Width
	if w < 20 {
		w = 20
	}

	var lines []string

	if d.Err != nil {
		lines = append(lines, ErrorStyle.Render("Malformed record"))
		lines = append(lines, wrap(d.Err.Error(), w)...)
		lines = append(lines, "")
		lines = append(lines, sectionHeader("Message", w)...)
		return append(lines, jsonLines(json.RawMessage(d.Record.Message), w)...)
	}

	ev := d.Event
	lines = append(lines, RenderTags(invocation.BuildTags(ev.Metadata, ev.ErrorCode), w))
	lines = append(lines, MutedStyle.Render(padRight(ev.Metadata.Timestamp()+"  "+d.Record.EventID, w)))
	lines = append(lines, "")

	if opts.Mode == ViewRecord {
		lines = append(lines, sectionHeader("Record", w)...)
		return append(lines, jsonLines(json.RawMessage(d.Record.Message), w)...)
	}

	lines = append(lines, sectionHeader("Input", w)...)
	lines = append(lines, inputLines(ev, opts, w)...)
	lines = append(lines, "")

	lines = append(lines, sectionHeader("Output", w)...)
	lines = append(lines, outputLines(ev, opts.Mode, w)...)
	lines = append(lines, "")

	lines = append(lines, sectionHeader("Metadata", w)...)
	lines = append(lines, metadataLines(ev.Metadata, w)...)

	return lines
}

func sectionHeader(title string, width int) []string {
	return []string{
		HeaderStyle.Render(title),
		MutedStyle.Render(strings.Repeat(Horizontal, min(width, 40))),
	}
}

func inputLines(ev *invocation.Event, opts DetailOptions, w int) []string {
	switch in := ev.Input.(type) {
	case invocation.InlineInput:
		return bodyLines(in.Body, invocation.InputBody, opts.Mode, w)

	case invocation.ExternalInput:
		lines := []string{MutedStyle.Render("Input body was offloaded to S3:")}
		lines = append(lines, wrap(in.Path, w)...)
		if body, ok := opts.External[in.Path]; ok {
			lines = append(lines, "")
			lines = append(lines, bodyLines(body, invocation.InputBody, opts.Mode, w)...)
		}
		return lines
	}

	return []string{MutedStyle.Render("No input recorded in this log entry.")}
}

func outputLines(ev *invocation.Event, mode ViewMode, w int) []string {
	var lines []string
	if ev.ErrorCode != "" {
		lines = append(lines, ErrorStyle.Render("Error: "+ev.ErrorCode))
	}
	if !ev.HasOutput() {
		return append(lines, MutedStyle.Render("No output recorded in this log entry."))
	}
	return append(lines, bodyLines(ev.Output, invocation.OutputBody, mode, w)...)
}

func bodyLines(body json.RawMessage, kind invocation.BodyKind, mode ViewMode, w int) []string {
	if mode != ViewText {
		return jsonLines(body, w)
	}

	var lines []string
	if kind == invocation.InputBody {
		if system, ok := invocation.SystemPrompt(body); ok {
			lines = append(lines, RoleStyle.Render("SYSTEM"))
			lines = append(lines, indent(wrap(system, w-2))...)
		}
	}

	blocks, err := invocation.ExtractTextBlocks(body, kind)
	if err != nil {
		lines = append(lines, ErrorStyle.Render("Cannot render text, switch to Raw view"))
		return append(lines, wrap(err.Error(), w)...)
	}
	if len(blocks) == 0 && len(lines) == 0 {
		return []string{MutedStyle.Render("No text content.")}
	}
	for _, b := range blocks {
		lines = append(lines, RoleStyle.Render(strings.ToUpper(b.Role)))
		lines = append(lines, indent(wrap(b.Text, w-2))...)
	}
	return lines
}

func metadataLines(md invocation.Metadata, w int) []string {
	var lines []string
	for _, f := range md.Fields() {
		v, err := fastjson.ParseBytes(f.Value)
		if err == nil && v.Type() == fastjson.TypeObject {
			lines = append(lines, HeaderStyle.Render(f.Key))
			obj, _ := v.Object()
			obj.Visit(func(key []byte, vv *fastjson.Value) {
				lines = append(lines, indent(wrap(string(key)+": "+invocation.ValueText(vv), w-2))...)
			})
			continue
		}
		lines = append(lines, wrap(f.Key+": "+invocation.ScalarText(f.Value), w)...)
	}
	return lines
}

// jsonLines pretty-prints a JSON value, falling back to the raw text
func jsonLines(raw json.RawMessage, w int) []string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return wrap(string(raw), w)
	}
	return wrap(buf.String(), w)
}

func indent(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = "  " + l
	}
	return out
}
