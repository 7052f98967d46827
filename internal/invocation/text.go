package invocation

import (
	"encoding/json"
	"fmt"

	"github.com/valyala/fastjson"
)

// BodyKind tells ExtractTextBlocks which body layout to expect
type BodyKind int

const (
	InputBody  BodyKind = iota // Converse request: messages[]
	OutputBody                 // Converse response: output.message
)

// TextBlock is one text content block of a conversation message
type TextBlock struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ExtractTextBlocks returns the text content blocks of a request or
// response body in order. Blocks without text (images, tool use) are
// skipped
func ExtractTextBlocks(body json.RawMessage, kind BodyKind) ([]TextBlock, error) {
	p := parserPool.Get()
	defer parserPool.Put(p)

	root, err := p.ParseBytes(body)
	if err != nil {
		return nil, malformed("invalid body JSON: %v", err)
	}

	switch kind {
	case InputBody:
		messages := root.Get("messages")
		if messages == nil || messages.Type() != fastjson.TypeArray {
			return nil, malformed("input body has no messages list")
		}
		var blocks []TextBlock
		for _, msg := range messages.GetArray() {
			blocks = appendTextBlocks(blocks, msg)
		}
		return blocks, nil

	case OutputBody:
		msg := present(root, "output", "message")
		if msg == nil {
			return nil, malformed("output body has no output.message")
		}
		return appendTextBlocks(nil, msg), nil
	}

	return nil, fmt.Errorf("unknown body kind %d", kind)
}

func appendTextBlocks(blocks []TextBlock, msg *fastjson.Value) []TextBlock {
	role := string(msg.GetStringBytes("role"))
	for _, c := range msg.GetArray("content") {
		text := present(c, "text")
		if text == nil {
			continue
		}
		blocks = append(blocks, TextBlock{Role: role, Text: ValueText(text)})
	}
	return blocks
}

// SystemPrompt returns the text of the first system block of a request
// body. A missing or empty system list is not an error
func SystemPrompt(body json.RawMessage) (string, bool) {
	p := parserPool.Get()
	defer parserPool.Put(p)

	root, err := p.ParseBytes(body)
	if err != nil {
		return "", false
	}
	system := root.GetArray("system")
	if len(system) == 0 {
		return "", false
	}
	text := present(system[0], "text")
	if text == nil {
		return "", false
	}
	return ValueText(text), true
}
