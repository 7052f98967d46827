package invocation

import (
	"encoding/json"
	"strings"

	"github.com/valyala/fastjson"
)

// Metadata keys
const (
	KeyTimestamp                    = "timestamp"
	KeyModelID                      = "modelId"
	KeyOperation                    = "operation"
	KeyStopReason                   = "stopReason"
	KeyUsage                        = "usage"
	KeyLatencyMs                    = "latencyMs"
	KeyInferenceConfig              = "inferenceConfig"
	KeyAdditionalModelRequestFields = "additionalModelRequestFields"
)

// ZeroUsage is the usage placeholder of events without output
const ZeroUsage = `{"inputTokens":0,"outputTokens":0,"totalTokens":0}`

var parserPool fastjson.ParserPool

// Scope names the part of a record a metadata rule reads from
type Scope int

const (
	ScopeRecord Scope = iota // top-level log record
	ScopeInput               // inline input body
	ScopeOutput              // output body
)

var scopePrefixes = [...]string{"", "input.inputBodyJson.", "output.outputBodyJson."}

// Trees holds the JSON trees metadata rules are applied against. Input and
// Output are nil when the record has no inline input or no output
type Trees struct {
	Record *fastjson.Value
	Input  *fastjson.Value
	Output *fastjson.Value
}

func (t Trees) scope(s Scope) *fastjson.Value {
	switch s {
	case ScopeInput:
		return t.Input
	case ScopeOutput:
		return t.Output
	default:
		return t.Record
	}
}

// Rule extracts one metadata entry from a record
type Rule struct {
	Key      string
	Scope    Scope
	Path     []string
	Required bool // a missing value fails the parse when the scope exists
	// Fallback is the JSON value used when the scope is absent. Empty
	// means the entry is left out
	Fallback string
}

// Apply evaluates the rule. ok is false when the rule yields no entry
func (r Rule) Apply(t Trees) (f Field, ok bool, err error) {
	tree := t.scope(r.Scope)
	if tree == nil {
		if r.Fallback == "" {
			return Field{}, false, nil
		}
		return Field{Key: r.Key, Value: json.RawMessage(r.Fallback)}, true, nil
	}

	v := present(tree, r.Path...)
	if v == nil {
		if r.Required {
			return Field{}, false, malformed("missing required field %q", r.location())
		}
		return Field{}, false, nil
	}
	return Field{Key: r.Key, Value: rawValue(v)}, true, nil
}

func (r Rule) location() string {
	return scopePrefixes[r.Scope] + strings.Join(r.Path, ".")
}

// MetadataRules are applied in order to build Event.Metadata
var MetadataRules = []Rule{
	{Key: KeyTimestamp, Scope: ScopeRecord, Path: []string{"timestamp"}, Required: true},
	{Key: KeyModelID, Scope: ScopeRecord, Path: []string{"modelId"}, Required: true},
	{Key: KeyOperation, Scope: ScopeRecord, Path: []string{"operation"}, Required: true},
	{Key: KeyStopReason, Scope: ScopeOutput, Path: []string{"stopReason"}, Required: true},
	{Key: KeyUsage, Scope: ScopeOutput, Path: []string{"usage"}, Required: true, Fallback: ZeroUsage},
	{Key: KeyLatencyMs, Scope: ScopeOutput, Path: []string{"metrics", "latencyMs"}, Required: true, Fallback: "0"},
	{Key: KeyInferenceConfig, Scope: ScopeInput, Path: []string{"inferenceConfig"}},
	{Key: KeyAdditionalModelRequestFields, Scope: ScopeInput, Path: []string{"additionalModelRequestFields"}},
}

// BuildMetadata applies rules in order against t
func BuildMetadata(t Trees, rules []Rule) (Metadata, error) {
	var md Metadata
	for _, r := range rules {
		f, ok, err := r.Apply(t)
		if err != nil {
			return Metadata{}, err
		}
		if ok {
			md.set(f.Key, f.Value)
		}
	}
	return md, nil
}

// Parse parses one JSON-encoded invocation log message
func Parse(message string) (*Event, error) {
	p := parserPool.Get()
	defer parserPool.Put(p)

	root, err := p.Parse(message)
	if err != nil {
		return nil, malformed("invalid JSON: %v", err)
	}
	if root.Type() != fastjson.TypeObject {
		return nil, malformed("record is a JSON %s, not an object", root.Type())
	}

	ev := &Event{Input: AbsentInput{}}
	trees := Trees{Record: root}

	if body := present(root, "input", "inputBodyJson"); body != nil {
		ev.Input = InlineInput{Body: rawValue(body)}
		trees.Input = body
	} else if path := present(root, "input", "inputBodyS3Path"); path != nil {
		ev.Input = ExternalInput{Path: ValueText(path)}
	}

	if body := present(root, "output", "outputBodyJson"); body != nil {
		ev.Output = rawValue(body)
		trees.Output = body
	}

	ev.Metadata, err = BuildMetadata(trees, MetadataRules)
	if err != nil {
		return nil, err
	}

	// Records carry errorCode at the top level; some put it in the output
	// container instead
	if code := present(root, "errorCode"); code != nil {
		ev.ErrorCode = ValueText(code)
	} else if code := present(root, "output", "errorCode"); code != nil {
		ev.ErrorCode = ValueText(code)
	}

	return ev, nil
}

// present returns the value at keys, treating JSON null as absent
func present(v *fastjson.Value, keys ...string) *fastjson.Value {
	v = v.Get(keys...)
	if v == nil || v.Type() == fastjson.TypeNull {
		return nil
	}
	return v
}

// rawValue copies v out of the parser arena as compact JSON
func rawValue(v *fastjson.Value) json.RawMessage {
	return json.RawMessage(v.MarshalTo(nil))
}

// ValueText renders v for display: strings without quotes, other values
// as their JSON text
func ValueText(v *fastjson.Value) string {
	if v.Type() == fastjson.TypeString {
		return string(v.GetStringBytes())
	}
	return string(v.MarshalTo(nil))
}
