package assistant

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ReplyKind tells which response shape a Reply was decoded from.
type ReplyKind string

const (
	ReplyText   ReplyKind = "text"
	ReplyOutput ReplyKind = "output"
	ReplyResult ReplyKind = "result"
	ReplyEvents ReplyKind = "events"
	ReplyRaw    ReplyKind = "raw"
)

// NoResponseText is shown when the engine answered without any text.
const NoResponseText = "No response from agent"

// Reply is a decoded engine answer. Text is always displayable; Raw keeps
// the undecoded payload.
type Reply struct {
	Kind ReplyKind       `json:"kind"`
	Text string          `json:"text"`
	Raw  json.RawMessage `json:"raw,omitempty"`
}

// ParseReply decodes an engine answer, trying the known shapes in order:
// an object with text, output or result, an array of replies, a bare string.
// Anything else is rendered as indented JSON.
func ParseReply(raw json.RawMessage) Reply {
	raw = bytes.TrimSpace(raw)

	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) == nil && obj != nil {
		for _, f := range []struct {
			key  string
			kind ReplyKind
		}{
			{"text", ReplyText},
			{"output", ReplyOutput},
			{"result", ReplyResult},
		} {
			if v, ok := obj[f.key]; ok && truthy(v) {
				return Reply{Kind: f.kind, Text: display(v), Raw: raw}
			}
		}
	}

	var items []json.RawMessage
	if json.Unmarshal(raw, &items) == nil && items != nil {
		texts := make([]string, 0, len(items))
		for _, item := range items {
			texts = append(texts, ParseReply(item).Text)
		}
		return Reply{Kind: ReplyEvents, Text: strings.Join(texts, "\n"), Raw: raw}
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		return Reply{Kind: ReplyText, Text: s, Raw: raw}
	}

	return Reply{Kind: ReplyRaw, Text: indent(raw), Raw: raw}
}

// truthy reports whether v holds a value other than null, false, 0 or "".
func truthy(v json.RawMessage) bool {
	switch s := string(bytes.TrimSpace(v)); s {
	case "", "null", "false", `""`:
		return false
	default:
		var f float64
		if json.Unmarshal(v, &f) == nil {
			return f != 0
		}
		return true
	}
}

// display renders strings as-is and other values as compact JSON.
func display(v json.RawMessage) string {
	var s string
	if json.Unmarshal(v, &s) == nil {
		return s
	}
	var buf bytes.Buffer
	if json.Compact(&buf, v) != nil {
		return string(v)
	}
	return buf.String()
}

func indent(raw json.RawMessage) string {
	var buf bytes.Buffer
	if json.Indent(&buf, raw, "", "  ") != nil {
		return string(raw)
	}
	return buf.String()
}
