package assistant

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type streamQueryRequest struct {
	Input streamQueryInput `json:"input"`
}

type streamQueryInput struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type event struct {
	Content *struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"content"`
}

// Query sends message within a session. The engine streams newline
// delimited events; lines that are not valid JSON are skipped. A body
// without event text is decoded with ParseReply instead, which covers plain
// query answers such as {"output": ...}.
func (c *Client) Query(ctx context.Context, sessionID, userID, message string) (Reply, error) {
	data, err := c.post(ctx, methodStreamQuery, streamQueryRequest{
		Input: streamQueryInput{
			UserID:    userID,
			SessionID: sessionID,
			Message:   message,
		},
	})
	observe(methodStreamQuery, err)
	if err != nil {
		return Reply{}, err
	}

	var events []json.RawMessage
	if doc := bytes.TrimSpace(data); json.Valid(doc) {
		// One document, possibly pretty-printed over several lines.
		events = []json.RawMessage{json.RawMessage(doc)}
	} else {
		events = c.splitEvents(data)
	}

	raw, err := json.Marshal(events)
	if err != nil {
		return Reply{}, NewErrUpstream(methodStreamQuery, http.StatusOK, err)
	}
	if text := eventText(events); text != "" {
		return Reply{Kind: ReplyEvents, Text: text, Raw: raw}, nil
	}
	if reply, ok := fallbackReply(events); ok {
		return reply, nil
	}
	return Reply{Kind: ReplyEvents, Text: NoResponseText, Raw: raw}, nil
}

// fallbackReply decodes events that carry no content parts with ParseReply.
// Events of no known shape are ignored.
func fallbackReply(events []json.RawMessage) (Reply, bool) {
	var (
		last  Reply
		texts []string
	)
	for _, ev := range events {
		r := ParseReply(ev)
		if r.Kind == ReplyRaw || strings.TrimSpace(r.Text) == "" {
			continue
		}
		last = r
		texts = append(texts, r.Text)
	}

	switch len(texts) {
	case 0:
		return Reply{}, false
	case 1:
		return last, true
	}
	raw, err := json.Marshal(events)
	if err != nil {
		return Reply{}, false
	}
	return Reply{Kind: ReplyEvents, Text: strings.Join(texts, "\n"), Raw: raw}, true
}

func (c *Client) splitEvents(data []byte) []json.RawMessage {
	events := []json.RawMessage{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxResponseBytes)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			c.logger.Warn("skipping malformed event line", zap.ByteString("line", line))
			continue
		}
		events = append(events, json.RawMessage(bytes.Clone(line)))
	}
	if err := scanner.Err(); err != nil {
		c.logger.Warn("stopped reading event stream", zap.Error(err))
	}
	return events
}

// eventText joins the text parts of every event, one per line. It is empty
// when no event carries text.
func eventText(events []json.RawMessage) string {
	var b strings.Builder
	for _, raw := range events {
		var ev event
		if json.Unmarshal(raw, &ev) != nil || ev.Content == nil {
			continue
		}
		for _, part := range ev.Content.Parts {
			if part.Text != "" {
				b.WriteString(part.Text)
				b.WriteByte('\n')
			}
		}
	}
	return strings.TrimSpace(b.String())
}
