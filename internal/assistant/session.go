package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// Session is a conversation opened on the reasoning engine.
type Session struct {
	ID     string          `json:"sessionId"`
	UserID string          `json:"userId"`
	Raw    json.RawMessage `json:"raw,omitempty"`
}

type createSessionRequest struct {
	ClassMethod string             `json:"classMethod"`
	Input       createSessionInput `json:"input"`
}

type createSessionInput struct {
	UserID string `json:"user_id"`
}

// CreateSession opens a session for userID. Transport failures, throttling
// and server errors are retried with exponential backoff.
func (c *Client) CreateSession(ctx context.Context, userID string) (Session, error) {
	body := createSessionRequest{
		ClassMethod: methodCreateSession,
		Input:       createSessionInput{UserID: userID},
	}

	var data []byte
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		var err error
		data, err = c.post(ctx, methodCreateSession, body)
		if err == nil {
			return nil
		}
		var upstream *ErrUpstream
		if errors.As(err, &upstream) && upstream.Temporary() {
			c.logger.Debug("retrying session creation", zap.Error(err))
			return retry.RetryableError(err)
		}
		return err
	})
	observe(methodCreateSession, err)
	if err != nil {
		return Session{}, err
	}

	id, err := sessionID(data)
	if err != nil {
		return Session{}, NewErrUpstream(methodCreateSession, http.StatusOK, err)
	}

	c.logger.Info("assistant session created", zap.String("session_id", id), zap.String("user_id", userID))
	return Session{ID: id, UserID: userID, Raw: json.RawMessage(data)}, nil
}

// sessionID resolves the session id from the shapes the engine is known to
// return: id, name, session.id and output.id, in that order.
func sessionID(data []byte) (string, error) {
	var resp map[string]json.RawMessage
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("decode session response: %w", err)
	}

	for _, path := range [][]string{{"id"}, {"name"}, {"session", "id"}, {"output", "id"}} {
		if id := lookupString(resp, path...); id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("session response carries no id: %s", truncate(data, 200))
}

// lookupString follows path through nested objects and returns the string
// found there, or "" when any step is missing or of another type.
func lookupString(obj map[string]json.RawMessage, path ...string) string {
	raw, ok := obj[path[0]]
	if !ok {
		return ""
	}
	if len(path) == 1 {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}
	var next map[string]json.RawMessage
	if err := json.Unmarshal(raw, &next); err != nil {
		return ""
	}
	return lookupString(next, path[1:]...)
}

func truncate(data []byte, n int) string {
	if len(data) <= n {
		return string(data)
	}
	return string(data[:n]) + "..."
}
