package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func fastBackoff() retry.Backoff {
	return retry.WithMaxRetries(2, retry.NewConstant(time.Millisecond))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})
	c, err := NewClient(srv.URL+"/v1/projects/p/locations/l/reasoningEngines/42:query", ts, WithBackoff(fastBackoff))
	require.NoError(t, err)
	return c
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{
			in:   "https://us-central1-aiplatform.googleapis.com/v1/projects/p/locations/l/reasoningEngines/7:query",
			want: "https://us-central1-aiplatform.googleapis.com/v1beta1/projects/p/locations/l/reasoningEngines/7",
		},
		{
			in:   "https://host/v1beta1/projects/p/reasoningEngines/7:streamQuery",
			want: "https://host/v1beta1/projects/p/reasoningEngines/7",
		},
		{
			in:   "http://127.0.0.1:9000/v1beta1/engines/7/",
			want: "http://127.0.0.1:9000/v1beta1/engines/7",
		},
	}
	for _, tt := range tests {
		got, err := NormalizeBaseURL(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"", "   ", "ftp://host/x", "engines/7"} {
		_, err := NormalizeBaseURL(bad)
		assert.Error(t, err, bad)
	}
}

func TestCreateSession(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta1/projects/p/locations/l/reasoningEngines/42:query", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"output":{"id":"sess-1","user_id":"u1"}}`)
	})

	session, err := c.CreateSession(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", session.ID)
	assert.Equal(t, "u1", session.UserID)
	assert.Equal(t, "create_session", got["classMethod"])
	assert.Equal(t, map[string]any{"user_id": "u1"}, got["input"])
}

func TestSessionIDPriority(t *testing.T) {
	tests := map[string]string{
		`{"id":"a","name":"b","session":{"id":"c"},"output":{"id":"d"}}`: "a",
		`{"name":"b","session":{"id":"c"},"output":{"id":"d"}}`:          "b",
		`{"session":{"id":"c"},"output":{"id":"d"}}`:                     "c",
		`{"output":{"id":"d"}}`:                                          "d",
		`{"id":"","output":"text","session":{"id":"c"}}`:                 "c",
	}
	for body, want := range tests {
		got, err := sessionID([]byte(body))
		require.NoError(t, err, body)
		assert.Equal(t, want, got, body)
	}

	_, err := sessionID([]byte(`{"state":{}}`))
	assert.Error(t, err)
	_, err = sessionID([]byte(`not json`))
	assert.Error(t, err)
}

func TestCreateSessionRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"id":"sess-2"}`)
	})

	session, err := c.CreateSession(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "sess-2", session.ID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCreateSessionDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "denied", http.StatusForbidden)
	})

	_, err := c.CreateSession(context.Background(), "u1")
	var upstream *ErrUpstream
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusForbidden, upstream.StatusCode)
	assert.Contains(t, err.Error(), "denied")
	assert.Equal(t, int32(1), calls.Load())
}

func TestCreateSessionWithoutID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"state":{}}`)
	})

	_, err := c.CreateSession(context.Background(), "u1")
	var upstream *ErrUpstream
	require.ErrorAs(t, err, &upstream)
}

func TestQueryJoinsEventText(t *testing.T) {
	var got streamQueryRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, ":streamQuery"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, strings.Join([]string{
			`{"content":{"parts":[{"text":"You need"},{"function_call":{}}]}}`,
			`this is not json`,
			``,
			`{"actions":{}}`,
			`{"content":{"parts":[{"text":"8.6 liters."}]}}`,
		}, "\n"))
	})

	reply, err := c.Query(context.Background(), "sess-1", "u1", "how much paint?")
	require.NoError(t, err)
	assert.Equal(t, ReplyEvents, reply.Kind)
	assert.Equal(t, "You need\n8.6 liters.", reply.Text)

	var events []json.RawMessage
	require.NoError(t, json.Unmarshal(reply.Raw, &events))
	assert.Len(t, events, 3)

	assert.Equal(t, streamQueryInput{UserID: "u1", SessionID: "sess-1", Message: "how much paint?"}, got.Input)
}

func TestQueryWithoutTextReportsNoResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"actions":{}}`+"\n")
	})

	reply, err := c.Query(context.Background(), "sess-1", "u1", "hi")
	require.NoError(t, err)
	assert.Equal(t, NoResponseText, reply.Text)
}

func TestQueryPlainOutput(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"output":"Two coats of Regal Select."}`)
	})

	reply, err := c.Query(context.Background(), "sess-1", "u1", "hi")
	require.NoError(t, err)
	assert.Equal(t, ReplyOutput, reply.Kind)
	assert.Equal(t, "Two coats of Regal Select.", reply.Text)
	assert.JSONEq(t, `{"output":"Two coats of Regal Select."}`, string(reply.Raw))
}

func TestQueryIndentedDocument(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "{\n  \"text\": \"hello\",\n  \"state\": {}\n}\n")
	})

	reply, err := c.Query(context.Background(), "sess-1", "u1", "hi")
	require.NoError(t, err)
	assert.Equal(t, ReplyText, reply.Kind)
	assert.Equal(t, "hello", reply.Text)
}

func TestQueryServerErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.Query(context.Background(), "sess-1", "u1", "hi")
	var upstream *ErrUpstream
	require.ErrorAs(t, err, &upstream)
	assert.True(t, upstream.Temporary())
	assert.Equal(t, int32(1), calls.Load())
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind ReplyKind
		text string
	}{
		{"text", `{"text":"hello","output":"ignored"}`, ReplyText, "hello"},
		{"output", `{"text":"","output":"from output"}`, ReplyOutput, "from output"},
		{"output object", `{"output":{"liters":8.6}}`, ReplyOutput, `{"liters":8.6}`},
		{"result", `{"result":"done"}`, ReplyResult, "done"},
		{"array", `[{"text":"a"},"b",{"result":"c"}]`, ReplyEvents, "a\nb\nc"},
		{"string", `"plain"`, ReplyText, "plain"},
		{"raw", `{"state":{"x":1}}`, ReplyRaw, "{\n  \"state\": {\n    \"x\": 1\n  }\n}"},
		{"falsy fields", `{"text":null,"output":0,"result":false}`, ReplyRaw, "{\n  \"text\": null,\n  \"output\": 0,\n  \"result\": false\n}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := ParseReply(json.RawMessage(tt.raw))
			assert.Equal(t, tt.kind, reply.Kind)
			assert.Equal(t, tt.text, reply.Text)
		})
	}
}

type fakeRelay struct {
	sessionErr error
	queryErr   error
	queries    []string
}

func (f *fakeRelay) CreateSession(_ context.Context, userID string) (Session, error) {
	if f.sessionErr != nil {
		return Session{}, f.sessionErr
	}
	return Session{ID: "sess-" + userID, UserID: userID}, nil
}

func (f *fakeRelay) Query(_ context.Context, sessionID, _, message string) (Reply, error) {
	f.queries = append(f.queries, sessionID+":"+message)
	if f.queryErr != nil {
		return Reply{}, f.queryErr
	}
	return Reply{Kind: ReplyEvents, Text: "echo " + message}, nil
}

func TestConversationFlow(t *testing.T) {
	relay := &fakeRelay{}
	conv := NewConversation(relay, "u1")

	_, err := conv.Send(context.Background(), "too early")
	require.ErrorIs(t, err, ErrNoSession)

	reply, err := conv.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "echo Hi", reply.Text)
	assert.Equal(t, "sess-u1", conv.SessionID())

	_, err = conv.Send(context.Background(), "paint the kitchen")
	require.NoError(t, err)

	history := conv.History()
	require.Len(t, history, 3)
	assert.Equal(t, SenderAgent, history[0].Sender)
	assert.Equal(t, "echo Hi", history[0].Text)
	assert.Equal(t, SenderUser, history[1].Sender)
	assert.Equal(t, "paint the kitchen", history[1].Text)
	assert.Equal(t, "echo paint the kitchen", history[2].Text)
	assert.Equal(t, []string{"sess-u1:Hi", "sess-u1:paint the kitchen"}, relay.queries)

	history[0].Text = "changed"
	assert.Equal(t, "echo Hi", conv.History()[0].Text)
}

func TestConversationStartFailure(t *testing.T) {
	relay := &fakeRelay{sessionErr: errors.New("unreachable")}
	hub := NewHub(relay)

	conv, _, err := hub.Start(context.Background(), "u1")
	require.Error(t, err)
	assert.Empty(t, conv.SessionID())
	require.Len(t, conv.History(), 1)
	assert.Equal(t, sessionFailed, conv.History()[0].Text)

	_, ok := hub.Get("sess-u1")
	assert.False(t, ok)
}

func TestConversationQueryFailureIsRecorded(t *testing.T) {
	relay := &fakeRelay{queryErr: errors.New("timeout")}
	conv := Resume(relay, "sess-x", "u1")

	_, err := conv.Send(context.Background(), "hello")
	require.Error(t, err)
	history := conv.History()
	require.Len(t, history, 2)
	assert.Equal(t, "Error: timeout", history[1].Text)
}

func TestSendPlan(t *testing.T) {
	relay := &fakeRelay{}
	conv := Resume(relay, "sess-x", "u1")

	_, err := conv.SendPlan(context.Background(), map[string]any{"paints": []string{}})
	require.NoError(t, err)
	require.Len(t, relay.queries, 1)
	assert.Equal(t, "sess-x:I have completed the floor plan layout. Here is the detailed room data:\n\n{\n  \"paints\": []\n}", relay.queries[0])

	msg, err := PlanMessage(nil)
	require.NoError(t, err)
	assert.Equal(t, "I have completed the floor plan layout.", msg)
}

func TestHubRegistersAndResumes(t *testing.T) {
	relay := &fakeRelay{}
	hub := NewHub(relay)

	conv, _, err := hub.Start(context.Background(), "u1")
	require.NoError(t, err)

	got, ok := hub.Get("sess-u1")
	require.True(t, ok)
	assert.Same(t, conv, got)

	same, err := hub.Conversation("sess-u1", "")
	require.NoError(t, err)
	assert.Same(t, conv, same)

	_, err = hub.Conversation("sess-u1", "other")
	var owner *ErrSessionOwner
	require.ErrorAs(t, err, &owner)
	assert.Equal(t, "sess-u1", owner.SessionID)

	resumed, err := hub.Conversation("sess-elsewhere", "u2")
	require.NoError(t, err)
	assert.Equal(t, "sess-elsewhere", resumed.SessionID())
	assert.Equal(t, "u2", resumed.UserID())
	_, ok = hub.Get("sess-elsewhere")
	assert.False(t, ok)

	_, err = resumed.Send(context.Background(), "hello")
	require.NoError(t, err)
	got, ok = hub.Get("sess-elsewhere")
	require.True(t, ok)
	assert.Same(t, resumed, got)
	assert.Equal(t, 2, hub.Len())
}

func TestHubDefaultUser(t *testing.T) {
	hub := NewHub(&fakeRelay{}, WithDefaultUser("guest"))

	conv, _, err := hub.Start(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "guest", conv.UserID())
	assert.Equal(t, "sess-guest", conv.SessionID())

	resumed, err := hub.Conversation("sess-x", "")
	require.NoError(t, err)
	assert.Equal(t, "guest", resumed.UserID())
}

func TestHubForgetsFailedSessions(t *testing.T) {
	relay := &fakeRelay{queryErr: errors.New("session not found")}
	hub := NewHub(relay)

	for i := 0; i < 1000; i++ {
		conv, err := hub.Conversation(fmt.Sprintf("made-up-%d", i), "u1")
		require.NoError(t, err)
		_, err = conv.Send(context.Background(), "hello")
		require.Error(t, err)
	}
	assert.Zero(t, hub.Len())
}

func TestHubEvictsLeastRecentlyUsed(t *testing.T) {
	hub := NewHub(&fakeRelay{}, WithCapacity(2))

	for _, user := range []string{"a", "b", "c"} {
		_, _, err := hub.Start(context.Background(), user)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, hub.Len())
	_, ok := hub.Get("sess-a")
	assert.False(t, ok)
	_, ok = hub.Get("sess-c")
	assert.True(t, ok)
}

func TestHubExpiresIdleConversations(t *testing.T) {
	hub := NewHub(&fakeRelay{}, WithTTL(20*time.Millisecond))

	_, _, err := hub.Start(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, 1, hub.Len())

	assert.Eventually(t, func() bool {
		_, ok := hub.Get("sess-u1")
		return !ok
	}, time.Second, 10*time.Millisecond)
}
