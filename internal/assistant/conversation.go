package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Relay is the part of Client a Conversation needs.
type Relay interface {
	CreateSession(ctx context.Context, userID string) (Session, error)
	Query(ctx context.Context, sessionID, userID, message string) (Reply, error)
}

type Sender string

const (
	SenderUser  Sender = "user"
	SenderAgent Sender = "agent"
)

const (
	greeting      = "Hi"
	planPreamble  = "I have completed the floor plan layout."
	agentName     = "Agent"
	systemName    = "System"
	sessionFailed = "Failed to initialize session."
)

// Message is one entry of a conversation history.
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	AgentName string    `json:"agentName,omitempty"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation keeps the message history of one engine session. It is safe
// for concurrent use; sends within a conversation are serialized.
type Conversation struct {
	relay  Relay
	userID string
	now    func() time.Time

	// send serializes engine round trips so history stays in turn order.
	send sync.Mutex

	mu        sync.Mutex
	sessionID string
	history   []Message

	// onReply runs after every successful engine reply.
	onReply func(*Conversation)
}

func NewConversation(relay Relay, userID string) *Conversation {
	return &Conversation{relay: relay, userID: userID, now: time.Now}
}

// Resume attaches to a session created elsewhere.
func Resume(relay Relay, sessionID, userID string) *Conversation {
	c := NewConversation(relay, userID)
	c.sessionID = sessionID
	return c
}

// Start opens the engine session and sends the opening greeting. The greeting
// itself is not recorded as a user message.
func (c *Conversation) Start(ctx context.Context) (Reply, error) {
	c.send.Lock()
	defer c.send.Unlock()

	session, err := c.relay.CreateSession(ctx, c.userID)
	if err != nil {
		c.record(SenderAgent, systemName, sessionFailed)
		return Reply{}, fmt.Errorf("start conversation: %w", err)
	}

	c.mu.Lock()
	c.sessionID = session.ID
	c.mu.Unlock()

	return c.exchange(ctx, greeting, false)
}

// Send records text as a user message and returns the engine's reply.
func (c *Conversation) Send(ctx context.Context, text string) (Reply, error) {
	c.send.Lock()
	defer c.send.Unlock()
	return c.exchange(ctx, text, true)
}

// SendPlan tells the engine the floor plan is done and hands it the plan
// data as indented JSON. A nil payload sends the bare announcement.
func (c *Conversation) SendPlan(ctx context.Context, payload any) (Reply, error) {
	msg, err := PlanMessage(payload)
	if err != nil {
		return Reply{}, err
	}
	return c.Send(ctx, msg)
}

// PlanMessage renders the completed-plan announcement.
func PlanMessage(payload any) (string, error) {
	if payload == nil {
		return planPreamble, nil
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode plan payload: %w", err)
	}
	return planPreamble + " Here is the detailed room data:\n\n" + string(data), nil
}

func (c *Conversation) exchange(ctx context.Context, text string, fromUser bool) (Reply, error) {
	sessionID := c.SessionID()
	if sessionID == "" {
		return Reply{}, ErrNoSession
	}
	if fromUser {
		c.record(SenderUser, "", text)
	}

	reply, err := c.relay.Query(ctx, sessionID, c.userID, text)
	if err != nil {
		c.record(SenderAgent, systemName, "Error: "+err.Error())
		return Reply{}, err
	}
	c.record(SenderAgent, agentName, reply.Text)
	if c.onReply != nil {
		c.onReply(c)
	}
	return reply, nil
}

func (c *Conversation) record(sender Sender, name, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		AgentName: name,
		Text:      text,
		Timestamp: c.now(),
	})
}

func (c *Conversation) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *Conversation) UserID() string {
	return c.userID
}

// History returns a copy of the messages exchanged so far.
func (c *Conversation) History() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.history))
	copy(out, c.history)
	return out
}

const (
	defaultHubCapacity = 1024
	defaultHubTTL      = 24 * time.Hour
)

// Hub indexes the conversations served by this process by session id. A
// session is only remembered once the engine has answered in it, and the
// index is bounded: the least recently used conversations are dropped when
// it is full, and conversations idle for the TTL expire.
type Hub struct {
	relay       Relay
	defaultUser string

	mu            sync.Mutex
	conversations *expirable.LRU[string, *Conversation]
}

type HubOption func(*hubOptions)

type hubOptions struct {
	defaultUser string
	capacity    int
	ttl         time.Duration
}

// WithDefaultUser sets the user id used when a caller does not name one.
func WithDefaultUser(userID string) HubOption {
	return func(o *hubOptions) {
		o.defaultUser = userID
	}
}

// WithCapacity bounds how many conversations the hub keeps.
func WithCapacity(n int) HubOption {
	return func(o *hubOptions) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithTTL sets how long an idle conversation is kept.
func WithTTL(d time.Duration) HubOption {
	return func(o *hubOptions) {
		if d > 0 {
			o.ttl = d
		}
	}
}

func NewHub(relay Relay, opts ...HubOption) *Hub {
	o := hubOptions{defaultUser: "user-generic", capacity: defaultHubCapacity, ttl: defaultHubTTL}
	for _, opt := range opts {
		opt(&o)
	}
	return &Hub{
		relay:         relay,
		defaultUser:   o.defaultUser,
		conversations: expirable.NewLRU[string, *Conversation](o.capacity, nil, o.ttl),
	}
}

func (h *Hub) user(userID string) string {
	if userID == "" {
		return h.defaultUser
	}
	return userID
}

// Start opens a new conversation for userID (the default user when empty)
// and registers it once the engine has assigned a session id.
func (h *Hub) Start(ctx context.Context, userID string) (*Conversation, Reply, error) {
	conv := NewConversation(h.relay, h.user(userID))
	conv.onReply = h.touch
	reply, err := conv.Start(ctx)
	if conv.SessionID() != "" {
		h.touch(conv)
	}
	return conv, reply, err
}

// Get returns the conversation of sessionID, if this process knows it.
func (h *Hub) Get(sessionID string) (*Conversation, bool) {
	return h.conversations.Get(sessionID)
}

// Len returns the number of conversations kept.
func (h *Hub) Len() int {
	return h.conversations.Len()
}

// Conversation returns the known conversation of sessionID, or resumes the
// session for userID. A resumed session is registered only after the engine
// answers in it. An empty userID means the conversation's own user; naming a
// different user than the one the session belongs to is an error.
func (h *Hub) Conversation(sessionID, userID string) (*Conversation, error) {
	if conv, ok := h.conversations.Get(sessionID); ok {
		if userID != "" && userID != conv.UserID() {
			return nil, NewErrSessionOwner(sessionID, userID)
		}
		return conv, nil
	}
	conv := Resume(h.relay, sessionID, h.user(userID))
	conv.onReply = h.touch
	return conv, nil
}

// touch registers c, or renews its place in the index.
func (h *Hub) touch(c *Conversation) {
	id := c.SessionID()
	h.mu.Lock()
	defer h.mu.Unlock()
	// Two requests may resume the same session at once; the first reply wins.
	if existing, ok := h.conversations.Peek(id); ok && existing != c {
		return
	}
	h.conversations.Add(id, c)
}
