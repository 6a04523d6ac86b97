// Package session implements the conversation session state machine: which
// conversation is active, its message timeline, and the conversation
// directory, reconciled against asynchronous service responses.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/raphaelgruber/chatline/internal/models"
)

// Texts of the degraded entries shown when a call fails.
const (
	SendFailedText = "Error: Could not connect to the assistant."
	LoadFailedText = "Error: Could not load conversation history."
)

var (
	// ErrSendInFlight is returned by Send while a previous reply is pending.
	ErrSendInFlight = errors.New("a message is already waiting for a reply")

	// ErrConversationLoading is returned by Send while a selected conversation loads.
	ErrConversationLoading = errors.New("conversation is still loading")

	// ErrClosed is returned once the controller has been closed.
	ErrClosed = errors.New("session closed")
)

// Transport performs the remote operations the controller depends on.
// *client.Client satisfies it.
type Transport interface {
	ListConversations(ctx context.Context, userID models.ID) ([]models.ConversationSummary, error)
	LoadMessages(ctx context.Context, conversationID models.ID) ([]models.RemoteMessage, error)
	SendMessage(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
}

// State is the controller's position in the session state machine.
type State int

const (
	// StateFresh has no conversation and an empty timeline.
	StateFresh State = iota
	// StateActive shows the timeline of the current (or about to be created) conversation.
	StateActive
	// StateSwitching waits for the history of a newly selected conversation.
	StateSwitching
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateActive:
		return "active"
	case StateSwitching:
		return "switching"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Runner executes a transport call and its completion.
type Runner func(task func())

// GoRunner runs each task on its own goroutine.
func GoRunner(task func()) { go task() }

// SyncRunner runs each task inline, so every intent has completed on return.
func SyncRunner(task func()) { task() }

// Snapshot is a point-in-time copy of the controller state.
type Snapshot struct {
	State          State
	ConversationID models.ID
	Messages       []models.Message
	Conversations  []models.ConversationSummary
	Input          string
	Pending        bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithRunner sets how transport calls are executed. Defaults to GoRunner.
func WithRunner(r Runner) Option {
	return func(c *Controller) {
		c.run = r
	}
}

// Controller owns the active conversation identifier, its timeline and the
// conversation directory. User intents mutate state synchronously; transport
// completions are applied only while still current.
type Controller struct {
	transport Transport
	userID    models.ID
	logger    *slog.Logger
	run       Runner

	ctx    context.Context
	cancel context.CancelFunc

	mu             sync.Mutex
	closed         bool
	state          State
	conversationID models.ID
	gen            uint64 // bumped whenever the user changes the active conversation
	timeline       Timeline
	directory      Directory
	refreshSeq     uint64
	input          string
	subscribers    map[int]chan struct{}
	nextSub        int
}

// New creates a controller in StateFresh. Transport calls use ctx; cancelling
// it, or calling Close, abandons them.
func New(ctx context.Context, transport Transport, userID models.ID, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(ctx)
	c := &Controller{
		transport:   transport,
		userID:      userID,
		logger:      slog.Default(),
		run:         GoRunner,
		ctx:         ctx,
		cancel:      cancel,
		state:       StateFresh,
		subscribers: make(map[int]chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("user_id", userID.String())
	return c
}

// Start performs the initial directory refresh.
func (c *Controller) Start() {
	c.RefreshDirectory()
}

// Close stops delivery of completions and closes all subscriptions.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for id, ch := range c.subscribers {
		close(ch)
		delete(c.subscribers, id)
	}
	c.mu.Unlock()
	c.cancel()
}

// Subscribe returns a channel signalled after every state change. Signals
// coalesce; read Snapshot for the current state. The channel is closed by the
// returned cancel func or by Close.
func (c *Controller) Subscribe() (<-chan struct{}, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan struct{}, 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}

	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = ch

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subscribers[id]; ok {
			delete(c.subscribers, id)
			close(sub)
		}
	}
}

// notifyLocked signals subscribers. Caller must hold mu.
func (c *Controller) notifyLocked() {
	for _, ch := range c.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, pending := c.timeline.Placeholder()
	return Snapshot{
		State:          c.state,
		ConversationID: c.conversationID,
		Messages:       c.timeline.Entries(),
		Conversations:  c.directory.Entries(),
		Input:          c.input,
		Pending:        pending,
	}
}

// ConversationID returns the active conversation, zero when none.
func (c *Controller) ConversationID() models.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conversationID
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetInput replaces the input buffer.
func (c *Controller) SetInput(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.input == s {
		return
	}
	c.input = s
	c.notifyLocked()
}

// Input returns the input buffer.
func (c *Controller) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// Submit sends the input buffer.
func (c *Controller) Submit() error {
	return c.Send(c.Input())
}

// Send appends text as a user entry plus a loading placeholder and asks the
// service for a reply. Blank text is ignored.
func (c *Controller) Send(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state == StateSwitching {
		c.mu.Unlock()
		return ErrConversationLoading
	}
	if _, ok := c.timeline.Placeholder(); ok {
		c.mu.Unlock()
		return ErrSendInFlight
	}

	c.timeline.Append(models.NewUserMessage(trimmed))
	c.input = ""
	placeholderID, _ := c.timeline.BeginLoading()
	c.state = StateActive

	req := models.ChatRequest{
		UserID:         c.userID,
		Message:        trimmed,
		ConversationID: c.conversationID,
	}
	c.notifyLocked()
	c.mu.Unlock()

	c.run(func() {
		resp, err := c.transport.SendMessage(c.ctx, req)
		c.finishSend(placeholderID, req.ConversationID, resp, err)
	})
	return nil
}

func (c *Controller) finishSend(placeholderID string, sentWith models.ID, resp *models.ChatResponse, err error) {
	if err == nil && resp == nil {
		err = errors.New("empty response")
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	reply := models.Message{}
	if err != nil {
		c.logger.Error("send message failed", "conversation_id", sentWith.String(), "error", err)
		reply = models.NewErrorMessage(SendFailedText)
	} else {
		reply = models.NewAssistantMessage(resp.AIResponse)
	}

	if !c.timeline.Resolve(placeholderID, reply) {
		c.logger.Debug("discarding stale send completion", "conversation_id", sentWith.String())
		c.mu.Unlock()
		return
	}

	adopted := false
	if err == nil && !resp.ConversationID.IsZero() {
		switch {
		case sentWith.IsZero() && c.conversationID.IsZero():
			c.conversationID = resp.ConversationID
			adopted = true
			c.logger.Info("conversation started", "conversation_id", resp.ConversationID.String())
		case resp.ConversationID != c.conversationID:
			c.logger.Error("reply belongs to a different conversation; keeping current",
				"conversation_id", c.conversationID.String(),
				"reply_conversation_id", resp.ConversationID.String())
		}
	}

	c.notifyLocked()
	c.mu.Unlock()

	if adopted {
		c.RefreshDirectory()
	}
}

// Select makes id the active conversation: the timeline is cleared at once
// and its history is fetched. Selecting the active conversation re-fetches.
func (c *Controller) Select(id models.ID) error {
	if id.IsZero() {
		return fmt.Errorf("select conversation: empty id")
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	changed := c.conversationID != id
	c.conversationID = id
	c.gen++
	gen := c.gen
	c.timeline.Reset()
	c.state = StateSwitching
	c.notifyLocked()
	c.mu.Unlock()

	c.logger.Debug("loading conversation", "conversation_id", id.String())
	c.run(func() {
		remote, err := c.transport.LoadMessages(c.ctx, id)
		c.finishLoad(gen, id, remote, err)
	})

	if changed {
		c.RefreshDirectory()
	}
	return nil
}

func (c *Controller) finishLoad(gen uint64, id models.ID, remote []models.RemoteMessage, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.gen != gen || c.conversationID != id {
		c.logger.Debug("discarding stale conversation load", "conversation_id", id.String())
		return
	}

	if err != nil {
		c.logger.Error("load conversation failed", "conversation_id", id.String(), "error", err)
		c.timeline.Replace([]models.Message{models.NewErrorMessage(LoadFailedText)})
	} else {
		c.timeline.Replace(models.MessagesFromRemote(remote))
	}
	c.state = StateActive
	c.notifyLocked()
}

// NewConversation clears the identifier, the timeline and the input buffer.
func (c *Controller) NewConversation() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	changed := !c.conversationID.IsZero()
	c.conversationID = ""
	c.gen++
	c.timeline.Reset()
	c.input = ""
	c.state = StateFresh
	c.notifyLocked()
	c.mu.Unlock()

	if changed {
		c.RefreshDirectory()
	}
}

// RefreshDirectory re-fetches the conversation directory. Failures are logged
// and leave the directory unchanged.
func (c *Controller) RefreshDirectory() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.refreshSeq++
	seq := c.refreshSeq
	c.mu.Unlock()

	c.run(func() {
		list, err := c.transport.ListConversations(c.ctx, c.userID)
		c.finishRefresh(seq, list, err)
	})
}

func (c *Controller) finishRefresh(seq uint64, list []models.ConversationSummary, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if err != nil {
		c.logger.Warn("refresh conversation directory failed", "error", err)
		return
	}
	if !c.directory.replace(seq, list, time.Now()) {
		c.logger.Debug("discarding stale directory refresh", "seq", seq)
		return
	}
	c.notifyLocked()
}
