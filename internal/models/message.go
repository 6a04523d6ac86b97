package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// ParseSender maps a service sender value onto a Sender.
// The service spells the assistant "ai".
func ParseSender(s string) (Sender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return SenderUser, nil
	case "ai", "assistant":
		return SenderAssistant, nil
	default:
		return "", fmt.Errorf("unknown sender %q", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Sender) UnmarshalText(text []byte) error {
	parsed, err := ParseSender(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// PlaceholderText is shown while an assistant reply is in flight.
const PlaceholderText = "..."

// Message is one entry of a conversation timeline.
type Message struct {
	// ID is a client-local identity; it never leaves the process.
	ID        string     `json:"-" yaml:"-"`
	Text      string     `json:"text" yaml:"text"`
	Sender    Sender     `json:"sender" yaml:"sender"`
	IsLoading bool       `json:"is_loading,omitempty" yaml:"is_loading,omitempty"`
	Failed    bool       `json:"failed,omitempty" yaml:"failed,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

func newMessage(text string, sender Sender) Message {
	return Message{
		ID:     uuid.NewString(),
		Text:   text,
		Sender: sender,
	}
}

// NewUserMessage creates a user-authored entry.
func NewUserMessage(text string) Message {
	return newMessage(text, SenderUser)
}

// NewAssistantMessage creates an assistant reply entry.
func NewAssistantMessage(text string) Message {
	return newMessage(text, SenderAssistant)
}

// NewPlaceholder creates the transient entry standing in for a pending reply.
func NewPlaceholder() Message {
	m := newMessage(PlaceholderText, SenderAssistant)
	m.IsLoading = true
	return m
}

// NewErrorMessage creates a degraded assistant entry describing a failure.
func NewErrorMessage(text string) Message {
	m := newMessage(text, SenderAssistant)
	m.Failed = true
	return m
}

// RemoteMessage is a persisted message as returned by the service.
type RemoteMessage struct {
	Content   string     `json:"content"`
	Sender    Sender     `json:"sender"`
	Timestamp *Timestamp `json:"timestamp,omitempty"`
}

// ToMessage converts a persisted message into a timeline entry.
func (r RemoteMessage) ToMessage() Message {
	m := newMessage(r.Content, r.Sender)
	m.Timestamp = r.Timestamp.Ptr()
	return m
}

// MessagesFromRemote converts persisted messages, keeping service order.
func MessagesFromRemote(remote []RemoteMessage) []Message {
	out := make([]Message, 0, len(remote))
	for _, r := range remote {
		out = append(out, r.ToMessage())
	}
	return out
}
