package models

import "time"

// ConversationSummary is one entry of the conversation directory.
type ConversationSummary struct {
	ID        ID         `json:"id" yaml:"id"`
	Title     *string    `json:"title,omitempty" yaml:"title,omitempty"`
	StartTime *Timestamp `json:"start_time,omitempty" yaml:"-"`
}

// DisplayTitle returns the title, falling back to "Chat <id>".
func (c ConversationSummary) DisplayTitle() string {
	if c.Title != nil && *c.Title != "" {
		return *c.Title
	}
	return "Chat " + c.ID.String()
}

// Started returns the start time, or nil when the service did not send one.
func (c ConversationSummary) Started() *time.Time {
	return c.StartTime.Ptr()
}

// ChatRequest is the payload of a send operation.
type ChatRequest struct {
	UserID         ID     `json:"user_id"`
	Message        string `json:"message"`
	ConversationID ID     `json:"conversation_id"`
}

// ChatResponse is the service reply to a send operation.
type ChatResponse struct {
	ConversationID ID     `json:"conversation_id"`
	UserMessage    string `json:"user_message,omitempty"`
	AIResponse     string `json:"ai_response"`
	MessageID      ID     `json:"message_id,omitempty"`
}
