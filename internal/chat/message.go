package chat

import (
	"encoding/json"
	"time"
)

// SenderType identifies who authored a message.
type SenderType string

const (
	SenderCustomer SenderType = "customer"
	SenderBot      SenderType = "bot"
	SenderAdmin    SenderType = "admin"
)

// Message is one entry of a conversation's history. Server-persisted
// messages carry ID; optimistic local entries carry LocalID instead
// until the echo arrives through the push channel.
type Message struct {
	ID         int64      `json:"id,omitempty"`
	LocalID    string     `json:"-"`
	SessionID  string     `json:"chat_session_id"`
	SenderType SenderType `json:"sender_type"`
	SenderName string     `json:"sender_name,omitempty"`
	Content    string     `json:"content"`
	Images     []string   `json:"image,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`

	// Temporary marks the synthesized greeting shown on the customer
	// widget before any history exists. Never persisted or archived.
	Temporary bool `json:"-"`
}

// IsLocal reports whether the message is an unconfirmed optimistic entry.
func (m *Message) IsLocal() bool {
	return m.LocalID != ""
}

// messageJSON mirrors the history endpoint's record shape, where
// session ids may arrive as numbers and timestamps in several layouts.
type messageJSON struct {
	ID         int64      `json:"id"`
	SessionID  FlexID     `json:"chat_session_id"`
	SenderType string     `json:"sender_type"`
	SenderName string     `json:"sender_name"`
	Content    string     `json:"content"`
	Image      ImageList  `json:"image"`
	CreatedAt  WireTime   `json:"created_at"`
}

// UnmarshalJSON decodes a history record defensively: numeric session
// ids, string-encoded image arrays, and loose timestamp layouts.
func (m *Message) UnmarshalJSON(data []byte) error {
	var w messageJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	m.ID = w.ID
	m.SessionID = w.SessionID.String()
	m.SenderType = SenderType(w.SenderType)
	m.SenderName = w.SenderName
	m.Content = w.Content
	m.Images = w.Image
	m.CreatedAt = w.CreatedAt.Time()
	return nil
}
