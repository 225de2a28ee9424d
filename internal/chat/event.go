package chat

import (
	"encoding/json"
	"errors"
)

// EventKind classifies a push event for reconciliation.
type EventKind int

const (
	// EventUnknown carries nothing the core recognizes; it is ignored.
	EventUnknown EventKind = iota
	// EventCustomerInfoUpdate announces newly extracted customer data
	// and raises the pending alert for its session.
	EventCustomerInfoUpdate
	// EventMessage carries message content or images.
	EventMessage
	// EventCustomerData carries customer data without content; it merges
	// data but must not raise an alert.
	EventCustomerData
)

// TypeCustomerInfoUpdate is the explicit alert-raising event type.
const TypeCustomerInfoUpdate = "customer_info_update"

// ErrNoSession is returned when a frame lacks a chat session id.
var ErrNoSession = errors.New("event has no chat session id")

// Event is one decoded push frame. Only Type and SessionID are
// guaranteed; everything else is optional per event kind.
type Event struct {
	Type             string
	SessionID        string
	Content          string
	Images           []string
	SenderType       SenderType
	SenderName       string
	SessionStatus    string
	CurrentReceiver  string
	PreviousReceiver string
	Time             *WireTime
	CustomerData     json.RawMessage
	SessionName      string
	Platform         string
	MessageID        int64
	CreatedAt        WireTime
}

type eventJSON struct {
	Type             string          `json:"type"`
	SessionID        FlexID          `json:"chat_session_id"`
	Content          string          `json:"content"`
	Image            ImageList       `json:"image"`
	SenderType       string          `json:"sender_type"`
	SenderName       string          `json:"sender_name"`
	SessionStatus    string          `json:"session_status"`
	CurrentReceiver  string          `json:"current_receiver"`
	PreviousReceiver string          `json:"previous_receiver"`
	Time             *WireTime       `json:"time"`
	CustomerData     json.RawMessage `json:"customer_data"`
	SessionName      string          `json:"session_name"`
	Platform         string          `json:"platform"`
	ID               int64           `json:"id"`
	CreatedAt        WireTime        `json:"created_at"`
}

// DecodeEvent parses one push frame. Frames without a session id are
// rejected so the reconciliation engine never sees them.
func DecodeEvent(data []byte) (Event, error) {
	var w eventJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return Event{}, err
	}
	if w.SessionID.String() == "" {
		return Event{}, ErrNoSession
	}
	return Event{
		Type:             w.Type,
		SessionID:        w.SessionID.String(),
		Content:          w.Content,
		Images:           w.Image,
		SenderType:       SenderType(w.SenderType),
		SenderName:       w.SenderName,
		SessionStatus:    w.SessionStatus,
		CurrentReceiver:  w.CurrentReceiver,
		PreviousReceiver: w.PreviousReceiver,
		Time:             w.Time,
		CustomerData:     w.CustomerData,
		SessionName:      w.SessionName,
		Platform:         w.Platform,
		MessageID:        w.ID,
		CreatedAt:        w.CreatedAt,
	}, nil
}

// Kind classifies the event for the merge rules.
func (e *Event) Kind() EventKind {
	switch {
	case e.Type == TypeCustomerInfoUpdate:
		return EventCustomerInfoUpdate
	case e.Content != "" || len(e.Images) > 0:
		return EventMessage
	case hasPayload(e.CustomerData):
		return EventCustomerData
	default:
		return EventUnknown
	}
}

// hasPayload reports whether a raw JSON field carries data. A literal
// null arrives as the four bytes "null" and counts as absent, so it
// can never overwrite previously received customer data.
func hasPayload(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// Message converts a message-bearing event into a Message record.
func (e *Event) Message() Message {
	created := e.CreatedAt.Time()
	return Message{
		ID:         e.MessageID,
		SessionID:  e.SessionID,
		SenderType: e.SenderType,
		SenderName: e.SenderName,
		Content:    e.Content,
		Images:     e.Images,
		CreatedAt:  created,
	}
}
