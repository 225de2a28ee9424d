package api

import (
	"encoding/json"

	"github.com/lqhuy/chatdesk/internal/chat"
)

// conversationRecord is one row of the snapshot endpoint. The backend
// builds it from a join, so most fields are loosely typed: the alert
// flag may be a string or bool, customer_data arrives as text, and tag
// aggregates may be absent.
type conversationRecord struct {
	SessionID        chat.FlexID     `json:"session_id"`
	Status           string          `json:"status"`
	Alert            flexBool        `json:"alert"`
	Channel          string          `json:"channel"`
	URLChannel       string          `json:"url_channel"`
	PageID           string          `json:"page_id"`
	CustomerData     json.RawMessage `json:"customer_data"`
	Name             string          `json:"name"`
	Time             chat.WireTime   `json:"time"`
	CurrentReceiver  string          `json:"current_receiver"`
	PreviousReceiver string          `json:"previous_receiver"`
	SenderType       string          `json:"sender_type"`
	SenderName       string          `json:"sender_name"`
	Content          string          `json:"content"`
	CreatedAt        chat.WireTime   `json:"created_at"`
	TagNames         []string        `json:"tag_names"`
	TagIDs           []int           `json:"tag_ids"`
}

func (r *conversationRecord) conversation() *chat.Conversation {
	conv := &chat.Conversation{
		SessionID:        r.SessionID.String(),
		DisplayName:      r.Name,
		Channel:          chat.ParseChannel(r.Channel),
		LastContent:      r.Content,
		LastSender:       chat.SenderType(r.SenderType),
		LastUpdatedAt:    r.CreatedAt.Time(),
		CreatedAt:        r.CreatedAt.Time(),
		ControlMode:      chat.ControlModeFromStatus(r.Status),
		CurrentReceiver:  r.CurrentReceiver,
		PreviousReceiver: r.PreviousReceiver,
		CustomerData:     chat.DecodeCustomerData(r.CustomerData),
		TagIDs:           r.TagIDs,
		TagNames:         r.TagNames,
		HasPendingAlert:  bool(r.Alert),
		PageID:           r.PageID,
		URLChannel:       r.URLChannel,
	}
	if conv.ControlMode == chat.ControlManual {
		if t := r.Time.Time(); !t.IsZero() {
			expires := t
			conv.ManualExpiresAt = &expires
		}
	}
	return conv
}

// flexBool accepts true/false as a JSON bool or as the strings
// "true"/"false" the backend stores.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "true", `"true"`:
		*b = true
	default:
		*b = false
	}
	return nil
}
