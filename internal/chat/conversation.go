// Package chat defines the domain model shared by the chatdesk
// synchronization core: conversations, messages, tags, and the push
// events that mutate them.
package chat

import (
	"strings"
	"time"
)

// Channel identifies the platform a conversation originates from.
type Channel string

// Known channels.
const (
	ChannelWeb      Channel = "web"
	ChannelFacebook Channel = "facebook"
	ChannelZalo     Channel = "zalo"
	ChannelTelegram Channel = "telegram"
	ChannelOther    Channel = "other"
)

// ParseChannel maps a platform string from the wire to a Channel.
// Matching ignores case; an absent value means the web widget, and
// unrecognized values map to ChannelOther.
func ParseChannel(s string) Channel {
	switch c := Channel(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return ChannelWeb
	case ChannelWeb, ChannelFacebook, ChannelZalo, ChannelTelegram:
		return c
	default:
		return ChannelOther
	}
}

// ControlMode says whether the bot or a human operator currently owns
// response generation for a session.
type ControlMode string

const (
	ControlBot    ControlMode = "bot"
	ControlManual ControlMode = "manual"
)

// ControlModeFromStatus derives the control mode from the backend's
// session status field, where "true" means the bot is responding.
func ControlModeFromStatus(status string) ControlMode {
	if status == "false" {
		return ControlManual
	}
	return ControlBot
}

// Status converts a control mode back to the backend's string encoding.
func (m ControlMode) Status() string {
	if m == ControlManual {
		return "false"
	}
	return "true"
}

// Conversation is the list-view summary of one customer thread.
// Identity is SessionID; everything else is mutable.
type Conversation struct {
	SessionID        string
	DisplayName      string
	Channel          Channel
	LastContent      string
	LastSender       SenderType
	LastUpdatedAt    time.Time
	CreatedAt        time.Time
	ControlMode      ControlMode
	ManualExpiresAt  *time.Time // set only while ControlMode is manual with a countdown
	CurrentReceiver  string
	PreviousReceiver string
	CustomerData     CustomerData
	TagIDs           []int
	TagNames         []string
	HasPendingAlert  bool

	// Carried opaquely from the snapshot; the core never interprets them.
	PageID     string
	URLChannel string
}

// EffectiveTimestamp is the sort key for the conversation list:
// LastUpdatedAt when present, otherwise CreatedAt.
func (c *Conversation) EffectiveTimestamp() time.Time {
	if !c.LastUpdatedAt.IsZero() {
		return c.LastUpdatedAt
	}
	return c.CreatedAt
}

// HasTag reports whether the conversation carries the given tag id.
func (c *Conversation) HasTag(id int) bool {
	for _, t := range c.TagIDs {
		if t == id {
			return true
		}
	}
	return false
}

// Tag is one entry of the operator-managed tag catalog.
type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
