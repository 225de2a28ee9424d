package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/lqhuy/chatdesk/internal/chat"
)

// FetchConversations loads the full conversation snapshot, newest
// activity first, including the persisted alert flags.
func (c *Client) FetchConversations(ctx context.Context) ([]*chat.Conversation, error) {
	var records []conversationRecord
	if err := c.do(ctx, "GET", "/chat/admin/history", nil, nil, &records); err != nil {
		return nil, err
	}
	out := make([]*chat.Conversation, 0, len(records))
	for i := range records {
		out = append(out, records[i].conversation())
	}
	return out, nil
}

// FetchHistory loads one page of a conversation's messages,
// oldest-first within the page.
func (c *Client) FetchHistory(ctx context.Context, sessionID string, page, limit int) ([]chat.Message, error) {
	var msgs []chat.Message
	if err := c.do(ctx, "GET", "/chat/history/"+url.PathEscape(sessionID), pageQuery(page, limit), nil, &msgs); err != nil {
		return nil, err
	}
	for i := range msgs {
		if msgs[i].SessionID == "" {
			msgs[i].SessionID = sessionID
		}
	}
	return msgs, nil
}

type sendMessageRequest struct {
	SessionID  string          `json:"chat_session_id"`
	SenderType chat.SenderType `json:"sender_type"`
	Content    string          `json:"content"`
	IsAdmin    bool            `json:"is_admin"`
	Image      []string        `json:"image,omitempty"`
}

// SendMessage delivers one operator-authored message to a session.
// The backend echoes the persisted message back over the push channel.
func (c *Client) SendMessage(ctx context.Context, sessionID string, sender chat.SenderType, content string, isAdmin bool, images []string) error {
	req := sendMessageRequest{
		SessionID:  sessionID,
		SenderType: sender,
		Content:    content,
		IsAdmin:    isAdmin,
		Image:      images,
	}
	return c.do(ctx, "POST", "/chat/message", nil, req, nil)
}

type updateTagsRequest struct {
	Tags []int `json:"tags"`
}

// UpdateTags replaces a session's tag memberships with the full new id
// set and returns nothing; the caller applies its own atomic swap.
func (c *Client) UpdateTags(ctx context.Context, sessionID string, tagIDs []int) error {
	if tagIDs == nil {
		tagIDs = []int{}
	}
	return c.do(ctx, "PATCH", "/chat/tag/"+url.PathEscape(sessionID), nil, updateTagsRequest{Tags: tagIDs}, nil)
}

type updateAlertRequest struct {
	Alert string `json:"alert"`
}

// UpdateAlertStatus persists a session's alert flag.
func (c *Client) UpdateAlertStatus(ctx context.Context, sessionID string, alert bool) error {
	req := updateAlertRequest{Alert: strconv.FormatBool(alert)}
	return c.do(ctx, "PUT", "/chat/alert/"+url.PathEscape(sessionID), nil, req, nil)
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Time   string `json:"time,omitempty"`
}

// UpdateSessionStatus switches a session between bot and manual
// control. expiresAt, when non-empty, carries the manual-mode deadline.
func (c *Client) UpdateSessionStatus(ctx context.Context, sessionID, status, expiresAt string) error {
	return c.do(ctx, "PATCH", "/chat/"+url.PathEscape(sessionID), nil, updateStatusRequest{Status: status, Time: expiresAt}, nil)
}

type deleteSessionsRequest struct {
	IDs []string `json:"ids"`
}

// DeleteSessions removes whole chat sessions.
func (c *Client) DeleteSessions(ctx context.Context, sessionIDs []string) error {
	return c.do(ctx, "DELETE", "/chat/chat_sessions", nil, deleteSessionsRequest{IDs: sessionIDs}, nil)
}

type deleteMessagesRequest struct {
	IDs []int64 `json:"ids"`
}

// DeleteMessages removes selected messages from one session.
func (c *Client) DeleteMessages(ctx context.Context, sessionID string, messageIDs []int64) error {
	return c.do(ctx, "DELETE", "/chat/messages/"+url.PathEscape(sessionID), nil, deleteMessagesRequest{IDs: messageIDs}, nil)
}

type bulkSendRequest struct {
	Customers []string `json:"customers"`
	Content   string   `json:"content"`
	Image     []string `json:"image,omitempty"`
}

// BulkSendResult is the backend's verdict on a bulk dispatch.
type BulkSendResult struct {
	Status string `json:"status"`
}

// Delivered reports whether the backend accepted the dispatch.
func (r BulkSendResult) Delivered() bool { return r.Status == "success" }

// SendBulk fans one message out to the full recipient list in a single
// call. The backend treats the call as atomic; partial success is not
// reported.
func (c *Client) SendBulk(ctx context.Context, sessionIDs []string, content string, images []string) (BulkSendResult, error) {
	req := bulkSendRequest{Customers: sessionIDs, Content: content, Image: images}
	var res BulkSendResult
	if err := c.do(ctx, "POST", "/chat/send_message", nil, req, &res); err != nil {
		return BulkSendResult{}, err
	}
	return res, nil
}

// FetchTags loads the tag catalog.
func (c *Client) FetchTags(ctx context.Context) ([]chat.Tag, error) {
	var tags []chat.Tag
	if err := c.do(ctx, "GET", "/tag", nil, nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// CustomerSummary is one row of the bulk-dispatch recipient directory.
type CustomerSummary struct {
	SessionID string       `json:"session_id"`
	Name      string       `json:"name"`
	Channel   chat.Channel `json:"channel"`
}

// FetchCustomers lists dispatch recipients, optionally filtered by
// channel and tag.
func (c *Client) FetchCustomers(ctx context.Context, channel chat.Channel, tagID int) ([]CustomerSummary, error) {
	q := url.Values{}
	if channel != "" {
		q.Set("channel", string(channel))
	}
	if tagID > 0 {
		q.Set("tag_id", strconv.Itoa(tagID))
	}
	var records []customerRecord
	if err := c.do(ctx, "GET", "/chat/admin/customers", q, nil, &records); err != nil {
		return nil, err
	}
	out := make([]CustomerSummary, 0, len(records))
	for _, r := range records {
		out = append(out, CustomerSummary{
			SessionID: r.SessionID.String(),
			Name:      r.Name,
			Channel:   chat.ParseChannel(r.Channel),
		})
	}
	return out, nil
}

type customerRecord struct {
	SessionID chat.FlexID `json:"session_id"`
	Name      string      `json:"name"`
	Channel   string      `json:"channel"`
}
