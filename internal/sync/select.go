package sync

import (
	"context"
	"time"

	"github.com/lqhuy/chatdesk/internal/chat"
)

// Select opens a conversation: the message pane and draft are cleared
// immediately, then the first history page is fetched. A page arriving
// after the operator has moved on is discarded.
func (e *Engine) Select(ctx context.Context, sessionID string) error {
	e.mu.Lock()
	e.selected = sessionID
	e.messages.Clear()
	e.compose = Compose{}
	e.cursor.Reset()
	e.mu.Unlock()
	e.notifier.publish(UpdateMessages)

	if sessionID == "" {
		return nil
	}

	page, err := e.backend.FetchHistory(ctx, sessionID, 1, e.opts.PageSize)
	if err != nil {
		e.setError("failed to load message history", err)
		return err
	}

	e.mu.Lock()
	if e.selected != sessionID {
		e.mu.Unlock()
		e.logger.Debug().Str("session_id", sessionID).Msg("discarded history for stale selection")
		return nil
	}
	e.messages.Replace(page)
	e.cursor.Advance(1, len(page))
	for i := range page {
		e.archive(page[i])
	}
	e.mu.Unlock()
	e.notifier.publish(UpdateMessages)
	return nil
}

// Backfill fetches the next older history page and prepends it. At
// most one backfill is in flight; extra requests are no-ops, as are
// requests when the history is exhausted.
func (e *Engine) Backfill(ctx context.Context) error {
	e.mu.Lock()
	if e.selected == "" || e.backfilling || !e.cursor.HasMore {
		e.mu.Unlock()
		return nil
	}
	e.backfilling = true
	sessionID := e.selected
	page := e.cursor.Page + 1
	e.mu.Unlock()

	older, err := e.backend.FetchHistory(ctx, sessionID, page, e.opts.PageSize)

	e.mu.Lock()
	e.backfilling = false
	if err != nil {
		e.mu.Unlock()
		e.setError("failed to load older messages", err)
		return err
	}
	if e.selected != sessionID {
		e.mu.Unlock()
		return nil
	}
	e.messages.Prepend(older)
	e.cursor.Advance(page, len(older))
	for i := range older {
		e.archive(older[i])
	}
	e.mu.Unlock()
	e.notifier.publish(UpdateMessages)
	return nil
}

// HasMore reports whether older history pages remain for the open
// conversation.
func (e *Engine) HasMore() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected != "" && e.cursor.HasMore
}

// Acknowledge clears a pending alert remote-first: the local flag
// only drops once the server has confirmed, so a failed call leaves
// the alert visible for retry.
func (e *Engine) Acknowledge(ctx context.Context, sessionID string) error {
	if err := e.backend.UpdateAlertStatus(ctx, sessionID, false); err != nil {
		e.setError("failed to acknowledge alert", err)
		return err
	}
	e.mu.Lock()
	e.alerts.Remove(sessionID)
	if c := e.conversations.Get(sessionID); c != nil {
		c.HasPendingAlert = false
	}
	e.mu.Unlock()
	e.notifier.publish(UpdateConversations, UpdateAlerts)
	return nil
}

// SetControlMode hands a session to the bot or to a human operator.
// Manual mode carries an expiry after which the server returns the
// session to the bot.
func (e *Engine) SetControlMode(ctx context.Context, sessionID string, mode chat.ControlMode, expiresAt time.Time) error {
	var expiry string
	if mode == chat.ControlManual && !expiresAt.IsZero() {
		expiry = expiresAt.UTC().Format(time.RFC3339)
	}
	if err := e.backend.UpdateSessionStatus(ctx, sessionID, mode.Status(), expiry); err != nil {
		e.setError("failed to change session control mode", err)
		return err
	}
	e.mu.Lock()
	if c := e.conversations.Get(sessionID); c != nil {
		c.ControlMode = mode
		if mode == chat.ControlManual && !expiresAt.IsZero() {
			t := expiresAt
			c.ManualExpiresAt = &t
		} else {
			c.ManualExpiresAt = nil
		}
	}
	e.mu.Unlock()
	e.notifier.publish(UpdateConversations)
	return nil
}

// DeleteConversations removes sessions on the server and then locally.
// Deleting the open conversation also clears the message pane and the
// draft.
func (e *Engine) DeleteConversations(ctx context.Context, sessionIDs []string) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	if err := e.backend.DeleteSessions(ctx, sessionIDs); err != nil {
		e.setError("failed to delete conversations", err)
		return err
	}
	e.mu.Lock()
	e.conversations.Remove(sessionIDs)
	selectedRemoved := false
	for _, id := range sessionIDs {
		e.alerts.Remove(id)
		if id == e.selected {
			selectedRemoved = true
		}
	}
	if selectedRemoved {
		e.selected = ""
		e.messages.Clear()
		e.compose = Compose{}
		e.cursor.Reset()
	}
	e.mu.Unlock()
	e.notifier.publish(UpdateConversations, UpdateAlerts, UpdateMessages)
	return nil
}

// DeleteMessages removes individual messages from a conversation on
// the server and, when that conversation is open, from the pane.
func (e *Engine) DeleteMessages(ctx context.Context, sessionID string, messageIDs []int64) error {
	if len(messageIDs) == 0 {
		return nil
	}
	if err := e.backend.DeleteMessages(ctx, sessionID, messageIDs); err != nil {
		e.setError("failed to delete messages", err)
		return err
	}
	e.mu.Lock()
	if e.selected == sessionID {
		e.messages.RemoveByID(messageIDs)
	}
	e.mu.Unlock()
	e.notifier.publish(UpdateMessages)
	return nil
}
