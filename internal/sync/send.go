package sync

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/lqhuy/chatdesk/internal/chat"
)

// ErrNothingToSend is returned when the draft has neither content nor
// images.
var ErrNothingToSend = errors.New("nothing to send")

// ErrNoSelection is returned for message actions with no open
// conversation.
var ErrNoSelection = errors.New("no conversation selected")

// Send delivers the current draft optimistically: the message appears
// in the pane and the draft clears before the network call. On
// failure exactly the optimistic entry is removed, identified by its
// local id rather than by position, and the draft is restored
// verbatim so nothing the operator typed is lost.
func (e *Engine) Send(ctx context.Context) error {
	e.mu.Lock()
	if e.selected == "" {
		e.mu.Unlock()
		return ErrNoSelection
	}
	draft := e.compose.clone()
	if draft.Content == "" && len(draft.Images) == 0 {
		e.mu.Unlock()
		return ErrNothingToSend
	}
	sessionID := e.selected

	msg := chat.Message{
		LocalID:    uuid.NewString(),
		SessionID:  sessionID,
		SenderType: e.opts.Sender,
		SenderName: e.opts.SenderName,
		Content:    draft.Content,
		Images:     draft.Images,
		CreatedAt:  e.opts.Now(),
	}
	e.messages.Append(msg)
	e.compose = Compose{}
	e.mu.Unlock()
	e.notifier.publish(UpdateMessages)

	// On success the conversation summary is left alone. The backend
	// echoes the delivered message through the push channel and the
	// echo updates the list like any other inbound event.
	err := e.backend.SendMessage(ctx, sessionID, e.opts.Sender, draft.Content, true, draft.Images)
	if err == nil {
		return nil
	}

	e.mu.Lock()
	removed := e.messages.RemoveLocal(msg.LocalID)
	if e.selected == sessionID {
		e.compose = draft
	}
	e.mu.Unlock()
	if removed {
		e.notifier.publish(UpdateMessages)
	}
	e.setError("failed to send message", err)
	return err
}
