package sync

import (
	"context"

	"github.com/lqhuy/chatdesk/internal/chat"
)

// ToggleTag adds the tag to the session when absent and removes it
// when present. The server replaces the whole tag set, so the full
// resulting id list is sent; the local ids and names swap together
// only after the server confirms, keeping the two aggregates
// consistent.
func (e *Engine) ToggleTag(ctx context.Context, sessionID string, tag chat.Tag) error {
	e.mu.Lock()
	c := e.conversations.Get(sessionID)
	if c == nil {
		e.mu.Unlock()
		return chat.ErrNoSession
	}
	var nextIDs []int
	var nextNames []string
	if c.HasTag(tag.ID) {
		for i, id := range c.TagIDs {
			if id == tag.ID {
				continue
			}
			nextIDs = append(nextIDs, id)
			if i < len(c.TagNames) {
				nextNames = append(nextNames, c.TagNames[i])
			}
		}
	} else {
		nextIDs = append(append(nextIDs, c.TagIDs...), tag.ID)
		nextNames = append(append(nextNames, c.TagNames...), tag.Name)
	}
	e.mu.Unlock()

	if err := e.backend.UpdateTags(ctx, sessionID, nextIDs); err != nil {
		e.setError("failed to update tags", err)
		return err
	}

	e.mu.Lock()
	if c := e.conversations.Get(sessionID); c != nil {
		c.TagIDs = nextIDs
		c.TagNames = nextNames
	}
	e.mu.Unlock()
	e.notifier.publish(UpdateConversations)
	return nil
}
