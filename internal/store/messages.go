package store

import (
	"github.com/lqhuy/chatdesk/internal/chat"
)

// MessageStore holds the open conversation's history, ordered
// oldest-first. It is cleared and reloaded independently of the
// conversation list; messages reference their session by id only.
type MessageStore struct {
	messages []chat.Message
}

// NewMessageStore returns an empty store.
func NewMessageStore() *MessageStore {
	return &MessageStore{}
}

// Len returns the number of messages.
func (s *MessageStore) Len() int { return len(s.messages) }

// All returns a copy of the history, oldest-first.
func (s *MessageStore) All() []chat.Message {
	out := make([]chat.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Last returns up to n of the newest messages, oldest-first.
func (s *MessageStore) Last(n int) []chat.Message {
	if n <= 0 || len(s.messages) == 0 {
		return nil
	}
	if n > len(s.messages) {
		n = len(s.messages)
	}
	out := make([]chat.Message, n)
	copy(out, s.messages[len(s.messages)-n:])
	return out
}

// Replace swaps the history wholesale, used on conversation switch.
func (s *MessageStore) Replace(msgs []chat.Message) {
	s.messages = make([]chat.Message, len(msgs))
	copy(s.messages, msgs)
}

// Prepend inserts older messages ahead of the current history, used by
// backfill. Any temporary greeting entry is dropped once real history
// exists.
func (s *MessageStore) Prepend(older []chat.Message) {
	if len(older) == 0 {
		return
	}
	kept := make([]chat.Message, 0, len(s.messages))
	for _, m := range s.messages {
		if m.Temporary {
			continue
		}
		kept = append(kept, m)
	}
	merged := make([]chat.Message, 0, len(older)+len(kept))
	merged = append(merged, older...)
	merged = append(merged, kept...)
	s.messages = merged
}

// Append adds one message at the newest edge.
func (s *MessageStore) Append(msg chat.Message) {
	s.messages = append(s.messages, msg)
}

// Clear empties the history.
func (s *MessageStore) Clear() {
	s.messages = nil
}

// RemoveLocal deletes the optimistic entry with the given local id and
// reports whether it was present. Only that entry is touched, so a
// rollback can never delete a concurrently appended message.
func (s *MessageStore) RemoveLocal(localID string) bool {
	for i, m := range s.messages {
		if m.LocalID == localID {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveByID deletes the server-persisted messages with the given ids
// and returns how many were removed.
func (s *MessageStore) RemoveByID(ids []int64) int {
	drop := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := s.messages[:0]
	removed := 0
	for _, m := range s.messages {
		if _, gone := drop[m.ID]; gone && m.ID != 0 {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	s.messages = kept
	return removed
}
