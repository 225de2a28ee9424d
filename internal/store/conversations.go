// Package store holds the in-memory view models the synchronization
// core maintains: the ordered conversation list, the open
// conversation's message history, the pending-alert set, and the
// backfill cursor.
//
// Stores are not safe for concurrent use on their own; the
// reconciliation engine serializes every mutation (one discrete task at
// a time, in arrival order).
package store

import (
	"sort"

	"github.com/lqhuy/chatdesk/internal/chat"
)

// ConversationStore is the ordered collection of conversation
// summaries, sorted descending by effective timestamp. Sorting is
// stable: conversations with equal timestamps keep their prior
// relative order.
type ConversationStore struct {
	order []*chat.Conversation
	index map[string]*chat.Conversation
}

// NewConversationStore returns an empty store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{index: make(map[string]*chat.Conversation)}
}

// Len returns the number of conversations.
func (s *ConversationStore) Len() int { return len(s.order) }

// Get returns the conversation for a session id, nil when absent.
func (s *ConversationStore) Get(sessionID string) *chat.Conversation {
	return s.index[sessionID]
}

// All returns the conversations in display order. The slice is a copy;
// the elements are the live records.
func (s *ConversationStore) All() []*chat.Conversation {
	out := make([]*chat.Conversation, len(s.order))
	copy(out, s.order)
	return out
}

// Upsert applies a partial mutation to the conversation for sessionID,
// creating a minimal stub first when the session is unseen, then
// re-sorts the store. Returns the mutated conversation.
func (s *ConversationStore) Upsert(sessionID string, apply func(*chat.Conversation)) *chat.Conversation {
	conv, ok := s.index[sessionID]
	if !ok {
		conv = &chat.Conversation{
			SessionID:   sessionID,
			Channel:     chat.ChannelWeb,
			ControlMode: chat.ControlBot,
		}
		s.index[sessionID] = conv
		s.order = append(s.order, conv)
	}
	if apply != nil {
		apply(conv)
	}
	s.resort()
	return conv
}

// Replace swaps the entire store content, used when loading the REST
// snapshot. Input order is kept for equal timestamps.
func (s *ConversationStore) Replace(convs []*chat.Conversation) {
	s.order = make([]*chat.Conversation, 0, len(convs))
	s.index = make(map[string]*chat.Conversation, len(convs))
	for _, c := range convs {
		if c == nil || c.SessionID == "" {
			continue
		}
		if _, dup := s.index[c.SessionID]; dup {
			continue
		}
		s.index[c.SessionID] = c
		s.order = append(s.order, c)
	}
	s.resort()
}

// Remove deletes the given session ids. Unknown ids are ignored.
func (s *ConversationStore) Remove(sessionIDs []string) {
	drop := make(map[string]struct{}, len(sessionIDs))
	for _, id := range sessionIDs {
		drop[id] = struct{}{}
	}
	kept := s.order[:0]
	for _, c := range s.order {
		if _, gone := drop[c.SessionID]; gone {
			delete(s.index, c.SessionID)
			continue
		}
		kept = append(kept, c)
	}
	s.order = kept
}

func (s *ConversationStore) resort() {
	sort.SliceStable(s.order, func(i, j int) bool {
		return s.order[i].EffectiveTimestamp().After(s.order[j].EffectiveTimestamp())
	})
}
