package store

// AlertSet is the process-wide set of session ids with an unread
// customer-data alert. A conversation's HasPendingAlert flag must agree
// with membership here at every observable point; the reconciliation
// engine is the only writer and keeps the two in step.
type AlertSet struct {
	ids map[string]struct{}
}

// NewAlertSet returns an empty set.
func NewAlertSet() *AlertSet {
	return &AlertSet{ids: make(map[string]struct{})}
}

// Len returns the number of pending alerts.
func (s *AlertSet) Len() int { return len(s.ids) }

// Has reports membership.
func (s *AlertSet) Has(sessionID string) bool {
	_, ok := s.ids[sessionID]
	return ok
}

// Add marks a session as having an unread alert.
func (s *AlertSet) Add(sessionID string) {
	s.ids[sessionID] = struct{}{}
}

// Remove clears a session's alert.
func (s *AlertSet) Remove(sessionID string) {
	delete(s.ids, sessionID)
}

// ReplaceAll resets the set from a snapshot.
func (s *AlertSet) ReplaceAll(sessionIDs []string) {
	s.ids = make(map[string]struct{}, len(sessionIDs))
	for _, id := range sessionIDs {
		s.ids[id] = struct{}{}
	}
}

// IDs returns the member session ids in unspecified order.
func (s *AlertSet) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	return out
}
