package sync

import (
	"errors"
	gosync "sync"
)

// Update identifies which slice of state changed. The presentation
// layer subscribes to re-render only what it must.
type Update int

const (
	// UpdateConversations: the conversation list changed (membership,
	// ordering, or any summary field).
	UpdateConversations Update = iota
	// UpdateMessages: the open conversation's history changed.
	UpdateMessages
	// UpdateAlerts: the pending-alert set changed.
	UpdateAlerts
	// UpdateError: the last user-visible error changed.
	UpdateError
)

// UpdateHandler is a callback invoked after a state change. Handlers
// run outside the engine's critical section and must not block.
type UpdateHandler func(u Update)

// Errors for notifier operations.
var (
	ErrInvalidSubscriptionID = errors.New("subscription ID is required")
	ErrNilHandler            = errors.New("handler cannot be nil")
	ErrSubscriptionExists    = errors.New("subscription with this ID already exists")
	ErrSubscriptionNotFound  = errors.New("subscription not found")
)

// Notifier is an in-process pub/sub hub for state-change updates.
type Notifier struct {
	mu            gosync.RWMutex
	subscriptions map[string]UpdateHandler
}

// NewNotifier creates an empty Notifier.
func NewNotifier() *Notifier {
	return &Notifier{subscriptions: make(map[string]UpdateHandler)}
}

// Subscribe registers a handler under an id.
func (n *Notifier) Subscribe(id string, handler UpdateHandler) error {
	if id == "" {
		return ErrInvalidSubscriptionID
	}
	if handler == nil {
		return ErrNilHandler
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, exists := n.subscriptions[id]; exists {
		return ErrSubscriptionExists
	}
	n.subscriptions[id] = handler
	return nil
}

// Unsubscribe removes a subscription by id.
func (n *Notifier) Unsubscribe(id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, exists := n.subscriptions[id]; !exists {
		return ErrSubscriptionNotFound
	}
	delete(n.subscriptions, id)
	return nil
}

// SubscriberCount returns the number of active subscribers.
func (n *Notifier) SubscriberCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subscriptions)
}

// publish invokes every handler. Handlers are collected under a read
// lock and invoked outside it to avoid deadlocks.
func (n *Notifier) publish(updates ...Update) {
	if len(updates) == 0 {
		return
	}
	n.mu.RLock()
	handlers := make([]UpdateHandler, 0, len(n.subscriptions))
	for _, h := range n.subscriptions {
		handlers = append(handlers, h)
	}
	n.mu.RUnlock()

	for _, u := range updates {
		for _, h := range handlers {
			h(u)
		}
	}
}
