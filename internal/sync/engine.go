// Package sync implements the conversation synchronization core: the
// reconciliation engine that merges the REST snapshot, paginated
// history backfill, and the push event stream into one consistent
// in-memory model, plus the optimistic coordinators for sends, tag
// toggles, and bulk dispatch.
//
// All store mutation is serialized through the engine: each inbound
// event and each user action is applied as one discrete task, in
// arrival order, with no network call ever performed inside the
// critical section.
package sync

import (
	"context"
	gosync "sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lqhuy/chatdesk/internal/chat"
	"github.com/lqhuy/chatdesk/internal/logging"
	"github.com/lqhuy/chatdesk/internal/store"
)

const (
	// DefaultDedupWindow is the timestamp tolerance for treating an
	// incoming message as the echo of one already displayed. Empirical;
	// tune against real traffic before changing.
	DefaultDedupWindow = 2000 * time.Millisecond
	// DefaultDedupLookback is how many of the newest messages are
	// compared by the dedup rule.
	DefaultDedupLookback = 3
)

// Backend is the slice of the REST surface the engine and coordinators
// consume. *api.Client satisfies it.
type Backend interface {
	FetchConversations(ctx context.Context) ([]*chat.Conversation, error)
	FetchHistory(ctx context.Context, sessionID string, page, limit int) ([]chat.Message, error)
	SendMessage(ctx context.Context, sessionID string, sender chat.SenderType, content string, isAdmin bool, images []string) error
	UpdateTags(ctx context.Context, sessionID string, tagIDs []int) error
	UpdateAlertStatus(ctx context.Context, sessionID string, alert bool) error
	UpdateSessionStatus(ctx context.Context, sessionID, status, expiresAt string) error
	DeleteSessions(ctx context.Context, sessionIDs []string) error
	DeleteMessages(ctx context.Context, sessionID string, messageIDs []int64) error
}

// Archiver records reconciled messages for local lookback. Failures
// are logged and never affect reconciliation.
type Archiver interface {
	Record(ctx context.Context, msg chat.Message) error
}

// Options tunes the engine.
type Options struct {
	// DedupWindow and DedupLookback parameterize the echo-suppression
	// heuristic. Zero values select the defaults.
	DedupWindow   time.Duration
	DedupLookback int
	// PageSize is the history page length.
	PageSize int
	// Sender identifies the local actor on optimistic sends.
	Sender chat.SenderType
	// SenderName is attached to optimistic sends.
	SenderName string
	// Archive, when set, receives every accepted non-temporary message.
	Archive Archiver
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Compose is the draft message being authored for the open
// conversation. Restored verbatim when a send fails.
type Compose struct {
	Content string
	Images  []string
}

func (c Compose) clone() Compose {
	out := Compose{Content: c.Content}
	if len(c.Images) > 0 {
		out.Images = make([]string, len(c.Images))
		copy(out.Images, c.Images)
	}
	return out
}

// Engine owns the stores and is their only writer.
type Engine struct {
	mu gosync.Mutex

	conversations *store.ConversationStore
	messages      *store.MessageStore
	alerts        *store.AlertSet
	cursor        store.Cursor

	selected    string
	backfilling bool
	compose     Compose
	lastErr     string

	backend  Backend
	notifier *Notifier
	opts     Options
	logger   zerolog.Logger
}

// NewEngine constructs an engine around a backend.
func NewEngine(backend Backend, opts Options) *Engine {
	if opts.DedupWindow <= 0 {
		opts.DedupWindow = DefaultDedupWindow
	}
	if opts.DedupLookback <= 0 {
		opts.DedupLookback = DefaultDedupLookback
	}
	if opts.PageSize <= 0 {
		opts.PageSize = store.DefaultPageSize
	}
	if opts.Sender == "" {
		opts.Sender = chat.SenderAdmin
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		conversations: store.NewConversationStore(),
		messages:      store.NewMessageStore(),
		alerts:        store.NewAlertSet(),
		cursor:        store.NewCursor(opts.PageSize),
		backend:       backend,
		notifier:      NewNotifier(),
		opts:          opts,
		logger:        logging.Component("sync"),
	}
}

// Notifier exposes the update hub for presentation subscriptions.
func (e *Engine) Notifier() *Notifier { return e.notifier }

// Load fetches the conversation snapshot and seeds the pending-alert
// set from its alert flags. Any previous state is replaced.
func (e *Engine) Load(ctx context.Context) error {
	convs, err := e.backend.FetchConversations(ctx)
	if err != nil {
		e.setError("failed to load conversations", err)
		return err
	}

	var alertIDs []string
	for _, c := range convs {
		if c.HasPendingAlert {
			alertIDs = append(alertIDs, c.SessionID)
		}
	}

	e.mu.Lock()
	e.conversations.Replace(convs)
	e.alerts.ReplaceAll(alertIDs)
	e.mu.Unlock()

	e.logger.Info().Int("conversations", len(convs)).Int("alerts", len(alertIDs)).Msg("snapshot loaded")
	e.notifier.publish(UpdateConversations, UpdateAlerts)
	return nil
}

// HandleEvent applies one push event. It implements push.Handler and
// is the single entry point for the merge rules.
func (e *Engine) HandleEvent(ev chat.Event) {
	e.mu.Lock()
	var updates []Update
	switch ev.Kind() {
	case chat.EventCustomerInfoUpdate:
		updates = e.applyCustomerInfoUpdate(ev)
	case chat.EventMessage:
		updates = e.applyMessage(ev)
	case chat.EventCustomerData:
		updates = e.applyCustomerData(ev)
	default:
		// Unknown event types are ignored without error.
	}
	e.mu.Unlock()
	e.notifier.publish(updates...)
}

// applyCustomerInfoUpdate upserts the session with its new customer
// data and raises the pending alert, creating a minimal stub when the
// session is unseen.
func (e *Engine) applyCustomerInfoUpdate(ev chat.Event) []Update {
	now := e.opts.Now()
	data := chat.DecodeCustomerData(ev.CustomerData)
	if data.Fields() == nil && !data.IsZero() {
		e.logger.Warn().Str("session_id", ev.SessionID).
			Str("payload", logging.Redact(data.Raw())).
			Msg("malformed customer_data treated as empty")
	}

	e.conversations.Upsert(ev.SessionID, func(c *chat.Conversation) {
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if c.DisplayName == "" {
			c.DisplayName = ev.SessionName
		}
		if ev.Platform != "" && c.Channel == chat.ChannelWeb {
			c.Channel = chat.ParseChannel(ev.Platform)
		}
		if !data.IsZero() {
			c.CustomerData = data
		}
		c.HasPendingAlert = true
	})
	e.alerts.Add(ev.SessionID)
	return []Update{UpdateConversations, UpdateAlerts}
}

// applyCustomerData merges customer data without touching the alert
// flag; that transition is reserved for the explicit alert event type.
func (e *Engine) applyCustomerData(ev chat.Event) []Update {
	data := chat.DecodeCustomerData(ev.CustomerData)
	if data.Fields() == nil && !data.IsZero() {
		e.logger.Warn().Str("session_id", ev.SessionID).
			Str("payload", logging.Redact(data.Raw())).
			Msg("malformed customer_data treated as empty")
	}
	if data.IsZero() {
		return nil
	}
	e.conversations.Upsert(ev.SessionID, func(c *chat.Conversation) {
		c.CustomerData = data
	})
	if fields := data.Fields(); fields != nil {
		e.logger.Debug().Str("session_id", ev.SessionID).
			Interface("fields", logging.RedactMap(fields)).
			Msg("customer data merged")
	}
	return []Update{UpdateConversations}
}

// applyMessage upserts the conversation summary and, when the event
// targets the conversation that is open right now, appends the message
// subject to the dedup rule.
func (e *Engine) applyMessage(ev chat.Event) []Update {
	now := e.opts.Now()

	e.conversations.Upsert(ev.SessionID, func(c *chat.Conversation) {
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if c.DisplayName == "" {
			c.DisplayName = ev.SessionName
		}
		if ev.Platform != "" {
			c.Channel = chat.ParseChannel(ev.Platform)
		}
		if ev.Content != "" {
			c.LastContent = ev.Content
		}
		c.LastUpdatedAt = now
		if ev.SenderType != "" {
			c.LastSender = ev.SenderType
		}
		if ev.SessionStatus != "" {
			c.ControlMode = chat.ControlModeFromStatus(ev.SessionStatus)
		}
		if ev.CurrentReceiver != "" {
			c.CurrentReceiver = ev.CurrentReceiver
		}
		if ev.PreviousReceiver != "" {
			c.PreviousReceiver = ev.PreviousReceiver
		}
		if c.ControlMode == chat.ControlManual {
			if ev.Time != nil {
				if t := ev.Time.Time(); !t.IsZero() {
					expires := t
					c.ManualExpiresAt = &expires
				}
			}
		} else {
			c.ManualExpiresAt = nil
		}
	})
	updates := []Update{UpdateConversations}

	// Stale-selection guard: the open conversation is re-read here, at
	// delivery time, not captured at subscription time.
	if e.selected != ev.SessionID {
		return updates
	}

	msg := ev.Message()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now
	}
	if e.isDuplicate(msg) {
		e.logger.Debug().Str("session_id", ev.SessionID).Msg("suppressed duplicate message")
		return updates
	}

	e.messages.Append(msg)
	e.archive(msg)
	return append(updates, UpdateMessages)
}

// isDuplicate applies the echo-suppression heuristic: identical
// content and sender within the window, among the newest lookback
// entries. Exact-id matching is unavailable because optimistic entries
// use locally generated ids; conflating two genuinely identical
// messages inside the window is the accepted trade-off.
func (e *Engine) isDuplicate(incoming chat.Message) bool {
	for _, existing := range e.messages.Last(e.opts.DedupLookback) {
		if existing.Content != incoming.Content || existing.SenderType != incoming.SenderType {
			continue
		}
		delta := incoming.CreatedAt.Sub(existing.CreatedAt)
		if delta < 0 {
			delta = -delta
		}
		if delta < e.opts.DedupWindow {
			return true
		}
	}
	return false
}

func (e *Engine) archive(msg chat.Message) {
	if e.opts.Archive == nil || msg.Temporary {
		return
	}
	if err := e.opts.Archive.Record(context.Background(), msg); err != nil {
		e.logger.Warn().Err(err).Str("session_id", msg.SessionID).Msg("archive write failed")
	}
}

// Conversations returns the conversation list in display order.
func (e *Engine) Conversations() []*chat.Conversation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conversations.All()
}

// Conversation returns one conversation summary, nil when unknown.
func (e *Engine) Conversation(sessionID string) *chat.Conversation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conversations.Get(sessionID)
}

// Messages returns the open conversation's history, oldest-first.
func (e *Engine) Messages() []chat.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.messages.All()
}

// Selected returns the open conversation's session id, empty when none.
func (e *Engine) Selected() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected
}

// HasPendingAlert reports whether a session has an unread alert.
func (e *Engine) HasPendingAlert(sessionID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alerts.Has(sessionID)
}

// PendingAlerts returns the session ids with unread alerts.
func (e *Engine) PendingAlerts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alerts.IDs()
}

// Compose returns the current draft.
func (e *Engine) Compose() Compose {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.compose.clone()
}

// SetCompose replaces the current draft.
func (e *Engine) SetCompose(c Compose) {
	e.mu.Lock()
	e.compose = c.clone()
	e.mu.Unlock()
}

// LastError returns the last user-visible failure, empty when none.
func (e *Engine) LastError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// ClearError dismisses the surfaced failure.
func (e *Engine) ClearError() {
	e.mu.Lock()
	e.lastErr = ""
	e.mu.Unlock()
	e.notifier.publish(UpdateError)
}

// setError records and surfaces one failure. Nothing is retried
// automatically; retries are operator-initiated.
func (e *Engine) setError(summary string, err error) {
	e.logger.Error().Err(err).Msg(summary)
	e.mu.Lock()
	e.lastErr = summary
	e.mu.Unlock()
	e.notifier.publish(UpdateError)
}
