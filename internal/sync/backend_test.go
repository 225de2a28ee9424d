package sync

import (
	"context"
	gosync "sync"

	"github.com/lqhuy/chatdesk/internal/chat"
)

// fakeBackend records calls and serves canned responses for engine
// tests.
type fakeBackend struct {
	mu gosync.Mutex

	conversations    []*chat.Conversation
	conversationsErr error

	// history maps page number to its messages.
	history      map[int][]chat.Message
	historyErr   error
	historyCalls []historyCall

	sendErr   error
	sendCalls []sendCall

	tagsErr  error
	tagCalls [][]int

	alertErr   error
	alertCalls []alertCall

	statusCalls []statusCall
	statusErr   error

	deletedSessions   [][]string
	deleteSessionsErr error

	deletedMessages   []deleteMessagesCall
	deleteMessagesErr error
}

type historyCall struct {
	sessionID string
	page      int
	limit     int
}

type sendCall struct {
	sessionID string
	sender    chat.SenderType
	content   string
	isAdmin   bool
	images    []string
}

type alertCall struct {
	sessionID string
	alert     bool
}

type statusCall struct {
	sessionID string
	status    string
	expiresAt string
}

type deleteMessagesCall struct {
	sessionID  string
	messageIDs []int64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{history: map[int][]chat.Message{}}
}

func (f *fakeBackend) FetchConversations(ctx context.Context) ([]*chat.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conversationsErr != nil {
		return nil, f.conversationsErr
	}
	return f.conversations, nil
}

func (f *fakeBackend) FetchHistory(ctx context.Context, sessionID string, page, limit int) ([]chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyCalls = append(f.historyCalls, historyCall{sessionID, page, limit})
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.history[page], nil
}

func (f *fakeBackend) SendMessage(ctx context.Context, sessionID string, sender chat.SenderType, content string, isAdmin bool, images []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls = append(f.sendCalls, sendCall{sessionID, sender, content, isAdmin, images})
	return f.sendErr
}

func (f *fakeBackend) UpdateTags(ctx context.Context, sessionID string, tagIDs []int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tagCalls = append(f.tagCalls, tagIDs)
	return f.tagsErr
}

func (f *fakeBackend) UpdateAlertStatus(ctx context.Context, sessionID string, alert bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alertCalls = append(f.alertCalls, alertCall{sessionID, alert})
	return f.alertErr
}

func (f *fakeBackend) UpdateSessionStatus(ctx context.Context, sessionID, status, expiresAt string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls = append(f.statusCalls, statusCall{sessionID, status, expiresAt})
	return f.statusErr
}

func (f *fakeBackend) DeleteSessions(ctx context.Context, sessionIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedSessions = append(f.deletedSessions, sessionIDs)
	return f.deleteSessionsErr
}

func (f *fakeBackend) DeleteMessages(ctx context.Context, sessionID string, messageIDs []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedMessages = append(f.deletedMessages, deleteMessagesCall{sessionID, messageIDs})
	return f.deleteMessagesErr
}
