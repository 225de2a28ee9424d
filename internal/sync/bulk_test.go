package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lqhuy/chatdesk/internal/api"
)

type fakeBulkSender struct {
	status string
	err    error
	calls  []BulkDraft
}

func (f *fakeBulkSender) SendBulk(ctx context.Context, sessionIDs []string, content string, images []string) (api.BulkSendResult, error) {
	f.calls = append(f.calls, BulkDraft{Recipients: sessionIDs, Content: content, Images: images})
	if f.err != nil {
		return api.BulkSendResult{}, f.err
	}
	return api.BulkSendResult{Status: f.status}, nil
}

func TestBulkDispatch(t *testing.T) {
	sender := &fakeBulkSender{status: "success"}
	dispatcher := NewBulkDispatcher(sender)

	draft := BulkDraft{
		Recipients: []string{"s1", "s2", "s3"},
		Content:    "maintenance window tonight",
	}
	require.NoError(t, dispatcher.Dispatch(context.Background(), draft))

	require.Len(t, sender.calls, 1)
	assert.Equal(t, draft.Recipients, sender.calls[0].Recipients)
	assert.Equal(t, draft.Content, sender.calls[0].Content)
}

func TestBulkDispatchValidation(t *testing.T) {
	dispatcher := NewBulkDispatcher(&fakeBulkSender{status: "success"})

	err := dispatcher.Dispatch(context.Background(), BulkDraft{Content: "hi"})
	assert.ErrorIs(t, err, ErrNoRecipients)

	err = dispatcher.Dispatch(context.Background(), BulkDraft{Recipients: []string{"s1"}})
	assert.ErrorIs(t, err, ErrNothingToSend)
}

func TestBulkDispatchRejected(t *testing.T) {
	sender := &fakeBulkSender{status: "failed"}
	dispatcher := NewBulkDispatcher(sender)

	err := dispatcher.Dispatch(context.Background(), BulkDraft{
		Recipients: []string{"s1"},
		Content:    "hello",
	})
	assert.ErrorIs(t, err, ErrBulkRejected)
}

func TestBulkDispatchTransportError(t *testing.T) {
	sender := &fakeBulkSender{err: errors.New("boom")}
	dispatcher := NewBulkDispatcher(sender)

	draft := BulkDraft{Recipients: []string{"s1"}, Content: "hello"}
	err := dispatcher.Dispatch(context.Background(), draft)
	require.Error(t, err)

	// The caller's draft is untouched and can be retried as-is.
	assert.Equal(t, []string{"s1"}, draft.Recipients)
	assert.Equal(t, "hello", draft.Content)
}
