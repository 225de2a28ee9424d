package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lqhuy/chatdesk/internal/chat"
)

func TestToggleTagAdds(t *testing.T) {
	backend := newFakeBackend()
	c := conv("s1", "Alice", testBase)
	c.TagIDs = []int{1}
	c.TagNames = []string{"vip"}
	backend.conversations = []*chat.Conversation{c}

	engine, _ := newTestEngine(t, backend)
	require.NoError(t, engine.Load(context.Background()))
	require.NoError(t, engine.ToggleTag(context.Background(), "s1", chat.Tag{ID: 2, Name: "refund"}))

	require.Len(t, backend.tagCalls, 1)
	assert.Equal(t, []int{1, 2}, backend.tagCalls[0], "the full resulting set is sent")

	got := engine.Conversation("s1")
	require.NotNil(t, got)
	assert.Equal(t, []int{1, 2}, got.TagIDs)
	assert.Equal(t, []string{"vip", "refund"}, got.TagNames)
}

func TestToggleTagRemoves(t *testing.T) {
	backend := newFakeBackend()
	c := conv("s1", "Alice", testBase)
	c.TagIDs = []int{1, 2}
	c.TagNames = []string{"vip", "refund"}
	backend.conversations = []*chat.Conversation{c}

	engine, _ := newTestEngine(t, backend)
	require.NoError(t, engine.Load(context.Background()))
	require.NoError(t, engine.ToggleTag(context.Background(), "s1", chat.Tag{ID: 1, Name: "vip"}))

	require.Len(t, backend.tagCalls, 1)
	assert.Equal(t, []int{2}, backend.tagCalls[0])

	got := engine.Conversation("s1")
	require.NotNil(t, got)
	assert.Equal(t, []int{2}, got.TagIDs)
	assert.Equal(t, []string{"refund"}, got.TagNames)
}

func TestToggleTagFailureLeavesAggregatesUntouched(t *testing.T) {
	backend := newFakeBackend()
	c := conv("s1", "Alice", testBase)
	c.TagIDs = []int{1}
	c.TagNames = []string{"vip"}
	backend.conversations = []*chat.Conversation{c}
	backend.tagsErr = errors.New("boom")

	engine, _ := newTestEngine(t, backend)
	require.NoError(t, engine.Load(context.Background()))
	require.Error(t, engine.ToggleTag(context.Background(), "s1", chat.Tag{ID: 2, Name: "refund"}))

	got := engine.Conversation("s1")
	require.NotNil(t, got)
	assert.Equal(t, []int{1}, got.TagIDs, "ids and names only swap on confirmation")
	assert.Equal(t, []string{"vip"}, got.TagNames)
}

func TestToggleTagUnknownSession(t *testing.T) {
	backend := newFakeBackend()
	engine, _ := newTestEngine(t, backend)
	require.NoError(t, engine.Load(context.Background()))
	assert.ErrorIs(t, engine.ToggleTag(context.Background(), "ghost", chat.Tag{ID: 1}), chat.ErrNoSession)
}
