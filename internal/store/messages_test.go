package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lqhuy/chatdesk/internal/chat"
)

func msg(id int64, content string) chat.Message {
	return chat.Message{ID: id, Content: content}
}

func TestMessageStorePrepend(t *testing.T) {
	s := NewMessageStore()
	s.Replace([]chat.Message{msg(10, "j"), msg(11, "k")})
	s.Prepend([]chat.Message{msg(1, "a"), msg(2, "b")})

	all := s.All()
	require.Len(t, all, 4)
	assert.Equal(t, int64(1), all[0].ID)
	assert.Equal(t, int64(11), all[3].ID)
}

func TestMessageStorePrependDropsTemporaryGreeting(t *testing.T) {
	s := NewMessageStore()
	s.Replace([]chat.Message{
		{Content: "welcome!", Temporary: true},
		msg(10, "real"),
	})
	s.Prepend([]chat.Message{msg(1, "older")})

	all := s.All()
	require.Len(t, all, 2, "the placeholder greeting goes away once real history exists")
	assert.Equal(t, "older", all[0].Content)
	assert.Equal(t, "real", all[1].Content)
}

func TestMessageStoreLast(t *testing.T) {
	s := NewMessageStore()
	s.Replace([]chat.Message{msg(1, "a"), msg(2, "b"), msg(3, "c")})

	last := s.Last(2)
	require.Len(t, last, 2)
	assert.Equal(t, "b", last[0].Content)
	assert.Equal(t, "c", last[1].Content)

	assert.Len(t, s.Last(10), 3)
	assert.Empty(t, s.Last(0))
}

func TestMessageStoreRemoveLocal(t *testing.T) {
	s := NewMessageStore()
	s.Append(chat.Message{LocalID: "loc-1", Content: "same"})
	s.Append(chat.Message{LocalID: "loc-2", Content: "same"})

	require.True(t, s.RemoveLocal("loc-1"))
	assert.False(t, s.RemoveLocal("loc-1"), "a local id removes at most once")

	all := s.All()
	require.Len(t, all, 1)
	assert.Equal(t, "loc-2", all[0].LocalID, "only the matching entry is removed")
}

func TestMessageStoreRemoveByID(t *testing.T) {
	s := NewMessageStore()
	s.Replace([]chat.Message{msg(1, "a"), msg(2, "b"), msg(3, "c")})

	assert.Equal(t, 2, s.RemoveByID([]int64{1, 3, 99}))
	all := s.All()
	require.Len(t, all, 1)
	assert.Equal(t, int64(2), all[0].ID)
}

func TestAlertSet(t *testing.T) {
	a := NewAlertSet()
	a.Add("s1")
	a.Add("s1")
	a.Add("s2")

	assert.True(t, a.Has("s1"))
	assert.Equal(t, 2, a.Len())

	a.Remove("s1")
	assert.False(t, a.Has("s1"))

	a.ReplaceAll([]string{"x", "y"})
	assert.Equal(t, 2, a.Len())
	assert.True(t, a.Has("x"))
	assert.False(t, a.Has("s2"))
}

func TestCursor(t *testing.T) {
	c := NewCursor(10)
	assert.Equal(t, 1, c.Page)
	assert.True(t, c.HasMore)

	c.Advance(1, 10)
	assert.True(t, c.HasMore)

	c.Advance(2, 7)
	assert.Equal(t, 2, c.Page)
	assert.False(t, c.HasMore)

	c.Reset()
	assert.Equal(t, 1, c.Page)
	assert.True(t, c.HasMore)
}
