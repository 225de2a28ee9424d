package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifierSubscribe(t *testing.T) {
	n := NewNotifier()

	require.Error(t, n.Subscribe("", func(Update) {}))
	require.ErrorIs(t, n.Subscribe("a", nil), ErrNilHandler)

	require.NoError(t, n.Subscribe("a", func(Update) {}))
	assert.ErrorIs(t, n.Subscribe("a", func(Update) {}), ErrSubscriptionExists)
	assert.Equal(t, 1, n.SubscriberCount())

	require.NoError(t, n.Unsubscribe("a"))
	assert.ErrorIs(t, n.Unsubscribe("a"), ErrSubscriptionNotFound)
	assert.Equal(t, 0, n.SubscriberCount())
}

func TestNotifierPublishReachesAllSubscribers(t *testing.T) {
	n := NewNotifier()

	var got []Update
	require.NoError(t, n.Subscribe("a", func(u Update) { got = append(got, u) }))

	var count int
	require.NoError(t, n.Subscribe("b", func(Update) { count++ }))

	n.publish(UpdateConversations, UpdateAlerts)

	assert.Equal(t, []Update{UpdateConversations, UpdateAlerts}, got)
	assert.Equal(t, 2, count)
}

func TestEngineNotifiesOnEvents(t *testing.T) {
	backend := newFakeBackend()
	engine, _ := newTestEngine(t, backend)

	var updates []Update
	require.NoError(t, engine.Notifier().Subscribe("ui", func(u Update) {
		updates = append(updates, u)
	}))

	engine.HandleEvent(messageEvent("s1", "hi", "customer"))
	assert.Contains(t, updates, UpdateConversations)
}
