package push

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lqhuy/chatdesk/internal/chat"
)

// wsServer upgrades one connection and writes the given frames, then
// closes normally.
func wsServer(t *testing.T, frames []string, gotCookie *string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotCookie != nil {
			if c, err := r.Cookie("access_token"); err == nil {
				*gotCookie = c.Value
			}
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		for _, frame := range frames {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
		}
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func collectEvents(t *testing.T, adapter *Adapter) []chat.Event {
	t.Helper()
	var events []chat.Event
	err := adapter.Connect(context.Background(), HandlerFunc(func(ev chat.Event) {
		events = append(events, ev)
	}))
	require.NoError(t, err)

	select {
	case <-adapter.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("read loop did not finish")
	}
	return events
}

func TestAdapterDeliversEventsInOrder(t *testing.T) {
	frames := []string{
		`{"chat_session_id":"s1","content":"first"}`,
		`{"chat_session_id":"s1","content":"second"}`,
		`{"chat_session_id":"s2","content":"third"}`,
	}
	var cookie string
	srv := wsServer(t, frames, &cookie)

	adapter, err := NewAdapter(Config{BaseURL: srv.URL, AuthToken: "tok-9"})
	require.NoError(t, err)

	events := collectEvents(t, adapter)
	require.Len(t, events, 3)
	assert.Equal(t, "first", events[0].Content)
	assert.Equal(t, "second", events[1].Content)
	assert.Equal(t, "third", events[2].Content)
	assert.Equal(t, "tok-9", cookie)
}

func TestAdapterDropsUndecodableFrames(t *testing.T) {
	frames := []string{
		`{"chat_session_id":"s1","content":"good"}`,
		`this is not json`,
		`{"content":"no session id"}`,
		`{"chat_session_id":"s1","content":"also good"}`,
	}
	srv := wsServer(t, frames, nil)

	adapter, err := NewAdapter(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	events := collectEvents(t, adapter)
	require.Len(t, events, 2, "bad frames are dropped without breaking the stream")
	assert.Equal(t, "good", events[0].Content)
	assert.Equal(t, "also good", events[1].Content)
}

func TestAdapterRejectsDoubleConnect(t *testing.T) {
	srv := wsServer(t, nil, nil)

	adapter, err := NewAdapter(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	handler := HandlerFunc(func(chat.Event) {})
	require.NoError(t, adapter.Connect(context.Background(), handler))
	assert.Error(t, adapter.Connect(context.Background(), handler))

	adapter.Disconnect()
	select {
	case <-adapter.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("read loop did not finish after disconnect")
	}
}

func TestChannelURL(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{
			name: "admin over http",
			cfg:  Config{BaseURL: "http://localhost:8000", Role: RoleAdmin},
			want: "ws://localhost:8000/chat/ws/admin",
		},
		{
			name: "admin over https",
			cfg:  Config{BaseURL: "https://desk.example.com/", Role: RoleAdmin},
			want: "wss://desk.example.com/chat/ws/admin",
		},
		{
			name: "customer carries session id",
			cfg:  Config{BaseURL: "http://localhost:8000", Role: RoleCustomer, SessionID: "s1"},
			want: "ws://localhost:8000/chat/ws/customer?sessionId=s1",
		},
		{
			name:    "unsupported scheme",
			cfg:     Config{BaseURL: "ftp://x", Role: RoleAdmin},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := channelURL(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewAdapterValidation(t *testing.T) {
	_, err := NewAdapter(Config{BaseURL: "http://x", Role: RoleCustomer})
	assert.Error(t, err, "customer role without session id")

	_, err = NewAdapter(Config{})
	assert.Error(t, err, "missing base URL")
}
