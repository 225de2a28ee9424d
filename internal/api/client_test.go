package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lqhuy/chatdesk/internal/chat"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	cookie string
	body   []byte
}

// testServer serves one canned JSON response and records the request.
func testServer(t *testing.T, status int, response string) (*Client, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		if c, err := r.Cookie("access_token"); err == nil {
			rec.cookie = c.Value
		}
		rec.body, _ = io.ReadAll(r.Body)
		w.WriteHeader(status)
		if response != "" {
			_, _ = w.Write([]byte(response))
		}
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL, AuthToken: "tok-1"})
	require.NoError(t, err)
	return client, rec
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)

	client, err := NewClient(Config{BaseURL: "https://desk.example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "https://desk.example.com", client.baseURL, "trailing slash is normalized away")
}

func TestFetchConversations(t *testing.T) {
	response := `[
		{
			"session_id": 1234,
			"status": "false",
			"alert": "true",
			"channel": "facebook",
			"customer_data": "{\"Phone\":\"555-0100\"}",
			"name": "Alice",
			"time": "2026-03-14T13:00:00Z",
			"sender_type": "customer",
			"content": "is it in stock?",
			"created_at": "2026-03-14 11:58:02",
			"tag_names": ["vip"],
			"tag_ids": [1]
		},
		{
			"session_id": "abc",
			"status": "true",
			"alert": false,
			"name": "Bob",
			"created_at": "2026-03-14T10:00:00Z"
		}
	]`
	client, rec := testServer(t, http.StatusOK, response)

	convs, err := client.FetchConversations(context.Background())
	require.NoError(t, err)
	require.Len(t, convs, 2)

	assert.Equal(t, "GET", rec.method)
	assert.Equal(t, "/chat/admin/history", rec.path)
	assert.Equal(t, "tok-1", rec.cookie)

	first := convs[0]
	assert.Equal(t, "1234", first.SessionID)
	assert.Equal(t, chat.ChannelFacebook, first.Channel)
	assert.True(t, first.HasPendingAlert)
	assert.Equal(t, chat.ControlManual, first.ControlMode)
	require.NotNil(t, first.ManualExpiresAt)
	assert.Equal(t, []int{1}, first.TagIDs)
	phone, ok := first.CustomerData.Field("phone")
	require.True(t, ok)
	assert.Equal(t, "555-0100", phone)

	second := convs[1]
	assert.Equal(t, "abc", second.SessionID)
	assert.False(t, second.HasPendingAlert)
	assert.Equal(t, chat.ControlBot, second.ControlMode)
	assert.Nil(t, second.ManualExpiresAt)
}

func TestFetchHistory(t *testing.T) {
	response := `[
		{"id": 1, "sender_type": "customer", "content": "hi", "created_at": "2026-03-14 10:00:00"},
		{"id": 2, "chat_session_id": 77, "sender_type": "bot", "content": "hello!", "created_at": "2026-03-14 10:00:05"}
	]`
	client, rec := testServer(t, http.StatusOK, response)

	msgs, err := client.FetchHistory(context.Background(), "77", 2, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, "/chat/history/77", rec.path)
	assert.Equal(t, "limit=10&page=2", rec.query)
	assert.Equal(t, "77", msgs[0].SessionID, "records without a session id inherit the request's")
	assert.Equal(t, "77", msgs[1].SessionID)
}

func TestSendMessage(t *testing.T) {
	client, rec := testServer(t, http.StatusOK, `{}`)

	err := client.SendMessage(context.Background(), "s1", chat.SenderAdmin, "on it", true, []string{"a.png"})
	require.NoError(t, err)

	assert.Equal(t, "POST", rec.method)
	assert.Equal(t, "/chat/message", rec.path)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.body, &body))
	assert.Equal(t, "s1", body["chat_session_id"])
	assert.Equal(t, "admin", body["sender_type"])
	assert.Equal(t, "on it", body["content"])
	assert.Equal(t, true, body["is_admin"])
}

func TestUpdateTagsSendsEmptySetExplicitly(t *testing.T) {
	client, rec := testServer(t, http.StatusOK, `{}`)

	require.NoError(t, client.UpdateTags(context.Background(), "s1", nil))

	assert.Equal(t, "PATCH", rec.method)
	assert.Equal(t, "/chat/tag/s1", rec.path)
	assert.JSONEq(t, `{"tags":[]}`, string(rec.body), "clearing all tags sends an empty array, not null")
}

func TestUpdateAlertStatus(t *testing.T) {
	client, rec := testServer(t, http.StatusOK, `{}`)

	require.NoError(t, client.UpdateAlertStatus(context.Background(), "s1", false))

	assert.Equal(t, "PUT", rec.method)
	assert.Equal(t, "/chat/alert/s1", rec.path)
	assert.JSONEq(t, `{"alert":"false"}`, string(rec.body))
}

func TestUpdateSessionStatus(t *testing.T) {
	client, rec := testServer(t, http.StatusOK, `{}`)

	require.NoError(t, client.UpdateSessionStatus(context.Background(), "s1", "false", "2026-03-14T13:00:00Z"))

	assert.Equal(t, "PATCH", rec.method)
	assert.Equal(t, "/chat/s1", rec.path)
	assert.JSONEq(t, `{"status":"false","time":"2026-03-14T13:00:00Z"}`, string(rec.body))
}

func TestDeleteEndpoints(t *testing.T) {
	client, rec := testServer(t, http.StatusOK, `{}`)

	require.NoError(t, client.DeleteSessions(context.Background(), []string{"s1", "s2"}))
	assert.Equal(t, "DELETE", rec.method)
	assert.Equal(t, "/chat/chat_sessions", rec.path)
	assert.JSONEq(t, `{"ids":["s1","s2"]}`, string(rec.body))

	require.NoError(t, client.DeleteMessages(context.Background(), "s1", []int64{4, 5}))
	assert.Equal(t, "/chat/messages/s1", rec.path)
	assert.JSONEq(t, `{"ids":[4,5]}`, string(rec.body))
}

func TestSendBulk(t *testing.T) {
	client, rec := testServer(t, http.StatusOK, `{"status":"success"}`)

	res, err := client.SendBulk(context.Background(), []string{"s1", "s2"}, "notice", nil)
	require.NoError(t, err)
	assert.True(t, res.Delivered())

	assert.Equal(t, "/chat/send_message", rec.path)
	assert.JSONEq(t, `{"customers":["s1","s2"],"content":"notice"}`, string(rec.body))
}

func TestFetchCustomersQuery(t *testing.T) {
	client, rec := testServer(t, http.StatusOK, `[{"session_id": 9, "name": "Carol", "channel": "zalo"}]`)

	customers, err := client.FetchCustomers(context.Background(), chat.ChannelZalo, 3)
	require.NoError(t, err)
	require.Len(t, customers, 1)

	assert.Equal(t, "/chat/admin/customers", rec.path)
	assert.Equal(t, "channel=zalo&tag_id=3", rec.query)
	assert.Equal(t, "9", customers[0].SessionID)
	assert.Equal(t, chat.ChannelZalo, customers[0].Channel)
}

func TestErrorResponses(t *testing.T) {
	client, _ := testServer(t, http.StatusBadGateway, "upstream broke")

	_, err := client.FetchConversations(context.Background())
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Contains(t, apiErr.Error(), "upstream broke")
}

func TestRequestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = client.FetchConversations(context.Background())
	require.Error(t, err)
}
