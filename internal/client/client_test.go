package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/raphaelgruber/chatline/internal/client"
	"github.com/raphaelgruber/chatline/internal/metrics"
	"github.com/raphaelgruber/chatline/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...client.Option) (*client.Client, *metrics.Collector) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	col := metrics.NewCollector()
	opts = append([]client.Option{client.WithLogger(testLogger()), client.WithCollector(col)}, opts...)
	return client.New(srv.URL, opts...), col
}

func TestListConversations(t *testing.T) {
	c, col := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/users/1/conversations", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"id": 3, "user_id": 1, "title": "Trip", "start_time": "2025-03-01T10:00:00"},
			{"id": 2, "user_id": 1, "title": null, "start_time": null}
		]`)
	})

	convs, err := c.ListConversations(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, convs, 2)

	assert.Equal(t, models.ID("3"), convs[0].ID)
	assert.Equal(t, "Trip", convs[0].DisplayTitle())
	require.NotNil(t, convs[0].Started())

	assert.Equal(t, models.ID("2"), convs[1].ID)
	assert.Equal(t, "Chat 2", convs[1].DisplayTitle())
	assert.Nil(t, convs[1].Started())

	snap := col.Snapshot()
	require.NotNil(t, snap.ListConversations)
	assert.Equal(t, int64(1), snap.ListConversations.Count)
}

func TestLoadMessagesKeepsServiceOrder(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/conversations/7/messages", r.URL.Path)
		_, _ = io.WriteString(w, `[
			{"content": "b", "sender": "ai", "timestamp": "2025-03-01T10:01:00"},
			{"content": "a", "sender": "user", "timestamp": "2025-03-01T10:00:00"}
		]`)
	})

	msgs, err := c.LoadMessages(context.Background(), "7")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "b", msgs[0].Content)
	assert.Equal(t, models.SenderAssistant, msgs[0].Sender)
	assert.Equal(t, "a", msgs[1].Content)
}

func TestLoadMessagesEscapesID(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/conversations/a%2Fb/messages", r.URL.EscapedPath())
		_, _ = io.WriteString(w, `[]`)
	})

	msgs, err := c.LoadMessages(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestSendMessage(t *testing.T) {
	c, col := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(1), body["user_id"])
		assert.Equal(t, "hello", body["message"])
		assert.Nil(t, body["conversation_id"])
		assert.Contains(t, body, "conversation_id")

		_, _ = io.WriteString(w, `{"conversation_id": 42, "user_message": "hello", "ai_response": "hi", "message_id": 9}`)
	})

	resp, err := c.SendMessage(context.Background(), models.ChatRequest{UserID: "1", Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hi", resp.AIResponse)
	assert.Equal(t, models.ID("42"), resp.ConversationID)
	assert.Equal(t, models.ID("9"), resp.MessageID)

	require.NotNil(t, col.Snapshot().SendMessage)
}

func TestNonSuccessStatusIsTransportError(t *testing.T) {
	c, col := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, strings.Repeat("x", 500), http.StatusInternalServerError)
	})

	_, err := c.SendMessage(context.Background(), models.ChatRequest{UserID: "1", Message: "hello"})
	require.Error(t, err)

	var te *client.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, metrics.OpSendMessage, te.Op)
	assert.Equal(t, http.StatusInternalServerError, te.StatusCode)
	assert.Less(t, len(err.Error()), 400, "body should be truncated")

	snap := col.Snapshot()
	require.NotNil(t, snap.SendMessage)
	assert.Equal(t, int64(1), snap.SendMessage.Failures)
}

func TestMalformedBodyIsTransportError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"not":"a list"}`)
	})

	_, err := c.ListConversations(context.Background(), "1")
	require.Error(t, err)
	assert.True(t, client.IsTransportError(err))
}

func TestNetworkFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := client.New(url, client.WithLogger(testLogger()))
	_, err := c.LoadMessages(context.Background(), "1")
	require.Error(t, err)

	var te *client.TransportError
	require.True(t, errors.As(err, &te))
	assert.Zero(t, te.StatusCode)
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, client.WithTimeout(50*time.Millisecond))
	defer close(release)

	_, err := c.ListConversations(context.Background(), "1")
	require.Error(t, err)
	assert.True(t, client.IsTransportError(err))
}

func TestNewDefaults(t *testing.T) {
	t.Setenv("CHATLINE_SERVER_URL", "")
	assert.Equal(t, client.DefaultServerURL, client.New("").BaseURL())

	t.Setenv("CHATLINE_SERVER_URL", "http://chat.internal:9000/")
	assert.Equal(t, "http://chat.internal:9000", client.New("").BaseURL())
}
