package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/raphaelgruber/chatline/internal/models"
	"github.com/raphaelgruber/chatline/internal/session"
)

// stubTransport serves canned conversations and answers every message with
// "echo: <text>" unless failSend is set.
type stubTransport struct {
	mu        sync.Mutex
	convs     []models.ConversationSummary
	histories map[models.ID][]models.RemoteMessage
	nextID    models.ID
	failSend  bool
	failLoad  bool
	sent      []models.ChatRequest
}

func (s *stubTransport) ListConversations(_ context.Context, _ models.ID) ([]models.ConversationSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ConversationSummary(nil), s.convs...), nil
}

func (s *stubTransport) LoadMessages(_ context.Context, id models.ID) ([]models.RemoteMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLoad {
		return nil, errors.New("connection refused")
	}
	return s.histories[id], nil
}

func (s *stubTransport) SendMessage(_ context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, req)
	if s.failSend {
		return nil, errors.New("connection refused")
	}
	id := req.ConversationID
	if id.IsZero() {
		id = s.nextID
	}
	return &models.ChatResponse{ConversationID: id, AIResponse: "echo: " + req.Message}, nil
}

func newStubTransport() *stubTransport {
	title := "Mars trip"
	started := models.Timestamp{Time: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)}
	return &stubTransport{
		convs: []models.ConversationSummary{
			{ID: "7", Title: &title, StartTime: &started},
			{ID: "8"},
		},
		histories: map[models.ID][]models.RemoteMessage{
			"7": {
				{Content: "How far is Mars?", Sender: models.SenderUser},
				{Content: "About 225 million km.", Sender: models.SenderAssistant},
			},
		},
		nextID: "42",
	}
}

// newTestController builds a synchronous controller over transport.
func newTestController(t *testing.T, transport session.Transport) *session.Controller {
	t.Helper()
	ctrl := session.New(context.Background(), transport, "1",
		session.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		session.WithRunner(session.SyncRunner),
	)
	t.Cleanup(ctrl.Close)
	return ctrl
}
