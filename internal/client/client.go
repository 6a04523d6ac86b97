// Package client provides the HTTP client for the conversation service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/raphaelgruber/chatline/internal/metrics"
	"github.com/raphaelgruber/chatline/internal/models"
)

// DefaultServerURL is used when neither the caller nor CHATLINE_SERVER_URL set one.
const DefaultServerURL = "http://localhost:8000"

// Client talks to the conversation service over HTTP/JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	collector  *metrics.Collector
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger used for per-call logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithCollector records per-call statistics into col.
func WithCollector(col *metrics.Collector) Option {
	return func(c *Client) {
		c.collector = col
	}
}

// New creates a client for the service at baseURL.
// If baseURL is empty, uses CHATLINE_SERVER_URL or DefaultServerURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("CHATLINE_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = DefaultServerURL
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do performs one request and decodes a successful JSON body into result.
func (c *Client) do(ctx context.Context, op, method, path string, body, result any) (err error) {
	start := time.Now()
	status := 0
	defer func() {
		c.observe(op, method, path, status, time.Since(start), err)
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return newTransportError(op, 0, fmt.Errorf("marshal request: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return newTransportError(op, 0, fmt.Errorf("create request: %w", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return newTransportError(op, 0, fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return newTransportError(op, status, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newTransportError(op, status,
			fmt.Errorf("server error: %s - %s", resp.Status, truncate(string(respBody), maxBodyLogLen)))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return newTransportError(op, status, fmt.Errorf("unmarshal response: %w", err))
		}
	}

	return nil
}

// =============================================================================
// CONVERSATION OPERATIONS
// =============================================================================

// ListConversations returns the conversation summaries of a user.
func (c *Client) ListConversations(ctx context.Context, userID models.ID) ([]models.ConversationSummary, error) {
	path := "/users/" + url.PathEscape(userID.String()) + "/conversations"

	var result []models.ConversationSummary
	if err := c.do(ctx, metrics.OpListConversations, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// LoadMessages returns the full message history of a conversation in service order.
func (c *Client) LoadMessages(ctx context.Context, conversationID models.ID) ([]models.RemoteMessage, error) {
	path := "/conversations/" + url.PathEscape(conversationID.String()) + "/messages"

	var result []models.RemoteMessage
	if err := c.do(ctx, metrics.OpLoadMessages, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// SendMessage posts a user message and returns the assistant reply.
// A request without ConversationID asks the service to start a new conversation.
func (c *Client) SendMessage(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	var result models.ChatResponse
	if err := c.do(ctx, metrics.OpSendMessage, http.MethodPost, "/api/chat", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
