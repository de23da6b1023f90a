package thinkcomm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/neuralgenius/tupi-proxy/internal/domain"
	"github.com/rs/zerolog"
)

// Options configures the bot integration endpoint
type Options struct {
	URL     string
	Token   string
	Source  string
	Action  string
	Timeout time.Duration
}

// Client forwards conversations to the ThinkComm bot integration queue
type Client struct {
	httpClient *http.Client
	url        string
	token      string
	source     string
	action     string
	logger     zerolog.Logger
}

// NewClient creates a new ThinkComm client
func NewClient(opts Options, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		url:    opts.URL,
		token:  opts.Token,
		source: opts.Source,
		action: opts.Action,
		logger: logger.With().Str("component", "thinkcomm").Logger(),
	}
}

type enqueueRequest struct {
	Action         string `json:"action"`
	Token          string `json:"token"`
	Source         string `json:"source"`
	IDConversation string `json:"id_conversation"`
}

// EnqueueConversation moves a conversation to the support queue and returns
// the endpoint's JSON response
func (c *Client) EnqueueConversation(ctx context.Context, conversationID string) (json.RawMessage, error) {
	payload, err := json.Marshal(enqueueRequest{
		Action:         c.action,
		Token:          c.token,
		Source:         c.source,
		IDConversation: conversationID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrUpstreamFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("conversation_id", conversationID).
			Bytes("body", body).
			Msg("queue endpoint error")
		return nil, fmt.Errorf("%w: queue status %d", domain.ErrUpstreamFailure, resp.StatusCode)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: failed to decode response: invalid JSON", domain.ErrUpstreamFailure)
	}

	c.logger.Info().Str("conversation_id", conversationID).Msg("conversation queued")
	return json.RawMessage(body), nil
}
