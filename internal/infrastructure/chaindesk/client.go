package chaindesk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/neuralgenius/tupi-proxy/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Options configures which conversations the client lists
type Options struct {
	BaseURL           string
	APIKey            string
	AgentID           string
	Channel           string
	Take              int
	RequestsPerSecond float64 // 0 disables throttling
	Timeout           time.Duration
}

// Client reads stored conversations from the Chaindesk API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	agentID     string
	channel     string
	take        int
	rateLimiter *rate.Limiter
	logger      zerolog.Logger
}

// NewClient creates a new Chaindesk API client
func NewClient(opts Options, logger zerolog.Logger) *Client {
	limit := rate.Inf
	burst := 1
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
		burst = max(1, int(opts.RequestsPerSecond))
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		baseURL:     strings.TrimSuffix(opts.BaseURL, "/"),
		apiKey:      opts.APIKey,
		agentID:     opts.AgentID,
		channel:     opts.Channel,
		take:        opts.Take,
		rateLimiter: rate.NewLimiter(limit, burst),
		logger:      logger.With().Str("component", "chaindesk").Logger(),
	}
}

// ListConversations returns the most recent conversations of the configured agent channel
func (c *Client) ListConversations(ctx context.Context) ([]domain.ConversationSummary, error) {
	params := url.Values{}
	params.Set("channel", c.channel)
	params.Set("agentId", c.agentID)
	params.Set("take", strconv.Itoa(c.take))

	var conversations []conversationDTO
	if err := c.getJSON(ctx, "/api/conversations?"+params.Encode(), &conversations); err != nil {
		return nil, err
	}

	c.logger.Debug().Int("conversations", len(conversations)).Msg("listed conversations")
	return mapConversations(conversations), nil
}

// GetMessages returns the ordered turns of a conversation
func (c *Client) GetMessages(ctx context.Context, conversationID string) ([]domain.Turn, error) {
	var messages []messageDTO
	path := fmt.Sprintf("/api/conversations/%s/messages", url.PathEscape(conversationID))
	if err := c.getJSON(ctx, path, &messages); err != nil {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, err)
	}
	return mapMessages(messages), nil
}

// getJSON performs an authorized GET and decodes a 2xx JSON body into out
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn().
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("body", string(body)).
			Msg("messaging API error")
		return fmt.Errorf("%w: status %d", domain.ErrUpstreamFailure, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", domain.ErrUpstreamFailure, err)
	}

	return nil
}
