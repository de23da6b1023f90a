package tupi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/neuralgenius/tupi-proxy/internal/domain"
	"github.com/rs/zerolog"
)

// errorBodyLimit caps how much of a failed upstream body ends up in the logs
const errorBodyLimit = 512

// Client handles communication with the Tupi legacy product API
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     zerolog.Logger
}

// NewClient creates a new Tupi API client
func NewClient(baseURL, userAgent string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: userAgent,
		logger:    logger.With().Str("component", "tupi").Logger(),
	}
}

type authResponse struct {
	Token string `json:"token"`
}

// Authenticate exchanges the catalog credentials for a bearer token
func (c *Client) Authenticate(ctx context.Context, credentials domain.Credentials) (domain.Token, error) {
	form := url.Values{}
	form.Set("user", credentials.User)
	form.Set("password", credentials.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		body, _ := readLimitedBody(resp.Body, errorBodyLimit)
		c.logger.Warn().Int("status", resp.StatusCode).Str("body", string(body)).Msg("auth endpoint error")
		return "", fmt.Errorf("%w: auth status %d", domain.ErrUpstreamFailure, resp.StatusCode)
	}

	var auth authResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return "", fmt.Errorf("%w: auth status %d", domain.ErrAuthFailed, resp.StatusCode)
		}
		return "", fmt.Errorf("%w: failed to decode auth response: %v", domain.ErrUpstreamFailure, err)
	}

	if auth.Token == "" {
		return "", fmt.Errorf("%w: no token in response (status %d)", domain.ErrAuthFailed, resp.StatusCode)
	}

	return domain.Token(auth.Token), nil
}

// Search runs a catalog search. Optional parameters are only sent when set.
func (c *Client) Search(ctx context.Context, token domain.Token, query domain.SearchQuery) (*domain.RawSearchResponse, error) {
	params := url.Values{}
	params.Set("query", query.Query)
	if query.Page != "" {
		params.Set("pagina", query.Page)
	}
	if query.Price != "" {
		params.Set("precio", query.Price)
	}

	body, err := c.get(ctx, token, "/buscar", params)
	if err != nil {
		return nil, err
	}

	var searchResp domain.RawSearchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrUpstreamFailure, err)
	}

	c.logger.Debug().Str("query", query.Query).Int("items", len(searchResp.Data)).Msg("search completed")
	return &searchResp, nil
}

// GetProduct retrieves the full product record for id
func (c *Client) GetProduct(ctx context.Context, token domain.Token, id string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("id", id)

	body, err := c.get(ctx, token, "/producto", params)
	if err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: failed to decode response: invalid JSON", domain.ErrUpstreamFailure)
	}

	return json.RawMessage(body), nil
}

// get executes an authenticated GET request and returns the body of a 2xx response
func (c *Client) get(ctx context.Context, token domain.Token, path string, params url.Values) ([]byte, error) {
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+string(token))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := readLimitedBody(resp.Body, errorBodyLimit)
		c.logger.Warn().
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("body", string(body)).
			Msg("catalog API error")
		return nil, fmt.Errorf("%w: %s status %d", domain.ErrUpstreamFailure, path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrUpstreamFailure, err)
	}

	return body, nil
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}
