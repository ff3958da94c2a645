package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIError is a non-2xx response from the platform API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// Client is a thin HTTP wrapper over the platform REST API. All responses
// are wrapped as {"data": ...}; errors surface as {"message": ...}.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New constructs a Client for the given base URL, e.g. "https://api.example.org".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &apiErr)
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Message}
	}

	if out == nil {
		return nil
	}
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// GetMessages fetches the full history of one conversation, ordered
// oldest-to-newest by the server.
func (c *Client) GetMessages(ctx context.Context, conversationType, conversationID string) ([]Message, error) {
	q := url.Values{}
	q.Set("conversationType", conversationType)
	q.Set("conversationId", conversationID)

	var data struct {
		Messages []Message `json:"messages"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/messages", q, nil, &data); err != nil {
		return nil, err
	}
	return data.Messages, nil
}

// ListPolls fetches one page of the admin poll listing.
func (c *Client) ListPolls(ctx context.Context, query PollListQuery) (*PollList, error) {
	q := url.Values{}
	if query.Page > 0 {
		q.Set("page", strconv.Itoa(query.Page))
	}
	if query.Limit > 0 {
		q.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Search != "" {
		q.Set("search", query.Search)
	}
	if query.Status != "" {
		q.Set("status", query.Status)
	}
	if query.SortBy != "" {
		q.Set("sortBy", query.SortBy)
	}
	if query.SortOrder != "" {
		q.Set("sortOrder", query.SortOrder)
	}

	var data PollList
	if err := c.do(ctx, http.MethodGet, "/api/v1/admin/polls", q, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPoll fetches a single poll by id.
func (c *Client) GetPoll(ctx context.Context, id string) (*Poll, error) {
	var data struct {
		Poll Poll `json:"poll"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/admin/polls/"+url.PathEscape(id), nil, nil, &data); err != nil {
		return nil, err
	}
	return &data.Poll, nil
}

// CreatePoll creates a poll and returns it with its server-assigned id.
func (c *Client) CreatePoll(ctx context.Context, in PollInput) (*Poll, error) {
	var data struct {
		Poll Poll `json:"poll"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/admin/polls", nil, in, &data); err != nil {
		return nil, err
	}
	return &data.Poll, nil
}

// UpdatePoll replaces a poll's mutable fields.
func (c *Client) UpdatePoll(ctx context.Context, id string, in PollInput) (*Poll, error) {
	var data struct {
		Poll Poll `json:"poll"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/v1/admin/polls/"+url.PathEscape(id), nil, in, &data); err != nil {
		return nil, err
	}
	return &data.Poll, nil
}

// DeletePoll removes a poll by id.
func (c *Client) DeletePoll(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/admin/polls/"+url.PathEscape(id), nil, nil, nil)
}
