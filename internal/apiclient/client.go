package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sphere/internal/model"
)

const maxErrorBody = 64 << 10

// Envelope is the backend's response wrapper.
type Envelope struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message,omitempty"`
	Data       json.RawMessage   `json:"data,omitempty"`
	Pagination *model.Pagination `json:"pagination,omitempty"`
}

// Client issues JSON requests against the backend API.
type Client struct {
	baseURL string
	do      Doer
}

// Option customizes a Client.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient  *http.Client
	middlewares []Middleware
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = hc }
}

// WithMiddleware appends middlewares; the first added runs outermost.
func WithMiddleware(mws ...Middleware) Option {
	return func(o *clientOptions) { o.middlewares = append(o.middlewares, mws...) }
}

// New builds a Client for baseURL (e.g. "http://127.0.0.1:8000/api").
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	o := &clientOptions{httpClient: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(o)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		do:      Chain(o.httpClient.Do, o.middlewares...),
	}
}

// Get issues a GET and decodes the envelope data into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) (*Envelope, error) {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) (*Envelope, error) {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) (*Envelope, error) {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) (*Envelope, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do sends one request through the middleware chain. A nil out skips
// decoding of the data field. Non-2xx answers become *APIError carrying the
// backend's message; a 2xx answer is returned as-is even when success is
// false, so callers can read structured rejections.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) (*Envelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: backendMessage(data)}
	}

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && err != io.EOF {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("decode data: %v", err)}
		}
	}
	return &env, nil
}

// Expect converts a success:false envelope into an *APIError with the
// backend message or fallback.
func Expect(env *Envelope, fallback string) error {
	if env != nil && env.Success {
		return nil
	}
	msg := fallback
	if env != nil && env.Message != "" {
		msg = env.Message
	}
	return &APIError{StatusCode: http.StatusOK, Message: msg}
}

// Describe replaces err with the backend message when one was sent, or with
// fallback otherwise. Transport errors keep their identity.
func Describe(err error, fallback string) error {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message == "" || strings.HasPrefix(apiErr.Message, "decode ") {
			return &APIError{StatusCode: apiErr.StatusCode, Message: fallback}
		}
		return apiErr
	}
	return fmt.Errorf("%s: %w", fallback, err)
}

func backendMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return ""
}
