package remote

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

	"github.com/rs/zerolog/log"
)

const DefaultMutationTimeout = 10 * time.Second

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrTimeout      = errors.New("request timed out")
	// ErrMissingRecord is returned when a 2xx response carries no usable record.
	ErrMissingRecord = errors.New("response has no record")
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// Is lets callers match 401 responses with errors.Is(err, ErrUnauthorized).
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// StatusOf extracts the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// TokenSource returns the bearer credential for privileged calls ("" for none).
type TokenSource func() string

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type Client struct {
	BaseURL         string
	HTTPClient      *http.Client
	TokenSource     TokenSource
	MutationTimeout time.Duration
}

func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		BaseURL:         strings.TrimRight(baseURL, "/"),
		HTTPClient:      &http.Client{Timeout: 30 * time.Second},
		TokenSource:     tokens,
		MutationTimeout: DefaultMutationTimeout,
	}
}

// Get issues GET {base}/{segments joined by '/'} and decodes the envelope
// data into dest (dest may be nil).
func (c *Client) Get(ctx context.Context, segments []string, dest any) error {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.do(ctx, http.MethodGet, "/"+strings.Join(escaped, "/"), nil, dest)
}

// GetRaw is Get without decoding: the envelope data is returned as-is.
func (c *Client) GetRaw(ctx context.Context, segments []string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, segments, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) Post(ctx context.Context, path string, body, dest any) error {
	return c.mutate(ctx, http.MethodPost, path, body, dest)
}

func (c *Client) Patch(ctx context.Context, path string, body, dest any) error {
	return c.mutate(ctx, http.MethodPatch, path, body, dest)
}

func (c *Client) Put(ctx context.Context, path string, body, dest any) error {
	return c.mutate(ctx, http.MethodPut, path, body, dest)
}

func (c *Client) Delete(ctx context.Context, path string, dest any) error {
	return c.mutate(ctx, http.MethodDelete, path, nil, dest)
}

// mutate bounds every write with MutationTimeout. Writes are never retried.
func (c *Client) mutate(ctx context.Context, method, path string, body, dest any) error {
	timeout := c.MutationTimeout
	if timeout <= 0 {
		timeout = DefaultMutationTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.do(ctx, method, path, body, dest)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.TokenSource != nil {
		if token := c.TokenSource(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return fmt.Errorf("%s %s: %w", method, path, ErrTimeout)
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if decodeErr == nil && env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("remote call failed")
		return apiErr
	}

	if dest == nil || len(raw) == 0 {
		return nil
	}
	if decodeErr != nil {
		return fmt.Errorf("decode response envelope: %w", decodeErr)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
