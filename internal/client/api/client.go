// Package api talks to the PromptShelf HTTP and WebSocket endpoints.
package api

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

	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/failure"
	"github.com/mikiasgoitom/PromptShelf/internal/handler/http/dto"
)

// TokenSource returns the bearer token to send, or "" for anonymous calls.
type TokenSource func(ctx context.Context) (string, error)

// StaticToken always returns token.
func StaticToken(token string) TokenSource {
	return func(context.Context) (string, error) { return token, nil }
}

// Client is a PromptShelf API client.
type Client struct {
	baseURL    *url.URL
	token      TokenSource
	httpClient *http.Client
	logger     Logger

	minBackoff time.Duration
	maxBackoff time.Duration
}

// Logger receives reconnect diagnostics.
type Logger interface {
	Warnf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...interface{}) {}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithBackoff sets the reconnect delay bounds of Subscribe.
func WithBackoff(lo, hi time.Duration) Option {
	return func(c *Client) {
		if lo > 0 && hi >= lo {
			c.minBackoff, c.maxBackoff = lo, hi
		}
	}
}

// New returns a client for the server at baseURL, for example "https://promptshelf.example".
func New(baseURL string, token TokenSource, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}
	if token == nil {
		token = StaticToken("")
	}
	c := &Client{
		baseURL:    u,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     nopLogger{},
		minBackoff: 500 * time.Millisecond,
		maxBackoff: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func reactionPath(promptID string, kind entity.ReactionKind) string {
	return "/api/v1/prompts/" + url.PathEscape(promptID) + "/reactions/" + url.PathEscape(string(kind))
}

// Toggle runs the toggle procedure for the signed-in caller.
func (c *Client) Toggle(ctx context.Context, promptID string, kind entity.ReactionKind) (entity.MembershipState, error) {
	var body dto.MembershipStateResponse
	if err := c.do(ctx, http.MethodPost, reactionPath(promptID, kind)+"/toggle", nil, &body); err != nil {
		return entity.MembershipState{}, err
	}
	return body.ToMembershipState(), nil
}

// State returns the caller's membership and the counter for kind.
func (c *Client) State(ctx context.Context, promptID string, kind entity.ReactionKind) (entity.MembershipState, error) {
	var body dto.MembershipStateResponse
	if err := c.do(ctx, http.MethodGet, reactionPath(promptID, kind), nil, &body); err != nil {
		return entity.MembershipState{}, err
	}
	return body.ToMembershipState(), nil
}

// Reactions returns both counters and the caller's flags.
func (c *Client) Reactions(ctx context.Context, promptID string) (dto.ReactionsResponse, error) {
	var body dto.ReactionsResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/prompts/"+url.PathEscape(promptID)+"/reactions", nil, &body)
	return body, err
}

// Sync mirrors the caller's profile into the server's user store.
func (c *Client) Sync(ctx context.Context, req dto.SyncUserRequest) (dto.UserResponse, error) {
	var body dto.UserResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/me/sync", req, &body)
	return body, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var reqBody io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token, err := c.token(ctx)
	if err != nil {
		return failure.Unauthenticated(err.Error())
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return failure.Transient(method+" "+path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeFailure(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return failure.Transient("decode response", err)
	}
	return nil
}

// decodeFailure maps an error response into the failure taxonomy. Bodies that are not
// ErrorResponse fall back to the status code.
func decodeFailure(resp *http.Response) error {
	var body dto.ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err != nil || body.Code == "" {
		return statusFailure(resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	switch body.Code {
	case dto.CodeForbidden, dto.CodeBadRequest:
		return &RequestError{Status: resp.StatusCode, Code: body.Code, Message: body.Error}
	}
	return failure.FromCode(body.Code, body.Error)
}

func statusFailure(status int, message string) error {
	switch status {
	case http.StatusUnauthorized:
		return failure.Unauthenticated("")
	case http.StatusNotFound:
		return failure.NotFound("prompt", "")
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return failure.Transient("", errors.New(message))
}

// RequestError is a rejection outside the reaction failure taxonomy, such as a
// forbidden delete or an invalid profile.
type RequestError struct {
	Status  int
	Code    string
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}
