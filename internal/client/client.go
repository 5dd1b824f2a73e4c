// Package client calls a running metarisk API over HTTP.
package client

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

	service "github.com/okian/metarisk/internal/app"
	"github.com/okian/metarisk/internal/domain/collect"
	"github.com/okian/metarisk/internal/domain/registry"
	"github.com/okian/metarisk/internal/domain/risk"
)

const defaultTimeout = 30 * time.Second

// ErrTransport marks failures to reach the server or read its reply.
var ErrTransport = errors.New("api transport failed")

// Model is one entry of GET /v1/models.
type Model struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

// FieldError is one invalid field reported by the server.
type FieldError struct {
	Feature string `json:"feature"`
	Value   string `json:"value"`
	Error   string `json:"error"`
}

// APIError is a non-2xx reply. It unwraps to the domain sentinel matching its
// code, so callers can use errors.Is as with the local pipeline.
type APIError struct {
	Status  int          `json:"-"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
}

// Unwrap maps the error code onto domain sentinels. An invalid_input reply
// yields one sentinel per distinct field error.
func (e *APIError) Unwrap() []error {
	switch e.Code {
	case service.KindModelNotFound:
		return []error{registry.ErrModelNotFound}
	case service.KindInvalidInput:
		var out []error
		seen := map[error]bool{}
		for _, f := range e.Fields {
			kind := fieldKind(f.Error)
			if kind != nil && !seen[kind] {
				seen[kind] = true
				out = append(out, kind)
			}
		}
		return out
	case service.KindArtifactNotFound:
		return []error{risk.ErrArtifactNotFound}
	case service.KindArtifactError:
		return []error{risk.ErrArtifactError}
	default:
		return nil
	}
}

func fieldKind(msg string) error {
	switch msg {
	case collect.ErrInvalidSelection.Error():
		return collect.ErrInvalidSelection
	case collect.ErrInvalidNumber.Error():
		return collect.ErrInvalidNumber
	default:
		return nil
	}
}

// Client is a small JSON client for the metarisk API.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Models lists the models served.
func (c *Client) Models(ctx context.Context) ([]Model, error) {
	var out struct {
		Models []Model `json:"models"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/models", nil, &out); err != nil {
		return nil, err
	}
	return out.Models, nil
}

// Form fetches the grouped form of one model.
func (c *Client) Form(ctx context.Context, id string) (service.Form, error) {
	var out service.Form
	err := c.do(ctx, http.MethodGet, "/v1/models/"+url.PathEscape(id), nil, &out)
	return out, err
}

// Assess submits values for one model.
func (c *Client) Assess(ctx context.Context, id string, values map[string]string) (service.Assessment, error) {
	var out service.Assessment
	body := map[string]any{"values": values}
	err := c.do(ctx, http.MethodPost, "/v1/models/"+url.PathEscape(id)+"/assessments", body, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Code == "" {
			apiErr.Code = "http_error"
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrTransport, path, err)
	}
	return nil
}
