// Package remote mirrors UI state documents to the application's REST endpoint.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultPath is the customization endpoint exposed by the host application.
const DefaultPath = "/api/user/dashboard-customization"

// ErrNotFound reports that the remote has no document yet.
var ErrNotFound = errors.New("remote: document not found")

// Config configures the HTTP client.
type Config struct {
	BaseURL    string
	Path       string
	APIKey     string
	CSRFToken  string
	HTTPClient *http.Client
}

// Client saves and loads JSON documents against a single endpoint.
type Client struct {
	url       string
	apiKey    string
	csrfToken string
	client    *http.Client
}

// NewClient validates cfg.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("remote: base url is required")
	}
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		url:       strings.TrimRight(cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/"),
		apiKey:    cfg.APIKey,
		csrfToken: cfg.CSRFToken,
		client:    httpClient,
	}, nil
}

// Save posts payload as JSON.
func (c *Client) Save(ctx context.Context, payload any) error {
	return c.do(ctx, http.MethodPost, payload, nil)
}

// Load fetches the stored document into target. A 404 yields ErrNotFound.
func (c *Client) Load(ctx context.Context, target any) error {
	return c.do(ctx, http.MethodGet, nil, target)
}

func (c *Client) do(ctx context.Context, method string, payload any, target any) error {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("remote: encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url, body)
	if err != nil {
		return fmt.Errorf("remote: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if c.csrfToken != "" {
		req.Header.Set("X-CSRF-TOKEN", c.csrfToken)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("remote: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return fmt.Errorf("remote: remote error %d: %s", resp.StatusCode, strings.TrimSpace(buf.String()))
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("remote: decode response: %w", err)
	}
	return nil
}
