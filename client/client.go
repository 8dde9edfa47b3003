package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sagarc03/bluelist"
)

const (
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultEndpoint is the default gateway address.
	DefaultEndpoint = "http://localhost:5000"

	// DefaultContextRoot is the default route prefix of the gateway.
	DefaultContextRoot = "/v1/apps/bluelist"
)

// Config locates a gateway.
type Config struct {
	Endpoint    string
	ContextRoot string
}

// Client performs item and signing operations against a bluelist gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	endpoint := strings.TrimSuffix(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	root := cfg.ContextRoot
	if root == "" {
		root = DefaultContextRoot
	}
	root = strings.TrimRight(root, "/")
	if root != "" && !strings.HasPrefix(root, "/") {
		root = "/" + root
	}

	c := &Client{
		baseURL:    endpoint + root,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// ListItems returns every item.
func (c *Client) ListItems(ctx context.Context) ([]bluelist.Record, error) {
	var records []bluelist.Record
	if err := c.do(ctx, http.MethodGet, "/items", nil, &records); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return records, nil
}

// GetItem returns the item with the given id. A missing item yields an
// error matching ErrNotFound.
func (c *Client) GetItem(ctx context.Context, id string) (bluelist.Record, error) {
	if id == "" {
		return bluelist.Record{}, fmt.Errorf("get item: %w", ErrEmptyID)
	}

	var records []bluelist.Record
	if err := c.do(ctx, http.MethodGet, "/item/"+url.PathEscape(id), nil, &records); err != nil {
		return bluelist.Record{}, fmt.Errorf("get item: %w", err)
	}
	if len(records) == 0 {
		return bluelist.Record{}, fmt.Errorf("get item: %w", ErrNotFound)
	}
	return records[0], nil
}

// CreateItem stores fields as a new item and returns it with its assigned id.
func (c *Client) CreateItem(ctx context.Context, fields map[string]any) (bluelist.Record, error) {
	var rec bluelist.Record
	if err := c.do(ctx, http.MethodPost, "/item", fields, &rec); err != nil {
		return bluelist.Record{}, fmt.Errorf("create item: %w", err)
	}
	return rec, nil
}

// UpdateItem replaces the fields of an existing item.
func (c *Client) UpdateItem(ctx context.Context, id string, fields map[string]any) (bluelist.Record, error) {
	if id == "" {
		return bluelist.Record{}, fmt.Errorf("update item: %w", ErrEmptyID)
	}

	var rec bluelist.Record
	if err := c.do(ctx, http.MethodPut, "/item/"+url.PathEscape(id), fields, &rec); err != nil {
		return bluelist.Record{}, fmt.Errorf("update item: %w", err)
	}
	return rec, nil
}

// DeleteItem deletes an item.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("delete item: %w", ErrEmptyID)
	}

	if err := c.do(ctx, http.MethodDelete, "/item/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// Sign requests an upload policy for fileName.
func (c *Client) Sign(ctx context.Context, fileName string) (bluelist.SignedPolicy, error) {
	var signed bluelist.SignedPolicy
	body := map[string]string{"fileName": fileName}
	if err := c.do(ctx, http.MethodPost, "/signing", body, &signed); err != nil {
		return bluelist.SignedPolicy{}, fmt.Errorf("sign: %w", err)
	}
	return signed, nil
}

// Health reports whether the gateway can reach its backend.
func (c *Client) Health(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/healthz", nil, nil); err != nil {
		return fmt.Errorf("health: %w", err)
	}
	return nil
}

// do sends a request and decodes a 200 response into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return parseServerError(resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
