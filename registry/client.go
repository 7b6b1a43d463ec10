// Package registry fetches record schemas from a Confluent-compatible schema
// registry and returns them parsed, so JSON documents can be decoded against
// the schema a topic is registered with.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/reoring/relaxavro/schema"
)

// ErrUnsupportedSchemaType is returned for registered schemas that are not
// Avro (JSON Schema or Protobuf).
var ErrUnsupportedSchemaType = errors.New("registry: schema type is not AVRO")

// Config holds the registry endpoint and credentials.
type Config struct {
	// URL is the registry endpoint, e.g. "http://localhost:8081".
	URL string `yaml:"url"`

	// Username and Password enable basic auth when Username is set.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// Timeout bounds each HTTP request. Default: 10s.
	Timeout time.Duration `yaml:"timeout"`
}

// Metadata describes one registered schema version.
type Metadata struct {
	ID      int            `json:"id"`
	Version int            `json:"version"`
	Subject string         `json:"subject"`
	Type    string         `json:"schemaType,omitempty"`
	Text    string         `json:"schema"`
	Schema  *schema.Schema `json:"-"`
}

// StatusError reports a non-200 registry response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("registry: status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the registry over HTTP and caches parsed schemas by ID.
type Client struct {
	base       string
	httpClient *http.Client
	username   string
	password   string
	logger     *zap.Logger

	mu   sync.RWMutex
	byID map[int]*schema.Schema
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client; its timeout is left untouched.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.httpClient = h } }

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.logger = l } }

// NewClient validates cfg and returns a client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("registry: URL is required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("registry: invalid URL: %w", err)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	c := &Client{
		base:       trimSlash(cfg.URL),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		username:   cfg.Username,
		password:   cfg.Password,
		logger:     zap.NewNop(),
		byID:       make(map[int]*schema.Schema),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SchemaByID returns the parsed schema registered under id.
func (c *Client) SchemaByID(ctx context.Context, id int) (*schema.Schema, error) {
	c.mu.RLock()
	s, ok := c.byID[id]
	c.mu.RUnlock()
	if ok {
		return s, nil
	}

	var md Metadata
	if err := c.get(ctx, "/schemas/ids/"+strconv.Itoa(id), &md); err != nil {
		return nil, err
	}
	md.ID = id
	if err := c.parse(&md); err != nil {
		return nil, err
	}
	return md.Schema, nil
}

// LatestSchema returns the latest version registered for subject.
func (c *Client) LatestSchema(ctx context.Context, subject string) (*Metadata, error) {
	return c.SchemaVersion(ctx, subject, "latest")
}

// SchemaVersion returns a specific version ("latest" or a number) of subject.
func (c *Client) SchemaVersion(ctx context.Context, subject, version string) (*Metadata, error) {
	var md Metadata
	p := "/subjects/" + url.PathEscape(subject) + "/versions/" + url.PathEscape(version)
	if err := c.get(ctx, p, &md); err != nil {
		return nil, err
	}
	md.Subject = subject
	if err := c.parse(&md); err != nil {
		return nil, err
	}
	return &md, nil
}

func (c *Client) parse(md *Metadata) error {
	if md.Type != "" && md.Type != "AVRO" {
		return fmt.Errorf("%w: %s", ErrUnsupportedSchemaType, md.Type)
	}
	s, err := schema.Parse([]byte(md.Text))
	if err != nil {
		return fmt.Errorf("registry: schema %d: %w", md.ID, err)
	}
	md.Schema = s
	c.mu.Lock()
	c.byID[md.ID] = s
	c.mu.Unlock()
	c.logger.Debug("schema cached", zap.Int("id", md.ID), zap.String("name", s.FullName()))
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("registry: create request: %w", err)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	req.Header.Set("Accept", "application/vnd.schemaregistry.v1+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("registry: fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("registry: decode response: %w", err)
	}
	return nil
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
