package earthengine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// DefaultBaseURL is the Earth Engine REST endpoint.
	DefaultBaseURL = "https://earthengine.googleapis.com"

	// Scope is the OAuth scope Earth Engine requires.
	Scope = "https://www.googleapis.com/auth/earthengine"

	requestTimeout = 30 * time.Second
)

// ErrNotInitialized is returned when a remote call is attempted before a
// successful Initialize.
var ErrNotInitialized = errors.New("earthengine: client not initialized")

// Config holds the client configuration.
type Config struct {
	// Project is the Google Cloud project maps are registered under.
	Project string

	// BaseURL overrides the Earth Engine endpoint. Defaults to DefaultBaseURL.
	BaseURL string

	// HTTPClient, when set, is used as-is and ambient credential resolution
	// is skipped. Meant for tests against a fake service.
	HTTPClient *http.Client
}

// Client talks to the Earth Engine REST API. Initialize must succeed before
// any other call; it is safe to call on every request.
type Client struct {
	config  Config
	baseURL string

	mu          sync.Mutex
	httpClient  *http.Client
	initialized bool

	// credentials resolves ambient Application Default Credentials.
	// Swapped in tests.
	credentials func(ctx context.Context, scopes ...string) (*google.Credentials, error)
}

// NewClient creates an Earth Engine client. No network or credential work
// happens until Initialize.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		config:      cfg,
		baseURL:     strings.TrimRight(base, "/"),
		credentials: google.FindDefaultCredentials,
	}
}

// Initialize resolves ambient credentials and builds the authorized HTTP
// client on the first successful call; afterwards it is a no-op. The
// initialized flag is only set on success, so a failed attempt is retried
// on the next call.
func (c *Client) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}

	if c.config.HTTPClient != nil {
		c.httpClient = c.config.HTTPClient
		c.initialized = true
		return nil
	}

	creds, err := c.credentials(ctx, Scope)
	if err != nil {
		return fmt.Errorf("failed to resolve credentials: %w", err)
	}

	client := oauth2.NewClient(ctx, creds.TokenSource)
	client.Timeout = requestTimeout

	c.httpClient = client
	c.initialized = true
	return nil
}

// APIError is an error response from the Earth Engine service. Error
// returns the service's message verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string { return e.Message }

// CreateMap registers expr as a visualization map and returns the tile URL
// template the service assigns to it, containing {z}/{x}/{y} placeholders.
func (c *Client) CreateMap(ctx context.Context, expr *Expression) (string, error) {
	c.mu.Lock()
	httpClient := c.httpClient
	initialized := c.initialized
	c.mu.Unlock()

	if !initialized {
		return "", ErrNotInitialized
	}

	body, err := json.Marshal(map[string]any{"expression": expr})
	if err != nil {
		return "", fmt.Errorf("failed to encode expression: %w", err)
	}

	url := fmt.Sprintf("%s/v1/projects/%s/maps", c.baseURL, c.config.Project)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create map request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("map request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read map response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", apiError(resp.StatusCode, data)
	}

	var out struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("failed to decode map response: %w", err)
	}
	if out.Name == "" {
		return "", &APIError{StatusCode: resp.StatusCode, Message: "map response missing name"}
	}

	return fmt.Sprintf("%s/v1/%s/tiles/{z}/{x}/{y}", c.baseURL, out.Name), nil
}

// apiError decodes the standard Google error envelope, falling back to the
// raw body.
func apiError(status int, data []byte) *APIError {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error.Message != "" {
		return &APIError{StatusCode: status, Message: envelope.Error.Message}
	}
	return &APIError{StatusCode: status, Message: strings.TrimSpace(string(data))}
}
