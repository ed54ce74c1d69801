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

	"github.com/klauern/agentsync/internal/logging"
	"github.com/klauern/agentsync/internal/model"
	"github.com/klauern/agentsync/internal/sync"
)

// ErrUnauthorized is returned when the server rejects the bearer token.
var ErrUnauthorized = errors.New("unauthorized: re-authenticate by setting AGENTSYNC_TOKEN")

// StatusError is a non-2xx response other than 401.
type StatusError struct {
	StatusCode int
	Message    string
}

// Error implements error.
func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 32 << 20

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the server root, e.g. "http://localhost:8420".
	BaseURL string
	// Token is sent as a bearer token on every request.
	Token string
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration
	// HTTPClient overrides the transport. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client is a Service backed by a remote agentsync server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the server at config.BaseURL.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.New("server URL is required")
	}
	u, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", config.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", config.BaseURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		token:      config.Token,
		httpClient: httpClient,
	}, nil
}

// Sync implements Service.
func (c *Client) Sync(ctx context.Context, records []model.Record, opts sync.Options) (*sync.Result, error) {
	request := SyncRequest{
		Configs:     ToWireBatch(records),
		DryRun:      opts.DryRun,
		DeepCompare: opts.DeepCompare,
	}
	for _, t := range opts.Types {
		request.Types = append(request.Types, string(t))
	}

	var response SyncResponse
	if err := c.do(ctx, http.MethodPost, "/api/configs/sync", request, &response); err != nil {
		return nil, err
	}
	return response.Result(), nil
}

// Delete implements Service.
func (c *Client) Delete(ctx context.Context, ids []string) (sync.DeleteResult, error) {
	var response DeleteResponse
	if err := c.do(ctx, http.MethodPost, "/api/configs/delete", DeleteRequest{ConfigIDs: ids}, &response); err != nil {
		return sync.DeleteResult{}, err
	}
	return response, nil
}

// List implements Service.
func (c *Client) List(ctx context.Context, types []model.ArtifactType) ([]model.RemoteRecord, error) {
	path := "/api/configs"
	if len(types) > 0 {
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = string(t)
		}
		path += "?" + url.Values{"type": {strings.Join(names, ",")}}.Encode()
	}

	var response ListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, err
	}
	return response.Configs, nil
}

// do sends a JSON request and decodes a JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	defer logging.Timer(method + " " + path)()

	var bodyReader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("request to %s %s failed: %w", method, path, err)
	}
	defer func() { _ = response.Body.Close() }()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if response.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: response.StatusCode}
		var errBody ErrorResponse
		if json.Unmarshal(responseBody, &errBody) == nil {
			statusErr.Message = errBody.Error
		}
		return statusErr
	}

	if err := json.Unmarshal(responseBody, out); err != nil {
		return fmt.Errorf("failed to parse response from %s %s: %w", method, path, err)
	}
	return nil
}
