package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/quantaform/firecracker-sdk/pkg/fcapi"
)

const baseURL = "http://localhost"

// Client is a thin REST client bound to one Firecracker API socket,
// exposing a small number of verb-generic primitives the apply engine
// and lifecycle orchestrator drive directly.
type Client struct {
	httpClient *http.Client
}

// New returns a Client that dials the Firecracker API socket at
// socketPath for every request.
func New(socketPath string) *Client {
	return &Client{httpClient: &http.Client{Transport: NewUnixRoundTripper(socketPath)}}
}

// NewWithRoundTripper returns a Client using a caller-supplied
// RoundTripper, for tests that want to intercept requests.
func NewWithRoundTripper(rt http.RoundTripper) *Client {
	return &Client{httpClient: &http.Client{Transport: rt}}
}

// APIError is returned when the microVM's API responds with a non-2xx
// status carrying a fault_message body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("firecracker api error (status %d): %s", e.StatusCode, e.Message)
}

// TransportError wraps an unexpected HTTP status or body decode failure
// that isn't a well-formed fault_message response.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("firecracker transport error (status %d): %v", e.StatusCode, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Describe issues a GET against one of the read-only endpoints
// ("/", "/balloon", "/balloon/statistics", "/machine-config", "/mmds",
// "/vm/config", "/version") and decodes the JSON body into result.
func (c *Client) Describe(ctx context.Context, path string, result interface{}) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, result)
}

// Put issues a full-body PUT to path, the verb used for every pre-boot
// resource write and for creating collection members.
func (c *Client) Put(ctx context.Context, path string, body interface{}) error {
	return c.doRequest(ctx, http.MethodPut, path, body, nil)
}

// Patch issues a partial-body update to path. Firecracker's own API
// does not use HTTP PATCH for this: patch updates are physically sent
// as HTTP PUT with only the post-boot fields populated.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) error {
	return c.doRequest(ctx, http.MethodPut, path, body, nil)
}

// CreateSyncAction issues PUT /actions with the given action type.
func (c *Client) CreateSyncAction(ctx context.Context, actionType string) error {
	return c.Put(ctx, "/actions", fcapi.Action{ActionType: actionType})
}

// CreateSnapshot issues PUT /snapshot/create.
func (c *Client) CreateSnapshot(ctx context.Context, body fcapi.SnapshotCreate) error {
	return c.Put(ctx, "/snapshot/create", body)
}

// LoadSnapshot issues PUT /snapshot/load.
func (c *Client) LoadSnapshot(ctx context.Context, body fcapi.SnapshotLoad) error {
	return c.Put(ctx, "/snapshot/load", body)
}

// PatchVM transitions the VM between Paused and Resumed via the logical
// PATCH /vm endpoint (physically a PUT, see Patch).
func (c *Client) PatchVM(ctx context.Context, state string) error {
	return c.Patch(ctx, "/vm", fcapi.VMState{State: state})
}

func (c *Client) doRequest(ctx context.Context, method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("round trip: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr fcapi.Error
		data, _ := io.ReadAll(resp.Body)
		if len(data) > 0 && json.Unmarshal(data, &apiErr) == nil && apiErr.FaultMessage != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: apiErr.FaultMessage}
		}
		return &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected body: %s", string(data))}
	}

	if resp.StatusCode != http.StatusNoContent && result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		}
	}

	return nil
}
