// Package client calls the generation proxy over HTTP. A Client allows one
// outstanding Generate call at a time.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/upb/genproxy/models"
)

const defaultTimeout = 2 * time.Minute

// ErrPleaseWait is returned when Generate is called while another call is pending
var ErrPleaseWait = errors.New("please wait for the current response")

// APIError is a non-2xx answer from the proxy
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("proxy returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to one proxy base URL
type Client struct {
	baseURL    string
	httpClient *http.Client
	guard      *Guard
}

// New creates a client. A nil httpClient gets a default with a two minute timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		guard:      NewGuard(),
	}
}

// Generate sends a prompt with an optional provider preference ("" or "auto" for the chain).
// It fails with ErrPleaseWait, without any network call, while a previous call is pending.
func (c *Client) Generate(ctx context.Context, prompt, provider string) (*models.GenerateResponse, error) {
	release, ok := c.guard.TryAcquire()
	if !ok {
		return nil, ErrPleaseWait
	}
	defer release()

	body, err := json.Marshal(models.GenerateRequest{Prompt: prompt, Provider: provider})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out models.GenerateResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ping checks that the proxy is up
func (c *Client) Ping(ctx context.Context) (*models.PingResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ping", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	var out models.PingResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Pending reports whether a Generate call is in flight
func (c *Client) Pending() bool {
	return c.guard.Busy()
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp models.ErrorResponse
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
