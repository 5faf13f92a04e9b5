// Package client talks to a running donation desk over HTTP.
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

	"github.com/garyjia/donation-desk/internal/form"
)

// APIError is a non-2xx answer from the desk
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("desk returned %d: %s", e.Status, e.Message)
}

// Client implements form.Caller against the /api/method endpoint and fetches
// record snapshots from the desk.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for the desk at baseURL. token may be empty when the
// desk runs without session signing.
func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Call implements form.Caller
func (c *Client) Call(ctx context.Context, req form.CallRequest) (*form.CallResponse, error) {
	body, err := json.Marshal(req.Args)
	if err != nil {
		return nil, fmt.Errorf("encode args: %w", err)
	}
	if req.Args == nil {
		body = nil
	}

	path := fmt.Sprintf("/api/method/%s/%s/%s",
		url.PathEscape(req.Doctype), url.PathEscape(req.Name), url.PathEscape(req.Method))

	var resp form.CallResponse
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchRecord returns the current snapshot of a document
func (c *Client) FetchRecord(ctx context.Context, doctype, name string) (*form.Record, error) {
	path := fmt.Sprintf("/desk/%s/%s", url.PathEscape(doctype), url.PathEscape(name))

	var envelope struct {
		Data struct {
			Record *form.Record `json:"record"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data.Record == nil {
		return nil, fmt.Errorf("desk returned no record for %s %s", doctype, name)
	}
	return envelope.Data.Record, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error != "" {
			msg = envelope.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
