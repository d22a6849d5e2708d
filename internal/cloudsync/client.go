// Package cloudsync backs AppState up to a flat key-value cloud store and
// restores it, using a split core/archive chunk layout with a debounced
// background uploader.
package cloudsync

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

	"lifecoach/internal/logging"
)

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// Client is a minimal HTTP key-value client implementing types.CloudStore.
// Records live under /v0/records/<id>; PUT upserts, GET fetches, 404 means
// absent.
type Client struct {
	BaseURL     string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// NewClient creates a client with sane defaults.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL:     baseURL,
		BearerToken: token,
		Timeout:     30 * time.Second,
	}
}

type record struct {
	ID   string `json:"id"`
	Data string `json:"data"`
}

// Upsert writes the chunk under id, replacing any previous value.
func (c *Client) Upsert(ctx context.Context, id string, data []byte) error {
	logging.SyncDebug("upsert %s (%d bytes)", id, len(data))
	return c.do(ctx, http.MethodPut, "v0/records/"+url.PathEscape(id), record{ID: id, Data: string(data)}, nil)
}

// Get fetches the chunk under id. Absence is found=false, not an error.
func (c *Client) Get(ctx context.Context, id string) ([]byte, bool, error) {
	var rec record
	err := c.do(ctx, http.MethodGet, "v0/records/"+url.PathEscape(id), nil, &rec)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(rec.Data), true, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	u := strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, u, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
