// internal/common/http/client.go
package http

import (
	"context"
	"net/http"
	"time"
)

type Client struct {
	httpClient *http.Client
	apiKey     string
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewAuthenticatedClient returns a client that attaches a bearer token to every request.
func NewAuthenticatedClient(timeout time.Duration, apiKey string) *Client {
	c := NewClient(timeout)
	c.apiKey = apiKey
	return c
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.apiKey != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return c.httpClient.Do(req)
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	return c.Do(req)
}
