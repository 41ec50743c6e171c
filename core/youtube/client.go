// Package youtube is a thin client for the YouTube Data API v3, covering
// the two endpoints discovery needs: video search and batch video details.
package youtube

import (
	"net/http"
	"time"
)

// Client talks to the YouTube Data API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client. baseURL is overridable for tests;
// an empty string selects the real API.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/youtube/v3"
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
	}
}

// HasAPIKey reports whether the client was configured with a key.
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

// SetTimeout sets the request timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}
