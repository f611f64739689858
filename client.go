package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const requestTimeout = 30 * time.Second

// upstreamError is a non-2xx response from the twitterapi.io backend,
// carrying the HTTP status and the most specific message available.
type upstreamError struct {
	StatusCode int
	Message    string
}

func (e *upstreamError) Error() string {
	return fmt.Sprintf("upstream error %d: %s", e.StatusCode, e.Message)
}

// Client is a thin HTTP executor against the twitterapi.io REST API.
// It attaches the API key header and, once a login captured one, the
// session cookie header.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	sessions   *SessionStore
}

// NewClient builds a client from configuration. An invalid proxy URL is
// reported and ignored rather than failing startup.
func NewClient(cfg Config, sessions *SessionStore) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			GetLogger().Warn("invalid TWITTERAPI_PROXY_URL, ignoring: %v", err)
		} else {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Transport: transport, Timeout: requestTimeout},
		sessions:   sessions,
	}
}

// Get performs a GET against path with the given query parameters and
// decodes the JSON response into a generic map.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (map[string]interface{}, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// Post performs a POST with a JSON body and decodes the JSON response.
func (c *Client) Post(ctx context.Context, path string, payload interface{}) (map[string]interface{}, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (map[string]interface{}, error) {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if cookie := c.sessions.Get(); cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &upstreamError{StatusCode: http.StatusInternalServerError, Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &upstreamError{StatusCode: resp.StatusCode, Message: err.Error()}
	}

	var decoded map[string]interface{}
	if len(data) > 0 {
		// Upstream error bodies are still JSON; decode failures on error
		// responses fall back to the raw status text.
		_ = json.Unmarshal(data, &decoded)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &upstreamError{StatusCode: resp.StatusCode, Message: upstreamMessage(decoded, resp.Status)}
	}
	if decoded == nil {
		decoded = map[string]interface{}{}
	}
	return decoded, nil
}

// upstreamMessage picks the most specific error message out of an
// upstream error body.
func upstreamMessage(body map[string]interface{}, fallback string) string {
	for _, key := range []string{"msg", "message", "error"} {
		if v, ok := body[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return fallback
}
