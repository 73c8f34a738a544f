package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the production API endpoint.
	DefaultBaseURL = "https://api.gofile.io"

	// DefaultUserAgent matches what the host's anti-abuse layer expects
	// from a browser-originated request.
	DefaultUserAgent = "Mozilla/5.0"

	// wtParam is the fixed client-identifying query parameter the content
	// API requires.
	wtParam = "4fd6sg89d7s6"
)

// Options configures the API client.
type Options struct {
	// BaseURL overrides the API endpoint. Default: DefaultBaseURL.
	BaseURL string

	// UserAgent is sent with every request. Default: DefaultUserAgent.
	UserAgent string

	// Timeout for individual API requests.
	// Default: 30s
	Timeout time.Duration
}

// Client talks to the GoFile API.
type Client struct {
	base      string
	userAgent string
	hc        *http.Client
}

// NewClient creates an API client with the given options.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	return &Client{
		base:      strings.TrimSuffix(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		hc:        &http.Client{Timeout: opts.Timeout},
	}
}

// ParseShareURL extracts the content id from a share URL. The id must be
// the final path segment and the segment before it must be the "d"
// marker; anything else, including a trailing slash, is rejected with
// ErrMalformedURL before any network call.
func ParseShareURL(raw, password string) (ShareTarget, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return ShareTarget{}, fmt.Errorf("%w: %s", ErrMalformedURL, raw)
	}

	segments := strings.Split(u.Path, "/")
	if len(segments) < 2 {
		return ShareTarget{}, fmt.Errorf("%w: %s", ErrMalformedURL, raw)
	}

	id := segments[len(segments)-1]
	if segments[len(segments)-2] != "d" || id == "" {
		return ShareTarget{}, fmt.Errorf("%w: %s", ErrMalformedURL, raw)
	}

	return ShareTarget{ContentID: id, Password: password}, nil
}

// envelope is the common {status, data} wrapper on every API response.
type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// CreateAccount creates a guest account and returns its session token.
// A failure is fatal to the session; there is no retry.
func (c *Client) CreateAccount(ctx context.Context) (Credential, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/accounts", nil)
	if err != nil {
		return Credential{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "*/*")

	env, err := c.do(req)
	if err != nil {
		return Credential{}, err
	}
	if env.Status != "ok" {
		return Credential{}, &AuthError{Status: env.Status}
	}

	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return Credential{}, fmt.Errorf("decode account response: %w", err)
	}
	if data.Token == "" {
		return Credential{}, &AuthError{Status: env.Status}
	}

	return Credential{Token: data.Token}, nil
}

// Content looks up one node. passwordHash is the hex SHA-256 of the share
// password, or "" for unprotected shares.
func (c *Client) Content(ctx context.Context, id string, cred Credential, passwordHash string) (*Content, error) {
	q := url.Values{}
	q.Set("wt", wtParam)
	q.Set("cache", "true")
	if passwordHash != "" {
		q.Set("password", passwordHash)
	}
	lookupURL := c.base + "/contents/" + url.PathEscape(id) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Authorization", "Bearer "+cred.Token)

	env, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if env.Status != "ok" {
		return nil, &ResolutionError{URL: lookupURL, Status: env.Status}
	}

	var content Content
	if err := json.Unmarshal(env.Data, &content); err != nil {
		return nil, fmt.Errorf("decode content response: %w", err)
	}

	return &content, nil
}

func (c *Client) do(req *http.Request) (*envelope, error) {
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("api: unexpected status code %d from %s", resp.StatusCode, req.URL)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &env, nil
}
