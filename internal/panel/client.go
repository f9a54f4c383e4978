// Package panel implements the REST client for the external 3x-ui panel.
//
// Authentication yields an opaque session cookie that is stored alongside the
// user's credentials and replayed on every call. The panel never signals
// expiry up front; an expired session surfaces as a failed call.
package panel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"xuibot/core/logger"
	"xuibot/core/telegram/netutil"
)

const (
	defaultDialTimeout     = 5 * time.Second
	defaultTLSHandshake    = 5 * time.Second
	defaultIdleConnTimeout = 30 * time.Second
	defaultResponseTimeout = 10 * time.Second
	defaultClientTimeout   = 30 * time.Second
	defaultRetryAttempts   = 2
	defaultRetryBackoff    = 1 * time.Second
)

// Options tunes the shared panel HTTP client.
type Options struct {
	RequestTimeout time.Duration
	RetryAttempts  int
}

// BuildHTTPClient returns an HTTP client tuned for panel API calls, with
// transient network errors retried transparently.
func BuildHTTPClient(opts Options) *http.Client {
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}
	attempts := opts.RetryAttempts
	if attempts < 0 {
		attempts = defaultRetryAttempts
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshake,
		ResponseHeaderTimeout: defaultResponseTimeout,
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &retryTransport{
			base:       transport,
			maxRetries: attempts,
			backoff:    defaultRetryBackoff,
		},
	}
}

type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	backoff    time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	attempts := t.maxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		currReq := req
		if attempt > 1 {
			currReq = req.Clone(req.Context())
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				currReq.Body = body
			} else if req.Body != nil {
				return nil, lastErr
			}
		}

		resp, err := base.RoundTrip(currReq)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !netutil.ShouldRetry(err) || attempt == attempts {
			break
		}

		delay := t.backoff * time.Duration(attempt)
		timer := time.NewTimer(delay)
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}
	}

	return nil, lastErr
}

// Login authenticates against the panel and returns the session cookie in
// "name=value" form. A rejected login or a response without a session cookie
// yields *AuthError.
func Login(ctx context.Context, httpc *http.Client, panelURL, username, password string) (string, error) {
	if httpc == nil {
		httpc = BuildHTTPClient(Options{})
	}
	loginURL := strings.TrimRight(panelURL, "/") + "/login"

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("panel login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := httpc.Do(req)
	if err != nil {
		logger.LogEvent(ctx, logger.Panel, slog.LevelError, "panel.login",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return "", fmt.Errorf("panel unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &AuthError{Msg: "invalid username or password"}
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", &AuthError{Msg: "unexpected login response"}
	}
	if !body.Success {
		msg := body.Msg
		if msg == "" {
			msg = "panel rejected the login"
		}
		return "", &AuthError{Msg: msg}
	}

	session := sessionCookie(resp.Cookies())
	if session == "" {
		return "", &AuthError{Msg: "session cookie not found in login response"}
	}

	logger.LogEvent(ctx, logger.Panel, slog.LevelInfo, "panel.login",
		slog.String("status", "ok"),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return session, nil
}

// sessionCookie picks the panel session cookie. 3x-ui historically used
// "session" and newer builds use "3x-ui".
func sessionCookie(cookies []*http.Cookie) string {
	for _, c := range cookies {
		if c.Name == "session" || c.Name == "3x-ui" {
			return c.Name + "=" + c.Value
		}
	}
	return ""
}

// Client calls the panel API on behalf of one user's stored session.
type Client struct {
	baseURL string
	session string
	httpc   *http.Client
}

// NewClient binds a session cookie to the panel base URL.
func NewClient(baseURL, session string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = BuildHTTPClient(Options{})
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
		httpc:   httpc,
	}
}

// ListInbounds returns the panel's inbound listeners in panel order.
func (c *Client) ListInbounds(ctx context.Context) ([]Inbound, error) {
	var out inboundsResponse
	if err := c.request(ctx, http.MethodGet, "/panel/api/inbounds/list", nil, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &APIError{Msg: apiFailureMsg(out.Msg, "inbound listing failed")}
	}
	return out.Obj, nil
}

// AddClient attaches a client record to an inbound. A panel-reported failure
// is returned as *APIError with the panel's message.
func (c *Client) AddClient(ctx context.Context, inboundID int64, rec ClientRecord) error {
	settings, err := json.Marshal(map[string]any{"clients": []ClientRecord{rec}})
	if err != nil {
		return fmt.Errorf("encode client settings: %w", err)
	}
	payload := map[string]any{
		"id": inboundID,
		// The panel expects settings as a JSON string, not a nested object.
		"settings": string(settings),
	}

	var out apiResponse
	if err := c.request(ctx, http.MethodPost, "/panel/api/inbounds/addClient", payload, &out); err != nil {
		return err
	}
	if !out.Success {
		return &APIError{Msg: apiFailureMsg(out.Msg, "adding client failed")}
	}

	logger.LogEvent(ctx, logger.Panel, slog.LevelDebug, "panel.add_client",
		slog.Int64("inbound_id", inboundID),
	)
	return nil
}

func (c *Client) request(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode panel request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("panel request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cookie", c.session)

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		logger.LogEvent(ctx, logger.Panel, slog.LevelError, "panel.request",
			slog.String("status", "fail"),
			slog.String("payload", path),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("panel unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Status: resp.StatusCode,
			Msg:    fmt.Sprintf("panel API request failed: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Status: resp.StatusCode, Msg: "invalid panel response body"}
	}

	logger.LogEvent(ctx, logger.Panel, slog.LevelDebug, "panel.request",
		slog.String("payload", path),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}

func apiFailureMsg(msg, fallback string) string {
	if strings.TrimSpace(msg) == "" {
		return fallback
	}
	return msg
}
