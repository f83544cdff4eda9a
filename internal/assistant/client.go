package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/Simplici0/paint.works/internal/metrics"
)

const (
	cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

	methodCreateSession = "create_session"
	methodStreamQuery   = "stream_query"

	maxResponseBytes = 8 << 20
)

var methodSuffix = regexp.MustCompile(`:[^/]+$`)

// Client talks to a hosted reasoning engine.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	backoff    func() retry.Backoff
}

type Option func(*Client)

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l.Named("assistant")
		}
	}
}

// WithTimeout bounds every request made by the client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithBackoff replaces the session creation retry policy. The function is
// called once per CreateSession since backoffs carry attempt state.
func WithBackoff(f func() retry.Backoff) Option {
	return func(c *Client) {
		c.backoff = f
	}
}

func defaultBackoff() retry.Backoff {
	return retry.WithMaxRetries(3, retry.NewExponential(250*time.Millisecond))
}

// NewClient builds a client for the engine at rawURL. Requests carry bearer
// tokens from ts; a nil ts sends unauthenticated requests.
func NewClient(rawURL string, ts oauth2.TokenSource, opts ...Option) (*Client, error) {
	base, err := NormalizeBaseURL(rawURL)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{}
	if ts != nil {
		httpClient.Transport = &oauth2.Transport{Source: ts}
	}

	c := &Client{
		baseURL:    base,
		httpClient: httpClient,
		logger:     zap.NewNop(),
		backoff:    defaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewGoogleClient builds a client authenticated with application default
// credentials.
func NewGoogleClient(ctx context.Context, rawURL string, opts ...Option) (*Client, error) {
	ts, err := google.DefaultTokenSource(ctx, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("find default credentials: %w", err)
	}
	return NewClient(rawURL, ts, opts...)
}

// NormalizeBaseURL strips a trailing method suffix such as ":query" and
// moves v1 resources to v1beta1, where custom engine methods live.
func NormalizeBaseURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", fmt.Errorf("assistant url is empty")
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse assistant url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("assistant url %q must use http or https", rawURL)
	}
	if u.Host == "" {
		return "", fmt.Errorf("assistant url %q has no host", rawURL)
	}

	path := methodSuffix.ReplaceAllString(u.Path, "")
	path = strings.Replace(path, "/v1/", "/v1beta1/", 1)
	u.Path = strings.TrimRight(path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// BaseURL returns the normalized engine resource URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// post sends body as JSON to the engine method endpoint and returns the raw
// response body. Non-2xx answers become *ErrUpstream.
func (c *Client) post(ctx context.Context, method string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", method, err)
	}

	endpoint := c.baseURL + ":" + endpointFor(method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("calling reasoning engine", zap.String("method", method), zap.String("url", endpoint))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewErrUpstream(method, 0, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, NewErrUpstream(method, resp.StatusCode, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("reasoning engine returned an error",
			zap.String("method", method),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", data))
		return nil, NewErrUpstream(method, resp.StatusCode, fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(data))))
	}
	return data, nil
}

func endpointFor(method string) string {
	if method == methodStreamQuery {
		return "streamQuery"
	}
	return "query"
}

func observe(method string, err error) {
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeUpstreamError
	}
	metrics.IncreaseAssistantRequestsMetric(method, outcome)
}
