// Package nova implements the GraphQL client for the Nova number inventory.
// It owns connection pooling, transport-level retry, per-call timeouts, and
// correlation headers; callers see a single fetch-one-candidate operation
// plus a generic Do for mutations.
package nova

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/solvik/vanityscan/internal/metrics"
	"github.com/solvik/vanityscan/internal/scan"
)

// ErrNoCandidate indicates a structurally valid response that carried no
// phone number. The scheduling layer treats it like any transient failure.
var ErrNoCandidate = errors.New("no candidate returned")

const availableNumbersQuery = `query AvailablePhoneNumbers($input: SearchPhoneNumber) {
  availablePhoneNumbers(input: $input) {
    phoneNumber
    type
    __typename
  }
}`

// Config holds client construction knobs.
type Config struct {
	Endpoint  string
	Origin    string
	UserAgent string
	// Timeout bounds each individual call, including retries' single
	// attempts.
	Timeout time.Duration
	// Concurrency sizes the connection pool so pool exhaustion never
	// serializes the workers.
	Concurrency int
}

// Client is a pooled GraphQL client. It is safe for concurrent use; all
// workers share one Client so TCP connections are reused.
type Client struct {
	httpClient *http.Client
	cfg        Config
	retry      scan.RetryPolicy
	ids        scan.IDGenerator
	logger     *zap.Logger
}

// NewClient constructs a Client with a transport sized to the configured
// concurrency.
func NewClient(cfg Config, retry scan.RetryPolicy, ids scan.IDGenerator, logger *zap.Logger) *Client {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          cfg.Concurrency * 2,
		MaxIdleConnsPerHost:   cfg.Concurrency,
		MaxConnsPerHost:       cfg.Concurrency * 2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		ForceAttemptHTTP2:     true,
	}
	return &Client{
		httpClient: &http.Client{Transport: transport},
		cfg:        cfg,
		retry:      retry,
		ids:        ids,
		logger:     logger,
	}
}

type graphqlRequest struct {
	OperationName string `json:"operationName"`
	Variables     any    `json:"variables"`
	Query         string `json:"query"`
}

// Do posts one GraphQL operation and returns the raw response body. Retry
// with backoff is applied for rate-limit and server-error statuses and for
// transport failures; unrecoverable statuses fail immediately.
func (c *Client) Do(ctx context.Context, operationName, query string, variables any) ([]byte, error) {
	payload, err := json.Marshal(graphqlRequest{
		OperationName: operationName,
		Variables:     variables,
		Query:         query,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", operationName, err)
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		body, retryable, err := c.doOnce(ctx, payload)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable || !c.retry.ShouldRetry(err, attempt) {
			return nil, fmt.Errorf("%s: %w", operationName, lastErr)
		}
		metrics.ObserveQueryRetry()
		c.logger.Debug("retrying graphql call",
			zap.String("operation", operationName),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", operationName, ctx.Err())
		case <-time.After(c.retry.Backoff(attempt)):
		}
	}
}

// doOnce performs a single attempt with a fresh timeout and a fresh
// correlation id. The bool reports whether the failure is retry-worthy.
func (c *Client) doOnce(ctx context.Context, payload []byte) ([]byte, bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeouts and connection failures are transient.
		return nil, true, fmt.Errorf("post: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		return nil, c.retry.RetryableStatus(resp.StatusCode), err
	}
	return body, false, nil
}

// setHeaders applies the static base headers plus the per-call correlation
// header. The correlation value must be fresh on every call, never reused
// for the session.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "is-IS")
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Origin != "" {
		req.Header.Set("Origin", c.cfg.Origin)
		req.Header.Set("Referer", c.cfg.Origin+"/")
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if c.ids != nil {
		if id, err := c.ids.NewID(); err == nil {
			req.Header.Set("Request-Context", "appId=cid-v1:"+id)
		}
	}
}

// FetchCandidate queries the inventory for one available phone number. It
// implements scan.Source. A response with no numbers returns ErrNoCandidate.
func (c *Client) FetchCandidate(ctx context.Context) (string, []byte, error) {
	variables := map[string]any{
		"input": map[string]any{
			"count": 1,
			"type":  "Normal",
		},
	}
	raw, err := c.Do(ctx, "AvailablePhoneNumbers", availableNumbersQuery, variables)
	if err != nil {
		return "", nil, fmt.Errorf("query available numbers: %w", err)
	}

	var resp struct {
		Data struct {
			AvailablePhoneNumbers []struct {
				PhoneNumber string `json:"phoneNumber"`
			} `json:"availablePhoneNumbers"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", nil, fmt.Errorf("decode available numbers: %w", err)
	}
	numbers := resp.Data.AvailablePhoneNumbers
	if len(numbers) == 0 || numbers[0].PhoneNumber == "" {
		return "", nil, ErrNoCandidate
	}
	return numbers[0].PhoneNumber, raw, nil
}
