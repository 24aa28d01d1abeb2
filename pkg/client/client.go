package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bank-admin/pkg/account"
	"bank-admin/pkg/logging"
	"bank-admin/pkg/metrics"

	"github.com/dghubble/sling"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultMaxIdleConns    = 10
	defaultIdleConnTimeout = 30 * time.Second
)

// DefaultBaseURL is where the accounts API listens in a local setup.
const DefaultBaseURL = "http://localhost:8080/api/accounts"

// RequestIDHeader carries a per-request identifier to the backend.
const RequestIDHeader = "X-Request-ID"

// Config holds configuration for the accounts API client.
type Config struct {
	// BaseURL is the accounts collection URL, e.g. http://host:8080/api/accounts
	BaseURL string `toml:"base_url" env:"BANKADMIN_API_BASE" validate:"required,url"`

	// Timeout bounds a single HTTP exchange. 0 means no client-level timeout.
	Timeout time.Duration `toml:"timeout" env:"BANKADMIN_API_TIMEOUT" validate:"min=0"`

	// UserAgent is sent with every request
	UserAgent string `toml:"user_agent" env:"BANKADMIN_API_USER_AGENT"`

	// HTTPClient overrides the transport; used by tests
	HTTPClient *http.Client `toml:"-"`
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Timeout:   10 * time.Second,
		UserAgent: "bank-admin/1.0",
	}
}

// Client is the accounts API client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	collection *sling.Sling
	items      *sling.Sling
	metrics    metrics.MetricsCollector
	logger     *logging.Logger
}

// errorBody is the error shape produced by the accounts API:
// {"message": ...} for 404/500 and {"errors": {field: msg}} for 400.
type errorBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// New creates a client for the accounts API.
func New(config Config) (*Client, error) {
	return NewWithMetrics(config, metrics.NoOpCollector{})
}

// NewWithMetrics creates a client with a custom metrics collector.
func NewWithMetrics(config Config, metricsCollector metrics.MetricsCollector) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("client: invalid base url %q", config.BaseURL)
	}
	if metricsCollector == nil {
		metricsCollector = metrics.NoOpCollector{}
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				MaxIdleConns:    defaultMaxIdleConns,
				IdleConnTimeout: defaultIdleConnTimeout,
			},
		}
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = DefaultConfig().UserAgent
	}

	root := sling.New().Client(httpClient).
		Set("Accept", "application/json").
		Set("User-Agent", userAgent)

	return &Client{
		baseURL:    base,
		collection: root.New().Base(base),
		items:      root.New().Base(base + "/"),
		metrics:    metricsCollector,
		logger:     logging.Global().Named("client"),
	}, nil
}

// BaseURL returns the accounts collection URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping implements AccountsAPI.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, OpPing, c.collection.New().Get(""), nil, nil)
	return err
}

// List implements AccountsAPI.
func (c *Client) List(ctx context.Context) ([]account.Account, error) {
	var raw json.RawMessage
	if _, err := c.do(ctx, OpList, c.collection.New().Get(""), &raw, okStatus); err != nil {
		return nil, err
	}

	// Anything but an array is treated as an empty listing
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return []account.Account{}, nil
	}

	var accounts []account.Account
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, OpList, err)
	}
	return accounts, nil
}

// Get implements AccountsAPI.
func (c *Client) Get(ctx context.Context, id int64) (*account.Account, error) {
	var a account.Account
	if _, err := c.do(ctx, OpGet, c.items.New().Get(itemPath(id)), &a, okStatus); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create implements AccountsAPI. Only 201 Created is a success.
func (c *Client) Create(ctx context.Context, req account.CreateRequest) (*account.Account, error) {
	var a account.Account
	s := c.collection.New().Post("").BodyJSON(req)
	if _, err := c.do(ctx, OpCreate, s, &a, exactStatus(http.StatusCreated)); err != nil {
		return nil, err
	}
	return &a, nil
}

// Update implements AccountsAPI.
func (c *Client) Update(ctx context.Context, id int64, req account.UpdateRequest) (*account.Account, error) {
	var a account.Account
	s := c.items.New().Put(itemPath(id)).BodyJSON(req)
	if _, err := c.do(ctx, OpUpdate, s, &a, okStatus); err != nil {
		return nil, err
	}
	return &a, nil
}

// Delete implements AccountsAPI. Only 204 No Content is a success.
func (c *Client) Delete(ctx context.Context, id int64) error {
	_, err := c.do(ctx, OpDelete, c.items.New().Delete(itemPath(id)), nil, exactStatus(http.StatusNoContent))
	return err
}

func itemPath(id int64) string {
	return strconv.FormatInt(id, 10)
}

// statusCheck decides whether a status code is the operation's success.
type statusCheck func(code int) bool

func okStatus(code int) bool {
	return code >= 200 && code <= 299
}

func exactStatus(want int) statusCheck {
	return func(code int) bool { return code == want }
}

// do executes the request built by s. A nil check accepts any response,
// which is what Ping needs.
func (c *Client) do(ctx context.Context, op string, s *sling.Sling, successV interface{}, check statusCheck) (*http.Response, error) {
	start := time.Now()
	requestID := uuid.NewString()
	logger := c.logger.ForRequest(requestID)

	req, err := s.Set(RequestIDHeader, requestID).Request()
	if err != nil {
		return nil, fmt.Errorf("client: build %s request: %w", op, err)
	}
	req = req.WithContext(ctx)
	target := req.URL.String()

	var failure errorBody
	resp, err := s.Do(req, successV, &failure)
	duration := time.Since(start)

	err = c.interpret(op, target, requestID, resp, err, &failure, check)
	c.metrics.RecordRequest(op, ClassifyError(err), duration)

	fields := []zap.Field{
		zap.String("operation", op),
		zap.String("method", req.Method),
		zap.String("url", target),
		zap.Duration("duration", duration),
	}
	if resp != nil {
		fields = append(fields, zap.Int("status", resp.StatusCode))
	}
	switch {
	case err == nil:
		logger.Debug("accounts api call", fields...)
	case IsUnreachable(err) || IsTimeout(err):
		logger.Warn("accounts api unreachable", append(fields, zap.Error(err))...)
	default:
		logger.Info("accounts api call failed", append(fields, zap.Error(err))...)
	}

	return resp, err
}

// interpret turns the raw outcome of sling's Do into the client's errors.
func (c *Client) interpret(op, target, requestID string, resp *http.Response, doErr error, failure *errorBody, check statusCheck) error {
	if resp == nil {
		if doErr == nil {
			doErr = errors.New("no response")
		}
		var netErr net.Error
		if errors.Is(doErr, context.DeadlineExceeded) || (errors.As(doErr, &netErr) && netErr.Timeout()) {
			return fmt.Errorf("%w: %s: %v", ErrTimeout, op, doErr)
		}
		return &TransportError{Op: op, URL: target, Err: doErr}
	}

	if check == nil {
		return nil
	}

	if check(resp.StatusCode) {
		if doErr != nil {
			return fmt.Errorf("%w: %s: %v", ErrDecode, op, doErr)
		}
		return nil
	}

	apiErr := &APIError{
		Op:         op,
		URL:        target,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		RequestID:  requestID,
	}
	// Sling only decodes the failure body for non-2xx responses; a 2xx
	// that is not this operation's success decoded into successV instead.
	if okStatus(resp.StatusCode) {
		apiErr.Decoded = doErr == nil
	} else if doErr == nil {
		apiErr.Decoded = true
		apiErr.Message = failure.Message
		apiErr.FieldErrors = failure.Errors
	}
	return apiErr
}
