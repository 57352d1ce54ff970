package procurement

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/jafarshop/procurement/internal/config"
	"github.com/jafarshop/procurement/internal/domain"
	"github.com/jafarshop/procurement/internal/locale"
	apperrors "github.com/jafarshop/procurement/pkg/errors"
)

const maxErrorBody = 1 << 20

// TokenSource supplies the bearer token; "" means no session.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	maxRetries int
	logger     *zap.Logger
}

// NewClient creates a new procurement API client
func NewClient(cfg config.APIConfig, tokens TokenSource, logger *zap.Logger) *Client {
	// Normalize base URL - remove trailing slashes
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker:    newBreaker(cfg.Breaker, logger),
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}
}

func newBreaker(cfg config.BreakerConfig, logger *zap.Logger) *gobreaker.CircuitBreaker[*http.Response] {
	settings := gobreaker.Settings{
		Name:        "procurement-api",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if cfg.MinRequests == 0 || counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			breakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	}
	breakerState.WithLabelValues(settings.Name).Set(0)
	return gobreaker.NewCircuitBreaker[*http.Response](settings)
}

// statusError marks a 5xx response so the breaker counts it as a failure.
type statusError struct {
	status int
	body   []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d", e.status)
}

type call struct {
	method   string
	path     string
	endpoint string
	query    url.Values
	body     any
	headers  map[string]string
}

// do executes a call and decodes a 2xx body into out (when out is non-nil).
// Every failure comes back as *apperrors.APIError.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	var payload []byte
	if cl.body != nil {
		var err error
		payload, err = json.Marshal(cl.body)
		if err != nil {
			return apperrors.Classify(fmt.Errorf("failed to marshal request: %w", err))
		}
	}

	attempts := 1
	if cl.method == http.MethodGet {
		attempts += c.maxRetries
	}

	start := time.Now()
	var resp *http.Response
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * 100 * time.Millisecond
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				err = ctx.Err()
			}
			if ctx.Err() != nil {
				break
			}
		}

		resp, err = c.execute(ctx, cl, payload)
		if err == nil || !retryable(err) {
			break
		}
		c.logger.Debug("Retrying API request",
			zap.String("endpoint", cl.endpoint),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	if err != nil {
		apiErr := c.translate(err)
		observe(cl, apiErr.Kind.String(), start)
		c.logger.Warn("API request failed",
			zap.String("method", cl.method),
			zap.String("endpoint", cl.endpoint),
			zap.String("kind", apiErr.Kind.String()),
			zap.Int("status", apiErr.Status),
			zap.Error(err),
		)
		return apiErr
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := mapStatus(resp.StatusCode, body)
		observe(cl, apiErr.Kind.String(), start)
		c.logger.Warn("API request rejected",
			zap.String("method", cl.method),
			zap.String("endpoint", cl.endpoint),
			zap.Int("status", resp.StatusCode),
		)
		return apiErr
	}

	observe(cl, "ok", start)
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &apperrors.APIError{
			Kind:    apperrors.KindServer,
			Status:  resp.StatusCode,
			Message: locale.MsgGenericError,
			Err:     fmt.Errorf("failed to unmarshal response: %w", err),
		}
	}
	return nil
}

func (c *Client) execute(ctx context.Context, cl call, payload []byte) (*http.Response, error) {
	u := c.baseURL + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}

	var body io.Reader = http.NoBody
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	for k, v := range cl.headers {
		req.Header.Set(k, v)
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read session token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			defer resp.Body.Close()
			data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			return nil, &statusError{status: resp.StatusCode, body: data}
		}
		return resp, nil
	})
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.status != http.StatusNotImplemented
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func (c *Client) translate(err error) *apperrors.APIError {
	var se *statusError
	if errors.As(err, &se) {
		return mapStatus(se.status, se.body)
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &apperrors.APIError{
			Kind:    apperrors.KindTransport,
			Message: locale.MsgCannotConnect,
			Detail:  locale.MsgCheckServer,
			Err:     err,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &apperrors.APIError{
			Kind:    apperrors.KindTransport,
			Message: locale.MsgTimeout,
			Detail:  locale.MsgCheckServer,
			Err:     err,
		}
	}

	return apperrors.Classify(err)
}

// mapStatus turns an HTTP error status and body into an APIError. Fixed
// messages for 401, 403, 404 and 500 take precedence over the body.
func mapStatus(status int, body []byte) *apperrors.APIError {
	apiErr := &apperrors.APIError{
		Status:  status,
		Message: locale.MsgGenericError,
	}

	switch {
	case status == http.StatusUnauthorized:
		apiErr.Kind = apperrors.KindAuth
		apiErr.Message = locale.MsgSessionExpired
		apiErr.Detail = locale.MsgLoginAgain
		return apiErr
	case status == http.StatusForbidden:
		apiErr.Kind = apperrors.KindValidation
		apiErr.Message = locale.MsgAccessDenied
		apiErr.Detail = locale.MsgNoPermission
		return apiErr
	case status == http.StatusNotFound:
		apiErr.Kind = apperrors.KindNotFound
		apiErr.Message = locale.MsgNotFound
		apiErr.Detail = locale.MsgNotAvailable
		return apiErr
	case status == http.StatusInternalServerError:
		apiErr.Kind = apperrors.KindServer
		apiErr.Message = locale.MsgServerError
		apiErr.Detail = locale.MsgServerRetry
		return apiErr
	case status >= 500:
		apiErr.Kind = apperrors.KindServer
		apiErr.Message = locale.MsgServerError
	default:
		apiErr.Kind = apperrors.KindValidation
	}

	var eb errorBody
	if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
		apiErr.Message = eb.Error
		apiErr.Detail = eb.Message
	}
	return apiErr
}

// Health pings GET /health
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, call{method: http.MethodGet, path: PathHealth, endpoint: PathHealth}, nil)
}

// Login authenticates and returns the token and profile. It does not
// persist them; callers decide where the session lives.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var resp LoginResponse
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     PathLogin,
		endpoint: PathLogin,
		body:     LoginRequest{Username: username, Password: password},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, &apperrors.APIError{
			Kind:    apperrors.KindServer,
			Message: locale.MsgInvalidResponse,
		}
	}
	return &resp, nil
}

// Register creates a user account
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	var resp struct {
		Message string      `json:"message"`
		User    domain.User `json:"user"`
	}
	err := c.do(ctx, call{method: http.MethodPost, path: PathRegister, endpoint: PathRegister, body: req}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// ListSuppliers fetches all suppliers
func (c *Client) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	var resp dataEnvelope[[]domain.Supplier]
	if err := c.do(ctx, call{method: http.MethodGet, path: PathSuppliers, endpoint: PathSuppliers}, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return []domain.Supplier{}, nil
	}
	return resp.Data, nil
}

// CreateSupplier creates a supplier
func (c *Client) CreateSupplier(ctx context.Context, in SupplierInput) (*domain.Supplier, error) {
	var resp dataEnvelope[domain.Supplier]
	err := c.do(ctx, call{method: http.MethodPost, path: PathSuppliers, endpoint: PathSuppliers, body: in}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// UpdateSupplier replaces a supplier's fields
func (c *Client) UpdateSupplier(ctx context.Context, id int64, in SupplierInput) (*domain.Supplier, error) {
	var resp dataEnvelope[domain.Supplier]
	err := c.do(ctx, call{
		method:   http.MethodPut,
		path:     PathSuppliers + "/" + strconv.FormatInt(id, 10),
		endpoint: PathSuppliers + "/:id",
		body:     in,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// DeleteSupplier deletes a supplier
func (c *Client) DeleteSupplier(ctx context.Context, id int64) error {
	return c.do(ctx, call{
		method:   http.MethodDelete,
		path:     PathSuppliers + "/" + strconv.FormatInt(id, 10),
		endpoint: PathSuppliers + "/:id",
	}, nil)
}

// ListItems fetches the catalog, scoped to a supplier when supplierID > 0
func (c *Client) ListItems(ctx context.Context, supplierID int64) ([]domain.CatalogItem, error) {
	cl := call{method: http.MethodGet, path: PathItems, endpoint: PathItems}
	if supplierID > 0 {
		cl.query = url.Values{"supplierId": []string{strconv.FormatInt(supplierID, 10)}}
	}

	var resp dataEnvelope[[]domain.CatalogItem]
	if err := c.do(ctx, cl, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return []domain.CatalogItem{}, nil
	}
	return resp.Data, nil
}

// CreateItem creates a catalog item
func (c *Client) CreateItem(ctx context.Context, in ItemInput) (*domain.CatalogItem, error) {
	var resp dataEnvelope[domain.CatalogItem]
	err := c.do(ctx, call{method: http.MethodPost, path: PathItems, endpoint: PathItems, body: in}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// UpdateItem replaces a catalog item's fields
func (c *Client) UpdateItem(ctx context.Context, id int64, in ItemInput) (*domain.CatalogItem, error) {
	var resp dataEnvelope[domain.CatalogItem]
	err := c.do(ctx, call{
		method:   http.MethodPut,
		path:     PathItems + "/" + strconv.FormatInt(id, 10),
		endpoint: PathItems + "/:id",
		body:     in,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// DeleteItem deletes a catalog item
func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	return c.do(ctx, call{
		method:   http.MethodDelete,
		path:     PathItems + "/" + strconv.FormatInt(id, 10),
		endpoint: PathItems + "/:id",
	}, nil)
}

// CreatePurchaseOrder submits an order. Each call carries a fresh
// Idempotency-Key so a proxy retry cannot create the order twice.
func (c *Client) CreatePurchaseOrder(ctx context.Context, req domain.PurchaseOrderRequest) (*domain.PurchaseOrder, error) {
	var resp purchasingEnvelope
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     PathPurchasings,
		endpoint: PathPurchasings,
		body:     req,
		headers:  map[string]string{"Idempotency-Key": uuid.NewString()},
	}, &resp)
	if err != nil {
		return nil, err
	}

	order := resp.Purchasing
	order.Details = resp.Details
	return &order, nil
}
