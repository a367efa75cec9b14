// Package client is a typed HTTP client for the storefront API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"decor-store/internal/model"
	"decor-store/internal/shipping"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// APIError is a non-2xx response of the API.
type APIError struct {
	Status        int
	Message       string
	Field         string
	CorrelationID string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("api: %d: %s: %s", e.Status, e.Field, e.Message)
	}
	return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
}

// UserMessage is the message the server meant for the shopper.
func (e *APIError) UserMessage() string { return e.Message }

// Unwrap lets callers test a 401 with errors.Is(err, model.ErrUnauthorized).
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return model.ErrUnauthorized
	}
	return nil
}

// Client talks to the storefront API.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger zerolog.Logger
}

// Option configures a Client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	cookieFile string
	timeout    time.Duration
	logger     zerolog.Logger
}

// WithHTTPClient uses hc for requests. Its Jar is replaced when a cookie file is set.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithCookieFile persists the session cookie in path.
func WithCookieFile(path string) Option {
	return func(o *options) { o.cookieFile = path }
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New creates a client for the API at baseURL, e.g. "http://localhost:5000".
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must include scheme and host", baseURL)
	}

	o := options{timeout: 15 * time.Second, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	hc := o.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: o.timeout}
	}
	if o.cookieFile != "" {
		jar, err := NewFileJar(o.cookieFile)
		if err != nil {
			return nil, err
		}
		hc.Jar = jar
	}

	return &Client{
		base:   base,
		http:   hc,
		logger: o.logger.With().Str("component", "api-client").Logger(),
	}, nil
}

// Products lists the catalogue.
func (c *Client) Products(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	q := url.Values{}
	setIf(q, "type", filter.Type)
	setIf(q, "room", filter.Room)
	setIf(q, "color", filter.Color)
	setIf(q, "search", filter.Search)
	if filter.BestSeller {
		q.Set("bestSeller", "true")
	}
	if filter.NewArrival {
		q.Set("newArrival", "true")
	}

	var products []model.Product
	if err := c.do(ctx, http.MethodGet, "/api/products", q, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Product fetches one product with its variants.
func (c *Client) Product(ctx context.Context, id int64) (*model.ProductWithVariants, error) {
	var p model.ProductWithVariants
	if err := c.do(ctx, http.MethodGet, "/api/products/"+strconv.FormatInt(id, 10), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Provinces lists the shipping provinces.
func (c *Client) Provinces(ctx context.Context) ([]model.Province, error) {
	var out []model.Province
	if err := c.do(ctx, http.MethodGet, "/api/shipping/provinces", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Cities lists the destinations of a province.
func (c *Client) Cities(ctx context.Context, provinceID string) ([]model.City, error) {
	var out []model.City
	if err := c.do(ctx, http.MethodGet, "/api/shipping/cities/"+url.PathEscape(provinceID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ShippingCost asks for the services of a courier.
func (c *Client) ShippingCost(ctx context.Context, req model.ShippingCostRequest) ([]model.CourierCosts, error) {
	var out []model.CourierCosts
	if err := c.do(ctx, http.MethodPost, "/api/shipping/cost", nil, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Quote returns the services of courier as priced options.
func (c *Client) Quote(ctx context.Context, origin, destination string, weightGrams float64, courier string) ([]shipping.ServiceOption, error) {
	costs, err := c.ShippingCost(ctx, model.ShippingCostRequest{
		Origin:      origin,
		Destination: destination,
		Weight:      weightGrams,
		Courier:     courier,
	})
	if err != nil {
		return nil, err
	}
	for _, cc := range costs {
		if strings.EqualFold(cc.Code, courier) {
			return shipping.ServiceOptionsFrom(cc), nil
		}
	}
	return []shipping.ServiceOption{}, nil
}

// CreateOrder places an order for the logged-in shopper.
func (c *Client) CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error) {
	var order model.Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", nil, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Order fetches one of the shopper's orders.
func (c *Client) Order(ctx context.Context, id uuid.UUID) (*model.OrderWithItems, error) {
	var out model.OrderWithItems
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+id.String(), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and logs it in.
func (c *Client) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodPost, "/api/register", nil, req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login opens a session.
func (c *Client) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodPost, "/api/login", nil, req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout ends the session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/logout", nil, nil, nil)
}

// CurrentUser returns the logged-in account.
func (c *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/user", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("api call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var body model.ErrorResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(data, &body) == nil && body.Message != "" {
		apiErr.Message = body.Message
		apiErr.Field = body.Field
		apiErr.CorrelationID = body.CorrelationID
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
