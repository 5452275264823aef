// Package remote is an HTTP client for the catalog service.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/dwikikusuma/shopping-browse/internal/catalog/app"
	"github.com/dwikikusuma/shopping-browse/internal/catalog/domain"
	"github.com/dwikikusuma/shopping-browse/internal/catalog/httpapi"
)

type Options struct {
	PageSize int
	// RateLimit is requests per second; zero or less disables limiting.
	RateLimit  float64
	RateBurst  int
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	base     string
	http     *http.Client
	limiter  *rate.Limiter
	pageSize int
}

func NewClient(base string, opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.RateBurst
	if burst <= 0 {
		burst = 1
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = app.DefaultPageSize
	}
	return &Client{
		base:     strings.TrimRight(base, "/"),
		http:     hc,
		limiter:  rate.NewLimiter(limit, burst),
		pageSize: pageSize,
	}
}

func (c *Client) FetchFirstPage(ctx context.Context) ([]domain.Product, error) {
	return c.list(ctx, 0)
}

func (c *Client) FetchNextPage(ctx context.Context, afterID int64) ([]domain.Product, error) {
	products, err := c.list(ctx, afterID)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, app.ErrEndOfCatalog
	}
	return products, nil
}

func (c *Client) FetchByID(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	if err := c.getJSON(ctx, "/v1/products/"+strconv.FormatInt(id, 10), nil, &p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// ResetCache is a no-op: the client itself keeps nothing between calls.
func (c *Client) ResetCache() {}

func (c *Client) list(ctx context.Context, afterID int64) ([]domain.Product, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(c.pageSize))
	if afterID > 0 {
		q.Set("after", strconv.FormatInt(afterID, 10))
	}
	var resp httpapi.ListProductsResponse
	if err := c.getJSON(ctx, "/v1/products", q, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("catalog rate limit: %w", err)
	}

	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(httpapi.RequestIDHeader, uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("catalog get %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("catalog get %s: %w", path, app.ErrNotFound)
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("catalog get %s: %w", path, app.ErrInvalidInput)
	case resp.StatusCode/100 != 2:
		var body httpapi.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return fmt.Errorf("catalog get %s: %s %s", path, resp.Status, body.Code)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}
	return nil
}
