// Package restapi talks to the external store service over JSON/HTTP.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mystore-pos/internal/backend"
	"mystore-pos/internal/models"
)

// StatusError: non-2xx response from the service.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.Code)
}

type Client struct {
	baseURL string
	http    *http.Client
}

var _ backend.Backend = (*Client)(nil)

// New builds a client for baseURL (trailing slash ignored).
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// unwrap returns body.data when the service answered with an {ok, data}
// envelope, otherwise the body itself.
func unwrap(body []byte) []byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return trimmed
	}
	if data, ok := env["data"]; ok {
		return data
	}
	return trimmed
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, header http.Header) error {
	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if out == nil {
		return nil
	}
	data := unwrap(body)
	if len(data) == 0 || string(data) == "null" {
		return errEmpty
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

var errEmpty = errors.New("empty response body")

func idPath(prefix string, id uint) string {
	return prefix + "/" + strconv.FormatUint(uint64(id), 10)
}

// list tolerates an empty or null body as an empty collection.
func list[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var out []T
	if err := c.do(ctx, http.MethodGet, path, nil, &out, nil); err != nil {
		if errors.Is(err, errEmpty) {
			return []T{}, nil
		}
		return nil, err
	}
	return out, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	return list[models.Product](ctx, c, "/products")
}

func (c *Client) ProductByCode(ctx context.Context, code string) (*models.Product, error) {
	var p models.Product
	err := c.do(ctx, http.MethodGet, "/products/code/"+url.PathEscape(code), nil, &p, nil)
	if err != nil {
		var se *StatusError
		if errors.Is(err, errEmpty) || (errors.As(err, &se) && se.Code == http.StatusNotFound) {
			return nil, backend.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	var out models.Product
	err := c.do(ctx, http.MethodPost, "/products", p, &out, nil)
	if errors.Is(err, errEmpty) {
		return p, nil
	}
	return out, err
}

func (c *Client) UpdateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	var out models.Product
	err := c.do(ctx, http.MethodPut, idPath("/products", p.ID), p, &out, nil)
	if errors.Is(err, errEmpty) {
		return p, nil
	}
	return out, err
}

func (c *Client) DeleteProduct(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, idPath("/products", id), nil, nil, nil)
}

func (c *Client) ListClients(ctx context.Context) ([]models.Client, error) {
	return list[models.Client](ctx, c, "/clients")
}

func (c *Client) CreateClient(ctx context.Context, cl models.Client) (models.Client, error) {
	var out models.Client
	err := c.do(ctx, http.MethodPost, "/clients", cl, &out, nil)
	if errors.Is(err, errEmpty) {
		return cl, nil
	}
	return out, err
}

func (c *Client) UpdateClient(ctx context.Context, cl models.Client) (models.Client, error) {
	var out models.Client
	err := c.do(ctx, http.MethodPut, idPath("/clients", cl.ID), cl, &out, nil)
	if errors.Is(err, errEmpty) {
		return cl, nil
	}
	return out, err
}

func (c *Client) DeleteClient(ctx context.Context, id uint) error {
	if id == models.WalkInClientID {
		return backend.ErrWalkInClient
	}
	return c.do(ctx, http.MethodDelete, idPath("/clients", id), nil, nil, nil)
}

func (c *Client) ListSales(ctx context.Context) ([]models.Sale, error) {
	return list[models.Sale](ctx, c, "/sales")
}

func (c *Client) GetSale(ctx context.Context, id uint) (*models.Sale, error) {
	var s models.Sale
	if err := c.do(ctx, http.MethodGet, idPath("/sales", id), nil, &s, nil); err != nil {
		var se *StatusError
		if errors.Is(err, errEmpty) || (errors.As(err, &se) && se.Code == http.StatusNotFound) {
			return nil, backend.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// CreateSale sends the draft's idempotency key so a repeated submission of the
// same cart is recognisable server-side.
func (c *Client) CreateSale(ctx context.Context, req models.SaleRequest) (models.SaleReceipt, error) {
	var header http.Header
	if req.IdempotencyKey != "" {
		header = http.Header{"Idempotency-Key": []string{req.IdempotencyKey}}
	}
	var out models.SaleReceipt
	if err := c.do(ctx, http.MethodPost, "/sales", req, &out, header); err != nil {
		return models.SaleReceipt{}, err
	}
	if out.ID == 0 {
		return models.SaleReceipt{}, fmt.Errorf("POST /sales: response without id")
	}
	return out, nil
}

func (c *Client) GetCompany(ctx context.Context) (models.Company, error) {
	var out models.Company
	if err := c.do(ctx, http.MethodGet, "/company", nil, &out, nil); err != nil {
		if errors.Is(err, errEmpty) {
			return models.Company{ID: models.CompanyID}, nil
		}
		return models.Company{}, err
	}
	return out.Normalized(), nil
}

func (c *Client) SaveCompany(ctx context.Context, co models.Company) (models.Company, error) {
	co.ID = models.CompanyID
	var out models.Company
	err := c.do(ctx, http.MethodPut, "/company", co, &out, nil)
	if errors.Is(err, errEmpty) {
		return co, nil
	}
	if err != nil {
		return models.Company{}, err
	}
	return out.Normalized(), nil
}
