// Package datalayer is the admin panel's client for the catalog REST API.
package datalayer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/abgdnv/shopadmin/internal/admin/product"
	"github.com/abgdnv/shopadmin/pkg/config"
)

const (
	productsPath = "/api/v1/products"
	// pageSize matches the catalog's default list limit.
	pageSize = 100
	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 64 << 10
)

// Gateway is the data-access contract the admin screen depends on.
type Gateway interface {
	// List returns every product in catalog order.
	List(ctx context.Context) ([]product.Product, error)
	// Create persists p without its id and returns the stored record.
	Create(ctx context.Context, p product.Product) (product.Product, error)
	// Update replaces the record p.ID and returns the stored record.
	Update(ctx context.Context, p product.Product) (product.Product, error)
	// Delete removes the record with the given id.
	Delete(ctx context.Context, id int64) error
}

// Error is a non-2xx answer from the catalog.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

// IsNotFound reports whether err is a catalog 404.
func IsNotFound(err error) bool {
	var dlErr *Error
	return errors.As(err, &dlErr) && dlErr.StatusCode == http.StatusNotFound
}

var _ Gateway = (*Client)(nil)

// Client implements Gateway over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a catalog client. The transport carries tracing and
// resilience; the configured timeout bounds every call including retries.
func NewClient(cfg config.HTTPClientConfig, transport http.RoundTripper, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		logger: logger.With("component", "datalayer"),
	}
}

// writePayload is the writable part of a product; the id travels in the path or not at all.
type writePayload struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
}

func toPayload(p product.Product) writePayload {
	return writePayload{
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Image:       p.Image,
	}
}

// List pages through the catalog until a short page is returned.
func (c *Client) List(ctx context.Context) ([]product.Product, error) {
	all := make([]product.Product, 0)
	for offset := 0; ; offset += pageSize {
		query := url.Values{}
		query.Set("offset", strconv.Itoa(offset))
		query.Set("limit", strconv.Itoa(pageSize))

		var page []product.Product
		if err := c.do(ctx, http.MethodGet, productsPath+"?"+query.Encode(), nil, http.StatusOK, &page); err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}

func (c *Client) Create(ctx context.Context, p product.Product) (product.Product, error) {
	var created product.Product
	err := c.do(ctx, http.MethodPost, productsPath, toPayload(p), http.StatusCreated, &created)
	return created, err
}

func (c *Client) Update(ctx context.Context, p product.Product) (product.Product, error) {
	var updated product.Product
	err := c.do(ctx, http.MethodPut, productPath(p.ID), toPayload(p), http.StatusOK, &updated)
	return updated, err
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, productPath(id), nil, http.StatusNoContent, nil)
}

// Check probes the catalog liveness endpoint.
func (c *Client) Check(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, http.StatusOK, nil)
}

func productPath(id int64) string {
	return productsPath + "/" + strconv.FormatInt(id, 10)
}

// do sends one request and decodes a response with status want into out.
func (c *Client) do(ctx context.Context, method, path string, in any, want int, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "Catalog request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != want {
		dlErr := decodeError(resp)
		c.logger.WarnContext(ctx, "Catalog answered with an error",
			"method", method, "path", path, "status", resp.StatusCode, "message", dlErr.Message)
		return dlErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode catalog response: %w", err)
	}
	return nil
}

// errorEnvelope covers both the plain and the validation error bodies of the catalog.
type errorEnvelope struct {
	Error            string            `json:"error"`
	ValidationErrors map[string]string `json:"validation_errors"`
}

func decodeError(resp *http.Response) *Error {
	dlErr := &Error{StatusCode: resp.StatusCode}

	var env errorEnvelope
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if len(raw) > 0 && json.Unmarshal(raw, &env) == nil {
		switch {
		case env.Error != "":
			dlErr.Message = env.Error
		case len(env.ValidationErrors) > 0:
			fields := make([]string, 0, len(env.ValidationErrors))
			for field, rule := range env.ValidationErrors {
				fields = append(fields, field+" "+rule)
			}
			sort.Strings(fields)
			dlErr.Message = "Validation failed: " + strings.Join(fields, "; ")
		}
	}
	if dlErr.Message == "" {
		dlErr.Message = http.StatusText(resp.StatusCode)
	}
	return dlErr
}
