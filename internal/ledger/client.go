package ledger

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

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/varejolabs/pdv-terminal/internal/catalog"
	"github.com/varejolabs/pdv-terminal/internal/customers"
	"github.com/varejolabs/pdv-terminal/pkg/config"
)

const (
	commitPath    = "/v1/sales"
	productsPath  = "/v1/products"
	customersPath = "/v1/customers"

	idempotencyHeader         = "X-Idempotency-Key"
	responseBodyLimit   int64 = 1 << 20
	defaultClientTimeout      = 15 * time.Second
)

var errBaseURLRequired = errors.New("ledger base url is required")

// TokenSource supplies the operator bearer token attached to every call.
type TokenSource func() string

// Client is the HTTP client for the ledger service: sale commits plus the
// catalog and customer lookups the terminal needs while building a sale.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      TokenSource
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds a ledger client from configuration.
func NewClient(cfg config.LedgerConfig, token TokenSource, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errBaseURLRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}

	client := &Client{
		baseURL:    base,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// CommitSale submits the sale atomically. The idempotency key lets the
// backend collapse network-level retries of the same payment sequence.
func (c *Client) CommitSale(ctx context.Context, req CommitRequest, idempotencyKey string) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encoding commit request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+commitPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building commit request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		httpReq.Header.Set(idempotencyHeader, idempotencyKey)
	}
	c.authorize(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling ledger: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	if err != nil {
		return "", fmt.Errorf("reading ledger response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &RejectError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	var decoded CommitResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decoding commit response: %w", err)
	}
	if decoded.SaleID == "" {
		return "", errors.New("ledger returned an empty sale id")
	}
	return decoded.SaleID, nil
}

type productPayload struct {
	ID        string          `json:"id"`
	SKU       string          `json:"sku"`
	Barcode   string          `json:"barcode"`
	Name      string          `json:"name"`
	SalePrice decimal.Decimal `json:"salePrice"`
}

// SearchProducts implements catalog.Searcher against the backend catalog.
func (c *Client) SearchProducts(ctx context.Context, query string, limit int) ([]catalog.Product, error) {
	var decoded struct {
		Data []productPayload `json:"data"`
	}
	if err := c.get(ctx, productsPath, query, limit, &decoded); err != nil {
		return nil, err
	}

	products := make([]catalog.Product, 0, len(decoded.Data))
	for _, p := range decoded.Data {
		id, err := uuid.Parse(p.ID)
		if err != nil {
			return nil, fmt.Errorf("parsing product id %q: %w", p.ID, err)
		}
		products = append(products, catalog.Product{
			ID:        id,
			SKU:       p.SKU,
			Barcode:   p.Barcode,
			Name:      p.Name,
			SalePrice: p.SalePrice,
		})
	}
	return products, nil
}

type customerPayload struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	TaxID *string `json:"taxId,omitempty"`
}

// SearchCustomers implements customers.Lookup against the backend registry.
func (c *Client) SearchCustomers(ctx context.Context, query string, limit int) ([]customers.Customer, error) {
	var decoded struct {
		Data []customerPayload `json:"data"`
	}
	if err := c.get(ctx, customersPath, query, limit, &decoded); err != nil {
		return nil, err
	}

	found := make([]customers.Customer, 0, len(decoded.Data))
	for _, p := range decoded.Data {
		id, err := uuid.Parse(p.ID)
		if err != nil {
			return nil, fmt.Errorf("parsing customer id %q: %w", p.ID, err)
		}
		found = append(found, customers.Customer{ID: id, Name: p.Name, TaxID: p.TaxID})
	}
	return found, nil
}

func (c *Client) get(ctx context.Context, path, query string, limit int, out any) error {
	values := url.Values{}
	values.Set("query", query)
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+values.Encode(), nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	c.authorize(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("calling ledger: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	if err != nil {
		return fmt.Errorf("reading ledger response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RejectError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding ledger response: %w", err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token == nil {
		return
	}
	if token := strings.TrimSpace(c.token()); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// errorMessage extracts the backend's message from an error body, falling
// back to the raw text for non-JSON responses.
func errorMessage(raw []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Error.Message != "" {
			return envelope.Error.Message
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	return strings.TrimSpace(string(raw))
}
