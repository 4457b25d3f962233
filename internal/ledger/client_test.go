package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/varejolabs/pdv-terminal/pkg/config"
	"github.com/varejolabs/pdv-terminal/pkg/enums"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(
		config.LedgerConfig{BaseURL: server.URL, Timeout: 2 * time.Second},
		func() string { return "op-token" },
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return client
}

func sampleRequest() CommitRequest {
	registerID := "6df5c7cb-64f5-4af3-9dbb-5ad852b15e8a"
	return CommitRequest{
		CompanyID:  "0d4cf0c7-9a3d-4f5e-9a87-5d2f3f6f62f1",
		RegisterID: &registerID,
		DepositID:  "a3cb3c4f-53be-4f84-a11e-3d2a64d6b0b2",
		Subtotal:   decimal.RequireFromString("13.50"),
		Discount:   decimal.Zero,
		Total:      decimal.RequireFromString("13.50"),
		Items: []CommitItem{{
			ProductID: "3f7d7a39-30a4-4f09-a1b2-8f44f79b5a01",
			Qty:       1,
			UnitPrice: decimal.RequireFromString("13.50"),
			Discount:  decimal.Zero,
		}},
		Payments: []CommitPayment{{
			Method: enums.PaymentMethodCash,
			Amount: decimal.RequireFromString("20.00"),
			Change: decimal.RequireFromString("6.50"),
		}},
	}
}

func TestCommitSaleSuccess(t *testing.T) {
	t.Parallel()

	var gotAuth, gotIdem string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/sales" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotIdem = r.Header.Get("X-Idempotency-Key")

		var req CommitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if len(req.Items) != 1 || len(req.Payments) != 1 {
			t.Errorf("unexpected payload %+v", req)
		}

		_ = json.NewEncoder(w).Encode(CommitResponse{SaleID: "sale-123"})
	}))

	saleID, err := client.CommitSale(context.Background(), sampleRequest(), "idem-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saleID != "sale-123" {
		t.Fatalf("unexpected sale id %q", saleID)
	}
	if gotAuth != "Bearer op-token" {
		t.Fatalf("expected operator bearer token, got %q", gotAuth)
	}
	if gotIdem != "idem-1" {
		t.Fatalf("expected idempotency key header, got %q", gotIdem)
	}
}

func TestCommitSaleRejectionSurfacesBackendMessage(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":{"message":"insufficient stock for product COFFEE"}}`))
	}))

	_, err := client.CommitSale(context.Background(), sampleRequest(), "idem-1")
	if err == nil {
		t.Fatal("expected rejection error")
	}

	var reject *RejectError
	if !errors.As(err, &reject) {
		t.Fatalf("expected RejectError, got %T", err)
	}
	if reject.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status %d", reject.StatusCode)
	}
	if reject.Message != "insufficient stock for product COFFEE" {
		t.Fatalf("backend wording must be preserved, got %q", reject.Message)
	}
}

func TestCommitSaleEmptySaleID(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))

	if _, err := client.CommitSale(context.Background(), sampleRequest(), ""); err == nil {
		t.Fatal("expected error for empty sale id")
	}
}

func TestSearchProducts(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/products" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != "coff" {
			t.Errorf("unexpected query %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Errorf("unexpected limit %q", got)
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"3f7d7a39-30a4-4f09-a1b2-8f44f79b5a01","sku":"COF-01","barcode":"789000111","name":"Coffee","salePrice":"10.00"}]}`))
	}))

	products, err := client.SearchProducts(context.Background(), "coff", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	if products[0].Name != "Coffee" || !products[0].SalePrice.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("unexpected product %+v", products[0])
	}
}

func TestSearchCustomers(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/customers" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"9a1bde52-3db2-4b7e-9f57-2f6f0a9d8c11","name":"Maria","taxId":"12345678900"}]}`))
	}))

	found, err := client.SearchCustomers(context.Background(), "maria", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(found) != 1 || found[0].Name != "Maria" || found[0].TaxID == nil {
		t.Fatalf("unexpected customers %+v", found)
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(config.LedgerConfig{}, nil); err == nil {
		t.Fatal("expected error for missing base url")
	}
}
