package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/varejolabs/pdv-terminal/api/controllers"
	"github.com/varejolabs/pdv-terminal/internal/engine"
	"github.com/varejolabs/pdv-terminal/internal/session"
	"github.com/varejolabs/pdv-terminal/pkg/config"
	"github.com/varejolabs/pdv-terminal/pkg/db/models"
)

type stubView struct {
	snapshot session.Session
	totals   engine.Totals
}

func (v *stubView) Snapshot() session.Session { return v.snapshot }
func (v *stubView) Totals() engine.Totals     { return v.totals }

type stubReceipts struct {
	last *models.SaleReceipt
	err  error
}

func (s *stubReceipts) Record(ctx context.Context, sale session.Session, saleID string, issuedAt time.Time) (*session.Receipt, error) {
	return nil, errors.New("not served over http")
}

func (s *stubReceipts) Last(ctx context.Context, registerLocalID string) (*models.SaleReceipt, error) {
	return s.last, s.err
}

func (s *stubReceipts) Recent(ctx context.Context, registerLocalID string, limit int) ([]models.SaleReceipt, error) {
	if s.last == nil {
		return nil, s.err
	}
	return []models.SaleReceipt{*s.last}, s.err
}

type stubPinger struct {
	err error
}

func (p *stubPinger) Ping(ctx context.Context) error { return p.err }

func testConfig() *config.Config {
	return &config.Config{
		App:      config.AppConfig{Env: "development"},
		Register: config.RegisterConfig{LocalID: "caixa-01"},
	}
}

func newTestServer(t *testing.T, receiptsSvc *stubReceipts, pingers map[string]controllers.Pinger) *httptest.Server {
	t.Helper()

	view := &stubView{
		snapshot: session.New(session.Config{}, "caixa-01"),
		totals:   engine.Totals{Total: decimal.RequireFromString("13.50")},
	}
	router := NewRouter(testConfig(), nil, view, receiptsSvc, pingers, nil)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func TestHealthLive(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &stubReceipts{}, nil)
	resp, err := http.Get(server.URL + "/health/live")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if got := resp.Header.Get("X-PDV-Env"); got != "development" {
		t.Fatalf("unexpected env header %q", got)
	}
}

func TestHealthReadyReportsFailure(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &stubReceipts{}, map[string]controllers.Pinger{
		"journal": &stubPinger{err: errors.New("locked")},
	})
	resp, err := http.Get(server.URL + "/health/ready")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

func TestSessionTotals(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &stubReceipts{}, nil)
	resp, err := http.Get(server.URL + "/v1/session/totals")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	var envelope struct {
		Data struct {
			Total decimal.Decimal `json:"total"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !envelope.Data.Total.Equal(decimal.RequireFromString("13.50")) {
		t.Fatalf("unexpected total %s", envelope.Data.Total)
	}
}

func TestLastReceiptNotFound(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &stubReceipts{}, nil)
	resp, err := http.Get(server.URL + "/v1/receipts/last")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestLastReceiptFound(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &stubReceipts{last: &models.SaleReceipt{
		SaleID:          "sale-123",
		RegisterLocalID: "caixa-01",
		Total:           decimal.RequireFromString("13.50"),
	}}, nil)

	resp, err := http.Get(server.URL + "/v1/receipts/last")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	var envelope struct {
		Data models.SaleReceipt `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if envelope.Data.SaleID != "sale-123" {
		t.Fatalf("unexpected receipt %+v", envelope.Data)
	}
}
