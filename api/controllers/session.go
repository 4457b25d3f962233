package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/varejolabs/pdv-terminal/api/responses"
	"github.com/varejolabs/pdv-terminal/internal/engine"
	"github.com/varejolabs/pdv-terminal/internal/session"
)

// TerminalView is the read-only engine surface the diagnostics API serves.
type TerminalView interface {
	Snapshot() session.Session
	Totals() engine.Totals
}

type sessionDTO struct {
	Mode         string           `json:"mode"`
	ActiveModal  string           `json:"activeModal"`
	Customer     *string          `json:"customer,omitempty"`
	Items        []sessionItemDTO `json:"items"`
	PaymentCount int              `json:"paymentCount"`
	LastReceipt  *receiptRefDTO   `json:"lastReceipt,omitempty"`
}

type sessionItemDTO struct {
	ID           int64           `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Qty          int             `json:"qty"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	LineDiscount decimal.Decimal `json:"lineDiscount"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type receiptRefDTO struct {
	SaleID   string          `json:"saleId"`
	Total    decimal.Decimal `json:"total"`
	IssuedAt time.Time       `json:"issuedAt"`
}

type totalsDTO struct {
	Gross     decimal.Decimal `json:"gross"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
	Paid      decimal.Decimal `json:"paid"`
	Remaining decimal.Decimal `json:"remaining"`
}

// SessionSnapshot serves the current sale state for supervisor tooling.
func SessionSnapshot(view TerminalView) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := view.Snapshot()

		dto := sessionDTO{
			Mode:         snap.Mode.String(),
			ActiveModal:  snap.ActiveModal.String(),
			Items:        make([]sessionItemDTO, 0, len(snap.Items)),
			PaymentCount: len(snap.Payments),
		}
		if snap.Customer != nil {
			name := snap.Customer.Name
			dto.Customer = &name
		}
		for _, item := range snap.Items {
			dto.Items = append(dto.Items, sessionItemDTO{
				ID:           item.ID,
				SKU:          item.Product.SKU,
				Name:         item.Product.Name,
				Qty:          item.Qty,
				UnitPrice:    item.UnitPrice,
				LineDiscount: item.LineDiscount,
				Subtotal:     item.Subtotal,
			})
		}
		if snap.LastReceipt != nil {
			dto.LastReceipt = &receiptRefDTO{
				SaleID:   snap.LastReceipt.SaleID,
				Total:    snap.LastReceipt.Total,
				IssuedAt: snap.LastReceipt.IssuedAt,
			}
		}

		responses.WriteSuccess(w, dto)
	}
}

// SessionTotals serves the selector snapshot.
func SessionTotals(view TerminalView) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		totals := view.Totals()
		responses.WriteSuccess(w, totalsDTO{
			Gross:     totals.Gross,
			Discount:  totals.Discount,
			Total:     totals.Total,
			Paid:      totals.Paid,
			Remaining: totals.Remaining,
		})
	}
}
