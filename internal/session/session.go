package session

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/varejolabs/pdv-terminal/internal/catalog"
	"github.com/varejolabs/pdv-terminal/internal/customers"
	"github.com/varejolabs/pdv-terminal/pkg/enums"
)

// Item is one cart line. Subtotal is always qty*unitPrice - lineDiscount,
// recomputed on every mutation; it is never edited independently.
type Item struct {
	ID           int64
	Product      catalog.Product
	Qty          int
	UnitPrice    decimal.Decimal
	LineDiscount decimal.Decimal
	Subtotal     decimal.Decimal
}

func (i Item) recompute() Item {
	i.Subtotal = i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Qty))).Sub(i.LineDiscount)
	return i
}

// Discount is the single sale-wide discount. A percentage amount is expressed
// in percent points (10 = 10%).
type Discount struct {
	Kind   enums.DiscountKind
	Amount decimal.Decimal
}

// Payment is one entry of a split payment. Change is derived once, at the
// moment a cash payment is inserted, and never recomputed afterwards.
type Payment struct {
	Method enums.PaymentMethod
	Amount decimal.Decimal
	Change decimal.Decimal
}

// Config carries the backend stock policy the terminal was provisioned with.
// The engine only reads it to phrase commit rejections; enforcement is remote.
type Config struct {
	BlockSaleWithoutStock bool
	AllowNegativeStock    bool
}

// Receipt is the lightweight snapshot retained after a successful commit. The
// full receipt body lives in the journal; the session only keeps enough to
// reprint the header line.
type Receipt struct {
	SaleID   string
	Total    decimal.Decimal
	IssuedAt time.Time
}

// Session is the whole working set of one sale at a till. It is treated as an
// immutable record: the only way to produce a new observable state is Apply.
type Session struct {
	Items           []Item
	SelectedIndex   int
	Mode            enums.Mode
	ActiveModal     enums.Modal
	Customer        *customers.Customer
	Discount        Discount
	Payments        []Payment
	IDCounter       int64
	Config          Config
	LastReceipt     *Receipt
	RegisterLocalID string
}

// New returns the empty session a terminal boots with. Input focus starts on
// the scan field, so the initial mode is search.
func New(cfg Config, registerLocalID string) Session {
	return Session{
		Items:           nil,
		SelectedIndex:   -1,
		Mode:            enums.ModeSearch,
		ActiveModal:     enums.ModalNone,
		Customer:        nil,
		Discount:        Discount{Kind: enums.DiscountKindFixed, Amount: decimal.Zero},
		Payments:        nil,
		IDCounter:       0,
		Config:          cfg,
		LastReceipt:     nil,
		RegisterLocalID: registerLocalID,
	}
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

func clonePayments(payments []Payment) []Payment {
	if payments == nil {
		return nil
	}
	out := make([]Payment, len(payments))
	copy(out, payments)
	return out
}
