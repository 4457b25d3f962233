package session

import (
	"github.com/shopspring/decimal"

	"github.com/varejolabs/pdv-terminal/internal/catalog"
	"github.com/varejolabs/pdv-terminal/internal/customers"
	"github.com/varejolabs/pdv-terminal/pkg/enums"
)

// Action is the closed set of session transitions. Every mutation of a sale
// goes through Apply with one of these; nothing else touches the record.
type Action interface {
	isAction()
}

// AddItem appends a line for the product, or increments the quantity of the
// existing line for the same product. KeepSearchMode leaves the terminal in
// search mode for rapid successive scans.
type AddItem struct {
	Product        catalog.Product
	KeepSearchMode bool
}

// RemoveItem drops the line at Index.
type RemoveItem struct {
	Index int
}

// UpdateQuantity sets the quantity of the line at Index. A quantity of zero or
// below removes the line.
type UpdateQuantity struct {
	Index int
	Qty   int
}

// ApplyItemDiscount sets the absolute line discount of the line at Index. The
// amount is not clamped against the line subtotal.
type ApplyItemDiscount struct {
	Index  int
	Amount decimal.Decimal
}

// SetDiscount replaces the sale-wide discount record.
type SetDiscount struct {
	Discount Discount
}

// AddPayment appends a split payment. For cash, change is computed against the
// remaining balance at the moment of insertion.
type AddPayment struct {
	Method enums.PaymentMethod
	Amount decimal.Decimal
}

// RemovePayment drops the payment at Index. Change on other payments is not
// recomputed.
type RemovePayment struct {
	Index int
}

// SetMode replaces the input mode.
type SetMode struct {
	Mode enums.Mode
}

// SetModal replaces the active overlay.
type SetModal struct {
	Modal enums.Modal
}

// SetCustomer links or unlinks (nil) a customer.
type SetCustomer struct {
	Customer *customers.Customer
}

// SetSelectedIndex moves the line selection; out-of-range values are clamped.
type SetSelectedIndex struct {
	Index int
}

// SetLastReceipt records the snapshot of the last committed sale.
type SetLastReceipt struct {
	Receipt *Receipt
}

// ClearSale resets everything except config, last receipt, and the register id.
type ClearSale struct{}

func (AddItem) isAction()           {}
func (RemoveItem) isAction()        {}
func (UpdateQuantity) isAction()    {}
func (ApplyItemDiscount) isAction() {}
func (SetDiscount) isAction()       {}
func (AddPayment) isAction()        {}
func (RemovePayment) isAction()     {}
func (SetMode) isAction()           {}
func (SetModal) isAction()          {}
func (SetCustomer) isAction()       {}
func (SetSelectedIndex) isAction()  {}
func (SetLastReceipt) isAction()    {}
func (ClearSale) isAction()         {}
