package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/varejolabs/pdv-terminal/pkg/enums"
)

// CommitRequest is the atomic sale commit sent to the ledger service. The
// backend is the system of record; everything here is a snapshot of the
// terminal's computed state at finalization time.
type CommitRequest struct {
	CompanyID  string  `json:"companyId" validate:"required,uuid"`
	RegisterID *string `json:"registerId,omitempty" validate:"omitempty,uuid"`
	CustomerID *string `json:"customerId,omitempty" validate:"omitempty,uuid"`
	DepositID  string  `json:"depositId" validate:"required,uuid"`

	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`

	Items    []CommitItem    `json:"items" validate:"required,min=1,dive"`
	Payments []CommitPayment `json:"payments" validate:"required,min=1,dive"`
}

// CommitItem is one sale line in the commit payload.
type CommitItem struct {
	ProductID string          `json:"productId" validate:"required,uuid"`
	Qty       int             `json:"qty" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Discount  decimal.Decimal `json:"discount"`
}

// CommitPayment is one split-payment entry in the commit payload.
type CommitPayment struct {
	Method enums.PaymentMethod `json:"method" validate:"required"`
	Amount decimal.Decimal     `json:"amount"`
	Change decimal.Decimal     `json:"change"`
}

// CommitResponse carries the opaque sale identifier issued by the ledger.
type CommitResponse struct {
	SaleID string `json:"saleId"`
}

// RejectError is a commit the ledger refused. Message is the backend's own
// wording; the finalization layer categorizes it by substring.
type RejectError struct {
	StatusCode int
	Message    string
}

func (e *RejectError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("ledger rejected commit with status %d", e.StatusCode)
}
