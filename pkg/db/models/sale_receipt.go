package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/varejolabs/pdv-terminal/pkg/enums"
)

// SaleReceipt is the journal row written after every committed sale. Line and
// payment detail is serialized as JSON so the same model works on sqlite and
// postgres; the receipt is a reprint artifact, never queried per line.
type SaleReceipt struct {
	ID              uint    `gorm:"column:id;primaryKey;autoIncrement"`
	SaleID          string  `gorm:"column:sale_id;uniqueIndex;not null"`
	RegisterLocalID string  `gorm:"column:register_local_id;index;not null"`
	CustomerID      *string `gorm:"column:customer_id"`
	CustomerName    string  `gorm:"column:customer_name;not null"`

	Subtotal decimal.Decimal `gorm:"column:subtotal;type:numeric;not null"`
	Discount decimal.Decimal `gorm:"column:discount;type:numeric;not null"`
	Total    decimal.Decimal `gorm:"column:total;type:numeric;not null"`
	Paid     decimal.Decimal `gorm:"column:paid;type:numeric;not null"`
	Change   decimal.Decimal `gorm:"column:change;type:numeric;not null"`

	Lines    []ReceiptLine    `gorm:"column:lines;type:text;serializer:json"`
	Payments []ReceiptPayment `gorm:"column:payments;type:text;serializer:json"`

	IssuedAt  time.Time `gorm:"column:issued_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (SaleReceipt) TableName() string {
	return "sale_receipts"
}

// ReceiptLine is one printed line of the receipt body.
type ReceiptLine struct {
	ProductID string          `json:"productId"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Discount  decimal.Decimal `json:"discount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// ReceiptPayment is one printed payment entry.
type ReceiptPayment struct {
	Method enums.PaymentMethod `json:"method"`
	Amount decimal.Decimal     `json:"amount"`
	Change decimal.Decimal     `json:"change"`
}
