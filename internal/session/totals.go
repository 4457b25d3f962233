package session

import (
	"github.com/shopspring/decimal"

	"github.com/varejolabs/pdv-terminal/pkg/enums"
)

var oneHundred = decimal.NewFromInt(100)

// GrossSubtotal is the sum of every line subtotal before the sale-wide discount.
func GrossSubtotal(s Session) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range s.Items {
		sum = sum.Add(item.Subtotal)
	}
	return sum
}

// GeneralDiscountAmount resolves the sale-wide discount to currency. A
// percentage discount is taken over the gross subtotal.
func GeneralDiscountAmount(s Session) decimal.Decimal {
	if s.Discount.Kind == enums.DiscountKindPercentage {
		return GrossSubtotal(s).Mul(s.Discount.Amount).Div(oneHundred)
	}
	return s.Discount.Amount
}

// Total is the amount owed for the sale, floored at zero.
func Total(s Session) decimal.Decimal {
	total := GrossSubtotal(s).Sub(GeneralDiscountAmount(s))
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// AmountPaid is the sum of every payment entered so far.
func AmountPaid(s Session) decimal.Decimal {
	sum := decimal.Zero
	for _, payment := range s.Payments {
		sum = sum.Add(payment.Amount)
	}
	return sum
}

// Remaining is the unpaid balance, floored at zero.
func Remaining(s Session) decimal.Decimal {
	remaining := Total(s).Sub(AmountPaid(s))
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}
