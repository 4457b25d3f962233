package session

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/varejolabs/pdv-terminal/pkg/enums"
)

// Walks the running scenario from the acceptance sheet: one product at 10.00
// added twice, a 5.00 line discount, then a 10% general discount.
func TestTotalsScenario(t *testing.T) {
	t.Parallel()

	p := product("COFFEE", "10.00")
	s := Apply(newSession(), AddItem{Product: p})

	if !Total(s).Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("expected total 10.00, got %s", Total(s))
	}

	s = Apply(s, AddItem{Product: p})
	if s.Items[0].Qty != 2 {
		t.Fatalf("expected qty 2, got %d", s.Items[0].Qty)
	}
	if !Total(s).Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("expected total 20.00, got %s", Total(s))
	}

	s = Apply(s, ApplyItemDiscount{Index: 0, Amount: decimal.RequireFromString("5.00")})
	if !s.Items[0].Subtotal.Equal(decimal.RequireFromString("15.00")) {
		t.Fatalf("expected line subtotal 15.00, got %s", s.Items[0].Subtotal)
	}
	if !Total(s).Equal(decimal.RequireFromString("15.00")) {
		t.Fatalf("expected total 15.00, got %s", Total(s))
	}

	s = Apply(s, SetDiscount{Discount: Discount{Kind: enums.DiscountKindPercentage, Amount: decimal.NewFromInt(10)}})
	if !GeneralDiscountAmount(s).Equal(decimal.RequireFromString("1.50")) {
		t.Fatalf("expected general discount 1.50, got %s", GeneralDiscountAmount(s))
	}
	if !Total(s).Equal(decimal.RequireFromString("13.50")) {
		t.Fatalf("expected total 13.50, got %s", Total(s))
	}
}

func TestTotalNeverNegative(t *testing.T) {
	t.Parallel()

	s := Apply(newSession(), AddItem{Product: product("A", "5.00")})
	s = Apply(s, SetDiscount{Discount: Discount{Kind: enums.DiscountKindFixed, Amount: decimal.NewFromInt(50)}})

	if !Total(s).IsZero() {
		t.Fatalf("total must floor at zero, got %s", Total(s))
	}
}

func TestRemainingNeverNegative(t *testing.T) {
	t.Parallel()

	s := Apply(newSession(), AddItem{Product: product("A", "5.00")})
	s = Apply(s, AddPayment{Method: enums.PaymentMethodCash, Amount: decimal.NewFromInt(100)})

	if !Remaining(s).IsZero() {
		t.Fatalf("remaining must floor at zero, got %s", Remaining(s))
	}
	if !AmountPaid(s).Equal(decimal.NewFromInt(100)) {
		t.Fatalf("amount paid is the raw sum, got %s", AmountPaid(s))
	}
}

func TestFixedDiscountTakenVerbatim(t *testing.T) {
	t.Parallel()

	s := Apply(newSession(), AddItem{Product: product("A", "30.00")})
	s = Apply(s, SetDiscount{Discount: Discount{Kind: enums.DiscountKindFixed, Amount: decimal.RequireFromString("7.25")}})

	if !GeneralDiscountAmount(s).Equal(decimal.RequireFromString("7.25")) {
		t.Fatalf("fixed discount must pass through, got %s", GeneralDiscountAmount(s))
	}
	if !Total(s).Equal(decimal.RequireFromString("22.75")) {
		t.Fatalf("expected total 22.75, got %s", Total(s))
	}
}

func TestTotalsRecomputedFromCurrentState(t *testing.T) {
	t.Parallel()

	s := Apply(newSession(), AddItem{Product: product("A", "10.00")})
	s = Apply(s, SetDiscount{Discount: Discount{Kind: enums.DiscountKindPercentage, Amount: decimal.NewFromInt(10)}})
	first := Total(s)

	s = Apply(s, UpdateQuantity{Index: 0, Qty: 3})
	second := Total(s)

	if !first.Equal(decimal.RequireFromString("9.00")) {
		t.Fatalf("expected 9.00, got %s", first)
	}
	if !second.Equal(decimal.RequireFromString("27.00")) {
		t.Fatalf("selectors must track the latest state, got %s", second)
	}
}
