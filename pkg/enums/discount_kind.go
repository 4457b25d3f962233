package enums

import "fmt"

// DiscountKind distinguishes fixed-amount from percentage general discounts.
type DiscountKind string

const (
	DiscountKindFixed      DiscountKind = "fixed"
	DiscountKindPercentage DiscountKind = "percentage"
)

var validDiscountKinds = []DiscountKind{
	DiscountKindFixed,
	DiscountKindPercentage,
}

// String implements fmt.Stringer.
func (d DiscountKind) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DiscountKind.
func (d DiscountKind) IsValid() bool {
	for _, candidate := range validDiscountKinds {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDiscountKind converts raw input into a DiscountKind.
func ParseDiscountKind(value string) (DiscountKind, error) {
	for _, candidate := range validDiscountKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount kind %q", value)
}
