package enums

import "fmt"

// Mode is the terminal input mode gating which hotkeys apply.
type Mode string

const (
	ModeNormal   Mode = "normal"
	ModeSearch   Mode = "search"
	ModeQuantity Mode = "quantity"
	ModeDiscount Mode = "discount"
	ModePayment  Mode = "payment"
)

var validModes = []Mode{
	ModeNormal,
	ModeSearch,
	ModeQuantity,
	ModeDiscount,
	ModePayment,
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known Mode.
func (m Mode) IsValid() bool {
	for _, candidate := range validModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMode converts raw input into a Mode.
func ParseMode(value string) (Mode, error) {
	for _, candidate := range validModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid mode %q", value)
}
