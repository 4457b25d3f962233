package enums

import "fmt"

// Modal identifies which overlay, if any, is open on the terminal screen.
type Modal string

const (
	ModalNone       Modal = "none"
	ModalHelp       Modal = "help"
	ModalCustomer   Modal = "customer"
	ModalCancelSale Modal = "cancel_sale"
)

var validModals = []Modal{
	ModalNone,
	ModalHelp,
	ModalCustomer,
	ModalCancelSale,
}

// String implements fmt.Stringer.
func (m Modal) String() string {
	return string(m)
}

// IsValid reports whether the value is a known Modal.
func (m Modal) IsValid() bool {
	for _, candidate := range validModals {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseModal converts raw input into a Modal.
func ParseModal(value string) (Modal, error) {
	for _, candidate := range validModals {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid modal %q", value)
}
