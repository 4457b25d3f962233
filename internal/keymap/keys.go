package keymap

// Event is one normalized key event delivered by the front-end binding. The
// engine never subscribes to platform events itself; it only sees these.
type Event struct {
	Key         string
	Ctrl        bool
	InTextInput bool
}

// Fixed bindings of the terminal. Front-ends translate their native key codes
// into these names before calling Decide.
const (
	KeyHelp         = "F1"
	KeyCustomer     = "F2"
	KeyItemDiscount = "F4"
	KeyItemQuantity = "F5"
	KeyFinalize     = "F10"
	KeyEscape       = "Escape"
	KeyEnter        = "Enter"
	KeyArrowUp      = "ArrowUp"
	KeyArrowDown    = "ArrowDown"
	KeyDelete       = "Delete"

	// Ctrl modified.
	KeyFocusSearch = "f"
)

// Signal asks the caller for something a store transition cannot express:
// focus moves, overlays, and operations that need collaborator lookups.
type Signal int

const (
	SignalFocusSearch Signal = iota + 1
	SignalToggleHelp
	SignalOpenCustomerLookup
	SignalConfirmCancelSale
	SignalAddHighlighted
)
