package keymap

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/varejolabs/pdv-terminal/internal/session"
	"github.com/varejolabs/pdv-terminal/pkg/enums"
)

// State is the slice of terminal state the decision function reads. Mode,
// counts, and target values are echoes of the session; Query, ResultCursor,
// and Buffer are the transient input state owned by the dispatcher's caller.
type State struct {
	Mode          enums.Mode
	ItemCount     int
	SelectedIndex int

	// Values of the line a quantity/discount edit would target: the selected
	// line, or line 0 when nothing is selected. TargetQty defaults to 1 when
	// the cart has no usable target.
	TargetQty          int
	TargetLineDiscount decimal.Decimal

	Remaining decimal.Decimal

	ResultCount  int
	ResultCursor int

	Query  string
	Buffer string
}

// Decision is the pure outcome of one key event: store transitions to apply,
// signals for the caller, and the updated transient input state.
type Decision struct {
	Actions []session.Action
	Signals []Signal
	State   State
}

// Decide maps (state, key event) to a decision. It performs no I/O and holds
// no state of its own, so every binding is testable without a UI runtime.
func Decide(st State, ev Event) Decision {
	d := Decision{State: st}

	// Global bindings apply in every mode.
	switch {
	case ev.Key == KeyHelp:
		d.Signals = append(d.Signals, SignalToggleHelp)
		return d

	case ev.Ctrl && strings.EqualFold(ev.Key, KeyFocusSearch):
		d.Actions = append(d.Actions, session.SetMode{Mode: enums.ModeSearch})
		d.State.Query = ""
		d.State.ResultCursor = 0
		d.Signals = append(d.Signals, SignalFocusSearch)
		return d

	case ev.Key == KeyCustomer:
		d.Signals = append(d.Signals, SignalOpenCustomerLookup)
		return d

	case ev.Key == KeyItemDiscount:
		if st.ItemCount == 0 {
			return d
		}
		if st.SelectedIndex < 0 {
			d.Actions = append(d.Actions, session.SetSelectedIndex{Index: 0})
		}
		d.Actions = append(d.Actions, session.SetMode{Mode: enums.ModeDiscount})
		d.State.Buffer = st.TargetLineDiscount.StringFixed(2)
		return d

	case ev.Key == KeyItemQuantity:
		if st.ItemCount == 0 {
			return d
		}
		if st.SelectedIndex < 0 {
			d.Actions = append(d.Actions, session.SetSelectedIndex{Index: 0})
		}
		qty := st.TargetQty
		if qty <= 0 {
			qty = 1
		}
		d.Actions = append(d.Actions, session.SetMode{Mode: enums.ModeQuantity})
		d.State.Buffer = strconv.Itoa(qty)
		return d

	case ev.Key == KeyFinalize:
		if st.ItemCount == 0 || st.Mode == enums.ModePayment {
			return d
		}
		d.Actions = append(d.Actions, session.SetMode{Mode: enums.ModePayment})
		d.State.Buffer = st.Remaining.StringFixed(2)
		return d
	}

	switch st.Mode {
	case enums.ModeSearch:
		return decideSearch(d, st, ev)
	case enums.ModeQuantity, enums.ModeDiscount:
		return decideEdit(d, st, ev)
	case enums.ModePayment:
		if ev.Key == KeyEscape {
			d.State.Buffer = ""
			d.Actions = append(d.Actions, session.SetMode{Mode: enums.ModeNormal})
		}
		return d
	case enums.ModeNormal:
		if !ev.InTextInput {
			return decideNormal(d, st, ev)
		}
	}

	// Escape inside a text field in any other circumstance falls back to
	// clearing search state.
	if ev.Key == KeyEscape && ev.InTextInput {
		d.State.Query = ""
		d.State.ResultCursor = 0
		d.Actions = append(d.Actions, session.SetMode{Mode: enums.ModeNormal})
	}
	return d
}

func decideSearch(d Decision, st State, ev Event) Decision {
	switch ev.Key {
	case KeyEscape:
		d.State.Query = ""
		d.State.ResultCursor = 0
		d.Actions = append(d.Actions, session.SetMode{Mode: enums.ModeNormal})
	case KeyArrowUp:
		d.State.ResultCursor = clampCursor(st.ResultCursor-1, st.ResultCount)
	case KeyArrowDown:
		d.State.ResultCursor = clampCursor(st.ResultCursor+1, st.ResultCount)
	case KeyEnter:
		if st.ResultCount > 0 {
			d.Signals = append(d.Signals, SignalAddHighlighted)
			d.State.Query = ""
			d.State.ResultCursor = 0
		}
	}
	return d
}

func decideEdit(d Decision, st State, ev Event) Decision {
	switch ev.Key {
	case KeyEscape:
		d.State.Buffer = ""
		d.Actions = append(d.Actions, session.SetMode{Mode: enums.ModeNormal})
	case KeyEnter:
		// Commit against the selected line when the buffer parses; the buffer
		// is discarded and the mode returns to normal either way.
		if st.SelectedIndex >= 0 {
			raw := strings.TrimSpace(st.Buffer)
			if st.Mode == enums.ModeQuantity {
				if qty, err := strconv.Atoi(raw); err == nil {
					d.Actions = append(d.Actions, session.UpdateQuantity{Index: st.SelectedIndex, Qty: qty})
				}
			} else {
				if amount, err := decimal.NewFromString(raw); err == nil {
					d.Actions = append(d.Actions, session.ApplyItemDiscount{Index: st.SelectedIndex, Amount: amount})
				}
			}
		}
		d.State.Buffer = ""
		d.Actions = append(d.Actions, session.SetMode{Mode: enums.ModeNormal})
	}
	return d
}

func decideNormal(d Decision, st State, ev Event) Decision {
	switch ev.Key {
	case KeyDelete:
		if st.ItemCount > 0 && st.SelectedIndex >= 0 {
			d.Actions = append(d.Actions, session.RemoveItem{Index: st.SelectedIndex})
		}
	case KeyArrowUp:
		if st.ItemCount > 0 {
			d.Actions = append(d.Actions, session.SetSelectedIndex{Index: boundIndex(st.SelectedIndex-1, st.ItemCount)})
		}
	case KeyArrowDown:
		if st.ItemCount > 0 {
			d.Actions = append(d.Actions, session.SetSelectedIndex{Index: boundIndex(st.SelectedIndex+1, st.ItemCount)})
		}
	case KeyEscape:
		if st.ItemCount > 0 {
			d.Signals = append(d.Signals, SignalConfirmCancelSale)
		}
	}
	return d
}

func clampCursor(cursor, count int) int {
	if count == 0 {
		return 0
	}
	if cursor < 0 {
		return 0
	}
	if cursor >= count {
		return count - 1
	}
	return cursor
}

func boundIndex(index, count int) int {
	if index < 0 {
		return 0
	}
	if index >= count {
		return count - 1
	}
	return index
}
