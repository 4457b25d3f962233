package session

import (
	"github.com/shopspring/decimal"

	"github.com/varejolabs/pdv-terminal/pkg/enums"
)

// Apply is the single transition function over a session. It is pure and
// total: any action against any state yields a well-formed next state, with
// the input left untouched. Unknown indices degrade to no-ops.
func Apply(s Session, action Action) Session {
	switch a := action.(type) {
	case AddItem:
		return applyAddItem(s, a)
	case RemoveItem:
		return applyRemoveItem(s, a.Index)
	case UpdateQuantity:
		if a.Qty <= 0 {
			return applyRemoveItem(s, a.Index)
		}
		if a.Index < 0 || a.Index >= len(s.Items) {
			return s
		}
		s.Items = cloneItems(s.Items)
		item := s.Items[a.Index]
		item.Qty = a.Qty
		s.Items[a.Index] = item.recompute()
		return s
	case ApplyItemDiscount:
		if a.Index < 0 || a.Index >= len(s.Items) {
			return s
		}
		s.Items = cloneItems(s.Items)
		item := s.Items[a.Index]
		item.LineDiscount = a.Amount
		s.Items[a.Index] = item.recompute()
		return s
	case SetDiscount:
		s.Discount = a.Discount
		return s
	case AddPayment:
		change := decimal.Zero
		if a.Method == enums.PaymentMethodCash {
			if remaining := Remaining(s); a.Amount.GreaterThan(remaining) {
				change = a.Amount.Sub(remaining)
			}
		}
		s.Payments = append(clonePayments(s.Payments), Payment{
			Method: a.Method,
			Amount: a.Amount,
			Change: change,
		})
		return s
	case RemovePayment:
		if a.Index < 0 || a.Index >= len(s.Payments) {
			return s
		}
		payments := clonePayments(s.Payments)
		s.Payments = append(payments[:a.Index], payments[a.Index+1:]...)
		return s
	case SetMode:
		s.Mode = a.Mode
		return s
	case SetModal:
		s.ActiveModal = a.Modal
		return s
	case SetCustomer:
		s.Customer = a.Customer
		return s
	case SetSelectedIndex:
		s.SelectedIndex = clampIndex(a.Index, len(s.Items))
		return s
	case SetLastReceipt:
		s.LastReceipt = a.Receipt
		return s
	case ClearSale:
		cleared := New(s.Config, s.RegisterLocalID)
		cleared.LastReceipt = s.LastReceipt
		return cleared
	default:
		return s
	}
}

func applyAddItem(s Session, a AddItem) Session {
	s.Items = cloneItems(s.Items)

	for i, item := range s.Items {
		if item.Product.ID == a.Product.ID {
			item.Qty++
			s.Items[i] = item.recompute()
			s.SelectedIndex = i
			if !a.KeepSearchMode {
				s.Mode = enums.ModeNormal
			}
			return s
		}
	}

	s.IDCounter++
	item := Item{
		ID:           s.IDCounter,
		Product:      a.Product,
		Qty:          1,
		UnitPrice:    a.Product.SalePrice,
		LineDiscount: decimal.Zero,
	}
	s.Items = append(s.Items, item.recompute())
	s.SelectedIndex = len(s.Items) - 1
	if !a.KeepSearchMode {
		s.Mode = enums.ModeNormal
	}
	return s
}

func applyRemoveItem(s Session, index int) Session {
	if index < 0 || index >= len(s.Items) {
		return s
	}
	items := cloneItems(s.Items)
	s.Items = append(items[:index], items[index+1:]...)

	if s.SelectedIndex >= 0 {
		selected := s.SelectedIndex
		if index <= selected {
			selected--
		}
		if len(s.Items) == 0 {
			selected = -1
		} else if selected < 0 {
			selected = 0
		} else if selected >= len(s.Items) {
			selected = len(s.Items) - 1
		}
		s.SelectedIndex = selected
	}
	return s
}

// clampIndex keeps the selection at -1 (no selection) or inside [0, count-1].
func clampIndex(index, count int) int {
	if count == 0 || index < 0 {
		return -1
	}
	if index >= count {
		return count - 1
	}
	return index
}
