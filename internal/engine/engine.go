package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/varejolabs/pdv-terminal/internal/catalog"
	"github.com/varejolabs/pdv-terminal/internal/customers"
	"github.com/varejolabs/pdv-terminal/internal/finalize"
	"github.com/varejolabs/pdv-terminal/internal/keymap"
	"github.com/varejolabs/pdv-terminal/internal/receipts"
	"github.com/varejolabs/pdv-terminal/internal/search"
	"github.com/varejolabs/pdv-terminal/internal/session"
	"github.com/varejolabs/pdv-terminal/pkg/config"
	"github.com/varejolabs/pdv-terminal/pkg/enums"
	pkgerrors "github.com/varejolabs/pdv-terminal/pkg/errors"
	"github.com/varejolabs/pdv-terminal/pkg/logger"
)

// Finalizer submits a sale exactly once. *finalize.Coordinator satisfies it.
type Finalizer interface {
	Finalize(ctx context.Context, s session.Session) (*finalize.Outcome, error)
}

// Params groups the collaborators of New.
type Params struct {
	Register  config.RegisterConfig
	Flags     config.FeatureFlagsConfig
	Search    config.SearchConfig
	Provider  catalog.Searcher
	Customers customers.Lookup
	Finalizer Finalizer
	Receipts  receipts.Service
	Logger    *logger.Logger
}

// Totals is the selector snapshot the front-end renders on every change.
type Totals struct {
	Gross     decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
	Paid      decimal.Decimal
	Remaining decimal.Decimal
}

// Engine is the single writer over the sale session. Every entry point takes
// the mutex, so observable state only ever moves through one transition at a
// time, commits included.
type Engine struct {
	mu      sync.Mutex
	session session.Session

	// Transient input state owned by the engine, not the session: the search
	// query, the quantity/discount/payment edit buffer, and the candidate list.
	query   string
	buffer  string
	results []catalog.Product
	cursor  int

	searcher  *search.Searcher
	lookup    customers.Lookup
	finalizer Finalizer
	receipts  receipts.Service
	logg      *logger.Logger
}

// New wires the engine and its debounced searcher.
func New(p Params) (*Engine, error) {
	if p.Provider == nil {
		return nil, fmt.Errorf("catalog provider is required")
	}
	if p.Finalizer == nil {
		return nil, fmt.Errorf("finalizer is required")
	}
	if p.Receipts == nil {
		return nil, fmt.Errorf("receipt service is required")
	}

	e := &Engine{
		session: session.New(session.Config{
			BlockSaleWithoutStock: p.Flags.BlockSaleWithoutStock,
			AllowNegativeStock:    p.Flags.AllowNegativeStock,
		}, p.Register.LocalID),
		lookup:    p.Customers,
		finalizer: p.Finalizer,
		receipts:  p.Receipts,
		logg:      p.Logger,
	}

	searcher, err := search.New(p.Provider, p.Search.Debounce, p.Search.Limit, p.Logger, e.applyResults)
	if err != nil {
		return nil, err
	}
	e.searcher = searcher
	return e, nil
}

// Close stops the background searcher.
func (e *Engine) Close() {
	e.searcher.Close()
}

// HandleKey feeds one normalized key event through the dispatcher and applies
// the outcome. Signals the engine cannot satisfy itself, like focus moves, are
// returned for the front-end.
func (e *Engine) HandleKey(ctx context.Context, ev keymap.Event) []keymap.Signal {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.ActiveModal != enums.ModalNone {
		e.handleModalKey(ev)
		return nil
	}

	st := e.keymapState()
	decision := keymap.Decide(st, ev)

	for _, action := range decision.Actions {
		e.session = session.Apply(e.session, action)
	}

	var leftover []keymap.Signal
	for _, signal := range decision.Signals {
		switch signal {
		case keymap.SignalToggleHelp:
			e.toggleHelp()
		case keymap.SignalOpenCustomerLookup:
			e.session = session.Apply(e.session, session.SetModal{Modal: enums.ModalCustomer})
		case keymap.SignalConfirmCancelSale:
			e.session = session.Apply(e.session, session.SetModal{Modal: enums.ModalCancelSale})
		case keymap.SignalAddHighlighted:
			e.addHighlighted(st.ResultCursor)
		default:
			leftover = append(leftover, signal)
		}
	}

	e.buffer = decision.State.Buffer
	e.cursor = decision.State.ResultCursor
	if decision.State.Query != e.query {
		e.setQueryLocked(decision.State.Query)
	}
	return leftover
}

// SetQuery replaces the search text, restarting the debounce window.
func (e *Engine) SetQuery(query string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setQueryLocked(query)
}

// SetBuffer replaces the edit buffer with what the operator has typed so far.
func (e *Engine) SetBuffer(buffer string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buffer = buffer
}

// AddProduct inserts the product directly, as a barcode scan does.
func (e *Engine) AddProduct(product catalog.Product) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session = session.Apply(e.session, session.AddItem{Product: product, KeepSearchMode: true})
}

// AddPayment appends a split payment and finalizes the sale as soon as the
// balance is covered. On any commit failure the session, the triggering
// payment included, stays exactly as it was so the operator can retry.
func (e *Engine) AddPayment(ctx context.Context, method enums.PaymentMethod, amount decimal.Decimal) (*session.Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown payment method %q", method))
	}
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}
	if len(e.session.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale has no items")
	}

	e.session = session.Apply(e.session, session.AddPayment{Method: method, Amount: amount})

	if session.Remaining(e.session).IsPositive() {
		return nil, nil
	}
	return e.finalizeLocked(ctx)
}

// RemovePayment drops the payment at index.
func (e *Engine) RemovePayment(index int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session = session.Apply(e.session, session.RemovePayment{Index: index})
}

// SetDiscount replaces the sale-wide discount.
func (e *Engine) SetDiscount(kind enums.DiscountKind, amount decimal.Decimal) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown discount kind %q", kind))
	}
	if amount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount must not be negative")
	}
	e.session = session.Apply(e.session, session.SetDiscount{
		Discount: session.Discount{Kind: kind, Amount: amount},
	})
	return nil
}

// SelectCustomer links the customer and closes the lookup overlay. A nil
// customer reverts the sale to walk-in.
func (e *Engine) SelectCustomer(customer *customers.Customer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session = session.Apply(e.session, session.SetCustomer{Customer: customer})
	e.session = session.Apply(e.session, session.SetModal{Modal: enums.ModalNone})
}

// SearchCustomers runs the synchronous customer lookup for the overlay.
func (e *Engine) SearchCustomers(ctx context.Context, query string, limit int) ([]customers.Customer, error) {
	if e.lookup == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "customer lookup is not configured")
	}
	found, err := e.lookup.SearchCustomers(ctx, query, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "customer lookup failed")
	}
	return found, nil
}

// ConfirmCancelSale discards the sale. It only acts while the confirmation
// overlay is up, so a stray call can never wipe a cart.
func (e *Engine) ConfirmCancelSale() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session.ActiveModal != enums.ModalCancelSale {
		return
	}
	e.session = session.Apply(e.session, session.ClearSale{})
	e.setQueryLocked("")
}

// DismissModal closes whatever overlay is up without acting on it.
func (e *Engine) DismissModal() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session = session.Apply(e.session, session.SetModal{Modal: enums.ModalNone})
}

// Snapshot returns a copy of the current session.
func (e *Engine) Snapshot() session.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// Totals recomputes the selector set from the current session.
func (e *Engine) Totals() Totals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Totals{
		Gross:     session.GrossSubtotal(e.session),
		Discount:  session.GeneralDiscountAmount(e.session),
		Total:     session.Total(e.session),
		Paid:      session.AmountPaid(e.session),
		Remaining: session.Remaining(e.session),
	}
}

// Results returns the settled candidate list and the highlight cursor.
func (e *Engine) Results() ([]catalog.Product, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]catalog.Product, len(e.results))
	copy(out, e.results)
	return out, e.cursor
}

// Query returns the current search text.
func (e *Engine) Query() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.query
}

// Buffer returns the current edit buffer.
func (e *Engine) Buffer() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buffer
}

func (e *Engine) finalizeLocked(ctx context.Context) (*session.Receipt, error) {
	outcome, err := e.finalizer.Finalize(ctx, e.session)
	if err != nil {
		return nil, err
	}

	receipt, err := e.receipts.Record(ctx, e.session, outcome.SaleID, outcome.CommittedAt)
	if err != nil {
		// The ledger already accepted the sale; a journaling failure must not
		// resurrect it. Log and fall back to the outcome snapshot.
		if e.logg != nil {
			e.logg.Error(ctx, "journaling receipt failed", err)
		}
		receipt = &session.Receipt{
			SaleID:   outcome.SaleID,
			Total:    outcome.Total,
			IssuedAt: outcome.CommittedAt,
		}
	}

	e.session = session.Apply(e.session, session.SetLastReceipt{Receipt: receipt})
	e.session = session.Apply(e.session, session.ClearSale{})
	e.setQueryLocked("")
	e.buffer = ""
	return receipt, nil
}

func (e *Engine) handleModalKey(ev keymap.Event) {
	switch ev.Key {
	case keymap.KeyEscape:
		e.session = session.Apply(e.session, session.SetModal{Modal: enums.ModalNone})
	case keymap.KeyEnter:
		if e.session.ActiveModal == enums.ModalCancelSale {
			e.session = session.Apply(e.session, session.SetModal{Modal: enums.ModalNone})
			e.session = session.Apply(e.session, session.ClearSale{})
			e.setQueryLocked("")
		}
	case keymap.KeyHelp:
		e.toggleHelp()
	}
}

func (e *Engine) toggleHelp() {
	next := enums.ModalHelp
	if e.session.ActiveModal == enums.ModalHelp {
		next = enums.ModalNone
	}
	e.session = session.Apply(e.session, session.SetModal{Modal: next})
}

func (e *Engine) addHighlighted(cursor int) {
	if cursor < 0 || cursor >= len(e.results) {
		return
	}
	product := e.results[cursor]
	e.session = session.Apply(e.session, session.AddItem{Product: product, KeepSearchMode: true})
	e.results = nil
}

func (e *Engine) keymapState() keymap.State {
	st := keymap.State{
		Mode:          e.session.Mode,
		ItemCount:     len(e.session.Items),
		SelectedIndex: e.session.SelectedIndex,
		TargetQty:     1,
		Remaining:     session.Remaining(e.session),
		ResultCount:   len(e.results),
		ResultCursor:  e.cursor,
		Query:         e.query,
		Buffer:        e.buffer,
	}

	target := e.session.SelectedIndex
	if target < 0 && len(e.session.Items) > 0 {
		target = 0
	}
	if target >= 0 && target < len(e.session.Items) {
		item := e.session.Items[target]
		st.TargetQty = item.Qty
		st.TargetLineDiscount = item.LineDiscount
	}
	return st
}

func (e *Engine) setQueryLocked(query string) {
	e.query = query
	if query == "" {
		e.results = nil
		e.cursor = 0
	}
	e.searcher.Submit(query)
}

// applyResults is the searcher's publish callback. The searcher guarantees
// supersession, but the engine still drops lists for a query it is no longer
// showing, since publication races the operator's next keystroke.
func (e *Engine) applyResults(res search.Results) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if res.Query != e.query {
		return
	}
	e.results = res.Products
	if e.cursor >= len(e.results) {
		e.cursor = 0
	}
}
