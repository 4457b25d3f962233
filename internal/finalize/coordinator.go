package finalize

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/varejolabs/pdv-terminal/internal/ledger"
	"github.com/varejolabs/pdv-terminal/internal/session"
	"github.com/varejolabs/pdv-terminal/pkg/config"
	pkgerrors "github.com/varejolabs/pdv-terminal/pkg/errors"
	"github.com/varejolabs/pdv-terminal/pkg/logger"
	"github.com/varejolabs/pdv-terminal/pkg/metrics"
)

const commitLockTTL = 2 * time.Minute

// Committer submits an assembled sale to the ledger. *ledger.Client satisfies it.
type Committer interface {
	CommitSale(ctx context.Context, req ledger.CommitRequest, idempotencyKey string) (string, error)
}

// IdempotencyStore is the optional fleet-wide commit lock. When several tills
// share one backend, a Redis-backed store keeps two registers from replaying
// the same local id concurrently.
type IdempotencyStore interface {
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

// Outcome is what a successful commit leaves behind.
type Outcome struct {
	SaleID      string
	Total       decimal.Decimal
	CommittedAt time.Time
}

// CoordinatorParams lists the collaborators of NewCoordinator. Idempotency,
// Metrics and Logger are optional.
type CoordinatorParams struct {
	Committer   Committer
	Register    config.RegisterConfig
	Idempotency IdempotencyStore
	Metrics     *metrics.SaleMetrics
	Logger      *logger.Logger
}

// Coordinator owns the finalization path: it assembles the commit payload,
// guards against double submission and classifies rejections. It never mutates
// the session; the caller decides what to do with the outcome.
type Coordinator struct {
	committer   Committer
	register    config.RegisterConfig
	idempotency IdempotencyStore
	metrics     *metrics.SaleMetrics
	logg        *logger.Logger
	validate    *validator.Validate
	inFlight    atomic.Bool
}

func NewCoordinator(p CoordinatorParams) (*Coordinator, error) {
	if p.Committer == nil {
		return nil, fmt.Errorf("committer is required")
	}
	if p.Register.CompanyID == "" {
		return nil, fmt.Errorf("register company id is required")
	}
	if p.Register.DepositID == "" {
		return nil, fmt.Errorf("register deposit id is required")
	}
	return &Coordinator{
		committer:   p.Committer,
		register:    p.Register,
		idempotency: p.Idempotency,
		metrics:     p.Metrics,
		logg:        p.Logger,
		validate:    validator.New(),
	}, nil
}

// Finalize submits the sale exactly once. While a commit is in flight every
// further call fails fast with CodeCommitInFlight; the caller keeps the
// session untouched on any error so the operator can correct and retry.
func (c *Coordinator) Finalize(ctx context.Context, s session.Session) (*Outcome, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return nil, pkgerrors.New(pkgerrors.CodeCommitInFlight, "sale commit already in progress")
	}
	defer c.inFlight.Store(false)

	req, err := c.buildRequest(s)
	if err != nil {
		return nil, err
	}

	idempotencyKey := uuid.NewString()

	if c.idempotency != nil {
		lockKey := commitLockKey(s.RegisterLocalID)
		acquired, err := c.idempotency.SetNX(ctx, lockKey, idempotencyKey, commitLockTTL)
		if err != nil {
			c.warn(ctx, err, "commit lock unavailable, proceeding with local guard only")
		} else if !acquired {
			return nil, pkgerrors.New(pkgerrors.CodeCommitInFlight, "another terminal is committing for this register")
		} else {
			defer func() {
				if err := c.idempotency.Del(context.WithoutCancel(ctx), lockKey); err != nil {
					c.warn(ctx, err, "releasing commit lock")
				}
			}()
		}
	}

	start := time.Now()
	saleID, err := c.committer.CommitSale(ctx, req, idempotencyKey)
	c.metrics.ObserveCommitDuration(time.Since(start))

	if err != nil {
		classified := Classify(err)
		c.metrics.IncFailed(failureCategory(classified.Code()))
		if c.logg != nil {
			c.logg.Warn(ctx, fmt.Sprintf("sale commit rejected: %v", err))
		}
		return nil, classified
	}

	c.metrics.IncCommitted()
	outcome := &Outcome{
		SaleID:      saleID,
		Total:       req.Total,
		CommittedAt: time.Now(),
	}
	if c.logg != nil {
		ctx = c.logg.WithSaleID(ctx, saleID)
		c.logg.Info(ctx, "sale committed, total "+req.Total.StringFixed(2))
	}
	return outcome, nil
}

// buildRequest snapshots the session into the commit payload. A nil customer
// means the walk-in identity; the ledger applies its own default, so the field
// is simply omitted.
func (c *Coordinator) buildRequest(s session.Session) (ledger.CommitRequest, error) {
	var problems error
	if len(s.Items) == 0 {
		problems = multierr.Append(problems, fmt.Errorf("sale has no items"))
	}
	if len(s.Payments) == 0 {
		problems = multierr.Append(problems, fmt.Errorf("sale has no payments"))
	}
	for i, payment := range s.Payments {
		if !payment.Amount.IsPositive() {
			problems = multierr.Append(problems, fmt.Errorf("payment %d has non-positive amount %s", i, payment.Amount))
		}
	}
	if remaining := session.Remaining(s); remaining.IsPositive() {
		problems = multierr.Append(problems, fmt.Errorf("payments short by %s", remaining.StringFixed(2)))
	}
	if problems != nil {
		return ledger.CommitRequest{}, pkgerrors.Wrap(pkgerrors.CodeValidation, problems, "sale is not ready to commit").
			WithDetails(multierrMessages(problems))
	}

	req := ledger.CommitRequest{
		CompanyID: c.register.CompanyID,
		DepositID: c.register.DepositID,
		Subtotal:  session.GrossSubtotal(s),
		Discount:  session.GeneralDiscountAmount(s),
		Total:     session.Total(s),
		Items:     make([]ledger.CommitItem, 0, len(s.Items)),
		Payments:  make([]ledger.CommitPayment, 0, len(s.Payments)),
	}
	if c.register.RegisterID != "" {
		registerID := c.register.RegisterID
		req.RegisterID = &registerID
	}
	if s.Customer != nil {
		customerID := s.Customer.ID.String()
		req.CustomerID = &customerID
	}

	for _, item := range s.Items {
		req.Items = append(req.Items, ledger.CommitItem{
			ProductID: item.Product.ID.String(),
			Qty:       item.Qty,
			UnitPrice: item.UnitPrice,
			Discount:  item.LineDiscount,
		})
	}
	for _, payment := range s.Payments {
		req.Payments = append(req.Payments, ledger.CommitPayment{
			Method: payment.Method,
			Amount: payment.Amount,
			Change: payment.Change,
		})
	}

	if err := c.validate.Struct(req); err != nil {
		return ledger.CommitRequest{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "commit payload failed validation")
	}
	return req, nil
}

func (c *Coordinator) warn(ctx context.Context, err error, msg string) {
	if c.logg != nil {
		c.logg.Warn(ctx, fmt.Sprintf("%s: %v", msg, err))
	}
}

func commitLockKey(registerLocalID string) string {
	if registerLocalID == "" {
		registerLocalID = "unknown"
	}
	return "commit:" + registerLocalID
}

func failureCategory(code pkgerrors.Code) string {
	return strings.ToLower(string(code))
}

func multierrMessages(err error) []string {
	errs := multierr.Errors(err)
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Error())
	}
	return out
}
