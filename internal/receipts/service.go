package receipts

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/varejolabs/pdv-terminal/internal/customers"
	"github.com/varejolabs/pdv-terminal/internal/session"
	"github.com/varejolabs/pdv-terminal/pkg/db/models"
	pkgerrors "github.com/varejolabs/pdv-terminal/pkg/errors"
)

// ServiceParams groups dependencies for the receipt service.
type ServiceParams struct {
	Repo *Repository
}

// Service owns the local receipt journal. The ledger is the system of record;
// the journal only exists so the till can reprint after the sale is gone from
// the session.
type Service interface {
	Record(ctx context.Context, sale session.Session, saleID string, issuedAt time.Time) (*session.Receipt, error)
	Last(ctx context.Context, registerLocalID string) (*models.SaleReceipt, error)
	Recent(ctx context.Context, registerLocalID string, limit int) ([]models.SaleReceipt, error)
}

type service struct {
	repo *Repository
}

// NewService builds a receipt service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receipt repo is required")
	}
	return &service{repo: params.Repo}, nil
}

// Record journals the committed sale and returns the lightweight snapshot the
// session keeps for the "last receipt" line.
func (s *service) Record(ctx context.Context, sale session.Session, saleID string, issuedAt time.Time) (*session.Receipt, error) {
	if saleID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale id is required")
	}

	row := buildRow(sale, saleID, issuedAt)
	if err := s.repo.Insert(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "journaling receipt")
	}

	return &session.Receipt{
		SaleID:   saleID,
		Total:    row.Total,
		IssuedAt: issuedAt,
	}, nil
}

// Last returns the newest receipt for the register, or nil when none exists.
func (s *service) Last(ctx context.Context, registerLocalID string) (*models.SaleReceipt, error) {
	receipt, err := s.repo.LastForRegister(ctx, registerLocalID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading last receipt")
	}
	return receipt, nil
}

// Recent returns up to limit receipts for the register, newest first.
func (s *service) Recent(ctx context.Context, registerLocalID string, limit int) ([]models.SaleReceipt, error) {
	rows, err := s.repo.ListRecent(ctx, registerLocalID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing receipts")
	}
	return rows, nil
}

func buildRow(sale session.Session, saleID string, issuedAt time.Time) *models.SaleReceipt {
	customer := customers.WalkIn()
	if sale.Customer != nil {
		customer = *sale.Customer
	}

	row := &models.SaleReceipt{
		SaleID:          saleID,
		RegisterLocalID: sale.RegisterLocalID,
		CustomerName:    customer.Name,
		Subtotal:        session.GrossSubtotal(sale),
		Discount:        session.GeneralDiscountAmount(sale),
		Total:           session.Total(sale),
		Paid:            session.AmountPaid(sale),
		Change:          changeGiven(sale),
		Lines:           make([]models.ReceiptLine, 0, len(sale.Items)),
		Payments:        make([]models.ReceiptPayment, 0, len(sale.Payments)),
		IssuedAt:        issuedAt,
	}
	if !customer.IsWalkIn() {
		id := customer.ID.String()
		row.CustomerID = &id
	}

	for _, item := range sale.Items {
		row.Lines = append(row.Lines, models.ReceiptLine{
			ProductID: item.Product.ID.String(),
			SKU:       item.Product.SKU,
			Name:      item.Product.Name,
			Qty:       item.Qty,
			UnitPrice: item.UnitPrice,
			Discount:  item.LineDiscount,
			Subtotal:  item.Subtotal,
		})
	}
	for _, payment := range sale.Payments {
		row.Payments = append(row.Payments, models.ReceiptPayment{
			Method: payment.Method,
			Amount: payment.Amount,
			Change: payment.Change,
		})
	}
	return row
}

func changeGiven(sale session.Session) decimal.Decimal {
	sum := decimal.Zero
	for _, payment := range sale.Payments {
		sum = sum.Add(payment.Change)
	}
	return sum
}
