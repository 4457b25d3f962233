package receipts

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/varejolabs/pdv-terminal/pkg/db/models"
	"github.com/varejolabs/pdv-terminal/pkg/enums"
)

func setupJournalTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.SaleReceipt{}))
	return conn
}

func receiptRow(saleID string, issuedAt time.Time) *models.SaleReceipt {
	return &models.SaleReceipt{
		SaleID:          saleID,
		RegisterLocalID: "caixa-01",
		CustomerName:    "Consumidor Final",
		Subtotal:        decimal.RequireFromString("13.50"),
		Discount:        decimal.Zero,
		Total:           decimal.RequireFromString("13.50"),
		Paid:            decimal.RequireFromString("20.00"),
		Change:          decimal.RequireFromString("6.50"),
		Payments: []models.ReceiptPayment{{
			Method: enums.PaymentMethodCash,
			Amount: decimal.RequireFromString("20.00"),
			Change: decimal.RequireFromString("6.50"),
		}},
		IssuedAt: issuedAt,
	}
}

func TestRepositoryInsertAndLast(t *testing.T) {
	t.Parallel()

	repo := NewRepository(setupJournalTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Insert(ctx, receiptRow("sale-1", base)))
	require.NoError(t, repo.Insert(ctx, receiptRow("sale-2", base.Add(time.Minute))))

	last, err := repo.LastForRegister(ctx, "caixa-01")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "sale-2", last.SaleID)
	assert.True(t, last.Change.Equal(decimal.RequireFromString("6.50")))
	require.Len(t, last.Payments, 1)
	assert.Equal(t, enums.PaymentMethodCash, last.Payments[0].Method)
}

func TestRepositoryRejectsDuplicateSaleID(t *testing.T) {
	t.Parallel()

	repo := NewRepository(setupJournalTestDB(t))
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Insert(ctx, receiptRow("sale-1", now)))
	assert.Error(t, repo.Insert(ctx, receiptRow("sale-1", now)))
}

func TestRepositoryScopesByRegister(t *testing.T) {
	t.Parallel()

	repo := NewRepository(setupJournalTestDB(t))
	ctx := context.Background()

	other := receiptRow("sale-other", time.Now())
	other.RegisterLocalID = "caixa-02"
	require.NoError(t, repo.Insert(ctx, other))

	last, err := repo.LastForRegister(ctx, "caixa-01")
	require.NoError(t, err)
	assert.Nil(t, last)

	rows, err := repo.ListRecent(ctx, "caixa-02", 10)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
