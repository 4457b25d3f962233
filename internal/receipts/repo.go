package receipts

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/varejolabs/pdv-terminal/pkg/db/models"
)

// Repository encapsulates journal persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a receipt repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes one receipt row. Sale ids are unique, so replaying the same
// commit is a no-op conflict rather than a duplicate row.
func (r *Repository) Insert(ctx context.Context, receipt *models.SaleReceipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

// LastForRegister returns the most recent receipt for a register, or nil when
// the journal is empty.
func (r *Repository) LastForRegister(ctx context.Context, registerLocalID string) (*models.SaleReceipt, error) {
	var receipt models.SaleReceipt
	err := r.db.WithContext(ctx).
		Where("register_local_id = ?", registerLocalID).
		Order("issued_at DESC").
		Order("id DESC").
		First(&receipt).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

// ListRecent returns up to limit receipts for a register, newest first.
func (r *Repository) ListRecent(ctx context.Context, registerLocalID string, limit int) ([]models.SaleReceipt, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []models.SaleReceipt
	err := r.db.WithContext(ctx).
		Where("register_local_id = ?", registerLocalID).
		Order("issued_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
