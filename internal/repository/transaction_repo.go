package repository

import (
	"context"

	"github.com/myr2601/mintyapp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionFilter defines filters for listing ledger entries.
type TransactionFilter struct {
	OfficeID   uuid.UUID
	MaterialID *uuid.UUID
	Kind       string
	Page       int
	Limit      int
}

// TransactionRepository is the ledger. There is no Update: entries are
// append-only and removed only per office.
type TransactionRepository interface {
	CreateTx(tx *gorm.DB, t *model.Transaction) error
	List(ctx context.Context, filter TransactionFilter) ([]model.Transaction, int64, error)
	Latest(ctx context.Context, officeID uuid.UUID) (*model.Transaction, error)
	DeleteByOffice(ctx context.Context, officeID uuid.UUID) (int64, error)
}

type transactionRepo struct{ db *gorm.DB }

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) CreateTx(tx *gorm.DB, t *model.Transaction) error {
	return tx.Create(t).Error
}

func (r *transactionRepo) List(ctx context.Context, filter TransactionFilter) ([]model.Transaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("office_id = ?", filter.OfficeID)
	if filter.MaterialID != nil {
		q = q.Where("material_id = ?", *filter.MaterialID)
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > MaxPageSize {
		limit = 100
	}
	offset := (page - 1) * limit

	var entries []model.Transaction
	err := q.Preload("Material.Unit").Preload("User").
		Order("timestamp DESC").Offset(offset).Limit(limit).
		Find(&entries).Error
	return entries, total, err
}

func (r *transactionRepo) Latest(ctx context.Context, officeID uuid.UUID) (*model.Transaction, error) {
	var t model.Transaction
	err := r.db.WithContext(ctx).Preload("Material.Unit").Preload("User").
		Where("office_id = ?", officeID).
		Order("timestamp DESC").First(&t).Error
	return &t, err
}

func (r *transactionRepo) DeleteByOffice(ctx context.Context, officeID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("office_id = ?", officeID).Delete(&model.Transaction{})
	return res.RowsAffected, res.Error
}
