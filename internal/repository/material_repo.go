package repository

import (
	"context"
	"strings"

	"github.com/myr2601/mintyapp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxPageSize caps every paged listing.
const MaxPageSize = 500

// MaterialFilter selects a page of one office's materials.
type MaterialFilter struct {
	OfficeID uuid.UUID
	Search   string // substring of name or external code, case-insensitive
	Page     int
	Limit    int
}

// MaterialRepository defines the data access contract for materials.
// Every lookup is scoped to an office.
type MaterialRepository interface {
	Create(ctx context.Context, m *model.Material) error
	CreateTx(tx *gorm.DB, m *model.Material) error
	FindInOffice(ctx context.Context, id, officeID uuid.UUID) (*model.Material, error)
	FindInOfficeTx(tx *gorm.DB, id, officeID uuid.UUID) (*model.Material, error)
	FindByCodeTx(tx *gorm.DB, code string, officeID uuid.UUID) (*model.Material, error)
	CodeTaken(ctx context.Context, code string, officeID, exclude uuid.UUID) (bool, error)

	// ListByOffice orders by name.
	ListByOffice(ctx context.Context, officeID uuid.UUID) ([]model.Material, error)
	// ListPermitted returns the materials of officeID that userID holds a permission edge for, by name.
	ListPermitted(ctx context.Context, userID, officeID uuid.UUID) ([]model.Material, error)
	List(ctx context.Context, filter MaterialFilter) ([]model.Material, int64, error)
	// LowStock returns materials with quantity below threshold, lowest first.
	LowStock(ctx context.Context, officeID uuid.UUID, threshold int) ([]model.Material, error)
	Totals(ctx context.Context, officeID uuid.UUID) (types int64, stock int64, err error)

	// UpdateTx writes name and unit; quantity only moves through Add/Deduct.
	UpdateTx(tx *gorm.DB, m *model.Material) error
	AddQuantityTx(tx *gorm.DB, id uuid.UUID, delta int) error
	// DeductQuantityTx decrements only when enough stock is left and reports
	// whether the row was changed.
	DeductQuantityTx(tx *gorm.DB, id, officeID uuid.UUID, qty int) (bool, error)
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	CountTransactions(ctx context.Context, id uuid.UUID) (int64, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type materialRepo struct{ db *gorm.DB }

func NewMaterialRepository(db *gorm.DB) MaterialRepository { return &materialRepo{db: db} }

func (r *materialRepo) Create(ctx context.Context, m *model.Material) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *materialRepo) CreateTx(tx *gorm.DB, m *model.Material) error {
	return tx.Create(m).Error
}

func (r *materialRepo) FindInOffice(ctx context.Context, id, officeID uuid.UUID) (*model.Material, error) {
	return r.FindInOfficeTx(r.db.WithContext(ctx), id, officeID)
}

func (r *materialRepo) FindInOfficeTx(tx *gorm.DB, id, officeID uuid.UUID) (*model.Material, error) {
	var m model.Material
	err := tx.Preload("Unit").Where("id = ? AND office_id = ?", id, officeID).First(&m).Error
	return &m, err
}

func (r *materialRepo) FindByCodeTx(tx *gorm.DB, code string, officeID uuid.UUID) (*model.Material, error) {
	var m model.Material
	err := tx.Where("external_code = ? AND office_id = ?", code, officeID).First(&m).Error
	return &m, err
}

func (r *materialRepo) CodeTaken(ctx context.Context, code string, officeID, exclude uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.Material{}).
		Where("external_code = ? AND office_id = ?", code, officeID)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *materialRepo) ListByOffice(ctx context.Context, officeID uuid.UUID) ([]model.Material, error) {
	var materials []model.Material
	err := r.db.WithContext(ctx).Preload("Unit").
		Where("office_id = ?", officeID).
		Order("name ASC").Find(&materials).Error
	return materials, err
}

func (r *materialRepo) ListPermitted(ctx context.Context, userID, officeID uuid.UUID) ([]model.Material, error) {
	db := r.db.WithContext(ctx)
	permitted := db.Model(&model.Permission{}).Select("material_id").Where("user_id = ?", userID)

	var materials []model.Material
	err := db.Preload("Unit").
		Where("office_id = ? AND id IN (?)", officeID, permitted).
		Order("name ASC").Find(&materials).Error
	return materials, err
}

func (r *materialRepo) List(ctx context.Context, filter MaterialFilter) ([]model.Material, int64, error) {
	var materials []model.Material
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Material{}).Where("office_id = ?", filter.OfficeID)
	if s := strings.TrimSpace(filter.Search); s != "" {
		// LOWER ... LIKE behaves the same on PostgreSQL and SQLite, unlike ILIKE.
		term := "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(external_code) LIKE ? ESCAPE '\')`, term, term)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	switch {
	case limit < 1:
		limit = 10
	case limit > MaxPageSize:
		limit = MaxPageSize
	}
	offset := (page - 1) * limit

	err := q.Preload("Unit").Order("name ASC").Offset(offset).Limit(limit).Find(&materials).Error
	return materials, total, err
}

// likeEscaper makes user input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (r *materialRepo) LowStock(ctx context.Context, officeID uuid.UUID, threshold int) ([]model.Material, error) {
	var materials []model.Material
	err := r.db.WithContext(ctx).Preload("Unit").
		Where("office_id = ? AND quantity < ?", officeID, threshold).
		Order("quantity ASC").Order("name ASC").
		Find(&materials).Error
	return materials, err
}

func (r *materialRepo) Totals(ctx context.Context, officeID uuid.UUID) (int64, int64, error) {
	var row struct {
		Types int64
		Stock int64
	}
	err := r.db.WithContext(ctx).Model(&model.Material{}).
		Select("COUNT(*) AS types, COALESCE(SUM(quantity), 0) AS stock").
		Where("office_id = ?", officeID).
		Scan(&row).Error
	return row.Types, row.Stock, err
}

func (r *materialRepo) UpdateTx(tx *gorm.DB, m *model.Material) error {
	return tx.Model(&model.Material{}).Where("id = ?", m.ID).Updates(map[string]interface{}{
		"name":    m.Name,
		"unit_id": m.UnitID,
	}).Error
}

func (r *materialRepo) AddQuantityTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	return tx.Model(&model.Material{}).Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", delta)).Error
}

func (r *materialRepo) DeductQuantityTx(tx *gorm.DB, id, officeID uuid.UUID, qty int) (bool, error) {
	res := tx.Model(&model.Material{}).
		Where("id = ? AND office_id = ? AND quantity >= ?", id, officeID, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *materialRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Where("id = ?", id).Delete(&model.Material{}).Error
}

func (r *materialRepo) CountTransactions(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).Where("material_id = ?", id).Count(&count).Error
	return count, err
}

func (r *materialRepo) DB() *gorm.DB { return r.db }
