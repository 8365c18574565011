package repository

import (
	"context"

	"github.com/myr2601/mintyapp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OfficeDependents counts the rows that keep an office from being deleted.
type OfficeDependents struct {
	Users        int64
	Materials    int64
	Transactions int64
}

func (d OfficeDependents) Any() bool {
	return d.Users > 0 || d.Materials > 0 || d.Transactions > 0
}

type OfficeRepository interface {
	Create(ctx context.Context, o *model.Office) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Office, error)
	List(ctx context.Context) ([]model.Office, error)
	Update(ctx context.Context, o *model.Office) error
	Delete(ctx context.Context, id uuid.UUID) error
	// NameOrCodeTaken ignores the office with id exclude (uuid.Nil for none).
	NameOrCodeTaken(ctx context.Context, name, code string, exclude uuid.UUID) (bool, error)
	CountDependents(ctx context.Context, id uuid.UUID) (OfficeDependents, error)
}

type officeRepo struct{ db *gorm.DB }

func NewOfficeRepository(db *gorm.DB) OfficeRepository { return &officeRepo{db: db} }

func (r *officeRepo) Create(ctx context.Context, o *model.Office) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *officeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Office, error) {
	var o model.Office
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&o).Error
	return &o, err
}

func (r *officeRepo) List(ctx context.Context) ([]model.Office, error) {
	var offices []model.Office
	err := r.db.WithContext(ctx).Order("name ASC").Find(&offices).Error
	return offices, err
}

func (r *officeRepo) Update(ctx context.Context, o *model.Office) error {
	return r.db.WithContext(ctx).Model(o).Updates(map[string]interface{}{
		"name": o.Name,
		"code": o.Code,
	}).Error
}

func (r *officeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Office{}).Error
}

func (r *officeRepo) NameOrCodeTaken(ctx context.Context, name, code string, exclude uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.Office{}).Where("(name = ? OR code = ?)", name, code)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *officeRepo) CountDependents(ctx context.Context, id uuid.UUID) (OfficeDependents, error) {
	var d OfficeDependents
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.User{}).Where("office_id = ?", id).Count(&d.Users).Error; err != nil {
		return d, err
	}
	if err := db.Model(&model.Material{}).Where("office_id = ?", id).Count(&d.Materials).Error; err != nil {
		return d, err
	}
	if err := db.Model(&model.Transaction{}).Where("office_id = ?", id).Count(&d.Transactions).Error; err != nil {
		return d, err
	}
	return d, nil
}
