package repository

import (
	"context"

	"github.com/myr2601/mintyapp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UnitRepository interface {
	Create(ctx context.Context, u *model.Unit) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Unit, error)
	FindByNameTx(tx *gorm.DB, name string) (*model.Unit, error)
	List(ctx context.Context) ([]model.Unit, error)
	Update(ctx context.Context, u *model.Unit) error
	Delete(ctx context.Context, id uuid.UUID) error
	NameTaken(ctx context.Context, name string, exclude uuid.UUID) (bool, error)
	CountMaterials(ctx context.Context, id uuid.UUID) (int64, error)
}

type unitRepo struct{ db *gorm.DB }

func NewUnitRepository(db *gorm.DB) UnitRepository { return &unitRepo{db: db} }

func (r *unitRepo) Create(ctx context.Context, u *model.Unit) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *unitRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Unit, error) {
	var u model.Unit
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	return &u, err
}

func (r *unitRepo) FindByNameTx(tx *gorm.DB, name string) (*model.Unit, error) {
	var u model.Unit
	err := tx.Where("name = ?", name).First(&u).Error
	return &u, err
}

func (r *unitRepo) List(ctx context.Context) ([]model.Unit, error) {
	var units []model.Unit
	err := r.db.WithContext(ctx).Order("name ASC").Find(&units).Error
	return units, err
}

func (r *unitRepo) Update(ctx context.Context, u *model.Unit) error {
	return r.db.WithContext(ctx).Model(u).Update("name", u.Name).Error
}

func (r *unitRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Unit{}).Error
}

func (r *unitRepo) NameTaken(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.Unit{}).Where("name = ?", name)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *unitRepo) CountMaterials(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Material{}).Where("unit_id = ?", id).Count(&count).Error
	return count, err
}
