package repository

import (
	"context"

	"github.com/myr2601/mintyapp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.User, error)
	// List orders by office, then username.
	List(ctx context.Context) ([]model.User, error)
	UpdateTx(tx *gorm.DB, u *model.User) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	UsernameTaken(ctx context.Context, username string) (bool, error)
	CountTransactions(ctx context.Context, id uuid.UUID) (int64, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type userRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Preload("Office").Where("username = ?", username).First(&u).Error
	return &u, err
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Preload("Office").Where("id = ?", id).First(&u).Error
	return &u, err
}

func (r *userRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := tx.Where("id = ?", id).First(&u).Error
	return &u, err
}

func (r *userRepo) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Preload("Office").
		Order("office_id ASC").Order("username ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepo) UpdateTx(tx *gorm.DB, u *model.User) error {
	return tx.Model(&model.User{}).Where("id = ?", u.ID).Updates(map[string]interface{}{
		"password_hash": u.PasswordHash,
		"role":          u.Role,
		"office_id":     u.OfficeID,
	}).Error
}

func (r *userRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("password_hash", hash).Error
}

func (r *userRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Where("id = ?", id).Delete(&model.User{}).Error
}

func (r *userRepo) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *userRepo) CountTransactions(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).Where("user_id = ?", id).Count(&count).Error
	return count, err
}

func (r *userRepo) DB() *gorm.DB { return r.db }
