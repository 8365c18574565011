package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User belongs to exactly one office. Non-admin users may only transact on
// the materials listed in user_material_permissions.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"size:80;uniqueIndex;not null"`
	PasswordHash string    `gorm:"size:256;not null"`
	Role         string    `gorm:"size:20;not null;default:user"`
	OfficeID     uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Office *Office `gorm:"foreignKey:OfficeID"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
