package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Office (kantor) is a tenant: it owns users, materials and transactions.
type Office struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:100;uniqueIndex;not null"`
	Code      string    `gorm:"size:20;uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Office) TableName() string { return "kantor" }

func (o *Office) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
