package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Unit (satuan) of measure, e.g. "pcs", "kg", "sak".
type Unit struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"size:10;uniqueIndex;not null"`
}

func (Unit) TableName() string { return "satuan" }

func (u *Unit) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
