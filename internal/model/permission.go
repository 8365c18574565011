package model

import "github.com/google/uuid"

// Permission grants a non-admin user the right to put a material in a transaction.
type Permission struct {
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	MaterialID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

func (Permission) TableName() string { return "user_material_permissions" }
