package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Material is a stock-keeping unit of one office. ExternalCode (id_barang)
// is unique per office, not globally.
type Material struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ExternalCode string    `gorm:"size:50;not null;uniqueIndex:idx_material_code_office"`
	Name         string    `gorm:"size:200;not null;index"`
	Quantity     int       `gorm:"not null;default:0;check:chk_material_quantity,quantity >= 0"`
	OfficeID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_material_code_office"`
	UnitID       uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Office *Office `gorm:"foreignKey:OfficeID"`
	Unit   *Unit   `gorm:"foreignKey:UnitID"`
}

func (Material) TableName() string { return "material" }

func (m *Material) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// UnitName returns the preloaded unit name or "".
func (m *Material) UnitName() string {
	if m.Unit == nil {
		return ""
	}
	return m.Unit.Name
}
