package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	KindIn  = "IN"
	KindOut = "OUT"
)

// Transaction is one ledger entry. Rows are never updated; they are removed
// only when an admin clears the history of an office.
type Transaction struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	MaterialID uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind       string    `gorm:"size:10;not null"`
	Quantity   int       `gorm:"not null;check:chk_transaction_quantity,quantity > 0"`
	Source     string    `gorm:"size:100"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	OfficeID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Timestamp  time.Time `gorm:"not null;autoCreateTime;index"`

	Material *Material `gorm:"foreignKey:MaterialID"`
	User     *User     `gorm:"foreignKey:UserID"`
}

func (Transaction) TableName() string { return "transaction" }

func (t *Transaction) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
