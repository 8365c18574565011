package repository

import (
	"github.com/myr2601/mintyapp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PermissionRepository manages user_material_permissions. All methods run on
// the caller's transaction.
type PermissionRepository interface {
	MaterialIDsTx(tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error)
	// ReplaceTx clears the user's edges, then inserts one per id.
	ReplaceTx(tx *gorm.DB, userID uuid.UUID, materialIDs []uuid.UUID) error
	DeleteByUserTx(tx *gorm.DB, userID uuid.UUID) error
	DeleteByMaterialTx(tx *gorm.DB, materialID uuid.UUID) error
}

type permissionRepo struct{}

func NewPermissionRepository() PermissionRepository { return &permissionRepo{} }

func (r *permissionRepo) MaterialIDsTx(tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := tx.Model(&model.Permission{}).Where("user_id = ?", userID).Pluck("material_id", &ids).Error
	return ids, err
}

func (r *permissionRepo) ReplaceTx(tx *gorm.DB, userID uuid.UUID, materialIDs []uuid.UUID) error {
	if err := r.DeleteByUserTx(tx, userID); err != nil {
		return err
	}
	if len(materialIDs) == 0 {
		return nil
	}
	edges := make([]model.Permission, 0, len(materialIDs))
	for _, id := range materialIDs {
		edges = append(edges, model.Permission{UserID: userID, MaterialID: id})
	}
	return tx.Create(&edges).Error
}

func (r *permissionRepo) DeleteByUserTx(tx *gorm.DB, userID uuid.UUID) error {
	return tx.Where("user_id = ?", userID).Delete(&model.Permission{}).Error
}

func (r *permissionRepo) DeleteByMaterialTx(tx *gorm.DB, materialID uuid.UUID) error {
	return tx.Where("material_id = ?", materialID).Delete(&model.Permission{}).Error
}
