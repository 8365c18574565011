package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/myr2601/mintyapp/internal/access"
	"github.com/myr2601/mintyapp/internal/dto"
	"github.com/myr2601/mintyapp/internal/infra"
	"github.com/myr2601/mintyapp/internal/model"
	"github.com/myr2601/mintyapp/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AdjustmentSource is stored on ledger entries produced by a quantity edit.
const AdjustmentSource = "Penyesuaian stok"

// SheetColumns is the column layout shared by export and import.
var SheetColumns = []string{colCode, colName, colQuantity, colUnit}

// MaterialService is the admin catalog of one office.
type MaterialService interface {
	List(ctx context.Context, scope access.Scope) ([]dto.MaterialResponse, error)
	Get(ctx context.Context, scope access.Scope, id uuid.UUID) (*dto.MaterialResponse, error)
	Create(ctx context.Context, scope access.Scope, req dto.CreateMaterialRequest) (*dto.MaterialResponse, error)
	Update(ctx context.Context, scope access.Scope, id uuid.UUID, req dto.UpdateMaterialRequest) (*dto.MaterialResponse, error)
	Delete(ctx context.Context, scope access.Scope, id uuid.UUID) error
	// Export renders the office catalog as an .xlsx workbook and a file name.
	Export(ctx context.Context, scope access.Scope) ([]byte, string, error)
}

type materialService struct {
	materials repository.MaterialRepository
	units     repository.UnitRepository
	ledger    repository.TransactionRepository
	perms     repository.PermissionRepository
}

func NewMaterialService(
	materials repository.MaterialRepository,
	units repository.UnitRepository,
	ledger repository.TransactionRepository,
	perms repository.PermissionRepository,
) MaterialService {
	return &materialService{materials: materials, units: units, ledger: ledger, perms: perms}
}

func (s *materialService) List(ctx context.Context, scope access.Scope) ([]dto.MaterialResponse, error) {
	materials, err := s.materials.ListByOffice(ctx, scope.OfficeID)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	return materialsToResponse(materials), nil
}

func (s *materialService) Get(ctx context.Context, scope access.Scope, id uuid.UUID) (*dto.MaterialResponse, error) {
	m, err := s.materials.FindInOffice(ctx, id, scope.OfficeID)
	if err != nil {
		return nil, notFoundOr(err, "Material tidak ditemukan", "find material")
	}
	resp := materialToResponse(m)
	return &resp, nil
}

func (s *materialService) Create(ctx context.Context, scope access.Scope, req dto.CreateMaterialRequest) (*dto.MaterialResponse, error) {
	code := strings.TrimSpace(req.ExternalCode)
	name := strings.TrimSpace(req.Name)
	if code == "" || name == "" {
		return nil, validationf("ID Barang dan nama material wajib diisi")
	}
	if req.Quantity < 0 {
		return nil, validationf("Jumlah tidak boleh negatif")
	}

	unit, err := s.findUnit(ctx, req.UnitID)
	if err != nil {
		return nil, err
	}

	taken, err := s.materials.CodeTaken(ctx, code, scope.OfficeID, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("check material code: %w", err)
	}
	if taken {
		return nil, conflictf("Gagal! ID Barang \"%s\" sudah ada di kantor ini.", code)
	}

	m := &model.Material{
		ExternalCode: code,
		Name:         name,
		Quantity:     req.Quantity,
		OfficeID:     scope.OfficeID,
		UnitID:       unit.ID,
	}
	if err := s.materials.Create(ctx, m); err != nil {
		if isDuplicateKey(err) {
			return nil, conflictf("Gagal! ID Barang \"%s\" sudah ada di kantor ini.", code)
		}
		return nil, fmt.Errorf("create material: %w", err)
	}
	m.Unit = unit
	resp := materialToResponse(m)
	return &resp, nil
}

// Update edits name and unit. A changed quantity is booked as an adjustment
// entry in the ledger within the same transaction.
func (s *materialService) Update(ctx context.Context, scope access.Scope, id uuid.UUID, req dto.UpdateMaterialRequest) (*dto.MaterialResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationf("Nama material wajib diisi")
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		return nil, validationf("Jumlah tidak boleh negatif")
	}
	if _, err := s.materials.FindInOffice(ctx, id, scope.OfficeID); err != nil {
		return nil, notFoundOr(err, "Material tidak ditemukan", "find material")
	}
	unit, err := s.findUnit(ctx, req.UnitID)
	if err != nil {
		return nil, err
	}

	var updated *model.Material
	err = runTx(ctx, s.materials.DB(), func(tx *gorm.DB) error {
		m, err := s.materials.FindInOfficeTx(tx, id, scope.OfficeID)
		if err != nil {
			return notFoundOr(err, "Material tidak ditemukan", "find material")
		}
		m.Name = name
		m.UnitID = unit.ID
		if err := s.materials.UpdateTx(tx, m); err != nil {
			return fmt.Errorf("update material: %w", err)
		}

		if req.Quantity != nil && *req.Quantity != m.Quantity {
			if err := s.adjust(tx, scope, m, *req.Quantity-m.Quantity); err != nil {
				return err
			}
		}
		m.Unit = unit
		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := materialToResponse(updated)
	return &resp, nil
}

func (s *materialService) adjust(tx *gorm.DB, scope access.Scope, m *model.Material, delta int) error {
	kind, qty := model.KindIn, delta
	if delta < 0 {
		kind, qty = model.KindOut, -delta
		ok, err := s.materials.DeductQuantityTx(tx, m.ID, scope.OfficeID, qty)
		if err != nil {
			return fmt.Errorf("deduct stock: %w", err)
		}
		if !ok {
			return newRuleError(ErrInsufficientStock, "Gagal! Stok %s tidak cukup.", m.Name)
		}
	} else if err := s.materials.AddQuantityTx(tx, m.ID, qty); err != nil {
		return fmt.Errorf("add stock: %w", err)
	}
	m.Quantity += delta

	entry := &model.Transaction{
		MaterialID: m.ID,
		Kind:       kind,
		Quantity:   qty,
		Source:     AdjustmentSource,
		UserID:     scope.UserID,
		OfficeID:   scope.OfficeID,
	}
	if err := s.ledger.CreateTx(tx, entry); err != nil {
		return fmt.Errorf("append adjustment: %w", err)
	}
	return nil
}

func (s *materialService) Delete(ctx context.Context, scope access.Scope, id uuid.UUID) error {
	m, err := s.materials.FindInOffice(ctx, id, scope.OfficeID)
	if err != nil {
		return notFoundOr(err, "Material tidak ditemukan", "find material")
	}
	n, err := s.materials.CountTransactions(ctx, m.ID)
	if err != nil {
		return fmt.Errorf("count material transactions: %w", err)
	}
	if n > 0 {
		return dependentsf("Material tidak bisa dihapus karena sudah memiliki riwayat transaksi.")
	}

	return runTx(ctx, s.materials.DB(), func(tx *gorm.DB) error {
		if err := s.perms.DeleteByMaterialTx(tx, m.ID); err != nil {
			return fmt.Errorf("delete material permissions: %w", err)
		}
		if err := s.materials.DeleteTx(tx, m.ID); err != nil {
			return fmt.Errorf("delete material: %w", err)
		}
		return nil
	})
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func (s *materialService) Export(ctx context.Context, scope access.Scope) ([]byte, string, error) {
	materials, err := s.materials.ListByOffice(ctx, scope.OfficeID)
	if err != nil {
		return nil, "", fmt.Errorf("list materials: %w", err)
	}
	rows := make([][]any, len(materials))
	for i, m := range materials {
		rows[i] = []any{m.ExternalCode, m.Name, m.Quantity, m.UnitName()}
	}
	data, err := infra.WriteSheet("Material", SheetColumns, rows)
	if err != nil {
		return nil, "", fmt.Errorf("write workbook: %w", err)
	}

	office := strings.Trim(unsafeFileChars.ReplaceAllString(scope.OfficeName, "_"), "_")
	if office == "" {
		office = "kantor"
	}
	name := fmt.Sprintf("material_%s_%s.xlsx", strings.ToLower(office), time.Now().Format("20060102"))
	log.Info().
		Str("office_id", scope.OfficeID.String()).
		Int("materials", len(materials)).
		Msg("materials exported")
	return data, name, nil
}

func (s *materialService) findUnit(ctx context.Context, rawID string) (*model.Unit, error) {
	unitID, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, validationf("Satuan tidak valid")
	}
	unit, err := s.units.FindByID(ctx, unitID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, validationf("Satuan tidak ditemukan")
	}
	if err != nil {
		return nil, fmt.Errorf("find unit: %w", err)
	}
	return unit, nil
}

func materialToResponse(m *model.Material) dto.MaterialResponse {
	return dto.MaterialResponse{
		ID:           m.ID.String(),
		ExternalCode: m.ExternalCode,
		Name:         m.Name,
		Quantity:     m.Quantity,
		UnitID:       m.UnitID.String(),
		UnitName:     m.UnitName(),
		OfficeID:     m.OfficeID.String(),
	}
}

func materialsToResponse(materials []model.Material) []dto.MaterialResponse {
	resp := make([]dto.MaterialResponse, len(materials))
	for i := range materials {
		resp[i] = materialToResponse(&materials[i])
	}
	return resp
}
