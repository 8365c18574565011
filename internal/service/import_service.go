package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/myr2601/mintyapp/internal/access"
	"github.com/myr2601/mintyapp/internal/dto"
	"github.com/myr2601/mintyapp/internal/infra"
	"github.com/myr2601/mintyapp/internal/metrics"
	"github.com/myr2601/mintyapp/internal/model"
	"github.com/myr2601/mintyapp/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	colCode     = "id_barang"
	colName     = "nama_material"
	colQuantity = "jumlah"
	colUnit     = "satuan"
)

// ImportService folds spreadsheet rows into the caller's catalog.
type ImportService interface {
	Import(ctx context.Context, scope access.Scope, sheet *infra.Sheet) (*dto.ImportResponse, error)
}

type importService struct {
	materials repository.MaterialRepository
	units     repository.UnitRepository
}

func NewImportService(materials repository.MaterialRepository, units repository.UnitRepository) ImportService {
	return &importService{materials: materials, units: units}
}

// NormalizeHeader lowercases a column title and replaces spaces with underscores.
func NormalizeHeader(h string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

// Import runs in one transaction. Existing (code, office) rows are merged by
// adding the quantity, without a ledger entry. New codes need a known unit;
// rows with an unknown unit are skipped with a warning. Any malformed row
// rolls back the whole file.
func (s *importService) Import(ctx context.Context, scope access.Scope, sheet *infra.Sheet) (*dto.ImportResponse, error) {
	if sheet == nil {
		return nil, validationf("File Excel kosong")
	}

	columns := make(map[string]string, len(sheet.Headers))
	for _, h := range sheet.Headers {
		if n := NormalizeHeader(h); n != "" {
			if _, dup := columns[n]; !dup {
				columns[n] = h
			}
		}
	}
	for _, required := range SheetColumns {
		if _, ok := columns[required]; !ok {
			return nil, validationf("File Excel tidak memiliki semua kolom yang dibutuhkan (%s).", strings.Join(SheetColumns, ", "))
		}
	}

	cell := func(row map[string]string, col string) string {
		return strings.TrimSpace(row[columns[col]])
	}

	var resp *dto.ImportResponse
	err := runTx(ctx, s.materials.DB(), func(tx *gorm.DB) error {
		resp = &dto.ImportResponse{Warnings: []string{}}

		for i, row := range sheet.Rows {
			line := i + 2 // header is row 1
			code := cell(row, colCode)
			if code == "" {
				return validationf("Baris %d: id_barang kosong", line)
			}
			qty, err := parseQuantity(cell(row, colQuantity))
			if err != nil {
				return validationf("Baris %d: jumlah %q tidak valid", line, cell(row, colQuantity))
			}

			existing, err := s.materials.FindByCodeTx(tx, code, scope.OfficeID)
			switch {
			case err == nil:
				if err := s.materials.AddQuantityTx(tx, existing.ID, qty); err != nil {
					return fmt.Errorf("merge %s: %w", code, err)
				}
				resp.Merged++
				continue
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return fmt.Errorf("find %s: %w", code, err)
			}

			unitName := cell(row, colUnit)
			unit, err := s.units.FindByNameTx(tx, unitName)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				resp.Warnings = append(resp.Warnings, fmt.Sprintf(
					"Peringatan: Satuan '%s' untuk ID Barang '%s' tidak ditemukan. Baris ini dilewati.", unitName, code))
				resp.Skipped++
				continue
			}
			if err != nil {
				return fmt.Errorf("find unit %q: %w", unitName, err)
			}

			name := cell(row, colName)
			if name == "" {
				return validationf("Baris %d: nama_material kosong", line)
			}
			m := &model.Material{
				ExternalCode: code,
				Name:         name,
				Quantity:     qty,
				OfficeID:     scope.OfficeID,
				UnitID:       unit.ID,
			}
			if err := s.materials.CreateTx(tx, m); err != nil {
				return fmt.Errorf("create %s: %w", code, err)
			}
			resp.Created++
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("office_id", scope.OfficeID.String()).Msg("import rolled back")
		return nil, err
	}

	metrics.ImportRows.WithLabelValues("created").Add(float64(resp.Created))
	metrics.ImportRows.WithLabelValues("merged").Add(float64(resp.Merged))
	metrics.ImportRows.WithLabelValues("skipped").Add(float64(resp.Skipped))
	for _, w := range resp.Warnings {
		log.Warn().Str("office_id", scope.OfficeID.String()).Msg(w)
	}
	log.Info().
		Str("office_id", scope.OfficeID.String()).
		Str("user_id", scope.UserID.String()).
		Int("created", resp.Created).
		Int("merged", resp.Merged).
		Int("skipped", resp.Skipped).
		Msg("materials imported")
	return resp, nil
}

// parseQuantity accepts non-negative integers and integral floats such as "7.0".
func parseQuantity(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, errors.New("negative quantity")
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, errors.New("quantity must be a non-negative whole number")
	}
	return int(f), nil
}
