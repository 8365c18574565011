package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/myr2601/mintyapp/internal/dto"
	"github.com/myr2601/mintyapp/internal/model"
	"github.com/myr2601/mintyapp/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type OfficeService interface {
	List(ctx context.Context) ([]dto.OfficeResponse, error)
	Create(ctx context.Context, req dto.OfficeRequest) (*dto.OfficeResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.OfficeRequest) (*dto.OfficeResponse, error)
	// Delete refuses offices that still own users, materials or transactions.
	Delete(ctx context.Context, id uuid.UUID) error
}

type officeService struct {
	repo repository.OfficeRepository
}

func NewOfficeService(repo repository.OfficeRepository) OfficeService {
	return &officeService{repo: repo}
}

func (s *officeService) List(ctx context.Context) ([]dto.OfficeResponse, error) {
	offices, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list offices: %w", err)
	}
	resp := make([]dto.OfficeResponse, len(offices))
	for i := range offices {
		resp[i] = officeToResponse(&offices[i])
	}
	return resp, nil
}

func (s *officeService) Create(ctx context.Context, req dto.OfficeRequest) (*dto.OfficeResponse, error) {
	name, code := strings.TrimSpace(req.Name), strings.TrimSpace(req.Code)
	if name == "" || code == "" {
		return nil, validationf("Nama dan Kode Kantor wajib diisi")
	}
	if err := s.checkUnique(ctx, name, code, uuid.Nil); err != nil {
		return nil, err
	}
	o := &model.Office{Name: name, Code: code}
	if err := s.repo.Create(ctx, o); err != nil {
		if isDuplicateKey(err) {
			return nil, conflictf("Nama atau Kode Kantor sudah ada.")
		}
		return nil, fmt.Errorf("create office: %w", err)
	}
	resp := officeToResponse(o)
	return &resp, nil
}

func (s *officeService) Update(ctx context.Context, id uuid.UUID, req dto.OfficeRequest) (*dto.OfficeResponse, error) {
	name, code := strings.TrimSpace(req.Name), strings.TrimSpace(req.Code)
	if name == "" || code == "" {
		return nil, validationf("Nama dan Kode Kantor wajib diisi")
	}
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Kantor tidak ditemukan", "find office")
	}
	if err := s.checkUnique(ctx, name, code, o.ID); err != nil {
		return nil, err
	}
	o.Name, o.Code = name, code
	if err := s.repo.Update(ctx, o); err != nil {
		if isDuplicateKey(err) {
			return nil, conflictf("Nama atau Kode Kantor sudah ada.")
		}
		return nil, fmt.Errorf("update office: %w", err)
	}
	resp := officeToResponse(o)
	return &resp, nil
}

func (s *officeService) Delete(ctx context.Context, id uuid.UUID) error {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "Kantor tidak ditemukan", "find office")
	}
	deps, err := s.repo.CountDependents(ctx, o.ID)
	if err != nil {
		return fmt.Errorf("count office dependents: %w", err)
	}
	if deps.Any() {
		return dependentsf("Gagal! Kantor \"%s\" tidak bisa dihapus karena masih memiliki data terkait.", o.Name)
	}
	if err := s.repo.Delete(ctx, o.ID); err != nil {
		return fmt.Errorf("delete office: %w", err)
	}
	log.Info().Str("office_id", o.ID.String()).Str("name", o.Name).Msg("office deleted")
	return nil
}

func (s *officeService) checkUnique(ctx context.Context, name, code string, exclude uuid.UUID) error {
	taken, err := s.repo.NameOrCodeTaken(ctx, name, code, exclude)
	if err != nil {
		return fmt.Errorf("check office uniqueness: %w", err)
	}
	if taken {
		return conflictf("Nama atau Kode Kantor sudah ada.")
	}
	return nil
}

func officeToResponse(o *model.Office) dto.OfficeResponse {
	return dto.OfficeResponse{ID: o.ID.String(), Name: o.Name, Code: o.Code}
}
