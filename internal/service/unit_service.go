package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/myr2601/mintyapp/internal/dto"
	"github.com/myr2601/mintyapp/internal/model"
	"github.com/myr2601/mintyapp/internal/repository"

	"github.com/google/uuid"
)

type UnitService interface {
	List(ctx context.Context) ([]dto.UnitResponse, error)
	Create(ctx context.Context, req dto.UnitRequest) (*dto.UnitResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UnitRequest) (*dto.UnitResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type unitService struct {
	repo repository.UnitRepository
}

func NewUnitService(repo repository.UnitRepository) UnitService {
	return &unitService{repo: repo}
}

func (s *unitService) List(ctx context.Context) ([]dto.UnitResponse, error) {
	units, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	resp := make([]dto.UnitResponse, len(units))
	for i, u := range units {
		resp[i] = dto.UnitResponse{ID: u.ID.String(), Name: u.Name}
	}
	return resp, nil
}

func (s *unitService) Create(ctx context.Context, req dto.UnitRequest) (*dto.UnitResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationf("Nama satuan wajib diisi")
	}
	if err := s.checkUnique(ctx, name, uuid.Nil); err != nil {
		return nil, err
	}
	u := &model.Unit{Name: name}
	if err := s.repo.Create(ctx, u); err != nil {
		if isDuplicateKey(err) {
			return nil, conflictf("Satuan \"%s\" sudah ada.", name)
		}
		return nil, fmt.Errorf("create unit: %w", err)
	}
	return &dto.UnitResponse{ID: u.ID.String(), Name: u.Name}, nil
}

func (s *unitService) Update(ctx context.Context, id uuid.UUID, req dto.UnitRequest) (*dto.UnitResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationf("Nama satuan wajib diisi")
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Satuan tidak ditemukan", "find unit")
	}
	if err := s.checkUnique(ctx, name, u.ID); err != nil {
		return nil, err
	}
	u.Name = name
	if err := s.repo.Update(ctx, u); err != nil {
		if isDuplicateKey(err) {
			return nil, conflictf("Satuan \"%s\" sudah ada.", name)
		}
		return nil, fmt.Errorf("update unit: %w", err)
	}
	return &dto.UnitResponse{ID: u.ID.String(), Name: u.Name}, nil
}

// Delete refuses units still referenced by a material.
func (s *unitService) Delete(ctx context.Context, id uuid.UUID) error {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "Satuan tidak ditemukan", "find unit")
	}
	n, err := s.repo.CountMaterials(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("count unit materials: %w", err)
	}
	if n > 0 {
		return dependentsf("Satuan \"%s\" masih dipakai oleh %d material.", u.Name, n)
	}
	if err := s.repo.Delete(ctx, u.ID); err != nil {
		return fmt.Errorf("delete unit: %w", err)
	}
	return nil
}

func (s *unitService) checkUnique(ctx context.Context, name string, exclude uuid.UUID) error {
	taken, err := s.repo.NameTaken(ctx, name, exclude)
	if err != nil {
		return fmt.Errorf("check unit name: %w", err)
	}
	if taken {
		return conflictf("Satuan \"%s\" sudah ada.", name)
	}
	return nil
}
