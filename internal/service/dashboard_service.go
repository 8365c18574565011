package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/myr2601/mintyapp/internal/access"
	"github.com/myr2601/mintyapp/internal/dto"
	"github.com/myr2601/mintyapp/internal/repository"

	"gorm.io/gorm"
)

type DashboardService interface {
	Summary(ctx context.Context, scope access.Scope, filter dto.MaterialFilter) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	materials         repository.MaterialRepository
	ledger            repository.TransactionRepository
	lowStockThreshold int
	pageSize          int
}

func NewDashboardService(
	materials repository.MaterialRepository,
	ledger repository.TransactionRepository,
	lowStockThreshold, pageSize int,
) DashboardService {
	return &dashboardService{
		materials:         materials,
		ledger:            ledger,
		lowStockThreshold: lowStockThreshold,
		pageSize:          pageSize,
	}
}

func (s *dashboardService) Summary(ctx context.Context, scope access.Scope, filter dto.MaterialFilter) (*dto.DashboardResponse, error) {
	types, stock, err := s.materials.Totals(ctx, scope.OfficeID)
	if err != nil {
		return nil, fmt.Errorf("material totals: %w", err)
	}

	resp := &dto.DashboardResponse{
		OfficeName:         scope.OfficeName,
		TotalMaterialTypes: types,
		TotalStock:         stock,
		LowStockThreshold:  s.lowStockThreshold,
		Search:             strings.TrimSpace(filter.Search),
	}

	latest, err := s.ledger.Latest(ctx, scope.OfficeID)
	switch {
	case err == nil:
		r := transactionToResponse(latest)
		resp.LatestTransaction = &r
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("latest transaction: %w", err)
	}

	low, err := s.materials.LowStock(ctx, scope.OfficeID, s.lowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	resp.LowStock = materialsToResponse(low)

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.pageSize
	}
	if limit > repository.MaxPageSize {
		limit = repository.MaxPageSize
	}
	materials, total, err := s.materials.List(ctx, repository.MaterialFilter{
		OfficeID: scope.OfficeID,
		Search:   resp.Search,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	resp.Materials = dto.MaterialListResponse{
		Data:       materialsToResponse(materials),
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}
	return resp, nil
}
