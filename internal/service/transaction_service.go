package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/myr2601/mintyapp/internal/access"
	"github.com/myr2601/mintyapp/internal/dto"
	"github.com/myr2601/mintyapp/internal/metrics"
	"github.com/myr2601/mintyapp/internal/model"
	"github.com/myr2601/mintyapp/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// TransactionService is the stock transaction processor and the ledger reader.
type TransactionService interface {
	// Process applies a batch of IN or OUT lines for the caller's office.
	// Either every accepted line is applied or none is.
	Process(ctx context.Context, scope access.Scope, req dto.TransactionRequest) (*dto.BatchResponse, error)
	// AvailableMaterials lists the materials the caller may pick, by name.
	AvailableMaterials(ctx context.Context, scope access.Scope) ([]dto.MaterialResponse, error)
	History(ctx context.Context, scope access.Scope, filter dto.HistoryFilter) (*dto.HistoryResponse, error)
	ClearHistory(ctx context.Context, scope access.Scope) (*dto.ClearHistoryResponse, error)
}

type transactionService struct {
	users     repository.UserRepository
	materials repository.MaterialRepository
	ledger    repository.TransactionRepository
	perms     repository.PermissionRepository
}

func NewTransactionService(
	users repository.UserRepository,
	materials repository.MaterialRepository,
	ledger repository.TransactionRepository,
	perms repository.PermissionRepository,
) TransactionService {
	return &transactionService{users: users, materials: materials, ledger: ledger, perms: perms}
}

// ── Process ───────────────────────────────────────────────────────────────────
// Per line: skip empty/non-positive, resolve inside the caller's office, skip
// materials the caller may not use, then IN adds and OUT deducts. An OUT that
// would go below zero aborts the whole batch.

func (s *transactionService) Process(ctx context.Context, scope access.Scope, req dto.TransactionRequest) (*dto.BatchResponse, error) {
	if !scope.Valid() {
		return nil, newRuleError(ErrForbidden, "Sesi tidak valid")
	}
	kind := strings.ToUpper(strings.TrimSpace(req.Kind))
	if kind != model.KindIn && kind != model.KindOut {
		return nil, validationf("Tipe transaksi harus IN atau OUT")
	}
	source := batchSource(kind, req)

	var resp *dto.BatchResponse
	err := runTx(ctx, s.materials.DB(), func(tx *gorm.DB) error {
		resp = &dto.BatchResponse{Kind: kind, Entries: []dto.TransactionResponse{}}

		if err := s.checkCaller(tx, scope); err != nil {
			return err
		}

		var permitted access.MaterialSet
		if !scope.IsAdmin() {
			ids, err := s.perms.MaterialIDsTx(tx, scope.UserID)
			if err != nil {
				return fmt.Errorf("load permissions: %w", err)
			}
			permitted = access.NewMaterialSet(ids...)
		}

		for _, line := range req.Lines {
			id, ok := parseLine(line)
			if !ok || !access.Can(scope.Role, permitted, id) {
				resp.Skipped++
				continue
			}

			m, err := s.materials.FindInOfficeTx(tx, id, scope.OfficeID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				resp.Skipped++
				continue
			}
			if err != nil {
				return fmt.Errorf("find material %s: %w", id, err)
			}

			if err := s.apply(tx, scope, kind, m, line.Quantity); err != nil {
				return err
			}

			entry := &model.Transaction{
				MaterialID: m.ID,
				Kind:       kind,
				Quantity:   line.Quantity,
				Source:     source,
				UserID:     scope.UserID,
				OfficeID:   scope.OfficeID,
			}
			if err := s.ledger.CreateTx(tx, entry); err != nil {
				return fmt.Errorf("append ledger entry: %w", err)
			}
			entry.Material = m
			entry.User = &model.User{ID: scope.UserID, Username: scope.Username}
			resp.Entries = append(resp.Entries, transactionToResponse(entry))
			resp.Processed++
		}
		return nil
	})

	switch {
	case errors.Is(err, ErrInsufficientStock):
		metrics.TransactionBatches.WithLabelValues(kind, "rejected").Inc()
		log.Warn().
			Str("office_id", scope.OfficeID.String()).
			Str("user_id", scope.UserID.String()).
			Str("reason", err.Error()).
			Msg("transaction batch rejected")
		return nil, err
	case err != nil:
		metrics.TransactionBatches.WithLabelValues(kind, "failed").Inc()
		return nil, err
	}

	metrics.TransactionBatches.WithLabelValues(kind, "committed").Inc()
	for _, e := range resp.Entries {
		metrics.StockMoved.WithLabelValues(kind).Add(float64(e.Quantity))
	}
	log.Info().
		Str("office_id", scope.OfficeID.String()).
		Str("user_id", scope.UserID.String()).
		Str("kind", kind).
		Int("processed", resp.Processed).
		Int("skipped", resp.Skipped).
		Msg("transaction batch committed")
	return resp, nil
}

// checkCaller rejects a scope whose role or office no longer matches the
// stored account, e.g. a token issued before a demotion or office move.
func (s *transactionService) checkCaller(tx *gorm.DB, scope access.Scope) error {
	u, err := s.users.FindByIDTx(tx, scope.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newRuleError(ErrForbidden, "Sesi sudah tidak berlaku, silakan login kembali")
	}
	if err != nil {
		return fmt.Errorf("load caller: %w", err)
	}
	if u.Role != scope.Role || u.OfficeID != scope.OfficeID {
		return newRuleError(ErrForbidden, "Sesi sudah tidak berlaku, silakan login kembali")
	}
	return nil
}

func (s *transactionService) apply(tx *gorm.DB, scope access.Scope, kind string, m *model.Material, qty int) error {
	if kind == model.KindIn {
		if err := s.materials.AddQuantityTx(tx, m.ID, qty); err != nil {
			return fmt.Errorf("add stock: %w", err)
		}
		m.Quantity += qty
		return nil
	}

	ok, err := s.materials.DeductQuantityTx(tx, m.ID, scope.OfficeID, qty)
	if err != nil {
		return fmt.Errorf("deduct stock: %w", err)
	}
	if !ok {
		return newRuleError(ErrInsufficientStock, "Gagal! Stok %s tidak cukup.", m.Name)
	}
	m.Quantity -= qty
	return nil
}

// parseLine returns the material id of a line worth processing.
func parseLine(line dto.TransactionLine) (uuid.UUID, bool) {
	ref := strings.TrimSpace(line.MaterialID)
	if ref == "" || line.Quantity <= 0 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(ref)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// batchSource is the description stored on every entry of a batch:
// the origin for IN, "<method> - <destination>" for OUT.
func batchSource(kind string, req dto.TransactionRequest) string {
	if kind == model.KindIn {
		return strings.TrimSpace(req.Source)
	}
	method := strings.TrimSpace(req.Method)
	dest := strings.TrimSpace(req.Destination)
	switch {
	case method == "":
		return dest
	case dest == "":
		return method
	}
	return method + " - " + dest
}

// ── Visibility ────────────────────────────────────────────────────────────────

func (s *transactionService) AvailableMaterials(ctx context.Context, scope access.Scope) ([]dto.MaterialResponse, error) {
	var (
		materials []model.Material
		err       error
	)
	if scope.IsAdmin() {
		materials, err = s.materials.ListByOffice(ctx, scope.OfficeID)
	} else {
		materials, err = s.materials.ListPermitted(ctx, scope.UserID, scope.OfficeID)
	}
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	return materialsToResponse(materials), nil
}

// ── History ───────────────────────────────────────────────────────────────────

func (s *transactionService) History(ctx context.Context, scope access.Scope, filter dto.HistoryFilter) (*dto.HistoryResponse, error) {
	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > repository.MaxPageSize {
		limit = 100
	}
	entries, total, err := s.ledger.List(ctx, repository.TransactionFilter{
		OfficeID: scope.OfficeID,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	resp := &dto.HistoryResponse{
		Data:  make([]dto.TransactionResponse, len(entries)),
		Total: total,
		Page:  page,
		Limit: limit,
	}
	for i := range entries {
		resp.Data[i] = transactionToResponse(&entries[i])
	}
	return resp, nil
}

func (s *transactionService) ClearHistory(ctx context.Context, scope access.Scope) (*dto.ClearHistoryResponse, error) {
	if !scope.IsAdmin() {
		return nil, newRuleError(ErrForbidden, "Hanya admin yang dapat menghapus riwayat transaksi")
	}
	n, err := s.ledger.DeleteByOffice(ctx, scope.OfficeID)
	if err != nil {
		return nil, fmt.Errorf("clear history: %w", err)
	}
	log.Info().
		Str("office_id", scope.OfficeID.String()).
		Str("user_id", scope.UserID.String()).
		Int64("deleted", n).
		Msg("transaction history cleared")
	return &dto.ClearHistoryResponse{Deleted: n}, nil
}

func transactionToResponse(t *model.Transaction) dto.TransactionResponse {
	r := dto.TransactionResponse{
		ID:         t.ID.String(),
		MaterialID: t.MaterialID.String(),
		Kind:       t.Kind,
		Quantity:   t.Quantity,
		Source:     t.Source,
		UserID:     t.UserID.String(),
		Timestamp:  t.Timestamp,
	}
	if t.Material != nil {
		r.MaterialCode = t.Material.ExternalCode
		r.MaterialName = t.Material.Name
		r.UnitName = t.Material.UnitName()
	}
	if t.User != nil {
		r.Username = t.User.Username
	}
	return r
}
