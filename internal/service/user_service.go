package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/myr2601/mintyapp/internal/access"
	"github.com/myr2601/mintyapp/internal/dto"
	"github.com/myr2601/mintyapp/internal/infra"
	"github.com/myr2601/mintyapp/internal/model"
	"github.com/myr2601/mintyapp/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// UserService manages accounts and their material permissions.
type UserService interface {
	List(ctx context.Context) ([]dto.UserResponse, error)
	Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	Update(ctx context.Context, scope access.Scope, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, scope access.Scope, id uuid.UUID) error
	Permissions(ctx context.Context, id uuid.UUID) (*dto.PermissionsResponse, error)
	// ReplacePermissions swaps the user's whole permission set. Ids that are
	// unknown or belong to another office are ignored.
	ReplacePermissions(ctx context.Context, id uuid.UUID, req dto.PermissionsRequest) (*dto.PermissionsResponse, error)
}

type userService struct {
	users     repository.UserRepository
	offices   repository.OfficeRepository
	materials repository.MaterialRepository
	perms     repository.PermissionRepository
}

func NewUserService(
	users repository.UserRepository,
	offices repository.OfficeRepository,
	materials repository.MaterialRepository,
	perms repository.PermissionRepository,
) UserService {
	return &userService{users: users, offices: offices, materials: materials, perms: perms}
}

func (s *userService) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	resp := make([]dto.UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(&users[i])
	}
	return resp, nil
}

func (s *userService) Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, validationf("Username wajib diisi")
	}
	if req.Role != model.RoleAdmin && req.Role != model.RoleUser {
		return nil, validationf("Role harus admin atau user")
	}
	office, err := s.findOffice(ctx, req.OfficeID)
	if err != nil {
		return nil, err
	}

	taken, err := s.users.UsernameTaken(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, conflictf("Username \"%s\" sudah digunakan.", username)
	}

	hash, err := infra.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         req.Role,
		OfficeID:     office.ID,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if isDuplicateKey(err) {
			return nil, conflictf("Username \"%s\" sudah digunakan.", username)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	u.Office = office
	resp := userToResponse(u)
	return &resp, nil
}

// Update changes password, role and office. Moving a user to another office
// drops their permissions, which all point at the old office's materials.
// Users with ledger entries stay in their office.
func (s *userService) Update(ctx context.Context, scope access.Scope, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "User tidak ditemukan", "find user")
	}

	if req.Role != "" && req.Role != u.Role {
		if req.Role != model.RoleAdmin && req.Role != model.RoleUser {
			return nil, validationf("Role harus admin atau user")
		}
		if u.ID == scope.UserID {
			return nil, newRuleError(ErrSelfAction, "Kamu tidak bisa mengubah role akunmu sendiri!")
		}
		u.Role = req.Role
	}

	officeChanged := false
	if req.OfficeID != "" {
		office, err := s.findOffice(ctx, req.OfficeID)
		if err != nil {
			return nil, err
		}
		if office.ID != u.OfficeID {
			n, err := s.users.CountTransactions(ctx, u.ID)
			if err != nil {
				return nil, fmt.Errorf("count user transactions: %w", err)
			}
			if n > 0 {
				return nil, dependentsf("User \"%s\" tidak bisa dipindah kantor karena memiliki riwayat transaksi.", u.Username)
			}
			officeChanged = true
			u.OfficeID = office.ID
			u.Office = office
		}
	}

	if req.Password != "" {
		hash, err := infra.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}

	err = runTx(ctx, s.users.DB(), func(tx *gorm.DB) error {
		if err := s.users.UpdateTx(tx, u); err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		if officeChanged {
			if err := s.perms.DeleteByUserTx(tx, u.ID); err != nil {
				return fmt.Errorf("clear permissions: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := userToResponse(u)
	return &resp, nil
}

func (s *userService) Delete(ctx context.Context, scope access.Scope, id uuid.UUID) error {
	if id == scope.UserID {
		return newRuleError(ErrSelfAction, "Kamu tidak bisa menghapus akunmu sendiri!")
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "User tidak ditemukan", "find user")
	}
	n, err := s.users.CountTransactions(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("count user transactions: %w", err)
	}
	if n > 0 {
		return dependentsf("User \"%s\" tidak bisa dihapus karena memiliki riwayat transaksi.", u.Username)
	}

	err = runTx(ctx, s.users.DB(), func(tx *gorm.DB) error {
		if err := s.perms.DeleteByUserTx(tx, u.ID); err != nil {
			return fmt.Errorf("delete permissions: %w", err)
		}
		if err := s.users.DeleteTx(tx, u.ID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Info().Str("user_id", u.ID.String()).Str("by", scope.UserID.String()).Msg("user deleted")
	return nil
}

func (s *userService) Permissions(ctx context.Context, id uuid.UUID) (*dto.PermissionsResponse, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "User tidak ditemukan", "find user")
	}
	materials, err := s.materials.ListByOffice(ctx, u.OfficeID)
	if err != nil {
		return nil, fmt.Errorf("list office materials: %w", err)
	}
	ids, err := s.perms.MaterialIDsTx(s.users.DB().WithContext(ctx), u.ID)
	if err != nil {
		return nil, fmt.Errorf("load permissions: %w", err)
	}

	resp := &dto.PermissionsResponse{
		UserID:       u.ID.String(),
		Username:     u.Username,
		Materials:    materialsToResponse(materials),
		PermittedIDs: make([]string, 0, len(ids)),
	}
	// Only ids of the user's current office are reported.
	inOffice := make(map[uuid.UUID]bool, len(materials))
	for _, m := range materials {
		inOffice[m.ID] = true
	}
	for _, mid := range ids {
		if inOffice[mid] {
			resp.PermittedIDs = append(resp.PermittedIDs, mid.String())
		}
	}
	return resp, nil
}

func (s *userService) ReplacePermissions(ctx context.Context, id uuid.UUID, req dto.PermissionsRequest) (*dto.PermissionsResponse, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "User tidak ditemukan", "find user")
	}

	err = runTx(ctx, s.users.DB(), func(tx *gorm.DB) error {
		seen := make(map[uuid.UUID]bool, len(req.MaterialIDs))
		keep := make([]uuid.UUID, 0, len(req.MaterialIDs))
		for _, raw := range req.MaterialIDs {
			mid, err := uuid.Parse(strings.TrimSpace(raw))
			if err != nil || seen[mid] {
				continue
			}
			seen[mid] = true
			_, err = s.materials.FindInOfficeTx(tx, mid, u.OfficeID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("find material %s: %w", mid, err)
			}
			keep = append(keep, mid)
		}
		return s.perms.ReplaceTx(tx, u.ID, keep)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("user_id", u.ID.String()).Msg("material permissions replaced")
	return s.Permissions(ctx, id)
}

func (s *userService) findOffice(ctx context.Context, rawID string) (*model.Office, error) {
	officeID, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, validationf("Kamu harus memilih kantor untuk user baru.")
	}
	office, err := s.offices.FindByID(ctx, officeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, validationf("Kantor tidak ditemukan")
	}
	if err != nil {
		return nil, fmt.Errorf("find office: %w", err)
	}
	return office, nil
}

func userToResponse(u *model.User) dto.UserResponse {
	r := dto.UserResponse{
		ID:       u.ID.String(),
		Username: u.Username,
		Role:     u.Role,
		OfficeID: u.OfficeID.String(),
	}
	if u.Office != nil {
		r.OfficeName = u.Office.Name
	}
	return r
}
