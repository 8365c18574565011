package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/myr2601/mintyapp/internal/config"
	"github.com/myr2601/mintyapp/internal/dto"
	"github.com/myr2601/mintyapp/internal/infra"
	"github.com/myr2601/mintyapp/internal/metrics"
	"github.com/myr2601/mintyapp/internal/model"
	"github.com/myr2601/mintyapp/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	// Logout revokes the token with the given id until it expires.
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
	Me(ctx context.Context, userID uuid.UUID) (*dto.SessionResponse, error)
	// SessionCurrent is false once the user is deleted or their role or
	// office differs from the token's.
	SessionCurrent(ctx context.Context, userID uuid.UUID, role string, officeID uuid.UUID) (bool, error)
}

type authService struct {
	users    repository.UserRepository
	cfg      *config.Config
	denylist *infra.TokenDenylist
}

func NewAuthService(users repository.UserRepository, cfg *config.Config, denylist *infra.TokenDenylist) AuthService {
	return &authService{users: users, cfg: cfg, denylist: denylist}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find user: %w", err)
		}
		metrics.LoginAttempts.WithLabelValues("unknown_user").Inc()
		return nil, newRuleError(ErrInvalidCredentials, "Username atau Password salah.")
	}

	if !infra.CheckPassword(user.PasswordHash, req.Password) {
		metrics.LoginAttempts.WithLabelValues("bad_password").Inc()
		log.Warn().Str("username", user.Username).Msg("login failed")
		return nil, newRuleError(ErrInvalidCredentials, "Username atau Password salah.")
	}

	if infra.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user, req.Password)
	}

	token, err := s.generateToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	log.Info().Str("user_id", user.ID.String()).Str("username", user.Username).Msg("login")

	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   s.cfg.JWTExpirationHours * 3600,
		User:        sessionFromUser(user),
	}, nil
}

// rehash upgrades a legacy hash to bcrypt. Failure only costs the upgrade.
func (s *authService) rehash(ctx context.Context, user *model.User, password string) {
	hash, err := infra.HashPassword(password)
	if err == nil {
		err = s.users.UpdatePasswordHash(ctx, user.ID, hash)
	}
	if err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("password rehash failed")
		return
	}
	user.PasswordHash = hash
	log.Info().Str("user_id", user.ID.String()).Msg("legacy password hash upgraded")
}

func (s *authService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if err := s.denylist.Revoke(ctx, tokenID, time.Until(expiresAt)); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*dto.SessionResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "User tidak ditemukan", "find user")
	}
	resp := sessionFromUser(user)
	return &resp, nil
}

func (s *authService) SessionCurrent(ctx context.Context, userID uuid.UUID, role string, officeID uuid.UUID) (bool, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find user: %w", err)
	}
	return user.Role == role && user.OfficeID == officeID, nil
}

func (s *authService) generateToken(user *model.User, duration time.Duration) (string, error) {
	now := time.Now()
	officeName := ""
	if user.Office != nil {
		officeName = user.Office.Name
	}
	claims := jwt.MapClaims{
		"jti":         uuid.NewString(),
		"user_id":     user.ID.String(),
		"username":    user.Username,
		"role":        user.Role,
		"office_id":   user.OfficeID.String(),
		"office_name": officeName,
		"exp":         now.Add(duration).Unix(),
		"iat":         now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.SecretKey))
}

func sessionFromUser(u *model.User) dto.SessionResponse {
	r := dto.SessionResponse{
		UserID:   u.ID.String(),
		Username: u.Username,
		Role:     u.Role,
		OfficeID: u.OfficeID.String(),
	}
	if u.Office != nil {
		r.OfficeName = u.Office.Name
	}
	return r
}
