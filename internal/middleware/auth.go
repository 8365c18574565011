package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/myr2601/mintyapp/internal/access"
	"github.com/myr2601/mintyapp/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	ClaimsKey = "claims"
)

// JWTClaims are the custom claims embedded in every access token.
type JWTClaims struct {
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	OfficeID   string `json:"office_id"`
	OfficeName string `json:"office_name"`
	jwt.RegisteredClaims
}

// Revocations reports whether a token id was revoked by a logout.
type Revocations interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Accounts reports whether a user still holds the role and office a token
// was issued for.
type Accounts interface {
	SessionCurrent(ctx context.Context, userID uuid.UUID, role string, officeID uuid.UUID) (bool, error)
}

// JWTAuth validates the Bearer token on every protected route.
// revoked and accounts may be nil.
func JWTAuth(secret string, revoked Revocations, accounts Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Silakan login terlebih dahulu"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token tidak valid atau kedaluwarsa"))
			return
		}
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token tidak valid atau kedaluwarsa"))
			return
		}
		officeID, err := uuid.Parse(claims.OfficeID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token tidak valid atau kedaluwarsa"))
			return
		}

		if revoked != nil {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				// Fail open while the denylist is unreachable.
				log.Warn().Err(err).Str("request_id", c.GetString(RequestIDKey)).Msg("token denylist unavailable")
			} else if isRevoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Sesi sudah berakhir, silakan login kembali"))
				return
			}
		}

		if accounts != nil {
			current, err := accounts.SessionCurrent(c.Request.Context(), userID, claims.Role, officeID)
			if err != nil {
				log.Error().Err(err).Str("request_id", c.GetString(RequestIDKey)).Msg("session check failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New(internalErrorMessage))
				return
			}
			if !current {
				c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Sesi sudah tidak berlaku, silakan login kembali"))
				return
			}
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRole rejects requests whose JWT role is not in the allowed list.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		claims, ok := c.MustGet(ClaimsKey).(*JWTClaims)
		if !ok || !allowed[claims.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Akses ditolak. Halaman ini hanya untuk Admin."))
			return
		}
		c.Next()
	}
}

// GetClaims is a helper to retrieve typed claims from the Gin context.
func GetClaims(c *gin.Context) *JWTClaims {
	claims, _ := c.MustGet(ClaimsKey).(*JWTClaims)
	return claims
}

// GetScope builds the caller's access scope from the validated claims.
func GetScope(c *gin.Context) access.Scope {
	claims := GetClaims(c)
	if claims == nil {
		return access.Scope{}
	}
	userID, _ := uuid.Parse(claims.UserID)
	officeID, _ := uuid.Parse(claims.OfficeID)
	return access.Scope{
		UserID:     userID,
		Username:   claims.Username,
		Role:       claims.Role,
		OfficeID:   officeID,
		OfficeName: claims.OfficeName,
	}
}
