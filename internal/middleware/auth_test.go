package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/myr2601/mintyapp/internal/access"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_jwt_secret_32_chars_minimum!"

func init() { gin.SetMode(gin.TestMode) }

type stubRevocations struct {
	revoked map[string]bool
	err     error
}

func (s stubRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	return s.revoked[id], s.err
}

type stubAccounts struct {
	role   string
	office string
	err    error
}

func (s stubAccounts) SessionCurrent(_ context.Context, _ uuid.UUID, role string, officeID uuid.UUID) (bool, error) {
	return s.role == role && s.office == officeID.String(), s.err
}

func signToken(t *testing.T, jti, userID, officeID, role string, dur time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"jti": jti, "user_id": userID, "username": "budi", "role": role,
		"office_id": officeID, "office_name": "Kantor Pusat",
		"exp": time.Now().Add(dur).Unix(), "iat": time.Now().Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func newAuthEngine(rev Revocations, roles ...string) *gin.Engine {
	return newAccountsEngine(rev, nil, roles...)
}

func newAccountsEngine(rev Revocations, accounts Accounts, roles ...string) *gin.Engine {
	r := gin.New()
	chain := []gin.HandlerFunc{JWTAuth(testSecret, rev, accounts)}
	if len(roles) > 0 {
		chain = append(chain, RequireRole(roles...))
	}
	chain = append(chain, func(c *gin.Context) {
		scope := GetScope(c)
		c.JSON(http.StatusOK, gin.H{"user_id": scope.UserID.String(), "office": scope.OfficeName})
	})
	r.GET("/x", chain...)
	return r
}

func get(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	userID, officeID := uuid.NewString(), uuid.NewString()
	r := newAuthEngine(nil)

	w := get(r, signToken(t, "t1", userID, officeID, access.RoleUser, time.Hour))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID)
	assert.Contains(t, w.Body.String(), "Kantor Pusat")

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, signToken(t, "t2", userID, officeID, access.RoleUser, -time.Minute)).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, signToken(t, "t3", userID, "", access.RoleUser, time.Hour)).Code,
		"tokens without an office are rejected")
}

func TestJWTAuth_Revoked(t *testing.T) {
	userID, officeID := uuid.NewString(), uuid.NewString()

	r := newAuthEngine(stubRevocations{revoked: map[string]bool{"gone": true}})
	assert.Equal(t, http.StatusUnauthorized, get(r, signToken(t, "gone", userID, officeID, access.RoleUser, time.Hour)).Code)
	assert.Equal(t, http.StatusOK, get(r, signToken(t, "live", userID, officeID, access.RoleUser, time.Hour)).Code)

	down := newAuthEngine(stubRevocations{err: errors.New("redis down")})
	assert.Equal(t, http.StatusOK, get(down, signToken(t, "gone", userID, officeID, access.RoleUser, time.Hour)).Code)
}

func TestJWTAuth_StaleRoleOrOffice(t *testing.T) {
	userID, officeID := uuid.NewString(), uuid.NewString()
	r := newAccountsEngine(nil, stubAccounts{role: access.RoleUser, office: officeID}, access.RoleAdmin)

	assert.Equal(t, http.StatusUnauthorized, get(r, signToken(t, "a", userID, officeID, access.RoleAdmin, time.Hour)).Code,
		"demoted admin keeps no admin access")

	moved := newAccountsEngine(nil, stubAccounts{role: access.RoleUser, office: uuid.NewString()})
	assert.Equal(t, http.StatusUnauthorized, get(moved, signToken(t, "b", userID, officeID, access.RoleUser, time.Hour)).Code)

	current := newAccountsEngine(nil, stubAccounts{role: access.RoleUser, office: officeID})
	assert.Equal(t, http.StatusOK, get(current, signToken(t, "c", userID, officeID, access.RoleUser, time.Hour)).Code)

	broken := newAccountsEngine(nil, stubAccounts{err: errors.New("db down")})
	assert.Equal(t, http.StatusInternalServerError, get(broken, signToken(t, "d", userID, officeID, access.RoleUser, time.Hour)).Code)
}

func TestRequireRole(t *testing.T) {
	userID, officeID := uuid.NewString(), uuid.NewString()
	r := newAuthEngine(nil, access.RoleAdmin)

	assert.Equal(t, http.StatusForbidden, get(r, signToken(t, "a", userID, officeID, access.RoleUser, time.Hour)).Code)
	assert.Equal(t, http.StatusOK, get(r, signToken(t, "b", userID, officeID, access.RoleAdmin, time.Hour)).Code)
}
