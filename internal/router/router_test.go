package router_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/myr2601/mintyapp/internal/config"
	"github.com/myr2601/mintyapp/internal/dto"
	"github.com/myr2601/mintyapp/internal/infra"
	"github.com/myr2601/mintyapp/internal/model"
	"github.com/myr2601/mintyapp/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	infra.BcryptCost = bcrypt.MinCost
}

type app struct {
	engine *gin.Engine
	db     *gorm.DB
	office *model.Office
	pcs    *model.Unit
}

func newApp(t *testing.T) *app {
	t.Helper()
	db, err := infra.NewDatabase("", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	office := &model.Office{Name: "Kantor Pusat", Code: "KP"}
	require.NoError(t, db.Create(office).Error)
	pcs := &model.Unit{Name: "pcs"}
	require.NoError(t, db.Create(pcs).Error)

	for _, u := range []struct{ name, role string }{{"admin", model.RoleAdmin}, {"budi", model.RoleUser}} {
		hash, err := infra.HashPassword("rahasia")
		require.NoError(t, err)
		require.NoError(t, db.Create(&model.User{
			Username: u.name, PasswordHash: hash, Role: u.role, OfficeID: office.ID,
		}).Error)
	}

	cfg := &config.Config{
		Env:                "test",
		SecretKey:          "test-secret-key",
		JWTExpirationHours: 8,
		LowStockThreshold:  50,
		PageSize:           10,
		ImportMaxMB:        1,
	}
	return &app{engine: router.New(cfg, db, nil), db: db, office: office, pcs: pcs}
}

func (a *app) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *app) login(t *testing.T, username string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/v1/auth/login", dto.LoginRequest{Username: username, Password: "rahasia"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	a := newApp(t)
	w := a.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"disabled"`)
}

func TestLogin_BadPassword(t *testing.T) {
	a := newApp(t)
	w := a.do(t, http.MethodPost, "/v1/auth/login", dto.LoginRequest{Username: "admin", Password: "salah"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Username atau Password salah.")
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	a := newApp(t)
	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/v1/admin/materials", nil, "").Code)

	user := a.login(t, "budi")
	assert.Equal(t, http.StatusForbidden, a.do(t, http.MethodGet, "/v1/admin/materials", nil, user).Code)
	assert.Equal(t, http.StatusForbidden, a.do(t, http.MethodDelete, "/v1/transactions", nil, user).Code)
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/v1/dashboard", nil, user).Code)
}

func TestDemotedAdminTokenLosesAccess(t *testing.T) {
	a := newApp(t)
	admin := a.login(t, "admin")

	boss := &model.User{Username: "boss", Role: model.RoleAdmin, OfficeID: a.office.ID}
	hash, err := infra.HashPassword("rahasia")
	require.NoError(t, err)
	boss.PasswordHash = hash
	require.NoError(t, a.db.Create(boss).Error)
	stale := a.login(t, "boss")
	require.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/v1/admin/users", nil, stale).Code)

	w := a.do(t, http.MethodPut, "/v1/admin/users/"+boss.ID.String(), dto.UpdateUserRequest{Role: model.RoleUser}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/v1/admin/users", nil, stale).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/v1/auth/me", nil, stale).Code)
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/v1/auth/me", nil, a.login(t, "boss")).Code)
}

func TestStockFlow(t *testing.T) {
	a := newApp(t)
	admin := a.login(t, "admin")

	w := a.do(t, http.MethodPost, "/v1/admin/materials", dto.CreateMaterialRequest{
		ExternalCode: "A1", Name: "Semen", Quantity: 10, UnitID: a.pcs.ID.String(),
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	semen := decode[dto.MaterialResponse](t, w)

	w = a.do(t, http.MethodPost, "/v1/admin/materials", dto.CreateMaterialRequest{
		ExternalCode: "A1", Name: "Semen Lagi", UnitID: a.pcs.ID.String(),
	}, admin)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(t, http.MethodPost, "/v1/transactions", dto.TransactionRequest{
		Kind: "IN", Source: "Supplier A",
		Lines: []dto.TransactionLine{{MaterialID: semen.ID, Quantity: 5}},
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(t, http.MethodPost, "/v1/transactions", dto.TransactionRequest{
		Kind: "OUT", Method: "Ambil", Destination: "Proyek X",
		Lines: []dto.TransactionLine{{MaterialID: semen.ID, Quantity: 20}},
	}, admin)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "tidak cukup")

	w = a.do(t, http.MethodGet, "/v1/admin/materials/"+semen.ID, nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 15, decode[dto.MaterialResponse](t, w).Quantity)

	w = a.do(t, http.MethodGet, "/v1/transactions", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	hist := decode[dto.HistoryResponse](t, w)
	assert.EqualValues(t, 1, hist.Total)

	w = a.do(t, http.MethodDelete, "/v1/admin/materials/"+semen.ID, nil, admin)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(t, http.MethodPost, "/v1/transactions", dto.TransactionRequest{Kind: "IN"}, admin)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "a batch needs at least one line")
}

func TestPermissionsGateUserTransactions(t *testing.T) {
	a := newApp(t)
	admin := a.login(t, "admin")
	user := a.login(t, "budi")

	w := a.do(t, http.MethodPost, "/v1/admin/materials", dto.CreateMaterialRequest{
		ExternalCode: "A1", Name: "Semen", Quantity: 10, UnitID: a.pcs.ID.String(),
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code)
	semen := decode[dto.MaterialResponse](t, w)

	w = a.do(t, http.MethodGet, "/v1/transactions/materials", nil, user)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]dto.MaterialResponse](t, w))

	w = a.do(t, http.MethodGet, "/v1/admin/users", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	var budiID string
	for _, u := range decode[[]dto.UserResponse](t, w) {
		if u.Username == "budi" {
			budiID = u.ID
		}
	}
	require.NotEmpty(t, budiID)

	w = a.do(t, http.MethodPut, "/v1/admin/users/"+budiID+"/permissions",
		dto.PermissionsRequest{MaterialIDs: []string{semen.ID}}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(t, http.MethodPost, "/v1/transactions", dto.TransactionRequest{
		Kind: "OUT", Method: "Ambil", Lines: []dto.TransactionLine{{MaterialID: semen.ID, Quantity: 3}},
	}, user)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 1, decode[dto.BatchResponse](t, w).Processed)

	w = a.do(t, http.MethodDelete, "/v1/admin/users/"+budiID, nil, admin)
	assert.Equal(t, http.StatusConflict, w.Code, "user with ledger entries stays")
}

func TestImportAndExport(t *testing.T) {
	a := newApp(t)
	admin := a.login(t, "admin")

	data, err := infra.WriteSheet("Material", []string{"id_barang", "nama_material", "jumlah", "satuan"}, [][]any{
		{"A1", "Semen", 7, "pcs"},
		{"B2", "Cat", 2, "galon"},
	})
	require.NoError(t, err)

	upload := func(filename string, content []byte) *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/v1/admin/materials/import", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+admin)
		w := httptest.NewRecorder()
		a.engine.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusBadRequest, upload("material.csv", []byte("a,b")).Code)

	w := upload("material.xlsx", data)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[dto.ImportResponse](t, w)
	assert.Equal(t, 1, resp.Created)
	assert.Equal(t, 1, resp.Skipped)

	w = a.do(t, http.MethodGet, "/v1/admin/materials/export", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "material_kantor_pusat_")

	sheet, err := infra.ReadSheet(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, "Semen", sheet.Rows[0]["nama_material"])
}

func TestOfficeAndUnitAdmin(t *testing.T) {
	a := newApp(t)
	admin := a.login(t, "admin")

	w := a.do(t, http.MethodPost, "/v1/admin/offices", dto.OfficeRequest{Name: "Cabang", Code: "CB"}, admin)
	require.Equal(t, http.StatusCreated, w.Code)
	office := decode[dto.OfficeResponse](t, w)

	w = a.do(t, http.MethodDelete, "/v1/admin/offices/"+a.office.ID.String(), nil, admin)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = a.do(t, http.MethodDelete, "/v1/admin/offices/"+office.ID, nil, admin)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = a.do(t, http.MethodPost, "/v1/admin/units", dto.UnitRequest{Name: "pcs"}, admin)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = a.do(t, http.MethodPut, "/v1/admin/units/bukan-id", dto.UnitRequest{Name: "x"}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMeAndLogout(t *testing.T) {
	a := newApp(t)
	token := a.login(t, "budi")

	w := a.do(t, http.MethodGet, "/v1/auth/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[dto.SessionResponse](t, w)
	assert.Equal(t, "budi", me.Username)
	assert.Equal(t, "Kantor Pusat", me.OfficeName)

	assert.Equal(t, http.StatusNoContent, a.do(t, http.MethodPost, "/v1/auth/logout", nil, token).Code)
}
