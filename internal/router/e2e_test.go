//go:build integration

package router_test

// End-to-end tests against real Postgres and Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/myr2601/mintyapp/internal/config"
	"github.com/myr2601/mintyapp/internal/dto"
	"github.com/myr2601/mintyapp/internal/infra"
	"github.com/myr2601/mintyapp/internal/model"
	"github.com/myr2601/mintyapp/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupPostgresApp(t *testing.T) *app {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("gudang_test"),
		tcPostgres.WithUsername("gudang"),
		tcPostgres.WithPassword("gudang"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                "test",
		SecretKey:          "test-secret-key",
		JWTExpirationHours: 8,
		LowStockThreshold:  50,
		PageSize:           10,
		ImportMaxMB:        1,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, "")
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

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

	return &app{engine: router.New(cfg, db, rdb), db: db, office: office, pcs: pcs}
}

func TestE2E_ConcurrentOutNeverOversells(t *testing.T) {
	a := setupPostgresApp(t)
	admin := a.login(t, "admin")

	w := a.do(t, http.MethodPost, "/v1/admin/materials", dto.CreateMaterialRequest{
		ExternalCode: "A1", Name: "Semen", Quantity: 10, UnitID: a.pcs.ID.String(),
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	semen := decode[dto.MaterialResponse](t, w)

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := a.do(t, http.MethodPost, "/v1/transactions", dto.TransactionRequest{
				Kind: "OUT", Method: "Ambil",
				Lines: []dto.TransactionLine{{MaterialID: semen.ID, Quantity: 3}},
			}, admin)
			if w.Code == http.StatusCreated {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, accepted, "three batches of 3 fit into 10")
	var m model.Material
	require.NoError(t, a.db.First(&m, "id = ?", semen.ID).Error)
	assert.Equal(t, 1, m.Quantity)

	var entries int64
	require.NoError(t, a.db.Model(&model.Transaction{}).Where("material_id = ?", semen.ID).Count(&entries).Error)
	assert.EqualValues(t, 3, entries)
}

func TestE2E_LogoutRevokesToken(t *testing.T) {
	a := setupPostgresApp(t)
	token := a.login(t, "budi")

	require.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/v1/auth/me", nil, token).Code)
	require.Equal(t, http.StatusNoContent, a.do(t, http.MethodPost, "/v1/auth/logout", nil, token).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/v1/auth/me", nil, token).Code)
}

func TestE2E_CodeUniquePerOfficeEnforcedByIndex(t *testing.T) {
	a := setupPostgresApp(t)

	m := &model.Material{ExternalCode: "A1", Name: "Semen", OfficeID: a.office.ID, UnitID: a.pcs.ID}
	require.NoError(t, a.db.Create(m).Error)
	dup := &model.Material{ExternalCode: "A1", Name: "Semen 2", OfficeID: a.office.ID, UnitID: a.pcs.ID}
	assert.Error(t, a.db.Create(dup).Error)

	neg := &model.Material{ExternalCode: "N1", Name: "Minus", Quantity: -1, OfficeID: a.office.ID, UnitID: a.pcs.ID}
	assert.Error(t, a.db.Create(neg).Error, "quantity check constraint")
}
