package service_test

import (
	"testing"

	"github.com/myr2601/mintyapp/internal/access"
	"github.com/myr2601/mintyapp/internal/infra"
	"github.com/myr2601/mintyapp/internal/model"
	"github.com/myr2601/mintyapp/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	infra.BcryptCost = bcrypt.MinCost
}

// fixture is a migrated in-memory database with two offices, two units,
// an admin and a regular user in the first office.
type fixture struct {
	db *gorm.DB

	offices   repository.OfficeRepository
	units     repository.UnitRepository
	users     repository.UserRepository
	materials repository.MaterialRepository
	ledger    repository.TransactionRepository
	perms     repository.PermissionRepository

	office, otherOffice *model.Office
	pcs, kg             *model.Unit
	admin, clerk        *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := infra.NewDatabase("", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	f := &fixture{
		db:        db,
		offices:   repository.NewOfficeRepository(db),
		units:     repository.NewUnitRepository(db),
		users:     repository.NewUserRepository(db),
		materials: repository.NewMaterialRepository(db),
		ledger:    repository.NewTransactionRepository(db),
		perms:     repository.NewPermissionRepository(),
	}

	f.office = &model.Office{Name: "Kantor Pusat", Code: "KP"}
	f.otherOffice = &model.Office{Name: "Gudang Timur", Code: "GT"}
	require.NoError(t, db.Create(f.office).Error)
	require.NoError(t, db.Create(f.otherOffice).Error)

	f.pcs = &model.Unit{Name: "pcs"}
	f.kg = &model.Unit{Name: "kg"}
	require.NoError(t, db.Create(f.pcs).Error)
	require.NoError(t, db.Create(f.kg).Error)

	f.admin = f.user(t, "admin", model.RoleAdmin, f.office)
	f.clerk = f.user(t, "budi", model.RoleUser, f.office)
	return f
}

func (f *fixture) user(t *testing.T, username, role string, office *model.Office) *model.User {
	t.Helper()
	hash, err := infra.HashPassword("rahasia")
	require.NoError(t, err)
	u := &model.User{Username: username, PasswordHash: hash, Role: role, OfficeID: office.ID, Office: office}
	require.NoError(t, f.db.Omit("Office").Create(u).Error)
	return u
}

func (f *fixture) scope(u *model.User) access.Scope {
	s := access.Scope{UserID: u.ID, Username: u.Username, Role: u.Role, OfficeID: u.OfficeID}
	if u.Office != nil {
		s.OfficeName = u.Office.Name
	}
	return s
}

func (f *fixture) material(t *testing.T, office *model.Office, code, name string, qty int) *model.Material {
	t.Helper()
	m := &model.Material{ExternalCode: code, Name: name, Quantity: qty, OfficeID: office.ID, UnitID: f.pcs.ID}
	require.NoError(t, f.db.Create(m).Error)
	return m
}

func (f *fixture) permit(t *testing.T, u *model.User, materials ...*model.Material) {
	t.Helper()
	ids := make([]uuid.UUID, len(materials))
	for i, m := range materials {
		ids[i] = m.ID
	}
	require.NoError(t, f.perms.ReplaceTx(f.db, u.ID, ids))
}

func (f *fixture) quantity(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var m model.Material
	require.NoError(t, f.db.First(&m, "id = ?", id).Error)
	return m.Quantity
}

func (f *fixture) ledgerRows(t *testing.T) []model.Transaction {
	t.Helper()
	var rows []model.Transaction
	require.NoError(t, f.db.Order("timestamp ASC").Find(&rows).Error)
	return rows
}

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}
