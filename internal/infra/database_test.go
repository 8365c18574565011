package infra

import (
	"testing"

	"github.com/myr2601/mintyapp/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase_SQLiteCreatesSchema(t *testing.T) {
	db, err := NewDatabase("", ":memory:")
	require.NoError(t, err)

	for _, table := range []string{"kantor", "user", "satuan", "material", "transaction", "user_material_permissions"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	// Running migrations again is a no-op.
	require.NoError(t, RunMigrations(db))
}

func TestMaterialCodeUniquePerOffice(t *testing.T) {
	db, err := NewDatabase("", ":memory:")
	require.NoError(t, err)

	o1 := model.Office{Name: "Pusat", Code: "PST"}
	o2 := model.Office{Name: "Cabang", Code: "CBG"}
	u := model.Unit{Name: "pcs"}
	require.NoError(t, db.Create(&o1).Error)
	require.NoError(t, db.Create(&o2).Error)
	require.NoError(t, db.Create(&u).Error)

	require.NoError(t, db.Create(&model.Material{ExternalCode: "A1", Name: "Semen", OfficeID: o1.ID, UnitID: u.ID}).Error)
	require.NoError(t, db.Create(&model.Material{ExternalCode: "A1", Name: "Semen", OfficeID: o2.ID, UnitID: u.ID}).Error)
	assert.Error(t, db.Create(&model.Material{ExternalCode: "A1", Name: "Lain", OfficeID: o1.ID, UnitID: u.ID}).Error)
}

func TestSeedUnits_Idempotent(t *testing.T) {
	db, err := NewDatabase("", ":memory:")
	require.NoError(t, err)

	n, err := SeedUnits(db, []string{"pcs", "kg"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = SeedUnits(db, []string{"pcs", "kg", "m"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIsSQLiteDSN(t *testing.T) {
	assert.True(t, IsSQLiteDSN("sqlite://gudang.db"))
	assert.True(t, IsSQLiteDSN("file:test?mode=memory"))
	assert.True(t, IsSQLiteDSN("gudang.db"))
	assert.False(t, IsSQLiteDSN("postgresql://u:p@localhost/gudang"))
	assert.False(t, IsSQLiteDSN("host=localhost user=u dbname=gudang"))
}
