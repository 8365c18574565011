package infra

import (
	"fmt"
	"strings"

	"github.com/myr2601/mintyapp/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens PostgreSQL when dsn is a postgres URL/DSN and falls back to
// the embedded SQLite file at sqlitePath otherwise, then creates any missing
// tables.
func NewDatabase(dsn, sqlitePath string) (*gorm.DB, error) {
	db, err := Open(dsn, sqlitePath)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Open connects without migrating.
func Open(dsn, sqlitePath string) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true}

	if dsn == "" || IsSQLiteDSN(dsn) {
		path := sqlitePath
		if dsn != "" {
			path = strings.TrimPrefix(dsn, "sqlite://")
		}
		db, err := gorm.Open(sqlite.Open(path), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %q: %w", path, err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// In-memory databases live only as long as their connection.
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}

	db, err := gorm.Open(postgres.Open(dsn), gcfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	return db, nil
}

// IsSQLiteDSN reports whether dsn points at an SQLite database.
func IsSQLiteDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "sqlite://") ||
		strings.HasPrefix(dsn, "file:") ||
		strings.HasSuffix(dsn, ".db") ||
		dsn == ":memory:"
}

// RunMigrations creates or updates every table. Order follows the foreign keys.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Office{},
		&model.Unit{},
		&model.User{},
		&model.Material{},
		&model.Transaction{},
		&model.Permission{},
	)
}

// DefaultUnits are inserted by the bootstrap command on a fresh database.
var DefaultUnits = []string{"pcs", "unit", "kg", "m", "ltr", "sak", "btg", "roll", "set", "box"}

// SeedUnits inserts the given unit names that do not exist yet.
func SeedUnits(db *gorm.DB, names []string) (int, error) {
	created := 0
	for _, name := range names {
		var count int64
		if err := db.Model(&model.Unit{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return created, err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&model.Unit{Name: name}).Error; err != nil {
			return created, fmt.Errorf("seed unit %q: %w", name, err)
		}
		created++
	}
	return created, nil
}
