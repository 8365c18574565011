// cmd/seeduser creates the first office, an admin account and the default
// units. Running it again only resets the admin password.
//
// Usage: go run ./cmd/seeduser -username admin -password admin -office "Kantor Pusat" -code KP
package main

import (
	"errors"
	"flag"
	"os"
	"time"

	"github.com/myr2601/mintyapp/internal/config"
	"github.com/myr2601/mintyapp/internal/infra"
	"github.com/myr2601/mintyapp/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	username := flag.String("username", envOr("SEED_ADMIN_USERNAME", "admin"), "admin username")
	password := flag.String("password", envOr("SEED_ADMIN_PASSWORD", "admin"), "admin password")
	officeName := flag.String("office", envOr("SEED_OFFICE_NAME", "Kantor Pusat"), "office name")
	officeCode := flag.String("code", envOr("SEED_OFFICE_CODE", "KP"), "office code")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	hash, err := infra.HashPassword(*password)
	if err != nil {
		log.Fatal().Err(err).Msg("hash password")
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		office := model.Office{Name: *officeName, Code: *officeCode}
		if err := tx.Where(model.Office{Code: *officeCode}).FirstOrCreate(&office).Error; err != nil {
			return err
		}

		var admin model.User
		err := tx.Where("username = ?", *username).First(&admin).Error
		switch {
		case err == nil:
			return tx.Model(&admin).Updates(map[string]interface{}{
				"password_hash": hash,
				"role":          model.RoleAdmin,
			}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&model.User{
				Username:     *username,
				PasswordHash: hash,
				Role:         model.RoleAdmin,
				OfficeID:     office.ID,
			}).Error
		default:
			return err
		}
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed admin")
	}

	n, err := infra.SeedUnits(db, infra.DefaultUnits)
	if err != nil {
		log.Fatal().Err(err).Msg("seed units")
	}

	log.Info().
		Str("username", *username).
		Str("office", *officeName).
		Int("units_created", n).
		Msg("seed complete")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
