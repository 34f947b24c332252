// cmd/seeduser/main.go: creates/updates the admin user and seeds the three cajas.
// Usage: go run ./cmd/seeduser -username admin -password secreto
package main

import (
	"context"
	"errors"
	"flag"
	"strings"

	"estudio/internal/config"
	"estudio/internal/infra"
	"estudio/internal/model"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	username := flag.String("username", "admin", "login name")
	password := flag.String("password", "", "password (required)")
	nombre := flag.String("nombre", "Administrador", "display name")
	flag.Parse()

	if *password == "" {
		log.Fatal().Msg("-password is required")
	}
	// Logins match the lower-cased name.
	*username = strings.ToLower(strings.TrimSpace(*username))

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(infra.DatabaseConfig{
		Driver: cfg.DBDriver,
		DSN:    cfg.DatabaseURL,
		Log:    cfg.DBLog,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	ctx := context.Background()
	seeds := infra.DefaultCajaSeeds(cfg.CajaBancoNombre, cfg.CajaEfectivoNombre, cfg.CajaAhorroNombre)
	if err := infra.SeedCajas(ctx, db, seeds); err != nil {
		log.Fatal().Err(err).Msg("failed to seed cajas")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	var u model.Usuario
	err = db.WithContext(ctx).Where("username = ?", *username).First(&u).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		u = model.Usuario{Username: *username}
	case err != nil:
		log.Fatal().Err(err).Msg("lookup error")
	}
	u.Nombre = *nombre
	u.PasswordHash = string(hash)
	u.Rol = model.RolAdministrador
	u.Activo = true

	if err := db.WithContext(ctx).Save(&u).Error; err != nil {
		log.Fatal().Err(err).Msg("save error")
	}
	log.Info().Str("username", u.Username).Str("id", u.ID.String()).Msg("usuario administrador creado/actualizado")
}
