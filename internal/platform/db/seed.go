package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Leeseongbin2/smm-panel-v2/internal/domain/auth"
	"github.com/Leeseongbin2/smm-panel-v2/internal/platform/config"
)

// Seed ensures the initial store-owner account exists. It is idempotent and
// safe to run on every boot.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	email := strings.TrimSpace(cfg.SeedOwnerEmail)
	if email == "" || cfg.SeedOwnerPassword == "" {
		return nil
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM owners WHERE email = $1", email).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(cfg.SeedOwnerPassword)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO owners (email, password_hash, store_name)
    VALUES ($1,$2,$3)
  `, email, hash, cfg.SeedStoreName)
	return err
}
