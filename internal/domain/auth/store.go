package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrOwnerNotFound = errors.New("owner not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type Owner struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	StoreName    string    `json:"storeName"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (s *Store) FindOwnerByEmail(ctx context.Context, email string) (Owner, error) {
	var out Owner
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, store_name, password_hash, created_at
    FROM owners
    WHERE email = $1
  `, email).Scan(&out.ID, &out.Email, &out.StoreName, &out.PasswordHash, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return out, ErrOwnerNotFound
	}
	return out, err
}

func (s *Store) CreateOwner(ctx context.Context, email, passwordHash, storeName string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO owners (email, password_hash, store_name)
    VALUES ($1,$2,$3)
    RETURNING id
  `, email, passwordHash, storeName).Scan(&id)
	return id, err
}

func (s *Store) OwnerEmailTaken(ctx context.Context, email string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM owners WHERE email = $1", email).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
