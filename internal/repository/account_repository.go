package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/guild-inventory/internal/model"
	"github.com/iliyamo/guild-inventory/internal/utils"
)

// AccountRepo manages service accounts: the API clients (bot processes,
// dashboards) that authenticate against this service.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

// Create inserts an account and returns its ID.  The secret is stored
// as a bcrypt hash only.
func (r *AccountRepo) Create(ctx context.Context, name, secret, role string, cost int) (uint64, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	hash, err := utils.HashSecret(secret, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO service_accounts (name, secret_hash, role) VALUES (?, ?, ?)`,
		name, hash, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrNameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByName fetches an account by normalized name.
func (r *AccountRepo) GetByName(ctx context.Context, name string) (model.ServiceAccount, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	var a model.ServiceAccount
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, secret_hash, role, is_active, created_at, updated_at
		 FROM service_accounts WHERE name = ? LIMIT 1`,
		name).Scan(&a.ID, &a.Name, &a.SecretHash, &a.Role, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// GetByID fetches an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (model.ServiceAccount, error) {
	var a model.ServiceAccount
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, secret_hash, role, is_active, created_at, updated_at
		 FROM service_accounts WHERE id = ? LIMIT 1`,
		id).Scan(&a.ID, &a.Name, &a.SecretHash, &a.Role, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}
