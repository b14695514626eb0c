package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/guild-inventory/internal/model"
)

// UserRepo manages member identities and per-guild permissions.  Member
// ids are assigned by the front-end platform, not by the database, so
// everything here is upsert-shaped.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Upsert inserts the member or refreshes the stored username.
// Idempotent; called before every ledger operation that references the
// member.
func (r *UserRepo) Upsert(ctx context.Context, userID uint64, username string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (user_id, username) VALUES (?, ?)
		 ON DUPLICATE KEY UPDATE username = VALUES(username)`,
		userID, username)
	return err
}

// EnsureExists inserts the member when missing, leaving any stored
// username untouched.  Used when a write references a member whose
// display name the caller does not know.
func (r *UserRepo) EnsureExists(ctx context.Context, userID uint64, username string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT IGNORE INTO users (user_id, username) VALUES (?, ?)`,
		userID, username)
	return err
}

// GetByID fetches a member by id.
func (r *UserRepo) GetByID(ctx context.Context, userID uint64) (*model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		`SELECT user_id, username, is_admin, created_at FROM users WHERE user_id = ?`,
		userID).Scan(&u.UserID, &u.Username, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SetAdmin flips the global admin flag.
func (r *UserRepo) SetAdmin(ctx context.Context, userID uint64, isAdmin bool) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET is_admin = ? WHERE user_id = ?`, isAdmin, userID)
	return err
}

// EnsureGuildMember creates the guild_permissions row lazily with
// is_admin=false.  Existing rows, including admin grants, are left
// untouched.
func (r *UserRepo) EnsureGuildMember(ctx context.Context, guildID, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT IGNORE INTO guild_permissions (guild_id, user_id) VALUES (?, ?)`,
		guildID, userID)
	return err
}

// SetGuildAdmin grants or revokes per-guild admin, creating the
// membership row when needed.
func (r *UserRepo) SetGuildAdmin(ctx context.Context, guildID, userID uint64, isAdmin bool) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO guild_permissions (guild_id, user_id, is_admin) VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE is_admin = VALUES(is_admin)`,
		guildID, userID, isAdmin)
	return err
}

// IsGuildAdmin reports whether the member is a global admin or holds the
// admin flag inside this guild.
func (r *UserRepo) IsGuildAdmin(ctx context.Context, guildID, userID uint64) (bool, error) {
	var admin bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT COALESCE(u.is_admin, FALSE) OR COALESCE(gp.is_admin, FALSE)
		 FROM users u
		 LEFT JOIN guild_permissions gp ON gp.user_id = u.user_id AND gp.guild_id = ?
		 WHERE u.user_id = ?`,
		guildID, userID).Scan(&admin)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return admin, nil
}

// GetGuildPermission returns the membership row for one guild and
// member.  sql.ErrNoRows when the member was never seen in the guild.
func (r *UserRepo) GetGuildPermission(ctx context.Context, guildID, userID uint64) (*model.GuildPermission, error) {
	var gp model.GuildPermission
	err := r.DB.QueryRowContext(ctx,
		`SELECT guild_id, user_id, is_admin, updated_at
		 FROM guild_permissions WHERE guild_id = ? AND user_id = ?`,
		guildID, userID).Scan(&gp.GuildID, &gp.UserID, &gp.IsAdmin, &gp.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &gp, nil
}
