package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/guild-inventory/internal/model"
)

// AuditRepo appends to and reads the guild audit trail.  The table is
// append-only: there is deliberately no update or delete method here.
type AuditRepo struct{ DB *sql.DB }

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{DB: db} }

// InsertTx appends one entry within the caller's transaction, so the
// entry commits or rolls back together with the mutation it describes.
// For item deletion the entry must be written before the item row goes
// away.
func (r *AuditRepo) InsertTx(ctx context.Context, tx *sql.Tx, guildID, userID uint64, action string, itemID *uint64, details string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO audit_log (guild_id, user_id, action, item_id, details)
		 VALUES (?, ?, ?, ?, ?)`,
		guildID, userID, action, itemID, details)
	return err
}

// List returns the guild's newest entries first, bounded by limit.
func (r *AuditRepo) List(ctx context.Context, guildID uint64, limit int) ([]model.AuditLog, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, guild_id, user_id, action, item_id, details, created_at
		 FROM audit_log WHERE guild_id = ?
		 ORDER BY created_at DESC LIMIT ?`,
		guildID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.AuditLog, 0, limit)
	for rows.Next() {
		var e model.AuditLog
		var itemID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.GuildID, &e.UserID, &e.Action, &itemID, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		if itemID.Valid {
			id := uint64(itemID.Int64)
			e.ItemID = &id
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
