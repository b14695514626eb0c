package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/guild-inventory/internal/model"
)

// GuildRepo manages per-guild settings, including the mirror sheet
// linkage.
type GuildRepo struct{ DB *sql.DB }

func NewGuildRepo(db *sql.DB) *GuildRepo { return &GuildRepo{DB: db} }

// Upsert creates or refreshes the guild's settings row.  Sheet id and
// url use COALESCE semantics: passing nil keeps whatever is already
// stored, so a plain rename cannot unlink an existing sheet.
func (r *GuildRepo) Upsert(ctx context.Context, guildID uint64, guildName string, sheetID, sheetURL *string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO guild_settings (guild_id, guild_name, google_sheet_id, google_sheet_url)
		 VALUES (?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE
			guild_name = VALUES(guild_name),
			google_sheet_id = COALESCE(VALUES(google_sheet_id), google_sheet_id),
			google_sheet_url = COALESCE(VALUES(google_sheet_url), google_sheet_url)`,
		guildID, guildName, sheetID, sheetURL)
	return err
}

// Get returns the guild's settings.  sql.ErrNoRows when the guild has
// never been configured.
func (r *GuildRepo) Get(ctx context.Context, guildID uint64) (*model.GuildSettings, error) {
	var gs model.GuildSettings
	var sheetID, sheetURL sql.NullString
	err := r.DB.QueryRowContext(ctx,
		`SELECT guild_id, guild_name, google_sheet_id, google_sheet_url, updated_at
		 FROM guild_settings WHERE guild_id = ?`,
		guildID).Scan(&gs.GuildID, &gs.GuildName, &sheetID, &sheetURL, &gs.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if sheetID.Valid {
		s := sheetID.String
		gs.GoogleSheetID = &s
	}
	if sheetURL.Valid {
		s := sheetURL.String
		gs.GoogleSheetURL = &s
	}
	return &gs, nil
}
