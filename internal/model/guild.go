package model

import "time"

// GuildSettings holds per-guild configuration, most importantly the
// external spreadsheet the guild's inventory is mirrored to.  Settings
// are upserted on guild join and on sheet creation; an upsert that does
// not carry a sheet id must never clear one that is already stored.
type GuildSettings struct {
	GuildID        uint64    `json:"guild_id"`
	GuildName      string    `json:"guild_name"`
	GoogleSheetID  *string   `json:"google_sheet_id,omitempty"`
	GoogleSheetURL *string   `json:"google_sheet_url,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HasSheet reports whether a mirror spreadsheet is configured.
func (g GuildSettings) HasSheet() bool {
	return g.GoogleSheetID != nil && *g.GoogleSheetID != ""
}
