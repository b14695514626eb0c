package model

import "time"

// User represents a member identity as stored in the global `users`
// table.  Members are created lazily the first time a front-end passes
// their id into the service and are never deleted.  The global IsAdmin
// flag escalates a member across every guild; per-guild admin rights
// live in GuildPermission instead.
//
// Fields:
//
//	UserID    – externally assigned member id (snowflake from the chat platform).
//	Username  – last known display name; refreshed on every upsert.
//	IsAdmin   – global admin flag.
//	CreatedAt – timestamp of first sighting.
type User struct {
	UserID    uint64    `json:"user_id"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// GuildPermission records a member's standing inside one guild.  A row is
// created with is_admin=false when the member is first seen in the guild
// and flipped by explicit grants.  Rows are never deleted.
type GuildPermission struct {
	GuildID   uint64    `json:"guild_id"`
	UserID    uint64    `json:"user_id"`
	IsAdmin   bool      `json:"is_admin"`
	UpdatedAt time.Time `json:"updated_at"`
}
