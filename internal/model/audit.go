package model

import "time"

// Audit actions written by the ledger.  One entry per mutating
// operation; the values end up in audit_log.action verbatim.
const (
	ActionAddItem    = "add_item"
	ActionEditItem   = "edit_item"
	ActionDeleteItem = "delete_item"
	ActionCheckout   = "checkout"
	ActionReturn     = "return"
)

// AuditLog is one immutable entry in the guild's audit trail.  ItemID is
// nullable and deliberately unconstrained so an entry survives the
// deletion of the item it refers to.
type AuditLog struct {
	ID        uint64    `json:"id"`
	GuildID   uint64    `json:"guild_id"`
	UserID    uint64    `json:"user_id"`
	Action    string    `json:"action"`
	ItemID    *uint64   `json:"item_id,omitempty"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}
