package model

import (
	"strings"
	"time"
)

// Subteam enumerates the teams an item can belong to.  Stored as plain
// VARCHAR; validated at the edge so the database never sees an unknown
// value.
type Subteam string

const (
	SubteamMechanical Subteam = "mechanical"
	SubteamElectrical Subteam = "electrical"
	SubteamEFS        Subteam = "efs"
	SubteamAutonomy   Subteam = "autonomy"
	SubteamOperations Subteam = "operations"
)

// ValidSubteam reports whether s is one of the known subteam values.
func ValidSubteam(s Subteam) bool {
	switch s {
	case SubteamMechanical, SubteamElectrical, SubteamEFS, SubteamAutonomy, SubteamOperations:
		return true
	}
	return false
}

// poLinkPrefix marks a purchase order field that holds a discussion
// thread link rather than a plain PO number.
const poLinkPrefix = "https://discord.com/"

// Item is one inventory entry owned by a guild.  QuantityAvailable is
// only ever moved by checkout and return; every other field is set at
// creation or by a partial edit.  The invariant
// 0 <= QuantityAvailable <= QuantityTotal holds on every write path.
//
// Fields:
//
//	ID                – primary key identifier.
//	GuildID           – owning guild; all reads and writes filter on it.
//	ItemName          – display name, 1..200 chars.
//	QuantityTotal     – units owned.
//	QuantityAvailable – units currently on the shelf.
//	Location          – where the item is stored.
//	Subteam           – owning subteam.
//	PointOfContact    – member id responsible for the item.
//	PurchaseOrder     – PO number or thread link.
//	Description       – optional free text, up to 1000 chars.
type Item struct {
	ID                uint64    `json:"id"`
	GuildID           uint64    `json:"guild_id"`
	ItemName          string    `json:"item_name"`
	QuantityTotal     int       `json:"quantity_total"`
	QuantityAvailable int       `json:"quantity_available"`
	Location          string    `json:"location"`
	Subteam           Subteam   `json:"subteam"`
	PointOfContact    uint64    `json:"point_of_contact"`
	PurchaseOrder     string    `json:"purchase_order"`
	Description       *string   `json:"description,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// QuantityCheckedOut derives how many units are currently out on loan.
func (i Item) QuantityCheckedOut() int {
	return i.QuantityTotal - i.QuantityAvailable
}

// IsPOLink reports whether the purchase order field is a thread link.
func (i Item) IsPOLink() bool {
	return strings.HasPrefix(i.PurchaseOrder, poLinkPrefix)
}
