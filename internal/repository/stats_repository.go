package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/guild-inventory/internal/model"
)

// StatsRepo derives aggregate inventory numbers for a guild in a single
// query.  Nothing is cached; every call reflects the committed state at
// that instant.
type StatsRepo struct{ DB *sql.DB }

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{DB: db} }

// GetStats computes the guild's aggregate counts.  COALESCE keeps the
// sums at zero for a guild with no items.
func (r *StatsRepo) GetStats(ctx context.Context, guildID uint64) (model.InventoryStats, error) {
	var s model.InventoryStats
	err := r.DB.QueryRowContext(ctx,
		`SELECT
			COUNT(id),
			COALESCE(SUM(quantity_total), 0),
			COALESCE(SUM(quantity_total - quantity_available), 0),
			(SELECT COUNT(*) FROM checkouts WHERE guild_id = ? AND returned_at IS NULL),
			COUNT(DISTINCT subteam)
		 FROM items WHERE guild_id = ?`,
		guildID, guildID).Scan(
		&s.TotalItems, &s.TotalQuantity, &s.CheckedOutQuantity,
		&s.ActiveCheckouts, &s.UniqueSubteams)
	if err != nil && err != sql.ErrNoRows {
		return model.InventoryStats{}, err
	}
	return s, nil
}
