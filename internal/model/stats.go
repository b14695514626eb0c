package model

// InventoryStats aggregates a guild's inventory state.  Derived on
// demand from items and checkouts; never persisted or cached.
type InventoryStats struct {
	TotalItems         int `json:"total_items"`
	TotalQuantity      int `json:"total_quantity"`
	CheckedOutQuantity int `json:"checked_out_quantity"`
	ActiveCheckouts    int `json:"active_checkouts"`
	UniqueSubteams     int `json:"unique_subteams"`
}

// UtilizationRate is the percentage of owned units currently out on
// loan.  Defined as 0.0 for an empty inventory to avoid dividing by
// zero.
func (s InventoryStats) UtilizationRate() float64 {
	if s.TotalQuantity == 0 {
		return 0.0
	}
	return float64(s.CheckedOutQuantity) / float64(s.TotalQuantity) * 100
}
