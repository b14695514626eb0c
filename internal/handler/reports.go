package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/guild-inventory/internal/ledger"
)

// ReportHandler serves the read-only reporting surface: aggregate stats
// and the audit trail.
type ReportHandler struct {
	Engine *ledger.Engine
}

func NewReportHandler(e *ledger.Engine) *ReportHandler { return &ReportHandler{Engine: e} }

// Stats handles GET /v1/guilds/:guild_id/stats.  Numbers are computed
// fresh from the ledger on every call.
func (h *ReportHandler) Stats(c echo.Context) error {
	gID, err := guildID(c)
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	stats, err := h.Engine.GetStats(ctx, gID)
	if err != nil {
		return writeLedgerError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total_items":          stats.TotalItems,
		"total_quantity":       stats.TotalQuantity,
		"checked_out_quantity": stats.CheckedOutQuantity,
		"active_checkouts":     stats.ActiveCheckouts,
		"unique_subteams":      stats.UniqueSubteams,
		"utilization_rate":     stats.UtilizationRate(),
	})
}

// AuditLog handles GET /v1/guilds/:guild_id/audit.  Entries come back
// newest first; limit defaults to 50 and is capped by the ledger.
func (h *ReportHandler) AuditLog(c echo.Context) error {
	gID, err := guildID(c)
	if err != nil {
		return err
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		limit = n
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	entries, err := h.Engine.GetAuditLog(ctx, gID, limit)
	if err != nil {
		return writeLedgerError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"entries": entries, "count": len(entries)})
}
