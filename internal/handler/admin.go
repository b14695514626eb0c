package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/guild-inventory/internal/ledger"
)

// AdminHandler serves guild administration: settings, the mirror sheet
// linkage, per-guild admin grants and manual sync triggers.
type AdminHandler struct {
	Engine   *ledger.Engine
	Notifier ledger.Notifier
}

func NewAdminHandler(e *ledger.Engine, n ledger.Notifier) *AdminHandler {
	if n == nil {
		n = ledger.NopNotifier{}
	}
	return &AdminHandler{Engine: e, Notifier: n}
}

type settingsReq struct {
	GuildName      string  `json:"guild_name"`
	GoogleSheetID  *string `json:"google_sheet_id,omitempty"`
	GoogleSheetURL *string `json:"google_sheet_url,omitempty"`
}

type adminGrantReq struct {
	IsAdmin bool `json:"is_admin"`
}

// UpsertSettings handles PUT /v1/guilds/:guild_id/settings.  Omitting
// the sheet fields preserves an existing linkage; the upsert never
// clears a stored sheet id.
func (h *AdminHandler) UpsertSettings(c echo.Context) error {
	gID, err := guildID(c)
	if err != nil {
		return err
	}
	var req settingsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.GuildName = strings.TrimSpace(req.GuildName)
	if req.GuildName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "guild_name required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Engine.UpsertGuildSettings(ctx, gID, req.GuildName, req.GoogleSheetID, req.GoogleSheetURL); err != nil {
		return writeLedgerError(c, err)
	}
	settings, err := h.Engine.GetGuildSettings(ctx, gID)
	if err != nil {
		return writeLedgerError(c, err)
	}
	return c.JSON(http.StatusOK, settings)
}

// GetSettings handles GET /v1/guilds/:guild_id/settings.
func (h *AdminHandler) GetSettings(c echo.Context) error {
	gID, err := guildID(c)
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	settings, err := h.Engine.GetGuildSettings(ctx, gID)
	if err != nil {
		return writeLedgerError(c, err)
	}
	if settings == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "guild not configured"})
	}
	return c.JSON(http.StatusOK, settings)
}

// SetGuildAdmin handles PUT /v1/guilds/:guild_id/admins/:user_id.
// Only an acting member who is already a guild admin may grant or
// revoke admin rights.
func (h *AdminHandler) SetGuildAdmin(c echo.Context) error {
	gID, err := guildID(c)
	if err != nil {
		return err
	}
	targetID, err := pathID(c, "user_id")
	if err != nil {
		return err
	}
	act, err := actor(c, h.Engine, gID)
	if err != nil {
		return err
	}
	var req adminGrantReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	isAdmin, err := h.Engine.IsGuildAdmin(ctx, gID, act.UserID)
	if err != nil {
		return writeLedgerError(c, err)
	}
	if !isAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "guild admin required"})
	}

	if err := h.Engine.SetGuildAdmin(ctx, gID, targetID, req.IsAdmin); err != nil {
		return writeLedgerError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user_id": targetID, "is_admin": req.IsAdmin})
}

// TriggerSync handles POST /v1/guilds/:guild_id/sync: a manual mirror
// refresh request.  The work happens asynchronously on the consumer, so
// this always answers 202.
func (h *AdminHandler) TriggerSync(c echo.Context) error {
	gID, err := guildID(c)
	if err != nil {
		return err
	}
	h.Notifier.TriggerSync(gID)
	return c.JSON(http.StatusAccepted, echo.Map{"sync": "requested"})
}
