package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/guild-inventory/internal/ledger"
	"github.com/iliyamo/guild-inventory/internal/model"
)

// CheckoutHandler serves the loan lifecycle for one guild.
type CheckoutHandler struct {
	Engine *ledger.Engine
}

func NewCheckoutHandler(e *ledger.Engine) *CheckoutHandler { return &CheckoutHandler{Engine: e} }

// Create handles POST /v1/guilds/:guild_id/checkouts.  The checkout is
// attributed to the acting member, not the calling service account.
func (h *CheckoutHandler) Create(c echo.Context) error {
	gID, err := guildID(c)
	if err != nil {
		return err
	}
	act, err := actor(c, h.Engine, gID)
	if err != nil {
		return err
	}
	var req model.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	checkout, err := h.Engine.CheckoutItem(ctx, gID, &req, act.UserID)
	if err != nil {
		return writeLedgerError(c, err)
	}
	if checkout == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "item missing or insufficient quantity"})
	}
	return c.JSON(http.StatusCreated, checkoutView(checkout))
}

// Return handles POST /v1/guilds/:guild_id/checkouts/:checkout_id/return.
func (h *CheckoutHandler) Return(c echo.Context) error {
	gID, err := guildID(c)
	if err != nil {
		return err
	}
	checkoutID, err := pathID(c, "checkout_id")
	if err != nil {
		return err
	}
	act, err := actor(c, h.Engine, gID)
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	ok, err := h.Engine.ReturnItem(ctx, gID, checkoutID, act.UserID)
	if err != nil {
		return writeLedgerError(c, err)
	}
	if !ok {
		return c.JSON(http.StatusConflict, echo.Map{"error": "checkout missing or already returned"})
	}
	return c.JSON(http.StatusOK, echo.Map{"returned": true})
}

// ListActive handles GET /v1/guilds/:guild_id/checkouts.  The optional
// user_id query param narrows the list to one member's loans.
func (h *CheckoutHandler) ListActive(c echo.Context) error {
	gID, err := guildID(c)
	if err != nil {
		return err
	}
	var userID *uint64
	if raw := c.QueryParam("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user_id"})
		}
		userID = &id
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	checkouts, err := h.Engine.GetActiveCheckouts(ctx, gID, userID)
	if err != nil {
		return writeLedgerError(c, err)
	}
	return c.JSON(http.StatusOK, checkoutListView(checkouts))
}

// ListByItem handles GET /v1/guilds/:guild_id/items/:item_id/checkouts.
// By default only open loans are returned; active_only=false includes
// the item's full loan history.
func (h *CheckoutHandler) ListByItem(c echo.Context) error {
	gID, err := guildID(c)
	if err != nil {
		return err
	}
	itemID, err := pathID(c, "item_id")
	if err != nil {
		return err
	}
	activeOnly := c.QueryParam("active_only") != "false"

	ctx, cancel := reqCtx(c)
	defer cancel()
	checkouts, err := h.Engine.GetItemCheckouts(ctx, gID, itemID, activeOnly)
	if err != nil {
		return writeLedgerError(c, err)
	}
	return c.JSON(http.StatusOK, checkoutListView(checkouts))
}

// checkoutView augments a loan with its derived reporting fields.
func checkoutView(co *model.Checkout) echo.Map {
	return echo.Map{
		"id":                   co.ID,
		"item_id":              co.ItemID,
		"guild_id":             co.GuildID,
		"user_id":              co.UserID,
		"quantity":             co.Quantity,
		"checked_out_at":       co.CheckedOutAt,
		"expected_return_date": co.ExpectedReturnDate,
		"returned_at":          co.ReturnedAt,
		"notes":                co.Notes,
		"is_active":            co.IsActive(),
		"is_overdue":           co.IsOverdue(),
		"days_checked_out":     co.DaysCheckedOut(),
	}
}

func checkoutListView(checkouts []model.Checkout) echo.Map {
	views := make([]echo.Map, 0, len(checkouts))
	for i := range checkouts {
		views = append(views, checkoutView(&checkouts[i]))
	}
	return echo.Map{"checkouts": views, "count": len(views)}
}
