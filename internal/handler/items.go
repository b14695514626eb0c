package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/guild-inventory/internal/ledger"
	"github.com/iliyamo/guild-inventory/internal/model"
)

// ItemHandler serves item CRUD and search for one guild.
type ItemHandler struct {
	Engine *ledger.Engine
}

func NewItemHandler(e *ledger.Engine) *ItemHandler { return &ItemHandler{Engine: e} }

// Create handles POST /v1/guilds/:guild_id/items.
func (h *ItemHandler) Create(c echo.Context) error {
	gID, err := guildID(c)
	if err != nil {
		return err
	}
	act, err := actor(c, h.Engine, gID)
	if err != nil {
		return err
	}
	var req model.CreateItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	item, err := h.Engine.AddItem(ctx, gID, &req, act.UserID)
	if err != nil {
		return writeLedgerError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

// Get handles GET /v1/guilds/:guild_id/items/:item_id.
func (h *ItemHandler) Get(c echo.Context) error {
	gID, err := guildID(c)
	if err != nil {
		return err
	}
	itemID, err := pathID(c, "item_id")
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	item, err := h.Engine.GetItem(ctx, gID, itemID)
	if err != nil {
		return writeLedgerError(c, err)
	}
	if item == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
	}
	return c.JSON(http.StatusOK, itemView(item))
}

// Search handles GET /v1/guilds/:guild_id/items.  The query params
// search, subteam and location are optional and combine with AND.
func (h *ItemHandler) Search(c echo.Context) error {
	gID, err := guildID(c)
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	items, err := h.Engine.SearchItems(ctx, gID,
		c.QueryParam("search"), c.QueryParam("subteam"), c.QueryParam("location"))
	if err != nil {
		return writeLedgerError(c, err)
	}
	views := make([]echo.Map, 0, len(items))
	for i := range items {
		views = append(views, itemView(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": views, "count": len(views)})
}

// Update handles PATCH /v1/guilds/:guild_id/items/:item_id.  Absent
// fields stay untouched; an empty body reads the item back unchanged.
func (h *ItemHandler) Update(c echo.Context) error {
	gID, err := guildID(c)
	if err != nil {
		return err
	}
	itemID, err := pathID(c, "item_id")
	if err != nil {
		return err
	}
	act, err := actor(c, h.Engine, gID)
	if err != nil {
		return err
	}
	var req model.UpdateItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	item, err := h.Engine.UpdateItem(ctx, gID, itemID, &req, act.UserID)
	if err != nil {
		return writeLedgerError(c, err)
	}
	if item == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
	}
	return c.JSON(http.StatusOK, itemView(item))
}

// Delete handles DELETE /v1/guilds/:guild_id/items/:item_id.  Only
// guild admins may delete, and items with stock still out are refused.
func (h *ItemHandler) Delete(c echo.Context) error {
	gID, err := guildID(c)
	if err != nil {
		return err
	}
	itemID, err := pathID(c, "item_id")
	if err != nil {
		return err
	}
	act, err := actor(c, h.Engine, gID)
	if err != nil {
		return err
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

	ok, err := h.Engine.DeleteItem(ctx, gID, itemID, act.UserID)
	if err != nil {
		return writeLedgerError(c, err)
	}
	if !ok {
		return c.JSON(http.StatusConflict, echo.Map{"error": "item missing or has active checkouts"})
	}
	return c.NoContent(http.StatusNoContent)
}

// itemView augments the stored fields with the derived ones the clients
// render: units out on loan and whether the PO field is a thread link.
func itemView(it *model.Item) echo.Map {
	return echo.Map{
		"id":                   it.ID,
		"guild_id":             it.GuildID,
		"item_name":            it.ItemName,
		"quantity_total":       it.QuantityTotal,
		"quantity_available":   it.QuantityAvailable,
		"quantity_checked_out": it.QuantityCheckedOut(),
		"location":             it.Location,
		"subteam":              it.Subteam,
		"point_of_contact":     it.PointOfContact,
		"purchase_order":       it.PurchaseOrder,
		"po_is_link":           it.IsPOLink(),
		"description":          it.Description,
		"created_at":           it.CreatedAt,
		"updated_at":           it.UpdatedAt,
	}
}
