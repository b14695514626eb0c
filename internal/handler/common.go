// Package handler contains the HTTP handlers for the inventory API.
// Handlers translate between HTTP and the ledger: they parse and
// authenticate input, call exactly one ledger operation and render the
// result.  All business rules live behind the ledger boundary.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/guild-inventory/internal/ledger"
	"github.com/iliyamo/guild-inventory/internal/middleware"
	"github.com/iliyamo/guild-inventory/internal/model"
	"github.com/iliyamo/guild-inventory/internal/repository"
)

// reqCtx bounds a handler's ledger call; the engine applies its own
// longer operation timeout underneath.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 15*time.Second)
}

// pathID parses a positive uint64 path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// guildID parses the :guild_id parameter every guild-scoped route carries.
func guildID(c echo.Context) (uint64, error) {
	return pathID(c, "guild_id")
}

// actor resolves the acting guild member from the request headers and
// upserts their identity so every subsequent write can reference them.
func actor(c echo.Context, eng *ledger.Engine, gID uint64) (middleware.Actor, error) {
	act, err := middleware.ActorFromRequest(c)
	if err != nil {
		return middleware.Actor{}, err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := eng.EnsureGuildMember(ctx, gID, act.UserID, act.Username); err != nil {
		return middleware.Actor{}, echo.NewHTTPError(http.StatusInternalServerError, "register member failed")
	}
	return act, nil
}

// writeLedgerError renders a ledger failure.  Validation problems come
// back as a 400 with per-field detail, a quantity conflict as 409, and
// anything else as an opaque 500.
func writeLedgerError(c echo.Context, err error) error {
	var verrs model.ValidationErrors
	if errors.As(err, &verrs) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "validation failed",
			"fields": verrs,
		})
	}
	if errors.Is(err, repository.ErrQuantityConflict) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "quantity_total below checked out amount"})
	}
	if errors.Is(err, ledger.ErrStoreUnavailable) {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "store unavailable"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "operation failed"})
}
