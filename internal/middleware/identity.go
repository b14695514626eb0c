package middleware

// identity.go extracts the acting guild member from request headers.
// The API's callers are service accounts (a chat bot, a dashboard)
// acting on behalf of a guild member; the member's snowflake id and
// display name travel in X-Actor-ID / X-Actor-Username so the ledger
// can attribute checkouts and audit entries to the real person rather
// than the bot account.

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// Header names the callers use to convey the acting member.
const (
	HeaderActorID       = "X-Actor-ID"
	HeaderActorUsername = "X-Actor-Username"
)

// Actor is the guild member a request acts on behalf of.
type Actor struct {
	UserID   uint64
	Username string
}

// ActorFromRequest parses the actor headers.  The id is required and
// must be a positive integer; the username falls back to the id's
// decimal form when absent so user upserts always have a display name.
func ActorFromRequest(c echo.Context) (Actor, error) {
	raw := strings.TrimSpace(c.Request().Header.Get(HeaderActorID))
	if raw == "" {
		return Actor{}, echo.NewHTTPError(http.StatusBadRequest, "missing "+HeaderActorID+" header")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return Actor{}, echo.NewHTTPError(http.StatusBadRequest, "invalid "+HeaderActorID+" header")
	}
	name := strings.TrimSpace(c.Request().Header.Get(HeaderActorUsername))
	if name == "" {
		name = raw
	}
	if len(name) > 100 {
		name = name[:100]
	}
	return Actor{UserID: id, Username: name}, nil
}

// currentUserID feeds the rate limiter's per-user keying.  It prefers
// the acting member, then the authenticated service account.
func currentUserID(c echo.Context) string {
	if v := strings.TrimSpace(c.Request().Header.Get(HeaderActorID)); v != "" {
		return v
	}
	if id, err := AccountID(c); err == nil {
		return "acct:" + strconv.FormatUint(id, 10)
	}
	return "anon"
}
