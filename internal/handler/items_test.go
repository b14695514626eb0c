package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/guild-inventory/internal/middleware"
	"github.com/iliyamo/guild-inventory/internal/testutil"
)

const testGuild = "77700011"

func itemCtx(e *echo.Echo, method, target string, body []byte, params map[string]string, withActor bool) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if withActor {
		req.Header.Set(middleware.HeaderActorID, "555001")
		req.Header.Set(middleware.HeaderActorUsername, "tester")
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	names := make([]string, 0, len(params)+1)
	values := make([]string, 0, len(params)+1)
	names = append(names, "guild_id")
	values = append(values, testGuild)
	for k, v := range params {
		names = append(names, k)
		values = append(values, v)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}

func TestItemHandlerCreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	eng := testutil.NewEngine(db)
	h := NewItemHandler(eng)
	e := echo.New()

	body, _ := json.Marshal(testutil.ItemRequest("Bandsaw", 2))
	c, rec := itemCtx(e, http.MethodPost, "/v1/guilds/"+testGuild+"/items", body, nil, true)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body=%s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID uint64 `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil || created.ID == 0 {
		t.Fatalf("create response: %v %s", err, rec.Body.String())
	}

	c, rec = itemCtx(e, http.MethodGet, "/", nil, map[string]string{"item_id": strconv.FormatUint(created.ID, 10)}, false)
	if err := h.Get(c); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var view map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view["item_name"] != "Bandsaw" || view["quantity_checked_out"] != float64(0) {
		t.Errorf("item view = %v", view)
	}
}

func TestItemHandlerCreateRequiresActor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	h := NewItemHandler(testutil.NewEngine(db))
	e := echo.New()

	body, _ := json.Marshal(testutil.ItemRequest("No Actor", 1))
	c, _ := itemCtx(e, http.MethodPost, "/", body, nil, false)
	err := h.Create(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestItemHandlerValidationResponse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	h := NewItemHandler(testutil.NewEngine(db))
	e := echo.New()

	bad := testutil.ItemRequest("", 0)
	body, _ := json.Marshal(bad)
	c, rec := itemCtx(e, http.MethodPost, "/", body, nil, true)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Fields []struct {
			Field string `json:"field"`
		} `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || len(resp.Fields) == 0 {
		t.Errorf("expected per-field errors, got %s", rec.Body.String())
	}
}

func TestItemHandlerDeleteRequiresGuildAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	eng := testutil.NewEngine(db)
	h := NewItemHandler(eng)
	e := echo.New()

	item := testutil.SeedItem(t, eng, 77700011, "Planer", 1)
	params := map[string]string{"item_id": strconv.FormatUint(item.ID, 10)}

	c, rec := itemCtx(e, http.MethodDelete, "/", nil, params, true)
	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin delete status = %d", rec.Code)
	}

	// grant the actor guild admin and retry
	if err := eng.SetGuildAdmin(c.Request().Context(), 77700011, 555001, true); err != nil {
		t.Fatalf("SetGuildAdmin: %v", err)
	}
	c, rec = itemCtx(e, http.MethodDelete, "/", nil, params, true)
	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("admin delete status = %d, body=%s", rec.Code, rec.Body.String())
	}
}

func TestItemHandlerEmptyPatchReturnsItem(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	eng := testutil.NewEngine(db)
	h := NewItemHandler(eng)
	e := echo.New()

	item := testutil.SeedItem(t, eng, 77700011, "Jointer", 3)
	params := map[string]string{"item_id": strconv.FormatUint(item.ID, 10)}

	c, rec := itemCtx(e, http.MethodPatch, "/", []byte(`{}`), params, true)
	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("empty patch status = %d", rec.Code)
	}
	var view map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &view)
	if view["item_name"] != "Jointer" {
		t.Errorf("empty patch view = %v", view)
	}
}
