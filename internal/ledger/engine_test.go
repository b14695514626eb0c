package ledger_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iliyamo/guild-inventory/internal/ledger"
	"github.com/iliyamo/guild-inventory/internal/model"
	"github.com/iliyamo/guild-inventory/internal/repository"
	"github.com/iliyamo/guild-inventory/internal/testutil"
)

const (
	guildA  = uint64(100200300)
	guildB  = uint64(400500600)
	memberA = uint64(111111)
	memberB = uint64(222222)
)

func TestAddAndGetItem(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	eng := testutil.NewEngine(db)
	ctx := context.Background()

	item, err := eng.AddItem(ctx, guildA, testutil.ItemRequest("Impact Driver", 5), memberA)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if item.QuantityTotal != 5 || item.QuantityAvailable != 5 {
		t.Errorf("new item quantities = %d/%d, want 5/5", item.QuantityAvailable, item.QuantityTotal)
	}

	got, err := eng.GetItem(ctx, guildA, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got == nil || got.ItemName != "Impact Driver" {
		t.Fatalf("GetItem returned %+v", got)
	}

	entries, err := eng.GetAuditLog(ctx, guildA, 10)
	if err != nil {
		t.Fatalf("GetAuditLog: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != model.ActionAddItem {
		t.Fatalf("audit after add = %+v", entries)
	}
	if entries[0].Details != "Added 5x Impact Driver" {
		t.Errorf("audit details = %q", entries[0].Details)
	}

	missing, err := eng.GetItem(ctx, guildA, item.ID+999)
	if err != nil || missing != nil {
		t.Errorf("missing item should be (nil, nil), got (%v, %v)", missing, err)
	}
}

func TestAddItemValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	eng := testutil.NewEngine(db)

	req := testutil.ItemRequest("Bad", 0)
	req.Subteam = "marketing"
	_, err := eng.AddItem(context.Background(), guildA, req, memberA)
	var verrs model.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	// nothing may reach storage or the audit trail on validation failure
	entries, _ := eng.GetAuditLog(context.Background(), guildA, 10)
	if len(entries) != 0 {
		t.Errorf("audit should be empty, got %d entries", len(entries))
	}
}

func TestSearchItems(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	eng := testutil.NewEngine(db)
	ctx := context.Background()

	testutil.SeedItem(t, eng, guildA, "Torque Wrench", 2)
	testutil.SeedItem(t, eng, guildA, "Allen Wrench Set", 3)
	el := testutil.ItemRequest("Oscilloscope", 1)
	el.Subteam = model.SubteamElectrical
	if _, err := eng.AddItem(ctx, guildA, el, memberA); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	all, err := eng.SearchItems(ctx, guildA, "", "", "")
	if err != nil || len(all) != 3 {
		t.Fatalf("unfiltered search = %d items, err=%v", len(all), err)
	}
	// results are ordered by name
	if all[0].ItemName != "Allen Wrench Set" {
		t.Errorf("first item = %q, want Allen Wrench Set", all[0].ItemName)
	}

	wrenches, err := eng.SearchItems(ctx, guildA, "WRENCH", "", "")
	if err != nil || len(wrenches) != 2 {
		t.Fatalf("name search = %d items, err=%v", len(wrenches), err)
	}

	electrical, err := eng.SearchItems(ctx, guildA, "", "electrical", "")
	if err != nil || len(electrical) != 1 || electrical[0].ItemName != "Oscilloscope" {
		t.Fatalf("subteam filter = %+v, err=%v", electrical, err)
	}
}

func TestUpdateItemSparsePatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	eng := testutil.NewEngine(db)
	ctx := context.Background()

	item := testutil.SeedItem(t, eng, guildA, "Label Maker", 2)

	loc := "Drawer 9"
	updated, err := eng.UpdateItem(ctx, guildA, item.ID, &model.UpdateItemRequest{Location: &loc}, memberA)
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if updated.Location != "Drawer 9" {
		t.Errorf("location = %q", updated.Location)
	}
	if updated.ItemName != item.ItemName || updated.QuantityTotal != item.QuantityTotal {
		t.Errorf("untouched fields changed: %+v", updated)
	}

	entries, _ := eng.GetAuditLog(ctx, guildA, 10)
	if len(entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(entries))
	}
	if entries[0].Action != model.ActionEditItem || !strings.Contains(entries[0].Details, "location=Drawer 9") {
		t.Errorf("edit audit entry = %+v", entries[0])
	}
}

func TestUpdateItemEmptyPatchIsPlainRead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	eng := testutil.NewEngine(db)
	ctx := context.Background()

	item := testutil.SeedItem(t, eng, guildA, "Heat Gun", 1)

	got, err := eng.UpdateItem(ctx, guildA, item.ID, &model.UpdateItemRequest{}, memberA)
	if err != nil {
		t.Fatalf("empty patch: %v", err)
	}
	if got == nil || got.ID != item.ID {
		t.Fatalf("empty patch should return the item, got %+v", got)
	}

	entries, _ := eng.GetAuditLog(ctx, guildA, 10)
	if len(entries) != 1 {
		t.Errorf("empty patch must not write audit entries, got %d", len(entries))
	}
}

func TestUpdateQuantityTotalPreservesLoanedAmount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	eng := testutil.NewEngine(db)
	ctx := context.Background()

	testutil.SeedMember(t, eng, guildA, memberA, "alice")
	item := testutil.SeedItem(t, eng, guildA, "Battery Pack", 10)

	co, err := eng.CheckoutItem(ctx, guildA, &model.CheckoutRequest{ItemID: item.ID, Quantity: 3}, memberA)
	if err != nil || co == nil {
		t.Fatalf("CheckoutItem: %v %v", co, err)
	}

	// shrinking the total moves availability by the same delta
	newTotal := 8
	updated, err := eng.UpdateItem(ctx, guildA, item.ID, &model.UpdateItemRequest{QuantityTotal: &newTotal}, memberA)
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if updated.QuantityTotal != 8 || updated.QuantityAvailable != 5 {
		t.Errorf("quantities = %d/%d, want 5/8", updated.QuantityAvailable, updated.QuantityTotal)
	}
	if updated.QuantityCheckedOut() != 3 {
		t.Errorf("loaned amount changed: %d", updated.QuantityCheckedOut())
	}

	// shrinking below the loaned amount is a conflict
	tooSmall := 2
	_, err = eng.UpdateItem(ctx, guildA, item.ID, &model.UpdateItemRequest{QuantityTotal: &tooSmall}, memberA)
	if !errors.Is(err, repository.ErrQuantityConflict) {
		t.Errorf("expected ErrQuantityConflict, got %v", err)
	}
}

func TestCheckoutInsufficientQuantity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	eng := testutil.NewEngine(db)
	ctx := context.Background()

	testutil.SeedMember(t, eng, guildA, memberA, "alice")
	item := testutil.SeedItem(t, eng, guildA, "Clamp", 3)

	co, err := eng.CheckoutItem(ctx, guildA, &model.CheckoutRequest{ItemID: item.ID, Quantity: 5}, memberA)
	if err != nil {
		t.Fatalf("CheckoutItem: %v", err)
	}
	if co != nil {
		t.Fatal("oversized checkout should be refused")
	}

	// no partial state: availability untouched, no audit entry
	after, _ := eng.GetItem(ctx, guildA, item.ID)
	if after.QuantityAvailable != 3 {
		t.Errorf("availability = %d, want 3", after.QuantityAvailable)
	}
	entries, _ := eng.GetAuditLog(ctx, guildA, 10)
	if len(entries) != 1 {
		t.Errorf("refused checkout must not be audited, got %d entries", len(entries))
	}
}

func TestCheckoutAndReturnConservation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	eng := testutil.NewEngine(db)
	ctx := context.Background()

	testutil.SeedMember(t, eng, guildA, memberA, "alice")
	item := testutil.SeedItem(t, eng, guildA, "Stepper Motor", 6)

	due := time.Now().Add(7 * 24 * time.Hour)
	co, err := eng.CheckoutItem(ctx, guildA, &model.CheckoutRequest{
		ItemID: item.ID, Quantity: 2, ExpectedReturnDate: &due,
	}, memberA)
	if err != nil || co == nil {
		t.Fatalf("CheckoutItem: %v %v", co, err)
	}
	mid, _ := eng.GetItem(ctx, guildA, item.ID)
	if mid.QuantityAvailable != 4 || mid.QuantityCheckedOut() != 2 {
		t.Fatalf("after checkout quantities = %d/%d", mid.QuantityAvailable, mid.QuantityTotal)
	}

	active, err := eng.GetActiveCheckouts(ctx, guildA, nil)
	if err != nil || len(active) != 1 || active[0].ID != co.ID {
		t.Fatalf("active checkouts = %+v, err=%v", active, err)
	}

	ok, err := eng.ReturnItem(ctx, guildA, co.ID, memberA)
	if err != nil || !ok {
		t.Fatalf("ReturnItem: ok=%v err=%v", ok, err)
	}
	after, _ := eng.GetItem(ctx, guildA, item.ID)
	if after.QuantityAvailable != 6 {
		t.Errorf("availability after return = %d, want 6", after.QuantityAvailable)
	}

	// second return of the same checkout is a no-op failure
	ok, err = eng.ReturnItem(ctx, guildA, co.ID, memberA)
	if err != nil || ok {
		t.Errorf("double return: ok=%v err=%v", ok, err)
	}

	history, err := eng.GetItemCheckouts(ctx, guildA, item.ID, false)
	if err != nil || len(history) != 1 || history[0].ReturnedAt == nil {
		t.Fatalf("history = %+v, err=%v", history, err)
	}
	activeOnly, _ := eng.GetItemCheckouts(ctx, guildA, item.ID, true)
	if len(activeOnly) != 0 {
		t.Errorf("active-only history should be empty, got %d", len(activeOnly))
	}

	entries, _ := eng.GetAuditLog(ctx, guildA, 10)
	if len(entries) != 3 {
		t.Fatalf("expected add/checkout/return audit entries, got %d", len(entries))
	}
	if entries[0].Details != "Returned 2x Stepper Motor" || entries[1].Details != "Checked out 2x Stepper Motor" {
		t.Errorf("audit order/details wrong: %q, %q", entries[0].Details, entries[1].Details)
	}
}

func TestConcurrentCheckoutsSerializeOnLastUnits(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	eng := testutil.NewEngine(db)
	ctx := context.Background()

	testutil.SeedMember(t, eng, guildA, memberA, "alice")
	item := testutil.SeedItem(t, eng, guildA, "LIDAR Unit", 1)

	const racers = 8
	var successes atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			co, err := eng.CheckoutItem(ctx, guildA, &model.CheckoutRequest{ItemID: item.ID, Quantity: 1}, memberA+uint64(n))
			if err != nil {
				t.Errorf("racer %d: %v", n, err)
				return
			}
			if co != nil {
				successes.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if got := successes.Load(); got != 1 {
		t.Errorf("exactly one racer should win the last unit, got %d", got)
	}
	after, _ := eng.GetItem(ctx, guildA, item.ID)
	if after.QuantityAvailable != 0 {
		t.Errorf("availability = %d, want 0", after.QuantityAvailable)
	}
	active, _ := eng.GetActiveCheckouts(ctx, guildA, nil)
	if len(active) != 1 {
		t.Errorf("active checkouts = %d, want 1", len(active))
	}
}

func TestDeleteItemRefusedWhileStockIsOut(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	eng := testutil.NewEngine(db)
	ctx := context.Background()

	testutil.SeedMember(t, eng, guildA, memberA, "alice")
	item := testutil.SeedItem(t, eng, guildA, "Vacuum Pump", 2)
	co, err := eng.CheckoutItem(ctx, guildA, &model.CheckoutRequest{ItemID: item.ID, Quantity: 1}, memberA)
	if err != nil || co == nil {
		t.Fatalf("CheckoutItem: %v %v", co, err)
	}

	ok, err := eng.DeleteItem(ctx, guildA, item.ID, memberA)
	if err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if ok {
		t.Fatal("delete must be refused while a checkout is open")
	}
	if got, _ := eng.GetItem(ctx, guildA, item.ID); got == nil {
		t.Fatal("refused delete must leave the item in place")
	}

	if ok, err := eng.ReturnItem(ctx, guildA, co.ID, memberA); err != nil || !ok {
		t.Fatalf("ReturnItem: ok=%v err=%v", ok, err)
	}
	ok, err = eng.DeleteItem(ctx, guildA, item.ID, memberA)
	if err != nil || !ok {
		t.Fatalf("delete after return: ok=%v err=%v", ok, err)
	}
	if got, _ := eng.GetItem(ctx, guildA, item.ID); got != nil {
		t.Error("item still present after delete")
	}

	// the audit trail survives the deletion and still references the id
	entries, _ := eng.GetAuditLog(ctx, guildA, 10)
	if len(entries) != 4 {
		t.Fatalf("expected 4 audit entries, got %d", len(entries))
	}
	if entries[0].Action != model.ActionDeleteItem || entries[0].ItemID == nil || *entries[0].ItemID != item.ID {
		t.Errorf("delete audit entry = %+v", entries[0])
	}

	// deleting again reports not found
	ok, err = eng.DeleteItem(ctx, guildA, item.ID, memberA)
	if err != nil || ok {
		t.Errorf("repeat delete: ok=%v err=%v", ok, err)
	}
}

func TestOperationsFailFastWithoutStore(t *testing.T) {
	eng := ledger.New(nil, nil)
	ctx := context.Background()

	// every operation must refuse before touching the (absent) pool
	ops := map[string]func() error{
		"EnsureUserExists": func() error { return eng.EnsureUserExists(ctx, memberA, "alice") },
		"AddItem": func() error {
			_, err := eng.AddItem(ctx, guildA, testutil.ItemRequest("Ghost", 1), memberA)
			return err
		},
		"GetItem": func() error { _, err := eng.GetItem(ctx, guildA, 1); return err },
		"SearchItems": func() error { _, err := eng.SearchItems(ctx, guildA, "", "", ""); return err },
		"UpdateItem": func() error {
			_, err := eng.UpdateItem(ctx, guildA, 1, &model.UpdateItemRequest{}, memberA)
			return err
		},
		"DeleteItem": func() error { _, err := eng.DeleteItem(ctx, guildA, 1, memberA); return err },
		"CheckoutItem": func() error {
			_, err := eng.CheckoutItem(ctx, guildA, &model.CheckoutRequest{ItemID: 1, Quantity: 1}, memberA)
			return err
		},
		"ReturnItem":         func() error { _, err := eng.ReturnItem(ctx, guildA, 1, memberA); return err },
		"GetActiveCheckouts": func() error { _, err := eng.GetActiveCheckouts(ctx, guildA, nil); return err },
		"GetStats":           func() error { _, err := eng.GetStats(ctx, guildA); return err },
		"GetAuditLog":        func() error { _, err := eng.GetAuditLog(ctx, guildA, 10); return err },
		"UpsertGuildSettings": func() error {
			return eng.UpsertGuildSettings(ctx, guildA, "Ghost Guild", nil, nil)
		},
	}
	for name, op := range ops {
		if err := op(); !errors.Is(err, ledger.ErrStoreUnavailable) {
			t.Errorf("%s err = %v, want ErrStoreUnavailable", name, err)
		}
	}
}

func TestReturnRejectsForeignGuildCheckout(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	eng := testutil.NewEngine(db)
	ctx := context.Background()

	testutil.SeedMember(t, eng, guildA, memberA, "alice")
	item := testutil.SeedItem(t, eng, guildA, "Belt Sander", 3)
	co, err := eng.CheckoutItem(ctx, guildA, &model.CheckoutRequest{ItemID: item.ID, Quantity: 2}, memberA)
	if err != nil || co == nil {
		t.Fatalf("CheckoutItem: %v %v", co, err)
	}

	// a return addressed to the wrong guild behaves like a missing checkout
	ok, err := eng.ReturnItem(ctx, guildB, co.ID, memberB)
	if err != nil || ok {
		t.Errorf("cross-guild return = (%v, %v)", ok, err)
	}
	after, _ := eng.GetItem(ctx, guildA, item.ID)
	if after.QuantityAvailable != 1 {
		t.Errorf("availability = %d, want 1", after.QuantityAvailable)
	}
	if entries, _ := eng.GetAuditLog(ctx, guildB, 10); len(entries) != 0 {
		t.Errorf("guild B audit has %d entries", len(entries))
	}

	// the loan stays open and its own guild can still close it
	ok, err = eng.ReturnItem(ctx, guildA, co.ID, memberA)
	if err != nil || !ok {
		t.Errorf("rightful return = (%v, %v)", ok, err)
	}
}

func TestGuildIsolation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	eng := testutil.NewEngine(db)
	ctx := context.Background()

	testutil.SeedMember(t, eng, guildB, memberB, "bob")
	item := testutil.SeedItem(t, eng, guildA, "Router Table", 4)

	// reads from another guild see nothing
	if got, err := eng.GetItem(ctx, guildB, item.ID); err != nil || got != nil {
		t.Errorf("cross-guild read = (%v, %v)", got, err)
	}
	if items, _ := eng.SearchItems(ctx, guildB, "", "", ""); len(items) != 0 {
		t.Errorf("cross-guild search found %d items", len(items))
	}

	// a checkout against another guild's item behaves like a missing item
	co, err := eng.CheckoutItem(ctx, guildB, &model.CheckoutRequest{ItemID: item.ID, Quantity: 1}, memberB)
	if err != nil || co != nil {
		t.Errorf("cross-guild checkout = (%v, %v)", co, err)
	}
	after, _ := eng.GetItem(ctx, guildA, item.ID)
	if after.QuantityAvailable != 4 {
		t.Errorf("availability changed across guilds: %d", after.QuantityAvailable)
	}

	// audit trails are separate too
	if entries, _ := eng.GetAuditLog(ctx, guildB, 10); len(entries) != 0 {
		t.Errorf("guild B audit has %d entries", len(entries))
	}
}

func TestStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	eng := testutil.NewEngine(db)
	ctx := context.Background()

	// empty guild: all zeros and a safe utilization rate
	empty, err := eng.GetStats(ctx, guildA)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if empty.TotalItems != 0 || empty.UtilizationRate() != 0.0 {
		t.Errorf("empty stats = %+v", empty)
	}

	testutil.SeedMember(t, eng, guildA, memberA, "alice")
	a := testutil.SeedItem(t, eng, guildA, "Spot Welder", 4)
	el := testutil.ItemRequest("Power Supply", 6)
	el.Subteam = model.SubteamElectrical
	if _, err := eng.AddItem(ctx, guildA, el, memberA); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if co, err := eng.CheckoutItem(ctx, guildA, &model.CheckoutRequest{ItemID: a.ID, Quantity: 3}, memberA); err != nil || co == nil {
		t.Fatalf("CheckoutItem: %v %v", co, err)
	}

	stats, err := eng.GetStats(ctx, guildA)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalItems != 2 || stats.TotalQuantity != 10 || stats.CheckedOutQuantity != 3 ||
		stats.ActiveCheckouts != 1 || stats.UniqueSubteams != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if got := stats.UtilizationRate(); got != 30.0 {
		t.Errorf("utilization = %f, want 30", got)
	}
}

func TestActiveCheckoutsFilterByMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	eng := testutil.NewEngine(db)
	ctx := context.Background()

	testutil.SeedMember(t, eng, guildA, memberA, "alice")
	testutil.SeedMember(t, eng, guildA, memberB, "bob")
	item := testutil.SeedItem(t, eng, guildA, "Crimp Tool", 5)

	for _, uid := range []uint64{memberA, memberA, memberB} {
		if co, err := eng.CheckoutItem(ctx, guildA, &model.CheckoutRequest{ItemID: item.ID, Quantity: 1}, uid); err != nil || co == nil {
			t.Fatalf("CheckoutItem for %d: %v %v", uid, co, err)
		}
	}

	uid := memberA
	mine, err := eng.GetActiveCheckouts(ctx, guildA, &uid)
	if err != nil || len(mine) != 2 {
		t.Errorf("member filter = %d checkouts, err=%v", len(mine), err)
	}
	all, err := eng.GetActiveCheckouts(ctx, guildA, nil)
	if err != nil || len(all) != 3 {
		t.Errorf("unfiltered = %d checkouts, err=%v", len(all), err)
	}
}

func TestGuildAdminFlags(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	eng := testutil.NewEngine(db)
	ctx := context.Background()

	testutil.SeedMember(t, eng, guildA, memberA, "alice")
	if admin, err := eng.IsGuildAdmin(ctx, guildA, memberA); err != nil || admin {
		t.Errorf("fresh member should not be admin: %v %v", admin, err)
	}

	if err := eng.SetGuildAdmin(ctx, guildA, memberA, true); err != nil {
		t.Fatalf("SetGuildAdmin: %v", err)
	}
	if admin, _ := eng.IsGuildAdmin(ctx, guildA, memberA); !admin {
		t.Error("grant did not take effect")
	}
	// the grant is scoped to its guild
	testutil.SeedMember(t, eng, guildB, memberA, "alice")
	if admin, _ := eng.IsGuildAdmin(ctx, guildB, memberA); admin {
		t.Error("guild admin leaked into another guild")
	}

	// a global admin is an admin everywhere
	if err := eng.SetAdmin(ctx, memberA, true); err != nil {
		t.Fatalf("SetAdmin: %v", err)
	}
	if admin, _ := eng.IsGuildAdmin(ctx, guildB, memberA); !admin {
		t.Error("global admin not recognized in other guilds")
	}
}

func TestGuildSettingsSheetPreservedOnUpsert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	eng := testutil.NewEngine(db)
	ctx := context.Background()

	sheetID := "1AbC"
	sheetURL := "https://docs.google.com/spreadsheets/d/1AbC"
	if err := eng.UpsertGuildSettings(ctx, guildA, "Robotics Club", &sheetID, &sheetURL); err != nil {
		t.Fatalf("UpsertGuildSettings: %v", err)
	}

	// a later upsert without sheet fields must not clear the linkage
	if err := eng.UpsertGuildSettings(ctx, guildA, "Robotics Club v2", nil, nil); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	settings, err := eng.GetGuildSettings(ctx, guildA)
	if err != nil || settings == nil {
		t.Fatalf("GetGuildSettings: %v %v", settings, err)
	}
	if settings.GuildName != "Robotics Club v2" {
		t.Errorf("guild name = %q", settings.GuildName)
	}
	if !settings.HasSheet() || *settings.GoogleSheetID != sheetID {
		t.Errorf("sheet linkage lost: %+v", settings)
	}

	if missing, err := eng.GetGuildSettings(ctx, guildB); err != nil || missing != nil {
		t.Errorf("unconfigured guild = (%v, %v)", missing, err)
	}
}
