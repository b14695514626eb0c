// Package testutil provides shared setup for tests that need a real
// MySQL instance.  Tests that call SetupTestDB are skipped when no
// database is reachable, so the unit-level suites still run anywhere.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/iliyamo/guild-inventory/internal/database"
	"github.com/iliyamo/guild-inventory/internal/ledger"
	"github.com/iliyamo/guild-inventory/internal/model"
)

// defaultTestDSN points at a local throwaway database.  Override with
// TEST_DATABASE_DSN.
const defaultTestDSN = "root@tcp(localhost:3306)/guild_inventory_test?charset=utf8mb4&parseTime=true&loc=UTC&multiStatements=false"

// tables in FK-safe drop order.
var tables = []string{
	"refresh_tokens",
	"service_accounts",
	"audit_log",
	"checkouts",
	"items",
	"guild_settings",
	"guild_permissions",
	"users",
}

// SetupTestDB opens the test database and recreates the full schema so
// every test starts from empty tables.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = defaultTestDSN
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		t.Skipf("test database not reachable: %v", err)
	}

	for _, tbl := range tables {
		if _, err := db.Exec("DROP TABLE IF EXISTS " + tbl); err != nil {
			t.Fatalf("drop table %s: %v", tbl, err)
		}
	}
	if err := database.CreateSchema(db); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

// NewEngine builds a ledger engine over the test database with sync
// triggers disabled.
func NewEngine(db *sql.DB) *ledger.Engine {
	return ledger.New(db, ledger.NopNotifier{})
}

// SeedMember upserts a member and their guild membership.
func SeedMember(t *testing.T, eng *ledger.Engine, guildID, userID uint64, username string) {
	t.Helper()
	if err := eng.EnsureGuildMember(context.Background(), guildID, userID, username); err != nil {
		t.Fatalf("seed member %d: %v", userID, err)
	}
}

// ItemRequest returns a valid creation request with the given name and
// quantity; tests mutate individual fields to probe validation.
func ItemRequest(name string, qty int) *model.CreateItemRequest {
	return &model.CreateItemRequest{
		ItemName:       name,
		Quantity:       qty,
		Location:       "Shelf A3",
		Subteam:        model.SubteamMechanical,
		PointOfContact: 900001,
		PurchaseOrder:  "PO-1042",
	}
}

// SeedItem creates an item through the ledger and returns it.
func SeedItem(t *testing.T, eng *ledger.Engine, guildID uint64, name string, qty int) *model.Item {
	t.Helper()
	item, err := eng.AddItem(context.Background(), guildID, ItemRequest(name, qty), 900001)
	if err != nil {
		t.Fatalf("seed item %q: %v", name, err)
	}
	return item
}
