// Package ledger implements the transactional core of the inventory
// service: item lifecycle, checkout/return quantity accounting, the
// audit trail and the asynchronous mirror-sync trigger.  Callers never
// touch the store directly; every mutation goes through an Engine
// operation that runs inside one short transaction.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/guild-inventory/internal/model"
	"github.com/iliyamo/guild-inventory/internal/repository"
)

// ErrStoreUnavailable is returned when an operation is invoked before
// the database pool has been attached.  Checked at the top of every
// operation so nothing half-runs against a nil pool.
var ErrStoreUnavailable = errors.New("ledger: store not initialized")

// Notifier schedules a best-effort refresh of a guild's external
// mirror.  Implementations must return immediately: the trigger is
// fired after a ledger transaction commits and must never delay or
// fail the operation that caused it.
type Notifier interface {
	TriggerSync(guildID uint64)
}

// NopNotifier discards sync triggers.  Used in tests and when no queue
// is configured.
type NopNotifier struct{}

func (NopNotifier) TriggerSync(uint64) {}

// defaultOpTimeout bounds every ledger operation, mirroring the store's
// command timeout.  A timeout rolls the transaction back whole.
const defaultOpTimeout = 60 * time.Second

// Engine is the ledger core.  It owns no state beyond its dependencies;
// all consistency comes from the store's transactions and row locks.
type Engine struct {
	db        *sql.DB
	items     *repository.ItemRepo
	checkouts *repository.CheckoutRepo
	users     *repository.UserRepo
	guilds    *repository.GuildRepo
	audit     *repository.AuditRepo
	stats     *repository.StatsRepo
	notifier  Notifier
	opTimeout time.Duration
}

// New wires an Engine over the given pool.  A nil notifier disables
// sync triggers.
func New(db *sql.DB, notifier Notifier) *Engine {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Engine{
		db:        db,
		items:     repository.NewItemRepo(db),
		checkouts: repository.NewCheckoutRepo(db),
		users:     repository.NewUserRepo(db),
		guilds:    repository.NewGuildRepo(db),
		audit:     repository.NewAuditRepo(db),
		stats:     repository.NewStatsRepo(db),
		notifier:  notifier,
		opTimeout: defaultOpTimeout,
	}
}

func (e *Engine) ready() error {
	if e == nil || e.db == nil {
		return ErrStoreUnavailable
	}
	return nil
}

func (e *Engine) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.opTimeout)
}

// begin opens a transaction and hands back a rollback closure that is a
// no-op once commit succeeded.
func (e *Engine) begin(ctx context.Context) (*sql.Tx, func(), *bool, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	committed := false
	rollback := func() {
		if !committed {
			_ = tx.Rollback()
		}
	}
	return tx, rollback, &committed, nil
}

// ===== Identity =====

// EnsureUserExists upserts the member identity (insert or refresh the
// username).  Front-ends call this before any operation that references
// the member.
func (e *Engine) EnsureUserExists(ctx context.Context, userID uint64, username string) error {
	if err := e.ready(); err != nil {
		return err
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()
	return e.users.Upsert(ctx, userID, username)
}

// EnsureGuildMember upserts the member and lazily creates their
// guild_permissions row with no admin rights.
func (e *Engine) EnsureGuildMember(ctx context.Context, guildID, userID uint64, username string) error {
	if err := e.ready(); err != nil {
		return err
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()
	if err := e.users.Upsert(ctx, userID, username); err != nil {
		return err
	}
	return e.users.EnsureGuildMember(ctx, guildID, userID)
}

// GetUser returns a member, or nil when unknown.
func (e *Engine) GetUser(ctx context.Context, userID uint64) (*model.User, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()
	u, err := e.users.GetByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// SetAdmin flips a member's global admin flag.
func (e *Engine) SetAdmin(ctx context.Context, userID uint64, isAdmin bool) error {
	if err := e.ready(); err != nil {
		return err
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()
	return e.users.SetAdmin(ctx, userID, isAdmin)
}

// SetGuildAdmin grants or revokes per-guild admin rights.  The target
// member's row is created on demand; an already stored username is
// never overwritten here.
func (e *Engine) SetGuildAdmin(ctx context.Context, guildID, userID uint64, isAdmin bool) error {
	if err := e.ready(); err != nil {
		return err
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()
	if err := e.users.EnsureExists(ctx, userID, strconv.FormatUint(userID, 10)); err != nil {
		return err
	}
	return e.users.SetGuildAdmin(ctx, guildID, userID, isAdmin)
}

// IsGuildAdmin reports whether the member is a global admin or a guild
// admin of this guild.
func (e *Engine) IsGuildAdmin(ctx context.Context, guildID, userID uint64) (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()
	return e.users.IsGuildAdmin(ctx, guildID, userID)
}

// ===== Guild settings =====

// UpsertGuildSettings records the guild's name and, when provided, its
// mirror sheet linkage.  Passing nil sheet fields preserves whatever is
// already stored.
func (e *Engine) UpsertGuildSettings(ctx context.Context, guildID uint64, guildName string, sheetID, sheetURL *string) error {
	if err := e.ready(); err != nil {
		return err
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()
	return e.guilds.Upsert(ctx, guildID, guildName, sheetID, sheetURL)
}

// GetGuildSettings returns the guild's settings, or nil when the guild
// was never configured.
func (e *Engine) GetGuildSettings(ctx context.Context, guildID uint64) (*model.GuildSettings, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()
	gs, err := e.guilds.Get(ctx, guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return gs, err
}

// ===== Items =====

// AddItem validates and inserts a new item with
// quantity_available = quantity_total = request quantity, writes the
// add_item audit entry in the same transaction and schedules a mirror
// sync after commit.
func (e *Engine) AddItem(ctx context.Context, guildID uint64, req *model.CreateItemRequest, addedBy uint64) (*model.Item, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()

	tx, rollback, committed, err := e.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer rollback()

	item, err := e.items.CreateTx(ctx, tx, guildID, req)
	if err != nil {
		return nil, err
	}
	details := fmt.Sprintf("Added %dx %s", req.Quantity, req.ItemName)
	if err := e.audit.InsertTx(ctx, tx, guildID, addedBy, model.ActionAddItem, &item.ID, details); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	*committed = true
	e.notifier.TriggerSync(guildID)
	return item, nil
}

// GetItem returns one item of the guild, or nil when the id is unknown
// or belongs to another guild.
func (e *Engine) GetItem(ctx context.Context, guildID, itemID uint64) (*model.Item, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()
	item, err := e.items.GetByID(ctx, guildID, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return item, err
}

// SearchItems lists the guild's items ordered by name, optionally
// filtered by a case-insensitive name substring, subteam and location.
func (e *Engine) SearchItems(ctx context.Context, guildID uint64, search, subteam, location string) ([]model.Item, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()
	return e.items.Search(ctx, guildID, search, subteam, location)
}

// UpdateItem applies a sparse patch to an item.  An empty patch is a
// plain read: the current item comes back and no audit entry is
// written.  On actual change an edit_item entry summarizing the changed
// fields is recorded and a sync is scheduled.  Shrinking quantity_total
// below the amount currently on loan fails with
// repository.ErrQuantityConflict.
func (e *Engine) UpdateItem(ctx context.Context, guildID, itemID uint64, req *model.UpdateItemRequest, updatedBy uint64) (*model.Item, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if req.IsEmpty() {
		return e.GetItem(ctx, guildID, itemID)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()

	tx, rollback, committed, err := e.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer rollback()

	current, err := e.items.GetForUpdateTx(ctx, tx, guildID, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	item, err := e.items.ApplyPatchTx(ctx, tx, current, req)
	if err != nil {
		return nil, err
	}
	details := "Updated: " + strings.Join(req.Changes(), ", ")
	if err := e.audit.InsertTx(ctx, tx, guildID, updatedBy, model.ActionEditItem, &item.ID, details); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	*committed = true
	e.notifier.TriggerSync(guildID)
	return item, nil
}

// DeleteItem removes an item.  It returns false without side effects
// when the item does not exist in this guild or still has stock out on
// active checkouts.  The audit entry is written before the row is
// deleted so the trail never references a vanished insert ordering.
func (e *Engine) DeleteItem(ctx context.Context, guildID, itemID uint64, deletedBy uint64) (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()

	tx, rollback, committed, err := e.begin(ctx)
	if err != nil {
		return false, err
	}
	defer rollback()

	item, err := e.items.GetForUpdateTx(ctx, tx, guildID, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	active, err := e.checkouts.CountActiveByItemTx(ctx, tx, itemID)
	if err != nil {
		return false, err
	}
	if active > 0 {
		// Deleting now would orphan open loans and desync the totals.
		return false, nil
	}
	details := fmt.Sprintf("Deleted %s", item.ItemName)
	if err := e.audit.InsertTx(ctx, tx, guildID, deletedBy, model.ActionDeleteItem, &itemID, details); err != nil {
		return false, err
	}
	if err := e.items.DeleteTx(ctx, tx, guildID, itemID); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	*committed = true
	e.notifier.TriggerSync(guildID)
	return true, nil
}

// ===== Checkouts =====

// CheckoutItem loans req.Quantity units of an item to a member.  The
// item row is locked first and availability re-validated under the
// lock, so two racing checkouts for the last unit serialize and exactly
// one wins.  A missing item, foreign guild or insufficient stock all
// return (nil, nil) with no partial state, no audit entry and no sync.
func (e *Engine) CheckoutItem(ctx context.Context, guildID uint64, req *model.CheckoutRequest, userID uint64) (*model.Checkout, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()

	tx, rollback, committed, err := e.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer rollback()

	item, err := e.items.GetForUpdateTx(ctx, tx, guildID, req.ItemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if item.QuantityAvailable < req.Quantity {
		return nil, nil
	}
	checkout, err := e.checkouts.CreateTx(ctx, tx, guildID, userID, req)
	if err != nil {
		return nil, err
	}
	if err := e.items.AdjustAvailableTx(ctx, tx, item.ID, -req.Quantity); err != nil {
		return nil, err
	}
	details := fmt.Sprintf("Checked out %dx %s", req.Quantity, item.ItemName)
	if err := e.audit.InsertTx(ctx, tx, guildID, userID, model.ActionCheckout, &item.ID, details); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	*committed = true
	e.notifier.TriggerSync(guildID)
	return checkout, nil
}

// ReturnItem closes an open checkout and hands the quantity back to the
// item.  Returns false with no side effects when the checkout does not
// exist, belongs to another guild or was already returned.
func (e *Engine) ReturnItem(ctx context.Context, guildID, checkoutID uint64, returnedBy uint64) (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()

	tx, rollback, committed, err := e.begin(ctx)
	if err != nil {
		return false, err
	}
	defer rollback()

	checkout, err := e.checkouts.GetActiveForUpdateTx(ctx, tx, guildID, checkoutID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	// Lock the parent item so the increment serializes with concurrent
	// checkouts against the same row.
	item, err := e.items.GetForUpdateTx(ctx, tx, guildID, checkout.ItemID)
	if err != nil {
		return false, err
	}
	now := time.Now().UTC()
	if err := e.checkouts.MarkReturnedTx(ctx, tx, checkout.ID, now); err != nil {
		return false, err
	}
	if err := e.items.AdjustAvailableTx(ctx, tx, item.ID, checkout.Quantity); err != nil {
		return false, err
	}
	details := fmt.Sprintf("Returned %dx %s", checkout.Quantity, item.ItemName)
	if err := e.audit.InsertTx(ctx, tx, guildID, returnedBy, model.ActionReturn, &item.ID, details); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	*committed = true
	e.notifier.TriggerSync(guildID)
	return true, nil
}

// GetActiveCheckouts lists the guild's open loans newest first,
// optionally filtered to one member.
func (e *Engine) GetActiveCheckouts(ctx context.Context, guildID uint64, userID *uint64) ([]model.Checkout, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()
	return e.checkouts.ListActive(ctx, guildID, userID)
}

// GetItemCheckouts lists one item's loans newest first.
func (e *Engine) GetItemCheckouts(ctx context.Context, guildID, itemID uint64, activeOnly bool) ([]model.Checkout, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()
	return e.checkouts.ListByItem(ctx, guildID, itemID, activeOnly)
}

// ===== Reporting =====

// GetStats derives the guild's aggregate inventory numbers, computed
// fresh on every call.
func (e *Engine) GetStats(ctx context.Context, guildID uint64) (model.InventoryStats, error) {
	if err := e.ready(); err != nil {
		return model.InventoryStats{}, err
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()
	return e.stats.GetStats(ctx, guildID)
}

// GetAuditLog returns the guild's newest audit entries first, bounded
// by limit (default 50, capped at 200).
func (e *Engine) GetAuditLog(ctx context.Context, guildID uint64, limit int) ([]model.AuditLog, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	ctx, cancel := e.opContext(ctx)
	defer cancel()
	return e.audit.List(ctx, guildID, limit)
}
