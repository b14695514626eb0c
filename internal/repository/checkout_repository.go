package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/guild-inventory/internal/model"
)

// CheckoutRepo provides data access to the checkouts table.  Checkout
// rows are created inside the same transaction that decrements the
// parent item's availability and are mutated exactly once, on return.
// All timestamps are stored in UTC.
type CheckoutRepo struct {
	db *sql.DB
}

// NewCheckoutRepo returns a new CheckoutRepo bound to the given database.
func NewCheckoutRepo(db *sql.DB) *CheckoutRepo { return &CheckoutRepo{db: db} }

const checkoutColumns = `id, item_id, guild_id, user_id, quantity,
	checked_out_at, expected_return_date, returned_at, notes`

func scanCheckout(row interface{ Scan(...any) error }) (*model.Checkout, error) {
	var c model.Checkout
	var expected, returned sql.NullTime
	var notes sql.NullString
	err := row.Scan(
		&c.ID, &c.ItemID, &c.GuildID, &c.UserID, &c.Quantity,
		&c.CheckedOutAt, &expected, &returned, &notes,
	)
	if err != nil {
		return nil, err
	}
	if expected.Valid {
		t := expected.Time
		c.ExpectedReturnDate = &t
	}
	if returned.Valid {
		t := returned.Time
		c.ReturnedAt = &t
	}
	if notes.Valid {
		n := notes.String
		c.Notes = &n
	}
	return &c, nil
}

// CreateTx inserts a new checkout within the caller's transaction and
// reads the full row back to populate the generated id and timestamp.
// The caller must hold the item row lock and adjust quantity_available
// in the same transaction.
func (r *CheckoutRepo) CreateTx(ctx context.Context, tx *sql.Tx, guildID, userID uint64, req *model.CheckoutRequest) (*model.Checkout, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO checkouts (item_id, guild_id, user_id, quantity, expected_return_date, notes)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		req.ItemID, guildID, userID, req.Quantity, req.ExpectedReturnDate, req.Notes)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	row := tx.QueryRowContext(ctx, `SELECT `+checkoutColumns+` FROM checkouts WHERE id = ?`, id)
	return scanCheckout(row)
}

// GetActiveForUpdateTx locates the open checkout matching
// (id, guild_id, returned_at IS NULL) and locks it.  A wrong guild or an
// already returned loan surfaces as sql.ErrNoRows.
func (r *CheckoutRepo) GetActiveForUpdateTx(ctx context.Context, tx *sql.Tx, guildID, checkoutID uint64) (*model.Checkout, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+checkoutColumns+` FROM checkouts
		 WHERE id = ? AND guild_id = ? AND returned_at IS NULL FOR UPDATE`,
		checkoutID, guildID)
	return scanCheckout(row)
}

// MarkReturnedTx closes the loan by setting returned_at.  The matching
// availability increment on the item happens in the same transaction.
func (r *CheckoutRepo) MarkReturnedTx(ctx context.Context, tx *sql.Tx, checkoutID uint64, returnedAt time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE checkouts SET returned_at = ? WHERE id = ?`, returnedAt, checkoutID)
	return err
}

// CountActiveByItemTx counts open loans against one item inside the
// caller's transaction.  Used to refuse deleting an item that still has
// stock out.
func (r *CheckoutRepo) CountActiveByItemTx(ctx context.Context, tx *sql.Tx, itemID uint64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM checkouts WHERE item_id = ? AND returned_at IS NULL`,
		itemID).Scan(&n)
	return n, err
}

// ListActive returns the guild's open checkouts ordered newest first,
// optionally filtered to one member.
func (r *CheckoutRepo) ListActive(ctx context.Context, guildID uint64, userID *uint64) ([]model.Checkout, error) {
	query := `SELECT ` + checkoutColumns + ` FROM checkouts WHERE guild_id = ? AND returned_at IS NULL`
	args := []any{guildID}
	if userID != nil {
		query += ` AND user_id = ?`
		args = append(args, *userID)
	}
	query += ` ORDER BY checked_out_at DESC`
	return r.list(ctx, query, args...)
}

// ListByItem returns the checkouts of one item, newest first.  When
// activeOnly is set, returned loans are excluded.
func (r *CheckoutRepo) ListByItem(ctx context.Context, guildID, itemID uint64, activeOnly bool) ([]model.Checkout, error) {
	query := `SELECT ` + checkoutColumns + ` FROM checkouts WHERE guild_id = ? AND item_id = ?`
	if activeOnly {
		query += ` AND returned_at IS NULL`
	}
	query += ` ORDER BY checked_out_at DESC`
	return r.list(ctx, query, guildID, itemID)
}

func (r *CheckoutRepo) list(ctx context.Context, query string, args ...any) ([]model.Checkout, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Checkout, 0)
	for rows.Next() {
		c, err := scanCheckout(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
