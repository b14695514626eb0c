package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/guild-inventory/internal/model"
)

// ItemRepo provides CRUD operations for inventory items.  Every query is
// scoped by guild_id; an item id from another guild behaves exactly like
// a missing row.  All timestamp fields are stored in UTC.
type ItemRepo struct {
	db *sql.DB
}

// NewItemRepo returns a new ItemRepo bound to the given database.
func NewItemRepo(db *sql.DB) *ItemRepo { return &ItemRepo{db: db} }

const itemColumns = `id, guild_id, item_name, quantity_total, quantity_available,
	location, subteam, point_of_contact, purchase_order, description, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (*model.Item, error) {
	var it model.Item
	var desc sql.NullString
	err := row.Scan(
		&it.ID, &it.GuildID, &it.ItemName, &it.QuantityTotal, &it.QuantityAvailable,
		&it.Location, &it.Subteam, &it.PointOfContact, &it.PurchaseOrder,
		&desc, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		it.Description = &d
	}
	return &it, nil
}

// CreateTx inserts a new item within the scope of an existing
// transaction and reads the full row back so generated id and
// timestamps are populated.  quantity_available is seeded from
// quantity_total; the two only diverge through checkouts.
func (r *ItemRepo) CreateTx(ctx context.Context, tx *sql.Tx, guildID uint64, req *model.CreateItemRequest) (*model.Item, error) {
	const q = `INSERT INTO items
		(guild_id, item_name, quantity_total, quantity_available, location, subteam, point_of_contact, purchase_order, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		guildID, req.ItemName, req.Quantity, req.Quantity,
		req.Location, string(req.Subteam), req.PointOfContact, req.PurchaseOrder, req.Description,
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	row := tx.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	return scanItem(row)
}

// GetByID returns one item of the guild.  sql.ErrNoRows is returned
// when the id does not exist or belongs to a different guild.
func (r *ItemRepo) GetByID(ctx context.Context, guildID, itemID uint64) (*model.Item, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ? AND guild_id = ?`,
		itemID, guildID)
	return scanItem(row)
}

// GetForUpdateTx loads one item of the guild and locks its row for the
// duration of the transaction.  Concurrent checkouts against the same
// item serialize on this lock.
func (r *ItemRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, guildID, itemID uint64) (*model.Item, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ? AND guild_id = ? FOR UPDATE`,
		itemID, guildID)
	return scanItem(row)
}

// Search returns the guild's items ordered by name.  Each filter is
// optional and independently composable: search is a case-insensitive
// substring match on the name, subteam and location are exact matches.
func (r *ItemRepo) Search(ctx context.Context, guildID uint64, search, subteam, location string) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE guild_id = ?`
	args := []any{guildID}
	if search != "" {
		query += ` AND LOWER(item_name) LIKE ?`
		args = append(args, "%"+strings.ToLower(search)+"%")
	}
	if subteam != "" {
		query += ` AND subteam = ?`
		args = append(args, subteam)
	}
	if location != "" {
		query += ` AND location = ?`
		args = append(args, location)
	}
	query += ` ORDER BY item_name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ApplyPatchTx updates only the fields present in the patch, then reads
// the row back.  The caller must already hold the row lock via
// GetForUpdateTx.  When quantity_total changes, quantity_available moves
// by the same delta so the amount on loan stays untouched; shrinking the
// total below the amount currently out fails with ErrQuantityConflict.
func (r *ItemRepo) ApplyPatchTx(ctx context.Context, tx *sql.Tx, current *model.Item, req *model.UpdateItemRequest) (*model.Item, error) {
	sets := make([]string, 0, 8)
	args := make([]any, 0, 9)
	if req.ItemName != nil {
		sets = append(sets, "item_name = ?")
		args = append(args, *req.ItemName)
	}
	if req.QuantityTotal != nil {
		checkedOut := current.QuantityCheckedOut()
		if *req.QuantityTotal < checkedOut {
			return nil, ErrQuantityConflict
		}
		sets = append(sets, "quantity_total = ?", "quantity_available = ?")
		args = append(args, *req.QuantityTotal, *req.QuantityTotal-checkedOut)
	}
	if req.Location != nil {
		sets = append(sets, "location = ?")
		args = append(args, *req.Location)
	}
	if req.Subteam != nil {
		sets = append(sets, "subteam = ?")
		args = append(args, string(*req.Subteam))
	}
	if req.PointOfContact != nil {
		sets = append(sets, "point_of_contact = ?")
		args = append(args, *req.PointOfContact)
	}
	if req.PurchaseOrder != nil {
		sets = append(sets, "purchase_order = ?")
		args = append(args, *req.PurchaseOrder)
	}
	if req.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *req.Description)
	}
	if len(sets) == 0 {
		return current, nil
	}
	args = append(args, current.ID, current.GuildID)
	query := `UPDATE items SET ` + strings.Join(sets, ", ") + ` WHERE id = ? AND guild_id = ?`
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, err
	}
	row := tx.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, current.ID)
	return scanItem(row)
}

// AdjustAvailableTx moves quantity_available by delta (negative on
// checkout, positive on return).  The caller must hold the row lock and
// have re-validated availability after acquiring it.
func (r *ItemRepo) AdjustAvailableTx(ctx context.Context, tx *sql.Tx, itemID uint64, delta int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE items SET quantity_available = quantity_available + ? WHERE id = ?`,
		delta, itemID)
	return err
}

// DeleteTx removes the item row.  Callers must have verified inside the
// same transaction that no active checkout references it, and must have
// written the audit entry first.
func (r *ItemRepo) DeleteTx(ctx context.Context, tx *sql.Tx, guildID, itemID uint64) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM items WHERE id = ? AND guild_id = ?`, itemID, guildID)
	return err
}
