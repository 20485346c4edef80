package repository // repository holds data access logic for domain entities

import (
	"context"      // context is used to manage deadlines and cancellation
	"database/sql" // sql provides DB primitives
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/order-desk/internal/database"
	"github.com/iliyamo/order-desk/internal/model"
)

// ItemRepo provides methods to create, read, update and delete catalog items.
type ItemRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewItemRepo constructs an ItemRepo with the given DB handle.
func NewItemRepo(db *sql.DB) *ItemRepo {
	return &ItemRepo{db: db}
}

// Create inserts a new item. A name that is already taken yields
// ErrItemExists, whether caught by the lookup or by the unique index when
// two creates race.
func (r *ItemRepo) Create(ctx context.Context, it *model.Item) error {
	taken, err := exists(ctx, r.db, "SELECT 1 FROM items WHERE name = ?", it.Name)
	if err != nil {
		return err
	}
	if taken {
		return ErrItemExists
	}
	res, err := r.db.ExecContext(ctx, "INSERT INTO items (name, price) VALUES (?, ?)", it.Name, it.Price)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrItemExists
		}
		return fmt.Errorf("insert item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = id
	return nil
}

// GetByID retrieves an item by its ID. It returns ErrItemNotFound when no
// row is found.
func (r *ItemRepo) GetByID(ctx context.Context, id int64) (*model.Item, error) {
	const q = "SELECT id, name, price FROM items WHERE id = ?"
	var it model.Item
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&it.ID, &it.Name, &it.Price); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &it, nil
}

// Update applies the present fields of patch. Returns ErrItemNotFound when
// the item does not exist and ErrItemExists when renaming onto a taken name.
func (r *ItemRepo) Update(ctx context.Context, id int64, patch model.ItemPatch) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ok, err := exists(ctx, tx, "SELECT 1 FROM items WHERE id = ?", id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrItemNotFound
	}
	if patch.Empty() {
		return tx.Commit()
	}

	var (
		sets []string
		args []any
	)
	if name, present := patch.Name.Get(); present {
		sets = append(sets, "name = ?")
		args = append(args, name)
	}
	if price, present := patch.Price.Get(); present {
		sets = append(sets, "price = ?")
		args = append(args, price)
	}
	q := "UPDATE items SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := tx.ExecContext(ctx, q, append(args, id)...); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrItemExists
		}
		return fmt.Errorf("update item %d: %w", id, err)
	}
	return tx.Commit()
}

// Delete removes an item. Deleting a missing item succeeds with deleted ==
// false. Items still referenced by an order line are kept and ErrConflict is
// returned.
func (r *ItemRepo) Delete(ctx context.Context, id int64) (deleted bool, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	used, err := exists(ctx, tx, "SELECT 1 FROM order_list WHERE item_id = ? LIMIT 1", id)
	if err != nil {
		return false, err
	}
	if used {
		return false, ErrConflict
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return false, ErrConflict
		}
		return false, fmt.Errorf("delete item %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		if database.IsForeignKeyViolation(err) {
			return false, ErrConflict
		}
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
