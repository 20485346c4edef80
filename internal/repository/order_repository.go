package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/order-desk/internal/database"
	"github.com/iliyamo/order-desk/internal/model"
	"github.com/samber/mo"
)

// OrderRepo encapsulates queries over orders and their line items.
type OrderRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewOrderRepo constructs an OrderRepo with the provided DB handle.
func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db, now: time.Now}
}

// Create inserts a new order for an existing customer. The timestamp is
// always assigned here from the current time; whatever the caller put in
// o.Timestamp is overwritten. ErrCustomerNotFound is returned when the
// customer does not exist, including when it disappears between the check
// and the insert and the foreign key rejects the row.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
	ok, err := exists(ctx, r.db, "SELECT 1 FROM customers WHERE id = ?", o.CustomerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCustomerNotFound
	}

	ts := r.now().Unix()
	const q = "INSERT INTO orders (notes, cust_id, timestamp) VALUES (?, ?, ?)"
	res, err := r.db.ExecContext(ctx, q, o.Notes, o.CustomerID, ts)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("insert order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = id
	o.Timestamp = ts
	return nil
}

// GetByID fetches an order by id, returning ErrOrderNotFound if absent.
func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	const q = "SELECT id, notes, cust_id, timestamp FROM orders WHERE id = ?"
	var o model.Order
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&o.ID, &o.Notes, &o.CustomerID, &o.Timestamp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

// UpdateNotes sets the notes of an order when notes is present. Customer and
// timestamp are immutable once created.
func (r *OrderRepo) UpdateNotes(ctx context.Context, id int64, notes mo.Option[string]) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ok, err := exists(ctx, tx, "SELECT 1 FROM orders WHERE id = ?", id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOrderNotFound
	}
	if value, present := notes.Get(); present {
		if _, err := tx.ExecContext(ctx, "UPDATE orders SET notes = ? WHERE id = ?", value, id); err != nil {
			return fmt.Errorf("update order %d: %w", id, err)
		}
	}
	return tx.Commit()
}

// Delete removes an order together with its line items in one transaction.
// A missing order is not an error; deleted reports whether a row was removed.
func (r *OrderRepo) Delete(ctx context.Context, id int64) (deleted bool, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM order_list WHERE order_id = ?", id); err != nil {
		return false, fmt.Errorf("delete lines of order %d: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM orders WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete order %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// AddLine appends one item to an order. Returns ErrOrderNotFound or
// ErrItemNotFound when either side of the line is missing.
func (r *OrderRepo) AddLine(ctx context.Context, orderID, itemID int64) (*model.OrderLine, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	ok, err := exists(ctx, tx, "SELECT 1 FROM orders WHERE id = ?", orderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOrderNotFound
	}
	line := &model.OrderLine{OrderID: orderID, ItemID: itemID}
	err = tx.QueryRowContext(ctx, "SELECT name, price FROM items WHERE id = ?", itemID).Scan(&line.Name, &line.Price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	res, err := tx.ExecContext(ctx, "INSERT INTO order_list (order_id, item_id) VALUES (?, ?)", orderID, itemID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("insert order line: %w", err)
	}
	if line.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return line, nil
}

// Lines returns the line items of an order in insertion order, joined with
// the referenced item's name and price.
func (r *OrderRepo) Lines(ctx context.Context, orderID int64) ([]*model.OrderLine, error) {
	ok, err := exists(ctx, r.db, "SELECT 1 FROM orders WHERE id = ?", orderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOrderNotFound
	}

	const q = `SELECT ol.id, ol.order_id, ol.item_id, i.name, i.price
	           FROM order_list ol
	           JOIN items i ON i.id = ol.item_id
	           WHERE ol.order_id = ?
	           ORDER BY ol.id`
	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.OrderLine{}
	for rows.Next() {
		l := new(model.OrderLine)
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ItemID, &l.Name, &l.Price); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
