package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/order-desk/internal/database"
	"github.com/iliyamo/order-desk/internal/model"
)

// CustomerRepo encapsulates all database queries related to customers. It
// depends on a sql.DB pool configured elsewhere; every method acquires and
// releases its own connection or transaction.
type CustomerRepo struct {
	db *sql.DB
}

// NewCustomerRepo constructs a CustomerRepo with the provided DB handle.
func NewCustomerRepo(db *sql.DB) *CustomerRepo {
	return &CustomerRepo{db: db}
}

// Create inserts a new customer. On success the customer's ID field is
// populated with the generated value.
func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	const q = "INSERT INTO customers (name, phone) VALUES (?, ?)"
	res, err := r.db.ExecContext(ctx, q, c.Name, c.Phone)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

// GetByID fetches a customer by id. It returns ErrCustomerNotFound if no row
// matches.
func (r *CustomerRepo) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	return getCustomer(ctx, r.db, id)
}

// Update applies the present fields of patch to the customer and returns the
// post-update row. An empty patch leaves the row untouched. The existence
// check, update and re-read share one transaction.
func (r *CustomerRepo) Update(ctx context.Context, id int64, patch model.CustomerPatch) (*model.Customer, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	ok, err := exists(ctx, tx, "SELECT 1 FROM customers WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCustomerNotFound
	}

	var (
		sets []string
		args []any
	)
	if name, present := patch.Name.Get(); present {
		sets = append(sets, "name = ?")
		args = append(args, name)
	}
	if phone, present := patch.Phone.Get(); present {
		sets = append(sets, "phone = ?")
		args = append(args, phone)
	}
	if len(sets) > 0 {
		q := "UPDATE customers SET " + strings.Join(sets, ", ") + " WHERE id = ?"
		if _, err := tx.ExecContext(ctx, q, append(args, id)...); err != nil {
			return nil, fmt.Errorf("update customer %d: %w", id, err)
		}
	}

	updated, err := getCustomer(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a customer. A missing row is not an error; deleted reports
// whether a row was actually removed. Customers who still own orders are not
// deleted and ErrConflict is returned.
func (r *CustomerRepo) Delete(ctx context.Context, id int64) (deleted bool, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	owns, err := exists(ctx, tx, "SELECT 1 FROM orders WHERE cust_id = ? LIMIT 1", id)
	if err != nil {
		return false, err
	}
	if owns {
		return false, ErrConflict
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM customers WHERE id = ?", id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return false, ErrConflict
		}
		return false, fmt.Errorf("delete customer %d: %w", id, err)
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

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getCustomer(ctx context.Context, q rowQuerier, id int64) (*model.Customer, error) {
	const query = "SELECT id, name, phone FROM customers WHERE id = ?"
	var c model.Customer
	if err := q.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Phone); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return &c, nil
}
