// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrConflict signals that a delete cannot proceed because
// dependent rows still reference the record (e.g. deleting a customer
// who still has orders).
package repository

import (
	"context"
	"database/sql"
	"errors"
)

// ErrConflict is returned when a delete cannot be performed because
// other rows still reference the record. Handlers should translate
// this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrCustomerNotFound is returned when a customer cannot be found, either
// directly or as the owner referenced by a new order.
var ErrCustomerNotFound = errors.New("customer not found")

// ErrItemNotFound is returned when an item lookup fails.
var ErrItemNotFound = errors.New("item not found")

// ErrItemExists is returned when an item name is already taken.
var ErrItemExists = errors.New("item already exists")

// ErrOrderNotFound is returned when an order lookup fails.
var ErrOrderNotFound = errors.New("order not found")

// exists runs a single-row probe query and reports whether it matched.
func exists(ctx context.Context, q rowQuerier, query string, args ...any) (bool, error) {
	var one int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
