// Package seed performs the one-time bulk load of historical phone orders.
// Customers and items are deduplicated by natural key (phone and item name)
// before anything is written, and the whole load runs in one transaction.
package seed

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/samber/lo"
)

// ItemRecord is one item on a historical order.
type ItemRecord struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Record is one historical order together with the customer who placed it.
type Record struct {
	Name      string       `json:"name"`
	Phone     string       `json:"phone"`
	Notes     string       `json:"notes"`
	Timestamp UnixSeconds  `json:"timestamp"`
	Items     []ItemRecord `json:"items"`
}

// UnixSeconds is a seconds-since-epoch value. Exports written by other tools
// sometimes carry fractional seconds; they are truncated.
type UnixSeconds int64

func (u *UnixSeconds) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	*u = UnixSeconds(math.Trunc(f))
	return nil
}

// Result counts the rows written per table.
type Result struct {
	Customers  int `json:"customers"`
	Items      int `json:"items"`
	Orders     int `json:"orders"`
	OrderLines int `json:"order_lines"`
}

// Decode reads a JSON array of records.
func Decode(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode seed records: %w", err)
	}
	return records, nil
}

// ReadFile decodes the records stored at path.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Load writes records into the store. Customers are keyed by phone and items
// by name; for both the last record wins the name or price, while insertion
// order follows first appearance. Any failure rolls back everything and the
// returned Result is zero.
func Load(ctx context.Context, db *sql.DB, records []Record) (Result, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := load(ctx, tx, records)
	if err != nil {
		return Result{}, err
	}
	if err := tx.Commit(); err != nil {
		return Result{}, err
	}
	return res, nil
}

func load(ctx context.Context, tx *sql.Tx, records []Record) (Result, error) {
	var res Result

	customerNames := make(map[string]string, len(records))
	for _, r := range records {
		customerNames[r.Phone] = r.Name
	}
	phones := lo.Uniq(lo.Map(records, func(r Record, _ int) string { return r.Phone }))

	allItems := lo.FlatMap(records, func(r Record, _ int) []ItemRecord { return r.Items })
	itemPrices := make(map[string]float64, len(allItems))
	for _, it := range allItems {
		itemPrices[it.Name] = it.Price
	}
	itemNames := lo.Uniq(lo.Map(allItems, func(it ItemRecord, _ int) string { return it.Name }))

	customerIDs := make(map[string]int64, len(phones))
	for _, phone := range phones {
		id, err := insert(ctx, tx, "INSERT INTO customers (name, phone) VALUES (?, ?)", customerNames[phone], phone)
		if err != nil {
			return res, fmt.Errorf("insert customer %q: %w", phone, err)
		}
		customerIDs[phone] = id
		res.Customers++
	}

	itemIDs := make(map[string]int64, len(itemNames))
	for _, name := range itemNames {
		id, err := insert(ctx, tx, "INSERT INTO items (name, price) VALUES (?, ?)", name, itemPrices[name])
		if err != nil {
			return res, fmt.Errorf("insert item %q: %w", name, err)
		}
		itemIDs[name] = id
		res.Items++
	}

	for i, r := range records {
		custID, ok := customerIDs[r.Phone]
		if !ok {
			return res, fmt.Errorf("record %d: no customer for phone %q", i, r.Phone)
		}
		orderID, err := insert(ctx, tx,
			"INSERT INTO orders (notes, timestamp, cust_id) VALUES (?, ?, ?)",
			r.Notes, int64(r.Timestamp), custID)
		if err != nil {
			return res, fmt.Errorf("record %d: insert order: %w", i, err)
		}
		res.Orders++

		for _, it := range r.Items {
			itemID, ok := itemIDs[it.Name]
			if !ok {
				return res, fmt.Errorf("record %d: no item named %q", i, it.Name)
			}
			if _, err := insert(ctx, tx,
				"INSERT INTO order_list (order_id, item_id) VALUES (?, ?)", orderID, itemID); err != nil {
				return res, fmt.Errorf("record %d: insert line %q: %w", i, it.Name, err)
			}
			res.OrderLines++
		}
	}
	return res, nil
}

func insert(ctx context.Context, tx *sql.Tx, q string, args ...any) (int64, error) {
	r, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return r.LastInsertId()
}
