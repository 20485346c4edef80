package seed

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/order-desk/internal/database"
)

func openTempDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "seed.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func count(t *testing.T, db *sql.DB, q string, args ...any) int {
	t.Helper()

	var n int
	require.NoError(t, db.QueryRow(q, args...).Scan(&n))
	return n
}

const sample = `[
  {"name": "Ada", "phone": "5550001", "notes": "extra hot", "timestamp": 1700000000,
   "items": [{"name": "Latte", "price": 4.5}, {"name": "Scone", "price": 3}]},
  {"name": "Ada Lovelace", "phone": "5550001", "notes": "", "timestamp": 1700000100.75,
   "items": [{"name": "Latte", "price": 4.75}]},
  {"name": "Bob", "phone": "5550002", "notes": "no sugar", "timestamp": 1700000200,
   "items": []}
]`

func TestLoadDeduplicatesByNaturalKey(t *testing.T) {
	db := openTempDB(t)
	records, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	res, err := Load(context.Background(), db, records)
	require.NoError(t, err)
	assert.Equal(t, Result{Customers: 2, Items: 2, Orders: 3, OrderLines: 3}, res)

	// One customer per phone, last name wins.
	var adaID int64
	var adaName string
	require.NoError(t, db.QueryRow("SELECT id, name FROM customers WHERE phone = ?", "5550001").Scan(&adaID, &adaName))
	assert.Equal(t, "Ada Lovelace", adaName)
	assert.Equal(t, 1, count(t, db, "SELECT COUNT(*) FROM customers WHERE phone = ?", "5550001"))

	// Both of Ada's orders point at the one customer row.
	assert.Equal(t, 2, count(t, db, "SELECT COUNT(*) FROM orders WHERE cust_id = ?", adaID))

	// Last price wins.
	var price float64
	require.NoError(t, db.QueryRow("SELECT price FROM items WHERE name = ?", "Latte").Scan(&price))
	assert.Equal(t, 4.75, price)

	// Fractional timestamps are truncated.
	assert.Equal(t, 1, count(t, db, "SELECT COUNT(*) FROM orders WHERE timestamp = ?", 1700000100))
}

func TestLoadCreatesOneLinePerItem(t *testing.T) {
	db := openTempDB(t)
	records := []Record{{
		Name: "Ada", Phone: "1", Notes: "n", Timestamp: 10,
		Items: []ItemRecord{{Name: "Latte", Price: 4.5}, {Name: "Scone", Price: 3}},
	}}

	_, err := Load(context.Background(), db, records)
	require.NoError(t, err)

	var orderID int64
	require.NoError(t, db.QueryRow("SELECT id FROM orders").Scan(&orderID))

	rows, err := db.Query(`SELECT i.name FROM order_list ol JOIN items i ON i.id = ol.item_id
	                       WHERE ol.order_id = ? ORDER BY ol.id`, orderID)
	require.NoError(t, err)
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		names = append(names, n)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"Latte", "Scone"}, names)
}

func TestLoadIsAllOrNothing(t *testing.T) {
	db := openTempDB(t)
	_, err := db.Exec("INSERT INTO items (name, price) VALUES (?, ?)", "Scone", 3)
	require.NoError(t, err)

	records := []Record{{
		Name: "Ada", Phone: "1", Notes: "n", Timestamp: 10,
		Items: []ItemRecord{{Name: "Latte", Price: 4.5}, {Name: "Scone", Price: 3}},
	}}
	res, err := Load(context.Background(), db, records)
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err), "got %v", err)
	assert.Equal(t, Result{}, res)

	assert.Zero(t, count(t, db, "SELECT COUNT(*) FROM customers"))
	assert.Zero(t, count(t, db, "SELECT COUNT(*) FROM orders"))
	assert.Equal(t, 1, count(t, db, "SELECT COUNT(*) FROM items"))
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	records, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, UnixSeconds(1700000100), records[1].Timestamp)
	assert.Equal(t, "Latte", records[0].Items[0].Name)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	_, err = Decode(strings.NewReader(`{"not": "an array"}`))
	require.Error(t, err)
}
