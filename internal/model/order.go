package model

// Order is a row in the `orders` table.
//
// Fields:
//  ID         – primary key identifier.
//  Notes      – free text taken with the order; the only mutable column.
//  CustomerID – owning customer, must reference an existing row.
//  Timestamp  – seconds since epoch, assigned by the server at creation.
type Order struct {
	ID         int64  `json:"order_id"`  // orders.id
	Notes      string `json:"notes"`     // orders.notes
	CustomerID int64  `json:"cust_id"`   // orders.cust_id
	Timestamp  int64  `json:"timestamp"` // orders.timestamp
}

// OrderLine is one row of the `order_list` junction table joined with the
// item it references. Repeating an item on an order encodes quantity.
type OrderLine struct {
	ID      int64   `json:"id"`       // order_list.id
	OrderID int64   `json:"order_id"` // order_list.order_id
	ItemID  int64   `json:"item_id"`  // order_list.item_id
	Name    string  `json:"name"`     // items.name
	Price   float64 `json:"price"`    // items.price
}
