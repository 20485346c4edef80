package model

import "github.com/samber/mo"

// Customer is a row in the `customers` table. Phone is the natural key the
// seed loader deduplicates on; the store itself does not make it unique.
type Customer struct {
	ID    int64  `json:"cust_id"` // customers.id
	Name  string `json:"name"`    // customers.name
	Phone string `json:"phone"`   // customers.phone
}

// CustomerPatch carries the fields of a partial customer update. A field is
// applied only when present, so an explicit empty string clears the value.
type CustomerPatch struct {
	Name  mo.Option[string] `json:"name"`
	Phone mo.Option[string] `json:"phone"`
}

// Empty reports whether the patch touches no column.
func (p CustomerPatch) Empty() bool {
	return p.Name.IsAbsent() && p.Phone.IsAbsent()
}
