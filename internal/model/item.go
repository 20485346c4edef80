package model

import "github.com/samber/mo"

// Item is a catalog entry in the `items` table. Names are unique and compared
// case-sensitively.
type Item struct {
	ID    int64   `json:"id"`    // items.id
	Name  string  `json:"name"`  // items.name
	Price float64 `json:"price"` // items.price
}

// ItemPatch carries the fields of a partial item update. A present price of
// zero is applied like any other value.
type ItemPatch struct {
	Name  mo.Option[string]  `json:"name"`
	Price mo.Option[float64] `json:"price"`
}

// Empty reports whether the patch touches no column.
func (p ItemPatch) Empty() bool {
	return p.Name.IsAbsent() && p.Price.IsAbsent()
}
