package clash

import "recordcast/internal/analyze/testdata/store"

// Order shares its name with store.Order.
type Order struct {
	Ref store.Order
}
