package inventory

// Product is the inventory-owned view of a product: the stock count this
// service mutates plus the snapshot fields the admission check reads.
type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

// ApplyStatus is the terminal outcome of one OrderCreated delivery.
type ApplyStatus int

const (
	// StatusDuplicate means the marker already existed: discard silently.
	StatusDuplicate ApplyStatus = iota
	// StatusProductMissing means the referenced product does not exist.
	StatusProductMissing
	// StatusInsufficientStock means the decrement would go negative and was
	// rejected whole. Stock is never partially applied or clamped.
	StatusInsufficientStock
	// StatusDecreased means stock was decremented and the marker committed
	// with it.
	StatusDecreased
)

// ApplyResult reports the outcome plus the stock numbers the follow-up
// event needs.
type ApplyResult struct {
	Status         ApplyStatus
	AvailableStock int
	RemainingStock int
}
