package merch

// Product is a storefront merch item. The catalog is informational: order
// totals are asserted by the caller at checkout, never recomputed from it.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	ImageURL string  `json:"image,omitempty"`
}
