package merch

import "context"

// Repository defines read access to the product catalog.
type Repository interface {
	List(ctx context.Context) ([]*Product, error)
}
