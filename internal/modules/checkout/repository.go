package checkout

import "context"

// Repository defines data access for orders. It exclusively owns the order
// rows; writes to a given row are serialized through atomic guarded updates.
type Repository interface {
	// Create persists a new pending order, assigning its id and creation time.
	Create(ctx context.Context, o *Order) error

	// GetByID retrieves an order by its local id.
	GetByID(ctx context.Context, id int64) (*Order, error)

	// SetRemoteOrder binds the processor's order id to the row and advances
	// it to approved_pending_capture. The remote id is write-once: a second
	// bind attempt fails with ConflictError.
	SetRemoteOrder(ctx context.Context, id int64, remoteOrderID string) error

	// RecordCapture settles the order to done or failed and stores the
	// capture payload. Rows already in a terminal state are not rewritten.
	RecordCapture(ctx context.Context, id int64, status Status, payload []byte) error

	// List returns all orders, newest first.
	List(ctx context.Context) ([]*Order, error)
}
