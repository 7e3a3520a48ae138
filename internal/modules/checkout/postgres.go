package checkout

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository wires the order store onto a shared DB pool.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

// EnsureSchema creates the orders table if it does not exist yet. Items and
// capture payloads are stored as serialized JSON text.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS orders (
			id              BIGSERIAL PRIMARY KEY,
			remote_order_id TEXT UNIQUE,
			name            TEXT NOT NULL,
			address         TEXT NOT NULL,
			items           TEXT NOT NULL,
			total           NUMERIC(12,2) NOT NULL,
			currency        TEXT NOT NULL,
			status          TEXT NOT NULL,
			capture_payload TEXT,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure orders schema: %w", err)
	}
	return nil
}

func (r *postgresRepo) Create(ctx context.Context, o *Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return &StoreError{Op: "marshal items", Err: err}
	}
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO orders (name, address, items, total, currency, status)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at`,
		o.CustomerName, o.ShippingAddress, string(items), o.TotalAmount, o.Currency, o.Status).
		Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return &StoreError{Op: "insert order", Err: err}
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*Order, error) {
	return scanOrder(r.db.QueryRowContext(ctx, `
		SELECT id, remote_order_id, name, address, items, total, currency, status, capture_payload, created_at
		FROM orders WHERE id=$1`, id))
}

func (r *postgresRepo) SetRemoteOrder(ctx context.Context, id int64, remoteOrderID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET remote_order_id=$2, status=$3
		WHERE id=$1 AND remote_order_id IS NULL`,
		id, remoteOrderID, StatusApprovedPendingCapture)
	if err != nil {
		return &StoreError{Op: "set remote order", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &StoreError{Op: "set remote order", Err: err}
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return &ConflictError{Reason: fmt.Sprintf("order %d already has a remote order id", id)}
	}
	return nil
}

func (r *postgresRepo) RecordCapture(ctx context.Context, id int64, status Status, payload []byte) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status=$2, capture_payload=$3
		WHERE id=$1 AND status NOT IN ($4,$5)`,
		id, status, nullableText(payload), StatusDone, StatusFailed)
	if err != nil {
		return &StoreError{Op: "record capture", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &StoreError{Op: "record capture", Err: err}
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return &ConflictError{Reason: fmt.Sprintf("order %d is already settled", id)}
	}
	return nil
}

func (r *postgresRepo) List(ctx context.Context) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, remote_order_id, name, address, items, total, currency, status, capture_payload, created_at
		FROM orders ORDER BY id DESC`)
	if err != nil {
		return nil, &StoreError{Op: "list orders", Err: err}
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "list orders", Err: err}
	}
	return orders, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	o := &Order{}
	var remoteID, capturePayload sql.NullString
	var items string
	err := row.Scan(&o.ID, &remoteID, &o.CustomerName, &o.ShippingAddress,
		&items, &o.TotalAmount, &o.Currency, &o.Status, &capturePayload, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StoreError{Op: "scan order", Err: err}
	}
	if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
		return nil, &StoreError{Op: "unmarshal items", Err: err}
	}
	if remoteID.Valid {
		o.RemoteOrderID = remoteID.String
	}
	if capturePayload.Valid {
		o.CapturePayload = json.RawMessage(capturePayload.String)
	}
	return o, nil
}

func nullableText(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
