// Package payout fires the optional post-capture transfer to a configured
// receiver. Everything here is best-effort: a payout failure is reported in
// the result but never escalates to the capture that triggered it.
package payout

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/sasismene/merch-backend/internal/modules/paypal"
)

// Result is the auxiliary payout outcome attached to a capture response.
type Result struct {
	BatchID string `json:"batchId,omitempty"`
	Status  string `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Dispatcher builds and submits single-item payout batches.
type Dispatcher struct {
	client   paypal.Client
	receiver string
	currency string // fallback when the capture payload carries none
	now      func() time.Time
}

func NewDispatcher(client paypal.Client, receiver, currency string) *Dispatcher {
	return &Dispatcher{client: client, receiver: receiver, currency: currency, now: time.Now}
}

// Dispatch pays the full captured amount through to the receiver. The batch
// id mixes the dispatch time with the local order id so a replayed dispatch
// is distinguishable on the processor side.
func (d *Dispatcher) Dispatch(ctx context.Context, capture *paypal.CaptureResult, orderID int64) *Result {
	if capture == nil || capture.Amount == "" {
		return &Result{Error: "capture carries no amount, payout skipped"}
	}
	total, err := strconv.ParseFloat(capture.Amount, 64)
	if err != nil {
		return &Result{Error: "unparseable captured amount: " + capture.Amount}
	}
	currency := capture.Currency
	if currency == "" {
		currency = d.currency
	}

	batchID := "batch_" + strconv.FormatInt(d.now().Unix(), 10) + "_" + strconv.FormatInt(orderID, 10)
	res, err := d.client.CreatePayout(ctx, d.receiver, total, currency, batchID)
	if err != nil {
		log.Printf("payout: dispatch for order %d failed: %v", orderID, err)
		return &Result{Error: err.Error()}
	}
	return &Result{BatchID: res.BatchID, Status: res.BatchStatus}
}
