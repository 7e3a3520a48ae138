// Package checkout owns the order lifecycle: a local row is written before
// any processor call, the processor order id is bound write-once, and the
// capture outcome is recorded durably exactly once.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sasismene/merch-backend/internal/modules/paypal"
	"github.com/sasismene/merch-backend/internal/modules/payout"
)

// Service defines the checkout workflow.
type Service interface {
	// SubmitOrder validates the cart, persists a pending order, creates the
	// matching processor order and returns the buyer's approval redirect.
	SubmitOrder(ctx context.Context, req SubmitOrderRequest) (*SubmitOrderResponse, error)

	// CaptureOrder captures payment for an approved order and settles the
	// local row. Repeat calls against a settled order are idempotent no-ops.
	CaptureOrder(ctx context.Context, req CaptureOrderRequest) (*CaptureOrderResponse, error)

	// ListOrders returns all orders, newest first. Read-only.
	ListOrders(ctx context.Context) ([]*Order, error)
}

// Dispatcher fires the optional post-capture payout. Implementations never
// return an error; failures are folded into the Result.
type Dispatcher interface {
	Dispatch(ctx context.Context, capture *paypal.CaptureResult, orderID int64) *payout.Result
}

type service struct {
	repo       Repository
	gateway    paypal.Client
	dispatcher Dispatcher // nil when no payout receiver is configured
	currency   string
}

// NewService creates the checkout service. dispatcher may be nil.
func NewService(repo Repository, gateway paypal.Client, dispatcher Dispatcher, currency string) Service {
	return &service{repo: repo, gateway: gateway, dispatcher: dispatcher, currency: currency}
}

func (s *service) SubmitOrder(ctx context.Context, req SubmitOrderRequest) (*SubmitOrderResponse, error) {
	if err := validateSubmit(req); err != nil {
		return nil, err
	}

	o := &Order{
		CustomerName:    strings.TrimSpace(req.CustomerName),
		ShippingAddress: strings.TrimSpace(req.ShippingAddress),
		Items:           req.Items,
		TotalAmount:     req.Total,
		Currency:        s.currency,
		Status:          StatusPending,
	}
	// The pending row must exist before the first outbound call so every
	// remote attempt is traceable to a local record, even across a crash.
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	remote, err := s.gateway.CreateOrder(ctx, o.TotalAmount, o.Currency)
	if err != nil {
		// The row stays pending for audit; the caller owns retry/cancel UX.
		return nil, err
	}

	if err := s.repo.SetRemoteOrder(ctx, o.ID, remote.ID); err != nil {
		return nil, err
	}
	return &SubmitOrderResponse{ApprovalURL: remote.ApprovalURL, LocalOrderID: o.ID}, nil
}

func (s *service) CaptureOrder(ctx context.Context, req CaptureOrderRequest) (*CaptureOrderResponse, error) {
	if req.RemoteOrderID == "" {
		return nil, &ValidationError{Field: "remoteOrderId", Reason: "must not be empty"}
	}
	if req.LocalOrderID <= 0 {
		return nil, &ValidationError{Field: "localOrderId", Reason: "must be a positive order id"}
	}

	o, err := s.repo.GetByID(ctx, req.LocalOrderID)
	if err != nil {
		return nil, err
	}
	if o.RemoteOrderID == "" || o.RemoteOrderID != req.RemoteOrderID {
		return nil, &ConflictError{
			Reason: fmt.Sprintf("order %d is not bound to remote order %s", req.LocalOrderID, req.RemoteOrderID),
		}
	}

	// Settled orders return their stored outcome without another processor
	// call, so a replayed capture request can never double-charge.
	if o.Status.Terminal() {
		return &CaptureOrderResponse{OK: o.Status == StatusDone, Capture: o.CapturePayload}, nil
	}

	capture, err := s.gateway.CaptureOrder(ctx, o.RemoteOrderID)
	if err != nil {
		// A failed token exchange happens before any capture request leaves
		// the process, so the order stays capturable.
		var aerr *paypal.AuthError
		if errors.As(err, &aerr) {
			return nil, err
		}
		// Capture was attempted but not confirmed: settle to failed with
		// whatever partial payload the processor returned.
		_ = s.repo.RecordCapture(ctx, o.ID, StatusFailed, failurePayload(err))
		return nil, err
	}

	if err := s.repo.RecordCapture(ctx, o.ID, StatusDone, capture.Raw); err != nil {
		// A concurrent capture may have settled the row between the gateway
		// call and this write; replay its stored outcome instead.
		var cerr *ConflictError
		if errors.As(err, &cerr) {
			if settled, getErr := s.repo.GetByID(ctx, o.ID); getErr == nil && settled.Status.Terminal() {
				return &CaptureOrderResponse{OK: settled.Status == StatusDone, Capture: settled.CapturePayload}, nil
			}
		}
		return nil, err
	}

	resp := &CaptureOrderResponse{OK: true, Capture: capture.Raw}
	if s.dispatcher != nil {
		resp.Payout = s.dispatcher.Dispatch(ctx, capture, o.ID)
	}
	return resp, nil
}

func (s *service) ListOrders(ctx context.Context) ([]*Order, error) {
	return s.repo.List(ctx)
}

// ── helpers ──────────────────────────────────────────────────────────────────

func validateSubmit(req SubmitOrderRequest) error {
	if strings.TrimSpace(req.CustomerName) == "" {
		return &ValidationError{Field: "customerName", Reason: "must not be empty"}
	}
	if strings.TrimSpace(req.ShippingAddress) == "" {
		return &ValidationError{Field: "address", Reason: "must not be empty"}
	}
	if len(req.Items) == 0 {
		return &ValidationError{Field: "items", Reason: "must contain at least one item"}
	}
	for _, it := range req.Items {
		if it.ProductID == "" {
			return &ValidationError{Field: "items", Reason: "item id must not be empty"}
		}
		if it.Quantity <= 0 {
			return &ValidationError{Field: "items", Reason: fmt.Sprintf("quantity must be > 0 for product %s", it.ProductID)}
		}
	}
	if req.Total <= 0 {
		return &ValidationError{Field: "total", Reason: "must be greater than 0"}
	}
	return nil
}

// failurePayload preserves the processor's error body when it is valid JSON,
// so the stored payload can always be replayed in a response.
func failurePayload(err error) []byte {
	var gerr *paypal.GatewayError
	if errors.As(err, &gerr) && json.Valid([]byte(gerr.Body)) {
		return []byte(gerr.Body)
	}
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	return b
}
