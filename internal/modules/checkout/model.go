package checkout

import (
	"encoding/json"
	"time"

	"github.com/sasismene/merch-backend/internal/modules/payout"
)

// Status represents the lifecycle state of a local order. Transitions only
// move forward; "failed" is terminal and reachable from any non-terminal
// state on unrecoverable error.
type Status string

const (
	StatusPending                Status = "pending"
	StatusApprovedPendingCapture Status = "approved_pending_capture"
	StatusDone                   Status = "done"
	StatusFailed                 Status = "failed"
)

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// Item is a single cart line.
type Item struct {
	ProductID string `json:"id"`
	Quantity  int    `json:"qty"`
}

// Order is the durable local record of a purchase attempt. RemoteOrderID is
// set once when the processor order is created and never reassigned;
// CapturePayload is set only when the order settles.
type Order struct {
	ID              int64           `json:"id"`
	RemoteOrderID   string          `json:"remoteOrderId,omitempty"`
	CustomerName    string          `json:"name"`
	ShippingAddress string          `json:"address"`
	Items           []Item          `json:"items"`
	TotalAmount     float64         `json:"total"`
	Currency        string          `json:"currency"`
	Status          Status          `json:"status"`
	CapturePayload  json.RawMessage `json:"-"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// ── Request/Response DTOs ─────────────────────────────────────────────────────

// SubmitOrderRequest is the storefront's checkout payload.
type SubmitOrderRequest struct {
	CustomerName    string  `json:"customerName"`
	ShippingAddress string  `json:"address"`
	Items           []Item  `json:"items"`
	Total           float64 `json:"total"`
}

// SubmitOrderResponse carries the approval redirect for the buyer.
type SubmitOrderResponse struct {
	ApprovalURL  string `json:"approvalUrl"`
	LocalOrderID int64  `json:"localOrderId"`
}

// CaptureOrderRequest is sent when the buyer returns from the approval flow.
type CaptureOrderRequest struct {
	RemoteOrderID string `json:"remoteOrderId"`
	LocalOrderID  int64  `json:"localOrderId"`
}

// CaptureOrderResponse reports the capture outcome. Payout is auxiliary: it
// is present only when a payout receiver is configured and never changes
// the order's status.
type CaptureOrderResponse struct {
	OK      bool            `json:"ok"`
	Capture json.RawMessage `json:"capture,omitempty"`
	Payout  *payout.Result  `json:"payout,omitempty"`
}

// PublicConfig is what the storefront JS needs to render the PayPal button.
type PublicConfig struct {
	PayPalClientID string `json:"paypalClientId"`
	Currency       string `json:"currency"`
	Env            string `json:"env"`
}
