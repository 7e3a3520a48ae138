// Package paypal wraps the PayPal REST operations the checkout flow needs
// (create order, capture order, create payout) behind a small retryable
// client, and owns the OAuth token exchange.
package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	sandboxBaseURL = "https://api-m.sandbox.paypal.com"
	liveBaseURL    = "https://api-m.paypal.com"

	requestTimeout = 15 * time.Second
)

// Client is the gateway surface the rest of the system depends on.
// All three operations perform outbound network calls only; none of them
// touches local state.
type Client interface {
	// CreateOrder builds a capture-intent order and returns the remote id
	// plus the URL the buyer must visit to approve payment.
	CreateOrder(ctx context.Context, total float64, currency string) (*RemoteOrder, error)

	// CaptureOrder transfers funds for a previously approved remote order.
	CaptureOrder(ctx context.Context, remoteOrderID string) (*CaptureResult, error)

	// CreatePayout submits a single-item payout batch to the receiver email.
	CreatePayout(ctx context.Context, receiver string, total float64, currency, batchID string) (*PayoutResult, error)
}

type client struct {
	baseURL string
	tokens  *tokenSource
	hc      *http.Client
}

// NewClient builds a Client for the given environment ("live" selects the
// production API, anything else the sandbox).
func NewClient(clientID, secret, env string) Client {
	baseURL := sandboxBaseURL
	if env == "live" {
		baseURL = liveBaseURL
	}
	hc := &http.Client{Timeout: requestTimeout}
	return &client{
		baseURL: baseURL,
		tokens:  newTokenSource(clientID, secret, baseURL, hc),
		hc:      hc,
	}
}

func (c *client) CreateOrder(ctx context.Context, total float64, currency string) (*RemoteOrder, error) {
	if !validCurrency(currency) {
		return nil, &ValidationError{Field: "currency", Reason: fmt.Sprintf("must be a 3-letter uppercase code, got %q", currency)}
	}
	body := createOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{
			{Amount: amount{CurrencyCode: currency, Value: formatAmount(total)}},
		},
	}
	status, respBody, err := c.do(ctx, StageCreate, http.MethodPost, "/v2/checkout/orders", body)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, &GatewayError{Stage: StageCreate, Cause: CauseHTTP, Status: status, Body: string(respBody)}
	}

	var or orderResponse
	if err := json.Unmarshal(respBody, &or); err != nil || or.ID == "" {
		return nil, &GatewayError{Stage: StageCreate, Cause: CauseHTTP, Status: status,
			Body: "malformed order response: " + string(respBody)}
	}
	return &RemoteOrder{ID: or.ID, Status: or.Status, ApprovalURL: approvalLink(or.Links)}, nil
}

func (c *client) CaptureOrder(ctx context.Context, remoteOrderID string) (*CaptureResult, error) {
	status, respBody, err := c.do(ctx, StageCapture, http.MethodPost,
		"/v2/checkout/orders/"+remoteOrderID+"/capture", nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, &GatewayError{Stage: StageCapture, Cause: CauseHTTP, Status: status, Body: string(respBody)}
	}

	var cr captureResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return nil, &GatewayError{Stage: StageCapture, Cause: CauseHTTP, Status: status,
			Body: "malformed capture response: " + string(respBody)}
	}

	result := &CaptureResult{OrderID: cr.ID, Status: cr.Status, Raw: respBody}
	// The captured amount sits several levels deep and PayPal omits pieces
	// of it in some flows; a partial payload must not fail the capture.
	if len(cr.PurchaseUnits) > 0 {
		pu := cr.PurchaseUnits[0]
		if caps := pu.Payments.Captures; len(caps) > 0 && caps[0].Amount != nil {
			result.Amount = caps[0].Amount.Value
			result.Currency = caps[0].Amount.CurrencyCode
		} else if pu.Amount != nil {
			result.Amount = pu.Amount.Value
			result.Currency = pu.Amount.CurrencyCode
		}
	}
	return result, nil
}

func (c *client) CreatePayout(ctx context.Context, receiver string, total float64, currency, batchID string) (*PayoutResult, error) {
	body := createPayoutRequest{
		SenderBatchHeader: payoutBatchHeader{
			SenderBatchID: batchID,
			EmailSubject:  "You have a payout",
		},
		Items: []payoutItem{{
			RecipientType: "EMAIL",
			Amount:        amount{CurrencyCode: currency, Value: formatAmount(total)},
			Receiver:      receiver,
			Note:          "Payout for merch purchase",
			SenderItemID:  "item_" + uuid.NewString(),
		}},
	}
	status, respBody, err := c.do(ctx, StagePayout, http.MethodPost, "/v1/payments/payouts", body)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, &GatewayError{Stage: StagePayout, Cause: CauseHTTP, Status: status, Body: string(respBody)}
	}

	var pr payoutResponse
	if err := json.Unmarshal(respBody, &pr); err != nil {
		return nil, &GatewayError{Stage: StagePayout, Cause: CauseHTTP, Status: status,
			Body: "malformed payout response: " + string(respBody)}
	}
	return &PayoutResult{
		BatchID:     pr.BatchHeader.PayoutBatchID,
		BatchStatus: pr.BatchHeader.BatchStatus,
		Raw:         respBody,
	}, nil
}

// do performs one authorized call against the processor. A 401 response
// invalidates the cached token and the call is retried once with a fresh
// one; transport failures map to GatewayError with a network cause.
func (c *client) do(ctx context.Context, stage, method, path string, payload any) (int, []byte, error) {
	var reqBody []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal %s request: %w", stage, err)
		}
		reqBody = b
	}

	for attempt := 0; ; attempt++ {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return 0, nil, err
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(reqBody))
		if err != nil {
			return 0, nil, &GatewayError{Stage: stage, Cause: CauseNetwork, Body: err.Error()}
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("PayPal-Request-Id", uuid.NewString())

		resp, err := c.hc.Do(req)
		if err != nil {
			return 0, nil, &GatewayError{Stage: stage, Cause: CauseNetwork, Body: err.Error()}
		}
		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return 0, nil, &GatewayError{Stage: stage, Cause: CauseNetwork, Body: readErr.Error()}
		}

		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			c.tokens.invalidate()
			continue
		}
		return resp.StatusCode, respBody, nil
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatAmount renders a value with exactly two fractional digits, which the
// processor requires.
func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func validCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// approvalLink picks the buyer-facing approval URL from the HATEOAS links.
func approvalLink(links []link) string {
	for _, l := range links {
		if l.Rel == "approve" || l.Rel == "payer-action" {
			return l.Href
		}
	}
	return ""
}
