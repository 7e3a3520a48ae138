package paypal

import "encoding/json"

// RemoteOrder is the processor-side order created for a checkout, before the
// buyer has approved it.
type RemoteOrder struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	ApprovalURL string `json:"approval_url"`
}

// CaptureResult is the normalized outcome of capturing an approved order.
// Amount and Currency are extracted from the nested capture payload when
// present; missing fields leave them empty. Raw carries the processor's
// full response for durable storage.
type CaptureResult struct {
	OrderID  string          `json:"order_id"`
	Status   string          `json:"status"`
	Amount   string          `json:"amount,omitempty"`
	Currency string          `json:"currency,omitempty"`
	Raw      json.RawMessage `json:"-"`
}

// PayoutResult is the normalized outcome of a payout batch submission.
type PayoutResult struct {
	BatchID     string          `json:"batch_id"`
	BatchStatus string          `json:"batch_status"`
	Raw         json.RawMessage `json:"-"`
}

// ── wire types ────────────────────────────────────────────────────────────────

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	Amount amount `json:"amount"`
}

type createOrderRequest struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
}

type link struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []link `json:"links"`
}

type captureResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PurchaseUnits []struct {
		Amount   *amount `json:"amount"`
		Payments struct {
			Captures []struct {
				ID     string  `json:"id"`
				Status string  `json:"status"`
				Amount *amount `json:"amount"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

type payoutBatchHeader struct {
	SenderBatchID string `json:"sender_batch_id"`
	EmailSubject  string `json:"email_subject"`
}

type payoutItem struct {
	RecipientType string `json:"recipient_type"`
	Amount        amount `json:"amount"`
	Receiver      string `json:"receiver"`
	Note          string `json:"note"`
	SenderItemID  string `json:"sender_item_id"`
}

type createPayoutRequest struct {
	SenderBatchHeader payoutBatchHeader `json:"sender_batch_header"`
	Items             []payoutItem      `json:"items"`
}

type payoutResponse struct {
	BatchHeader struct {
		PayoutBatchID string `json:"payout_batch_id"`
		BatchStatus   string `json:"batch_status"`
	} `json:"batch_header"`
}
