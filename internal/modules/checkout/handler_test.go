package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sasismene/merch-backend/internal/modules/paypal"
)

type stubService struct {
	submitFunc  func(ctx context.Context, req SubmitOrderRequest) (*SubmitOrderResponse, error)
	captureFunc func(ctx context.Context, req CaptureOrderRequest) (*CaptureOrderResponse, error)
	listFunc    func(ctx context.Context) ([]*Order, error)
}

func (s *stubService) SubmitOrder(ctx context.Context, req SubmitOrderRequest) (*SubmitOrderResponse, error) {
	return s.submitFunc(ctx, req)
}

func (s *stubService) CaptureOrder(ctx context.Context, req CaptureOrderRequest) (*CaptureOrderResponse, error) {
	return s.captureFunc(ctx, req)
}

func (s *stubService) ListOrders(ctx context.Context) ([]*Order, error) {
	return s.listFunc(ctx)
}

func newTestRouter(svc Service, guard func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()
	NewHandler(svc, PublicConfig{PayPalClientID: "client-id", Currency: "EUR", Env: "sandbox"}).
		RegisterRoutes(r, guard)
	return r
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSubmitOrderHandler_Created(t *testing.T) {
	svc := &stubService{
		submitFunc: func(_ context.Context, req SubmitOrderRequest) (*SubmitOrderResponse, error) {
			assert.Equal(t, "A", req.CustomerName)
			assert.Equal(t, "B", req.ShippingAddress)
			require.Len(t, req.Items, 1)
			assert.Equal(t, "mug-1", req.Items[0].ProductID)
			assert.Equal(t, 2, req.Items[0].Quantity)
			assert.Equal(t, 25.00, req.Total)
			return &SubmitOrderResponse{ApprovalURL: "https://pp/approve/PAY1", LocalOrderID: 1}, nil
		},
	}
	rec := postJSON(t, newTestRouter(svc, nil), "/api/v1/checkout/orders",
		`{"customerName":"A","address":"B","items":[{"id":"mug-1","qty":2}],"total":25.00}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"approvalUrl":"https://pp/approve/PAY1","localOrderId":1}`, rec.Body.String())
}

func TestSubmitOrderHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &ValidationError{Field: "total", Reason: "must be greater than 0"}, http.StatusBadRequest},
		{"gateway validation", &paypal.ValidationError{Field: "currency", Reason: `must be a 3-letter uppercase code, got "euro"`}, http.StatusBadRequest},
		{"gateway", &paypal.GatewayError{Stage: paypal.StageCreate, Cause: paypal.CauseHTTP, Status: 422}, http.StatusInternalServerError},
		{"auth", &paypal.AuthError{Body: "missing credentials"}, http.StatusInternalServerError},
		{"store", &StoreError{Op: "insert order", Err: context.DeadlineExceeded}, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubService{
				submitFunc: func(context.Context, SubmitOrderRequest) (*SubmitOrderResponse, error) {
					return nil, tc.err
				},
			}
			rec := postJSON(t, newTestRouter(svc, nil), "/api/v1/checkout/orders", `{}`)
			assert.Equal(t, tc.want, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestSubmitOrderHandler_BadJSON(t *testing.T) {
	svc := &stubService{}
	rec := postJSON(t, newTestRouter(svc, nil), "/api/v1/checkout/orders", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCaptureOrderHandler_OK(t *testing.T) {
	svc := &stubService{
		captureFunc: func(_ context.Context, req CaptureOrderRequest) (*CaptureOrderResponse, error) {
			assert.Equal(t, "PAY1", req.RemoteOrderID)
			assert.Equal(t, int64(1), req.LocalOrderID)
			return &CaptureOrderResponse{OK: true, Capture: json.RawMessage(`{"status":"COMPLETED"}`)}, nil
		},
	}
	rec := postJSON(t, newTestRouter(svc, nil), "/api/v1/checkout/orders/capture",
		`{"remoteOrderId":"PAY1","localOrderId":1}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"capture":{"status":"COMPLETED"}}`, rec.Body.String())
}

func TestCaptureOrderHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &ValidationError{Field: "remoteOrderId", Reason: "must not be empty"}, http.StatusBadRequest},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"conflict", &ConflictError{Reason: "order 1 is not bound to remote order PAY2"}, http.StatusConflict},
		{"gateway", &paypal.GatewayError{Stage: paypal.StageCapture, Cause: paypal.CauseNetwork, Body: "timeout"}, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubService{
				captureFunc: func(context.Context, CaptureOrderRequest) (*CaptureOrderResponse, error) {
					return nil, tc.err
				},
			}
			rec := postJSON(t, newTestRouter(svc, nil), "/api/v1/checkout/orders/capture",
				`{"remoteOrderId":"PAY1","localOrderId":1}`)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestListOrdersHandler(t *testing.T) {
	svc := &stubService{
		listFunc: func(context.Context) ([]*Order, error) {
			return []*Order{{
				ID:              2,
				RemoteOrderID:   "PAY2",
				CustomerName:    "A",
				ShippingAddress: "B",
				Items:           []Item{{ProductID: "mug-1", Quantity: 2}},
				TotalAmount:     25,
				Currency:        "EUR",
				Status:          StatusDone,
				CapturePayload:  json.RawMessage(`{"secret":"stays out of listings"}`),
				CreatedAt:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			}}, nil
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var listed []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "PAY2", listed[0]["remoteOrderId"])
	assert.Equal(t, "done", listed[0]["status"])
	assert.NotContains(t, rec.Body.String(), "stays out of listings")
}

func TestListOrdersHandler_EmptyIsArray(t *testing.T) {
	svc := &stubService{listFunc: func(context.Context) ([]*Order, error) { return nil, nil }}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListOrdersHandler_Guarded(t *testing.T) {
	guard := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				respond(w, http.StatusUnauthorized, map[string]string{"error": "missing token"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
	svc := &stubService{
		listFunc: func(context.Context) ([]*Order, error) { return nil, nil },
		captureFunc: func(context.Context, CaptureOrderRequest) (*CaptureOrderResponse, error) {
			return nil, &ValidationError{Field: "remoteOrderId", Reason: "must not be empty"}
		},
	}
	router := newTestRouter(svc, guard)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req.Header.Set("Authorization", "Bearer something")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The checkout endpoints themselves stay open.
	postRec := postJSON(t, router, "/api/v1/checkout/orders/capture", `{}`)
	assert.NotEqual(t, http.StatusUnauthorized, postRec.Code)
}

func TestConfigHandler(t *testing.T) {
	svc := &stubService{}
	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"paypalClientId":"client-id","currency":"EUR","env":"sandbox"}`, rec.Body.String())
}
