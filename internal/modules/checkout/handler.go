package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sasismene/merch-backend/internal/modules/paypal"
)

// Handler exposes checkout HTTP endpoints.
type Handler struct {
	service Service
	config  PublicConfig
}

func NewHandler(service Service, config PublicConfig) *Handler {
	return &Handler{service: service, config: config}
}

// RegisterRoutes mounts the checkout routes. guard, when non-nil, protects
// the order listing (it holds buyer names and addresses).
func (h *Handler) RegisterRoutes(r *chi.Mux, guard func(http.Handler) http.Handler) {
	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Post("/orders", h.submitOrder)          // POST /api/v1/checkout/orders
		r.Post("/orders/capture", h.captureOrder) // POST /api/v1/checkout/orders/capture
	})
	r.Group(func(r chi.Router) {
		if guard != nil {
			r.Use(guard)
		}
		r.Get("/api/v1/orders", h.listOrders) // GET /api/v1/orders
	})
	r.Get("/api/config", h.publicConfig) // GET /api/config
}

func (h *Handler) submitOrder(w http.ResponseWriter, r *http.Request) {
	var req SubmitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	resp, err := h.service.SubmitOrder(r.Context(), req)
	if err != nil {
		respond(w, errStatus(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusCreated, resp)
}

func (h *Handler) captureOrder(w http.ResponseWriter, r *http.Request) {
	var req CaptureOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	resp, err := h.service.CaptureOrder(r.Context(), req)
	if err != nil {
		respond(w, errStatus(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, resp)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context())
	if err != nil {
		respond(w, errStatus(err), map[string]string{"error": err.Error()})
		return
	}
	if orders == nil {
		orders = []*Order{}
	}
	respond(w, http.StatusOK, orders)
}

func (h *Handler) publicConfig(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.config)
}

// errStatus maps the error taxonomy onto HTTP status codes: validation 400,
// unknown order 404, conflict 409, everything else (auth, gateway, store) 500.
func errStatus(err error) int {
	var verr *ValidationError
	var pverr *paypal.ValidationError
	var cerr *ConflictError
	switch {
	case errors.As(err, &verr), errors.As(err, &pverr):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &cerr):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
