package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ChristianDiazS/miappventas-sub002/internal/orders"
	"github.com/ChristianDiazS/miappventas-sub002/internal/redisx"
	"github.com/ChristianDiazS/miappventas-sub002/internal/stock"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

type CreateOrderReq struct {
	UserID         string                `json:"user_id"`
	Items          []orders.CartLine     `json:"items"`
	ShippingMethod orders.ShippingMethod `json:"shipping_method"`
}

type AdvanceOrderReq struct {
	Status orders.Status `json:"status"`
}

type PaymentResultReq struct {
	OrderNumber string `json:"order_number"`
	Result      string `json:"result"` // completed | failed
}

type OrdersHandler struct {
	Service *orders.Service
	Redis   *redis.Client
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{number}", h.getOrder)
	r.Post("/orders/{number}/cancel", h.cancelOrder)
	r.Post("/orders/{number}/advance", h.advanceOrder)
	r.Post("/payments/result", h.paymentResult)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps engine errors onto HTTP statuses. Stock and cart errors
// carry full detail so the caller can self-correct; anything unexpected is
// surfaced generically.
func writeError(w http.ResponseWriter, err error) {
	var short *stock.InsufficientStockError
	if errors.As(err, &short) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":     "insufficient_stock",
			"sku":       short.SKU,
			"requested": short.Requested,
			"available": short.Available,
		})
		return
	}
	var trans *orders.InvalidTransitionError
	if errors.As(err, &trans) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error": "invalid_transition",
			"from":  trans.From,
			"to":    trans.To,
		})
		return
	}
	switch {
	case errors.Is(err, orders.ErrEmptyCart):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty_cart"})
	case errors.Is(err, orders.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order_not_found"})
	default:
		var pe *orders.PersistenceError
		var unknown *orders.UnknownComponentError
		var circular *orders.CircularComboError
		if errors.As(err, &pe) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "temporary_failure"})
			return
		}
		if errors.As(err, &unknown) || errors.As(err, &circular) {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "catalog_integrity"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing user_id"})
		return
	}
	if req.ShippingMethod == "" {
		req.ShippingMethod = orders.ShippingStandard
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.CreateOrder(ctx, req.UserID, req.Items, req.ShippingMethod)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheOrder(ctx, o)
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, number)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	o, err := h.Service.GetOrder(ctx, number)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheOrder(ctx, o)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.CancelOrder(ctx, number)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheOrder(ctx, o)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) advanceOrder(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	var req AdvanceOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.AdvanceOrder(ctx, number, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheOrder(ctx, o)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) paymentResult(w http.ResponseWriter, r *http.Request) {
	var req PaymentResultReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	var result orders.PaymentStatus
	switch req.Result {
	case "completed":
		result = orders.PaymentCompleted
	case "failed":
		result = orders.PaymentFailed
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "result must be completed or failed"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.OnPaymentResult(ctx, req.OrderNumber, result)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheOrder(ctx, o)
	writeJSON(w, http.StatusOK, o)
}

// cacheOrder refreshes the redis copy after every transition so GETs stay
// fast without ever serving a stale status past the TTL.
func (h *OrdersHandler) cacheOrder(ctx context.Context, o *orders.Order) {
	if h.Redis == nil {
		return
	}
	b, err := json.Marshal(o)
	if err != nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, o.Number)
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
}
