package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/ariefcatur/go-shop-services/internal/orders"
	"github.com/go-chi/chi/v5"
)

type CreateOrderReq struct {
	UserID *int           `json:"user_id" validate:"required"`
	Items  []OrderItemReq `json:"items" validate:"required,min=1,dive"`
}

type OrderItemReq struct {
	ProductID *int `json:"product_id" validate:"required"`
	Quantity  *int `json:"quantity" validate:"required"`
}

type UpdateOrderStatusReq struct {
	Status *string `json:"status" validate:"required"`
}

type OrdersHandler struct {
	svc *orders.Service
}

func NewOrdersHandler(svc *orders.Service) *OrdersHandler {
	return &OrdersHandler{svc: svc}
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Get("/orders", h.listOrders)
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Put("/orders/{id}", h.updateOrder)
	r.Delete("/orders/{id}", h.deleteOrder)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.svc.List(ctx)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.svc.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if !decodeJSON(w, r, &req) {
		return
	}

	// product lookups are sequential, one per item
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	o, err := h.svc.Create(ctx, *req.UserID, toItems(req.Items))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) updateOrder(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrderStatusReq
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.svc.UpdateStatus(ctx, chi.URLParam(r, "id"), *req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toItems(in []OrderItemReq) []orders.Item {
	out := make([]orders.Item, 0, len(in))
	for _, it := range in {
		out = append(out, orders.Item{ProductID: *it.ProductID, Quantity: *it.Quantity})
	}
	return out
}
