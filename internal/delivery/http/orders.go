package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/egannguyen/sales-orders/internal/entity"
	"github.com/egannguyen/sales-orders/internal/service"
)

type historyEvent struct {
	Version   int       `json:"version"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	Data      any       `json:"data"`
}

type historyResponse struct {
	OrderID string         `json:"order_id"`
	Deleted bool           `json:"deleted"`
	Status  string         `json:"status"`
	Events  []historyEvent `json:"events"`
}

func (h *Handler) handleGetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.Orders(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) handleGetSellerOrders(w http.ResponseWriter, r *http.Request) {
	status := entity.OrderStatus("")
	if s := r.URL.Query().Get("status"); s != "" {
		status, _ = entity.ParseOrderStatus(s)
	}
	orders, err := h.orders.SellerOrders(r.Context(), sellerID(r), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Order(r.Context(), sellerID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) handleGetOrderHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.orders.History(r.Context(), sellerID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := historyResponse{
		OrderID: history.Order.GetAggregateID(),
		Deleted: history.Order.Deleted,
		Status:  string(history.Order.Status),
		Events:  make([]historyEvent, 0, len(history.Events)),
	}
	for _, rec := range history.Events {
		resp.Events = append(resp.Events, historyEvent{
			Version:   rec.Version,
			Type:      rec.EventType,
			CreatedAt: rec.CreatedAt.UTC(),
			Data:      rawJSON(rec.Payload),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req service.PlaceOrderParams
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Status = normalizeStatus(req.Status)

	o, err := h.orders.PlaceOrder(r.Context(), sellerID(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) handleReviseOrder(w http.ResponseWriter, r *http.Request) {
	var req service.ReviseOrderParams
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Status = normalizeStatus(req.Status)

	o, err := h.orders.ReviseOrder(r.Context(), sellerID(r), r.PathValue("id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.orders.DeleteOrder(r.Context(), sellerID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{Deleted: id})
}

// normalizeStatus upper-cases a supplied status. Unknown values are passed
// through so the service rejects them.
func normalizeStatus(s *entity.OrderStatus) *entity.OrderStatus {
	if s == nil {
		return nil
	}
	st, _ := entity.ParseOrderStatus(string(*s))
	return &st
}

// rawJSON embeds a stored payload as-is, or as a string if it is not JSON.
func rawJSON(b []byte) any {
	if json.Valid(b) {
		return json.RawMessage(b)
	}
	return string(b)
}
