package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/allurecraft/order-api/internal/domain/order"
)

type orderSummaryBody struct {
	ID            string          `json:"id"`
	OrderNumber   string          `json:"order_number"`
	NamaPemesan   string          `json:"nama_pemesan"`
	KontakPemesan string          `json:"kontak_pemesan"`
	Email         string          `json:"email"`
	TotalHarga    decimal.Decimal `json:"total_harga"`
	Status        order.Status    `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

type updateStatusRequest struct {
	Status order.Status `json:"status"`
}

type updateStatusResponse struct {
	OrderID        string       `json:"order_id"`
	PreviousStatus order.Status `json:"previous_status"`
	NewStatus      order.Status `json:"new_status"`
}

// ListOrders returns the most recent orders for the admin dashboard.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 200 {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	summaries, err := h.orders.List(r.Context(), limit)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	body := make([]orderSummaryBody, len(summaries))
	for i, s := range summaries {
		body[i] = orderSummaryBody{
			ID:            s.ID,
			OrderNumber:   s.Number,
			NamaPemesan:   s.CustomerName,
			KontakPemesan: s.CustomerContact,
			Email:         s.Email,
			TotalHarga:    s.Total,
			Status:        s.Status,
			CreatedAt:     s.CreatedAt,
		}
	}
	respondJSON(w, http.StatusOK, body)
}

// GetOrderAdmin returns an order by its internal ID with full line items.
func (h *Handler) GetOrderAdmin(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orderToDetail(o))
}

// UpdateOrderStatus applies an administrative status transition. Targets
// outside the fixed transition set are rejected.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	id := r.PathValue("id")
	prev, err := h.orders.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, updateStatusResponse{
		OrderID:        id,
		PreviousStatus: prev,
		NewStatus:      req.Status,
	})
}
