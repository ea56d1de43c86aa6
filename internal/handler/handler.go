// Package handler exposes the pricing and order operations over HTTP and
// maps domain errors to wire responses. Caller-recoverable failures carry
// structured messages; store failures surface as opaque 500s.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/allurecraft/order-api/internal/domain/catalog"
	"github.com/allurecraft/order-api/internal/domain/order"
	"github.com/allurecraft/order-api/internal/domain/pricing"
)

// PriceResolver is the quoting dependency; implemented by pricing.Resolver.
type PriceResolver interface {
	Resolve(ctx context.Context, req pricing.Request) (*pricing.Quote, error)
}

// OrderService is the order placement/tracking dependency; implemented by
// order.Service.
type OrderService interface {
	Place(ctx context.Context, req order.PlaceRequest) (*order.PlaceResult, error)
	GetByNumber(ctx context.Context, number string) (*order.Order, error)
	GetByID(ctx context.Context, id string) (*order.Order, error)
	List(ctx context.Context, limit int) ([]order.Summary, error)
	UpdateStatus(ctx context.Context, id string, target order.Status) (order.Status, error)
}

// Handler wires the HTTP routes to the domain services.
type Handler struct {
	catalog  catalog.Repository
	resolver PriceResolver
	orders   OrderService
}

// New constructs a Handler with the required domain dependencies.
func New(cat catalog.Repository, resolver PriceResolver, orders OrderService) *Handler {
	return &Handler{
		catalog:  cat,
		resolver: resolver,
		orders:   orders,
	}
}

// Register attaches all API routes to the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)
	mux.HandleFunc("POST /api/price", h.Quote)
	mux.HandleFunc("GET /api/packaging", h.ListPackaging)
	mux.HandleFunc("GET /api/packaging/{id}/designs", h.ListDesigns)
	mux.HandleFunc("POST /api/orders", h.CreateOrder)
	mux.HandleFunc("GET /api/orders/{orderNumber}", h.GetOrder)
	mux.HandleFunc("GET /api/admin/orders", h.ListOrders)
	mux.HandleFunc("GET /api/admin/orders/{id}", h.GetOrderAdmin)
	mux.HandleFunc("PUT /api/admin/orders/{id}/status", h.UpdateOrderStatus)
}

// errorBody is the wire shape of every error response.
type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorBody{Code: status, Message: message})
}

// respondDomainError maps a domain error to an HTTP response. Anything not
// recognized as caller-recoverable is logged and returned as an opaque 500:
// no partial order numbers or totals ever leak through this path.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve  *order.ValidationError
		ipe *order.ItemPricingError
		nf  *pricing.NotFoundError
		ite *order.InvalidTransitionError
	)
	switch {
	case errors.Is(err, order.ErrEmptyItems):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, ve.Error())
	case errors.As(err, &ipe):
		// An unpriceable line in a submitted order: semantically invalid,
		// not malformed.
		respondError(w, http.StatusUnprocessableEntity, ipe.Error())
	case errors.As(err, &nf):
		// Quote path: "quantity not supported" is caller-recoverable.
		respondError(w, http.StatusBadRequest, nf.Error())
	case errors.Is(err, pricing.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &ite):
		respondError(w, http.StatusUnprocessableEntity, ite.Error())
	case errors.Is(err, order.ErrNotFound):
		respondError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, order.ErrStatusConflict):
		respondError(w, http.StatusConflict, err.Error())
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
