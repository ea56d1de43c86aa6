package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allurecraft/order-api/internal/domain/catalog"
	"github.com/allurecraft/order-api/internal/domain/order"
	"github.com/allurecraft/order-api/internal/domain/pricing"
)

// --- Mock implementations ---

type mockCatalog struct {
	listings  []catalog.ProductListing
	detail    *catalog.ProductDetail
	packaging []catalog.Packaging
	err       error
}

func (m *mockCatalog) ListProducts(_ context.Context) ([]catalog.ProductListing, error) {
	return m.listings, m.err
}

func (m *mockCatalog) GetProductDetail(_ context.Context, _ string) (*catalog.ProductDetail, error) {
	if m.detail == nil {
		return nil, catalog.ErrProductNotFound
	}
	return m.detail, m.err
}

func (m *mockCatalog) ListPackaging(_ context.Context) ([]catalog.Packaging, error) {
	return m.packaging, m.err
}

func (m *mockCatalog) ListDesigns(_ context.Context, _ string) ([]catalog.Design, error) {
	return nil, m.err
}

type mockResolver struct {
	quote *pricing.Quote
	err   error
}

func (m *mockResolver) Resolve(_ context.Context, _ pricing.Request) (*pricing.Quote, error) {
	return m.quote, m.err
}

type mockOrders struct {
	placeResult *order.PlaceResult
	placeErr    error
	lastPlace   order.PlaceRequest

	order   *order.Order
	getErr  error
	updated order.Status
	prev    order.Status
	updErr  error
}

func (m *mockOrders) Place(_ context.Context, req order.PlaceRequest) (*order.PlaceResult, error) {
	m.lastPlace = req
	return m.placeResult, m.placeErr
}

func (m *mockOrders) GetByNumber(_ context.Context, _ string) (*order.Order, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.order, nil
}

func (m *mockOrders) GetByID(_ context.Context, _ string) (*order.Order, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.order, nil
}

func (m *mockOrders) List(_ context.Context, _ int) ([]order.Summary, error) {
	return nil, nil
}

func (m *mockOrders) UpdateStatus(_ context.Context, _ string, target order.Status) (order.Status, error) {
	if m.updErr != nil {
		return "", m.updErr
	}
	m.updated = target
	return m.prev, nil
}

// --- Helpers ---

func serve(h *Handler, method, path string, body any) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	h.Register(mux)

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeResponse[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

// --- Tests ---

func TestQuote_Success(t *testing.T) {
	resolver := &mockResolver{quote: &pricing.Quote{
		Total: decimal.RequireFromString("25000"),
		Product: pricing.Component{
			UnitPrice: decimal.RequireFromString("1000"),
			Qty:       10,
			Subtotal:  decimal.RequireFromString("10000"),
		},
		Packaging: &pricing.Component{
			UnitPrice: decimal.RequireFromString("15000"),
			Subtotal:  decimal.RequireFromString("15000"),
		},
	}}
	h := New(&mockCatalog{}, resolver, &mockOrders{})

	w := serve(h, http.MethodPost, "/api/price", quoteRequest{
		ProductID: "p1", MaterialID: "m1", Qty: 10, PackagingID: "giftbox",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.JSONEq(t, `"25000"`, string(resp["total_price"]))

	var breakdown map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(resp["breakdown"], &breakdown))
	assert.Contains(t, breakdown, "product")
	assert.Contains(t, breakdown, "packaging")
	assert.NotContains(t, breakdown, "upgrade")
}

func TestQuote_NoTier(t *testing.T) {
	resolver := &mockResolver{err: &pricing.NotFoundError{
		ProductID: "p1", MaterialID: "m1", Qty: 3,
	}}
	h := New(&mockCatalog{}, resolver, &mockOrders{})

	w := serve(h, http.MethodPost, "/api/price", quoteRequest{
		ProductID: "p1", MaterialID: "m1", Qty: 3,
	})

	// Caller-recoverable: distinguishable from a server fault.
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeResponse[errorBody](t, w)
	assert.Equal(t, http.StatusBadRequest, body.Code)
	assert.Contains(t, body.Message, "no pricing tier")
}

func TestQuote_InvalidJSON(t *testing.T) {
	h := New(&mockCatalog{}, &mockResolver{}, &mockOrders{})

	mux := http.NewServeMux()
	h.Register(mux)
	req := httptest.NewRequest(http.MethodPost, "/api/price", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOrder_Success(t *testing.T) {
	orders := &mockOrders{placeResult: &order.PlaceResult{
		OrderID: "2f6b0c9e-1111-2222-3333-444455556666",
		Number:  "ORD-1756339200123-K4X9C",
		Total:   decimal.RequireFromString("50000"),
	}}
	h := New(&mockCatalog{}, &mockResolver{}, orders)

	w := serve(h, http.MethodPost, "/api/orders", createOrderRequest{
		NamaPemesan:   "Rina Wijaya",
		KontakPemesan: "+62 812 3456 7890",
		Email:         "rina@example.com",
		AlamatKirim:   "Jl. Kemang Raya 12",
		Items: []orderItemRequest{
			{ProductID: "p1", MaterialID: "m1", Qty: 10, TeksLogo: "ALLURE"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.JSONEq(t, `"ORD-1756339200123-K4X9C"`, string(resp["order_number"]))
	assert.JSONEq(t, `"50000"`, string(resp["total_harga"]))

	// Decoration fields reach the service intact.
	require.Len(t, orders.lastPlace.Items, 1)
	assert.Equal(t, "ALLURE", orders.lastPlace.Items[0].LogoText)
	assert.Equal(t, "Rina Wijaya", orders.lastPlace.CustomerName)
}

func TestCreateOrder_UnpriceableItem(t *testing.T) {
	orders := &mockOrders{placeErr: &order.ItemPricingError{
		Index: 1,
		Err:   &pricing.NotFoundError{ProductID: "p2", MaterialID: "m1", Qty: 7},
	}}
	h := New(&mockCatalog{}, &mockResolver{}, orders)

	w := serve(h, http.MethodPost, "/api/orders", createOrderRequest{
		NamaPemesan:   "Rina",
		KontakPemesan: "0812",
		Email:         "r@example.com",
		AlamatKirim:   "Jakarta",
		Items: []orderItemRequest{
			{ProductID: "p1", MaterialID: "m1", Qty: 10},
			{ProductID: "p2", MaterialID: "m1", Qty: 7},
		},
	})

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decodeResponse[errorBody](t, w)
	assert.Contains(t, body.Message, "item 1")
}

func TestCreateOrder_MissingField(t *testing.T) {
	orders := &mockOrders{placeErr: &order.ValidationError{Field: "nama_pemesan", Message: "required"}}
	h := New(&mockCatalog{}, &mockResolver{}, orders)

	w := serve(h, http.MethodPost, "/api/orders", createOrderRequest{})

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeResponse[errorBody](t, w)
	assert.Contains(t, body.Message, "nama_pemesan")
}

func TestCreateOrder_StoreFailureIsOpaque(t *testing.T) {
	orders := &mockOrders{placeErr: errors.New("pq: deadlock detected")}
	h := New(&mockCatalog{}, &mockResolver{}, orders)

	w := serve(h, http.MethodPost, "/api/orders", createOrderRequest{
		NamaPemesan:   "Rina",
		KontakPemesan: "0812",
		Email:         "r@example.com",
		AlamatKirim:   "Jakarta",
		Items:         []orderItemRequest{{ProductID: "p1", MaterialID: "m1", Qty: 1}},
	})

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeResponse[errorBody](t, w)
	assert.Equal(t, "internal server error", body.Message)
	assert.NotContains(t, body.Message, "deadlock")
}

func TestGetOrder_NotFound(t *testing.T) {
	orders := &mockOrders{getErr: order.ErrNotFound}
	h := New(&mockCatalog{}, &mockResolver{}, orders)

	w := serve(h, http.MethodGet, "/api/orders/ORD-0-XXXXX", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetOrder_DetailShape(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	orders := &mockOrders{order: &order.Order{
		ID:              "oid-1",
		Number:          "ORD-1-AAAAA",
		CustomerName:    "Budi",
		CustomerContact: "0812",
		Email:           "budi@example.com",
		ShippingAddress: "Bandung",
		Total:           decimal.RequireFromString("40000"),
		Status:          order.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
		Items: []order.LineItem{{
			ProductID:    "p1",
			ProductName:  "Paper Bag Premium",
			MaterialID:   "m1",
			MaterialName: "Kraft 150gsm",
			Qty:          50,
			UnitPrice:    decimal.RequireFromString("800"),
			Subtotal:     decimal.RequireFromString("40000"),
		}},
	}}
	h := New(&mockCatalog{}, &mockResolver{}, orders)

	w := serve(h, http.MethodGet, "/api/orders/ORD-1-AAAAA", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Order map[string]json.RawMessage   `json:"order"`
		Items []map[string]json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.JSONEq(t, `"Budi"`, string(resp.Order["nama_pemesan"]))
	assert.JSONEq(t, `"40000"`, string(resp.Order["total_harga"]))
	require.Len(t, resp.Items, 1)
	assert.JSONEq(t, `"Paper Bag Premium"`, string(resp.Items[0]["nama_produk"]))
	assert.JSONEq(t, `"Kraft 150gsm"`, string(resp.Items[0]["nama_bahan"]))
	assert.JSONEq(t, `"800"`, string(resp.Items[0]["harga_per_pcs"]))
}

func TestUpdateOrderStatus_Success(t *testing.T) {
	orders := &mockOrders{prev: order.StatusPending}
	h := New(&mockCatalog{}, &mockResolver{}, orders)

	w := serve(h, http.MethodPut, "/api/admin/orders/oid-1/status",
		updateStatusRequest{Status: order.StatusConfirmed})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, order.StatusConfirmed, orders.updated)

	resp := decodeResponse[updateStatusResponse](t, w)
	assert.Equal(t, order.StatusPending, resp.PreviousStatus)
	assert.Equal(t, order.StatusConfirmed, resp.NewStatus)
}

func TestUpdateOrderStatus_InvalidTransition(t *testing.T) {
	orders := &mockOrders{updErr: &order.InvalidTransitionError{
		From: order.StatusDelivered,
		To:   order.StatusCancelled,
	}}
	h := New(&mockCatalog{}, &mockResolver{}, orders)

	w := serve(h, http.MethodPut, "/api/admin/orders/oid-1/status",
		updateStatusRequest{Status: order.StatusCancelled})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestListProducts_Shape(t *testing.T) {
	cat := &mockCatalog{listings: []catalog.ProductListing{{
		Product: catalog.Product{
			ID:     "p1",
			Name:   "Paper Bag Premium",
			Status: catalog.ProductActive,
		},
		Materials: []catalog.Material{{ID: "m1", Name: "Kraft 150gsm"}},
		MinPrice:  decimal.RequireFromString("800"),
		MaxPrice:  decimal.RequireFromString("1000"),
	}}}
	h := New(cat, &mockResolver{}, &mockOrders{})

	w := serve(h, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.JSONEq(t, `"Paper Bag Premium"`, string(resp[0]["nama_produk"]))
	assert.Contains(t, resp[0], "materials")
	assert.Contains(t, resp[0], "price_range")
}
