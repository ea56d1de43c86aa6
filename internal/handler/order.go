package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/allurecraft/order-api/internal/domain/order"
)

// Wire field names follow the storefront contract, which predates this
// service (nama_pemesan, alamat_kirim, total_harga, ...).

type orderItemRequest struct {
	ProductID         string `json:"product_id"`
	MaterialID        string `json:"material_id"`
	Qty               int    `json:"qty"`
	UpgradeID         string `json:"upgrade_id,omitempty"`
	PackagingID       string `json:"packaging_id,omitempty"`
	TeksLogo          string `json:"teks_logo,omitempty"`
	LogoCustomURL     string `json:"logo_custom_url,omitempty"`
	DesainPackagingID string `json:"desain_packaging_id,omitempty"`
	DesainCustomURL   string `json:"desain_custom_url,omitempty"`
}

type createOrderRequest struct {
	NamaPemesan   string             `json:"nama_pemesan"`
	KontakPemesan string             `json:"kontak_pemesan"`
	Email         string             `json:"email"`
	AlamatKirim   string             `json:"alamat_kirim"`
	Items         []orderItemRequest `json:"items"`
}

type createOrderResponse struct {
	OrderID     string          `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	TotalHarga  decimal.Decimal `json:"total_harga"`
}

type orderHeaderBody struct {
	ID            string          `json:"id"`
	OrderNumber   string          `json:"order_number"`
	NamaPemesan   string          `json:"nama_pemesan"`
	KontakPemesan string          `json:"kontak_pemesan"`
	Email         string          `json:"email"`
	AlamatKirim   string          `json:"alamat_kirim"`
	TotalHarga    decimal.Decimal `json:"total_harga"`
	Status        order.Status    `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type orderItemBody struct {
	ProductID         string          `json:"product_id"`
	NamaProduk        string          `json:"nama_produk"`
	MaterialID        string          `json:"material_id"`
	NamaBahan         string          `json:"nama_bahan"`
	Qty               int             `json:"qty"`
	HargaPerPcs       decimal.Decimal `json:"harga_per_pcs"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	UpgradeID         string          `json:"upgrade_id,omitempty"`
	NamaUpgrade       string          `json:"nama_upgrade,omitempty"`
	PackagingID       string          `json:"packaging_id,omitempty"`
	NamaPackaging     string          `json:"nama_packaging,omitempty"`
	DesainPackagingID string          `json:"desain_packaging_id,omitempty"`
	NamaDesain        string          `json:"nama_desain,omitempty"`
	TeksLogo          string          `json:"teks_logo,omitempty"`
	LogoCustomURL     string          `json:"logo_custom_url,omitempty"`
	DesainCustomURL   string          `json:"desain_custom_url,omitempty"`
}

type orderDetailResponse struct {
	Order orderHeaderBody `json:"order"`
	Items []orderItemBody `json:"items"`
}

// CreateOrder places an order. Every line item is re-priced from current
// tiers; the identifier and total are only returned after the transaction
// has committed. No notification is dispatched here: callers fan that out
// asynchronously after the response, so a notification failure can never
// roll back a committed order.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	items := make([]order.ItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = order.ItemRequest{
			ProductID:   it.ProductID,
			MaterialID:  it.MaterialID,
			Qty:         it.Qty,
			UpgradeID:   it.UpgradeID,
			PackagingID: it.PackagingID,
			DesignID:    it.DesainPackagingID,
			LogoText:    it.TeksLogo,
			LogoURL:     it.LogoCustomURL,
			DesignURL:   it.DesainCustomURL,
		}
	}

	res, err := h.orders.Place(r.Context(), order.PlaceRequest{
		CustomerName:    req.NamaPemesan,
		CustomerContact: req.KontakPemesan,
		Email:           req.Email,
		ShippingAddress: req.AlamatKirim,
		Items:           items,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, createOrderResponse{
		OrderID:     res.OrderID,
		OrderNumber: res.Number,
		TotalHarga:  res.Total,
	})
}

// GetOrder returns an order by its order number, for customer tracking.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetByNumber(r.Context(), r.PathValue("orderNumber"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orderToDetail(o))
}

func orderToDetail(o *order.Order) orderDetailResponse {
	resp := orderDetailResponse{
		Order: orderHeaderBody{
			ID:            o.ID,
			OrderNumber:   o.Number,
			NamaPemesan:   o.CustomerName,
			KontakPemesan: o.CustomerContact,
			Email:         o.Email,
			AlamatKirim:   o.ShippingAddress,
			TotalHarga:    o.Total,
			Status:        o.Status,
			CreatedAt:     o.CreatedAt,
			UpdatedAt:     o.UpdatedAt,
		},
		Items: make([]orderItemBody, len(o.Items)),
	}
	for i, it := range o.Items {
		resp.Items[i] = orderItemBody{
			ProductID:         it.ProductID,
			NamaProduk:        it.ProductName,
			MaterialID:        it.MaterialID,
			NamaBahan:         it.MaterialName,
			Qty:               it.Qty,
			HargaPerPcs:       it.UnitPrice,
			Subtotal:          it.Subtotal,
			UpgradeID:         it.UpgradeID,
			NamaUpgrade:       it.UpgradeName,
			PackagingID:       it.PackagingID,
			NamaPackaging:     it.PackagingName,
			DesainPackagingID: it.DesignID,
			NamaDesain:        it.DesignName,
			TeksLogo:          it.LogoText,
			LogoCustomURL:     it.LogoURL,
			DesainCustomURL:   it.DesignURL,
		}
	}
	return resp
}
