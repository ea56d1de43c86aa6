package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/allurecraft/order-api/internal/domain/catalog"
)

type materialBody struct {
	MaterialID string `json:"material_id"`
	NamaBahan  string `json:"nama_bahan"`
	Deskripsi  string `json:"deskripsi,omitempty"`
}

type priceRangeBody struct {
	MinPrice decimal.Decimal `json:"min_price"`
	MaxPrice decimal.Decimal `json:"max_price"`
}

type productListingBody struct {
	ID         string         `json:"id"`
	NamaProduk string         `json:"nama_produk"`
	Deskripsi  string         `json:"deskripsi,omitempty"`
	GambarURL  string         `json:"gambar_url,omitempty"`
	Status     string         `json:"status"`
	Materials  []materialBody `json:"materials"`
	PriceRange priceRangeBody `json:"price_range"`
}

type tierBody struct {
	MinQty      int             `json:"min_qty"`
	MaxQty      int             `json:"max_qty"`
	HargaPerPcs decimal.Decimal `json:"harga_per_pcs"`
}

type materialTiersBody struct {
	materialBody
	PricingTiers []tierBody `json:"pricing_tiers"`
}

type upgradeBody struct {
	ID           string          `json:"id"`
	NamaUpgrade  string          `json:"nama_upgrade"`
	Deskripsi    string          `json:"deskripsi,omitempty"`
	HargaUpgrade decimal.Decimal `json:"harga_upgrade"`
}

type productDetailResponse struct {
	ID         string              `json:"id"`
	NamaProduk string              `json:"nama_produk"`
	Deskripsi  string              `json:"deskripsi,omitempty"`
	GambarURL  string              `json:"gambar_url,omitempty"`
	Status     string              `json:"status"`
	Materials  []materialTiersBody `json:"materials"`
	Upgrades   []upgradeBody       `json:"upgrades"`
}

// ListProducts returns all active products with their offered materials and
// unit price ranges, for the storefront catalog page.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	listings, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	body := make([]productListingBody, len(listings))
	for i, l := range listings {
		materials := make([]materialBody, len(l.Materials))
		for j, m := range l.Materials {
			materials[j] = materialBody{MaterialID: m.ID, NamaBahan: m.Name, Deskripsi: m.Description}
		}
		body[i] = productListingBody{
			ID:         l.ID,
			NamaProduk: l.Name,
			Deskripsi:  l.Description,
			GambarURL:  l.ImageURL,
			Status:     string(l.Status),
			Materials:  materials,
			PriceRange: priceRangeBody{MinPrice: l.MinPrice, MaxPrice: l.MaxPrice},
		}
	}
	respondJSON(w, http.StatusOK, body)
}

// GetProduct returns one product's full configuration surface: per-material
// pricing tiers and the upgrades applicable to it.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	d, err := h.catalog.GetProductDetail(r.Context(), r.PathValue("id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, productDetailToResponse(d))
}

func productDetailToResponse(d *catalog.ProductDetail) productDetailResponse {
	resp := productDetailResponse{
		ID:         d.ID,
		NamaProduk: d.Name,
		Deskripsi:  d.Description,
		GambarURL:  d.ImageURL,
		Status:     string(d.Status),
		Materials:  make([]materialTiersBody, len(d.Materials)),
		Upgrades:   make([]upgradeBody, len(d.Upgrades)),
	}
	for i, mt := range d.Materials {
		tiers := make([]tierBody, len(mt.Tiers))
		for j, t := range mt.Tiers {
			tiers[j] = tierBody{MinQty: t.MinQty, MaxQty: t.MaxQty, HargaPerPcs: t.UnitPrice}
		}
		resp.Materials[i] = materialTiersBody{
			materialBody: materialBody{MaterialID: mt.ID, NamaBahan: mt.Name, Deskripsi: mt.Description},
			PricingTiers: tiers,
		}
	}
	for i, u := range d.Upgrades {
		resp.Upgrades[i] = upgradeBody{
			ID:           u.ID,
			NamaUpgrade:  u.Name,
			Deskripsi:    u.Description,
			HargaUpgrade: u.UnitPrice,
		}
	}
	return resp
}
