package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/allurecraft/order-api/internal/domain/pricing"
)

type quoteRequest struct {
	ProductID   string `json:"product_id"`
	MaterialID  string `json:"material_id"`
	Qty         int    `json:"qty"`
	UpgradeID   string `json:"upgrade_id,omitempty"`
	PackagingID string `json:"packaging_id,omitempty"`
}

type componentBody struct {
	UnitPrice decimal.Decimal `json:"unit_price"`
	Qty       int             `json:"qty,omitempty"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type breakdownBody struct {
	Product   componentBody  `json:"product"`
	Upgrade   *componentBody `json:"upgrade,omitempty"`
	Packaging *componentBody `json:"packaging,omitempty"`
}

type quoteResponse struct {
	TotalPrice decimal.Decimal `json:"total_price"`
	Breakdown  breakdownBody   `json:"breakdown"`
}

// Quote computes a live price for one configured line without persisting
// anything. The same resolver backs order commit, so a quote and the later
// committed price agree as long as the tier data is unchanged in between.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	q, err := h.resolver.Resolve(r.Context(), pricing.Request{
		ProductID:   req.ProductID,
		MaterialID:  req.MaterialID,
		Qty:         req.Qty,
		UpgradeID:   req.UpgradeID,
		PackagingID: req.PackagingID,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, quoteToResponse(q))
}

func quoteToResponse(q *pricing.Quote) quoteResponse {
	resp := quoteResponse{
		TotalPrice: q.Total,
		Breakdown: breakdownBody{
			Product: componentBody{
				UnitPrice: q.Product.UnitPrice,
				Qty:       q.Product.Qty,
				Subtotal:  q.Product.Subtotal,
			},
		},
	}
	if q.Upgrade != nil {
		resp.Breakdown.Upgrade = &componentBody{
			UnitPrice: q.Upgrade.UnitPrice,
			Qty:       q.Upgrade.Qty,
			Subtotal:  q.Upgrade.Subtotal,
		}
	}
	if q.Packaging != nil {
		resp.Breakdown.Packaging = &componentBody{
			UnitPrice: q.Packaging.UnitPrice,
			Subtotal:  q.Packaging.Subtotal,
		}
	}
	return resp
}
