package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/allurecraft/order-api/internal/domain/catalog"
)

type designBody struct {
	DesignID   string `json:"design_id"`
	NamaDesain string `json:"nama_desain"`
	PreviewURL string `json:"preview_url,omitempty"`
	FileURL    string `json:"file_url,omitempty"`
}

type packagingBody struct {
	ID             string          `json:"id"`
	NamaPackaging  string          `json:"nama_packaging"`
	Deskripsi      string          `json:"deskripsi,omitempty"`
	HargaPackaging decimal.Decimal `json:"harga_packaging"`
	GambarURL      string          `json:"gambar_url,omitempty"`
	Designs        []designBody    `json:"designs"`
}

// ListPackaging returns all packaging options with their design galleries.
func (h *Handler) ListPackaging(w http.ResponseWriter, r *http.Request) {
	packs, err := h.catalog.ListPackaging(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	body := make([]packagingBody, len(packs))
	for i, p := range packs {
		body[i] = packagingBody{
			ID:             p.ID,
			NamaPackaging:  p.Name,
			Deskripsi:      p.Description,
			HargaPackaging: p.Price,
			GambarURL:      p.ImageURL,
			Designs:        designsToBody(p.Designs),
		}
	}
	respondJSON(w, http.StatusOK, body)
}

// ListDesigns returns the ready-made designs for one packaging option.
func (h *Handler) ListDesigns(w http.ResponseWriter, r *http.Request) {
	designs, err := h.catalog.ListDesigns(r.Context(), r.PathValue("id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, designsToBody(designs))
}

func designsToBody(designs []catalog.Design) []designBody {
	body := make([]designBody, len(designs))
	for i, d := range designs {
		body[i] = designBody{
			DesignID:   d.ID,
			NamaDesain: d.Name,
			PreviewURL: d.PreviewURL,
			FileURL:    d.FileURL,
		}
	}
	return body
}
