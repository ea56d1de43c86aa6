package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/allurecraft/order-api/internal/domain/catalog"
)

var _ catalog.Repository = (*CatalogRepository)(nil)

const listProductsSQL = `SELECT id, name, description, image_url, status
	FROM products
	WHERE status = 'active'
	ORDER BY name`

// One grouped query for all products' materials instead of a query per
// product.
const listProductMaterialsSQL = `SELECT DISTINCT pt.product_id, m.id, m.name, m.description
	FROM materials m
	JOIN pricing_tiers pt ON pt.material_id = m.id
	ORDER BY pt.product_id, m.name`

const listPriceRangesSQL = `SELECT product_id, MIN(unit_price), MAX(unit_price)
	FROM pricing_tiers
	GROUP BY product_id`

const getProductSQL = `SELECT id, name, description, image_url, status
	FROM products
	WHERE id = $1 AND status = 'active'`

const listTiersForProductSQL = `SELECT pt.id, pt.product_id, pt.material_id, pt.min_qty, pt.max_qty, pt.unit_price,
		m.name, m.description
	FROM pricing_tiers pt
	JOIN materials m ON m.id = pt.material_id
	WHERE pt.product_id = $1
	ORDER BY m.name, pt.min_qty`

const listUpgradesForProductSQL = `SELECT id, name, description, unit_price, product_ids
	FROM upgrades
	WHERE $1 = ANY (product_ids)
	ORDER BY name`

const listPackagingSQL = `SELECT id, name, description, price, image_url
	FROM packaging
	ORDER BY name`

const listAllDesignsSQL = `SELECT id, packaging_id, name, preview_url, file_url
	FROM packaging_designs
	ORDER BY packaging_id, name`

const listDesignsSQL = `SELECT id, packaging_id, name, preview_url, file_url
	FROM packaging_designs
	WHERE packaging_id = $1
	ORDER BY name`

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// ListProducts returns active products with their offered materials and unit
// price ranges. Three queries total, regardless of product count.
func (r *CatalogRepository) ListProducts(ctx context.Context) ([]catalog.ProductListing, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.ProductListing, error) {
		var l catalog.ProductListing
		err := row.Scan(&l.ID, &l.Name, &l.Description, &l.ImageURL, &l.Status)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning products: %w", err)
	}

	byID := make(map[string]*catalog.ProductListing, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	matRows, err := r.pool.Query(ctx, listProductMaterialsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing product materials: %w", err)
	}
	defer matRows.Close()
	for matRows.Next() {
		var productID string
		var m catalog.Material
		if err := matRows.Scan(&productID, &m.ID, &m.Name, &m.Description); err != nil {
			return nil, fmt.Errorf("scanning product material: %w", err)
		}
		if l, ok := byID[productID]; ok {
			l.Materials = append(l.Materials, m)
		}
	}
	if err := matRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product materials: %w", err)
	}

	rangeRows, err := r.pool.Query(ctx, listPriceRangesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing price ranges: %w", err)
	}
	defer rangeRows.Close()
	for rangeRows.Next() {
		var productID string
		var rng catalog.ProductListing
		if err := rangeRows.Scan(&productID, &rng.MinPrice, &rng.MaxPrice); err != nil {
			return nil, fmt.Errorf("scanning price range: %w", err)
		}
		if p, ok := byID[productID]; ok {
			p.MinPrice = rng.MinPrice
			p.MaxPrice = rng.MaxPrice
		}
	}
	if err := rangeRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating price ranges: %w", err)
	}

	return products, nil
}

// GetProductDetail returns one active product with per-material tiers and
// the upgrades applicable to it.
func (r *CatalogRepository) GetProductDetail(ctx context.Context, id string) (*catalog.ProductDetail, error) {
	var d catalog.ProductDetail
	err := r.pool.QueryRow(ctx, getProductSQL, id).
		Scan(&d.ID, &d.Name, &d.Description, &d.ImageURL, &d.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	tierRows, err := r.pool.Query(ctx, listTiersForProductSQL, id)
	if err != nil {
		return nil, fmt.Errorf("listing tiers for product %q: %w", id, err)
	}
	defer tierRows.Close()
	// Rows arrive ordered by material name, so materials group contiguously.
	for tierRows.Next() {
		var t catalog.Tier
		var name, desc string
		if err := tierRows.Scan(&t.ID, &t.ProductID, &t.MaterialID, &t.MinQty, &t.MaxQty, &t.UnitPrice, &name, &desc); err != nil {
			return nil, fmt.Errorf("scanning tier: %w", err)
		}
		n := len(d.Materials)
		if n == 0 || d.Materials[n-1].ID != t.MaterialID {
			d.Materials = append(d.Materials, catalog.MaterialTiers{
				Material: catalog.Material{ID: t.MaterialID, Name: name, Description: desc},
			})
			n++
		}
		d.Materials[n-1].Tiers = append(d.Materials[n-1].Tiers, t)
	}
	if err := tierRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tiers: %w", err)
	}

	upRows, err := r.pool.Query(ctx, listUpgradesForProductSQL, id)
	if err != nil {
		return nil, fmt.Errorf("listing upgrades for product %q: %w", id, err)
	}
	d.Upgrades, err = pgx.CollectRows(upRows, func(row pgx.CollectableRow) (catalog.Upgrade, error) {
		var u catalog.Upgrade
		err := row.Scan(&u.ID, &u.Name, &u.Description, &u.UnitPrice, &u.ProductIDs)
		return u, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning upgrades: %w", err)
	}

	return &d, nil
}

// ListPackaging returns all packaging options with their design galleries,
// designs fetched in one grouped query.
func (r *CatalogRepository) ListPackaging(ctx context.Context) ([]catalog.Packaging, error) {
	rows, err := r.pool.Query(ctx, listPackagingSQL)
	if err != nil {
		return nil, fmt.Errorf("listing packaging: %w", err)
	}
	packs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Packaging, error) {
		var p catalog.Packaging
		err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning packaging: %w", err)
	}

	byID := make(map[string]*catalog.Packaging, len(packs))
	for i := range packs {
		byID[packs[i].ID] = &packs[i]
	}

	designRows, err := r.pool.Query(ctx, listAllDesignsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing designs: %w", err)
	}
	defer designRows.Close()
	for designRows.Next() {
		var d catalog.Design
		if err := designRows.Scan(&d.ID, &d.PackagingID, &d.Name, &d.PreviewURL, &d.FileURL); err != nil {
			return nil, fmt.Errorf("scanning design: %w", err)
		}
		if p, ok := byID[d.PackagingID]; ok {
			p.Designs = append(p.Designs, d)
		}
	}
	if err := designRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating designs: %w", err)
	}

	return packs, nil
}

// ListDesigns returns the designs for one packaging option.
func (r *CatalogRepository) ListDesigns(ctx context.Context, packagingID string) ([]catalog.Design, error) {
	rows, err := r.pool.Query(ctx, listDesignsSQL, packagingID)
	if err != nil {
		return nil, fmt.Errorf("listing designs for packaging %q: %w", packagingID, err)
	}
	designs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Design, error) {
		var d catalog.Design
		err := row.Scan(&d.ID, &d.PackagingID, &d.Name, &d.PreviewURL, &d.FileURL)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning designs: %w", err)
	}
	return designs, nil
}
