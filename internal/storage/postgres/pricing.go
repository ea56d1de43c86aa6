package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/allurecraft/order-api/internal/domain/catalog"
	"github.com/allurecraft/order-api/internal/domain/pricing"
)

var (
	_ pricing.TierSource      = (*PricingRepository)(nil)
	_ pricing.UpgradeSource   = (*PricingRepository)(nil)
	_ pricing.PackagingSource = (*PricingRepository)(nil)
)

// Tier bands for a pair are disjoint, so at most one row matches. ORDER BY +
// LIMIT make the pick deterministic even against malformed overlapping data.
const findTierSQL = `SELECT id, product_id, material_id, min_qty, max_qty, unit_price
	FROM pricing_tiers
	WHERE product_id = $1 AND material_id = $2 AND $3 BETWEEN min_qty AND max_qty
	ORDER BY min_qty, id
	LIMIT 1`

const upgradePriceSQL = `SELECT unit_price FROM upgrades WHERE id = $1`

const packagingPriceSQL = `SELECT price FROM packaging WHERE id = $1`

// PricingRepository serves the resolver's three price sources from the
// reference tables. Reads run at default isolation: tier data is read-mostly
// and quoting needs no transaction.
type PricingRepository struct {
	pool *pgxpool.Pool
}

// NewPricingRepository returns a PricingRepository that uses the given pool.
func NewPricingRepository(pool *pgxpool.Pool) *PricingRepository {
	return &PricingRepository{pool: pool}
}

// FindTier returns the tier whose quantity band contains qty for the pair.
func (r *PricingRepository) FindTier(ctx context.Context, productID, materialID string, qty int) (*catalog.Tier, error) {
	var t catalog.Tier
	err := r.pool.QueryRow(ctx, findTierSQL, productID, materialID, qty).
		Scan(&t.ID, &t.ProductID, &t.MaterialID, &t.MinQty, &t.MaxQty, &t.UnitPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &pricing.NotFoundError{
				ProductID:  productID,
				MaterialID: materialID,
				Qty:        qty,
			}
		}
		return nil, fmt.Errorf("finding tier for product %q material %q qty %d: %w",
			productID, materialID, qty, err)
	}
	return &t, nil
}

// UpgradePrice returns the per-unit surcharge for an upgrade, or ok=false
// when the upgrade does not exist.
func (r *PricingRepository) UpgradePrice(ctx context.Context, id string) (decimal.Decimal, bool, error) {
	var price decimal.Decimal
	err := r.pool.QueryRow(ctx, upgradePriceSQL, id).Scan(&price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("getting upgrade %q price: %w", id, err)
	}
	return price, true, nil
}

// PackagingPrice returns the flat surcharge for a packaging option, or
// ok=false when the packaging does not exist.
func (r *PricingRepository) PackagingPrice(ctx context.Context, id string) (decimal.Decimal, bool, error) {
	var price decimal.Decimal
	err := r.pool.QueryRow(ctx, packagingPriceSQL, id).Scan(&price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("getting packaging %q price: %w", id, err)
	}
	return price, true, nil
}
