// Package pricing resolves the price of one configured line: product price
// from the quantity-matched tier, plus an optional per-unit upgrade
// surcharge, plus an optional flat packaging surcharge. The same resolution
// backs live quoting and order commit, so the two paths cannot disagree.
package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/allurecraft/order-api/internal/domain/catalog"
)

// NotFoundError indicates no pricing tier matches the requested
// (product, material, quantity) combination. It is caller-recoverable: the
// customer can adjust the quantity or pick another material.
type NotFoundError struct {
	ProductID  string
	MaterialID string
	Qty        int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no pricing tier for product %s, material %s, qty %d",
		e.ProductID, e.MaterialID, e.Qty)
}

// Request identifies one configured line to price.
type Request struct {
	ProductID   string
	MaterialID  string
	Qty         int
	UpgradeID   string // optional
	PackagingID string // optional
}

// Component is one additive piece of a line's price. Qty is zero for flat
// components (packaging).
type Component struct {
	UnitPrice decimal.Decimal
	Qty       int
	Subtotal  decimal.Decimal
}

// Quote is a resolved price with its per-component breakdown. Upgrade and
// Packaging are nil when not requested or when the referenced option does not
// exist (optional decoration degrades silently rather than failing the line).
type Quote struct {
	Total     decimal.Decimal
	Product   Component
	Upgrade   *Component
	Packaging *Component
}

// TierSource looks up the single tier matching a quantity for a
// (product, material) pair.
type TierSource interface {
	// FindTier returns the tier whose [min_qty, max_qty] band contains qty.
	// Returns pricing.NotFoundError (via errors.As) when no tier matches.
	// Should the tier data be malformed and several bands overlap, the source
	// must deterministically return the first tier by band order.
	FindTier(ctx context.Context, productID, materialID string, qty int) (*catalog.Tier, error)
}

// UpgradeSource looks up the per-unit surcharge of an upgrade.
type UpgradeSource interface {
	// UpgradePrice returns (price, true) when the upgrade exists and
	// (zero, false) when it does not. Absence is not an error.
	UpgradePrice(ctx context.Context, id string) (decimal.Decimal, bool, error)
}

// PackagingSource looks up the flat surcharge of a packaging option.
type PackagingSource interface {
	// PackagingPrice returns (price, true) when the packaging exists and
	// (zero, false) when it does not. Absence is not an error.
	PackagingPrice(ctx context.Context, id string) (decimal.Decimal, bool, error)
}
