package pricing

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidQuantity is returned for non-positive quantities before any
// lookup is attempted.
var ErrInvalidQuantity = errors.New("quantity must be greater than 0")

// Resolver composes a line price from the injected tier and surcharge
// sources. It holds no state beyond its sources and is safe for concurrent
// use.
type Resolver struct {
	tiers     TierSource
	upgrades  UpgradeSource
	packaging PackagingSource
}

// NewResolver creates a Resolver over the given price sources.
func NewResolver(tiers TierSource, upgrades UpgradeSource, packaging PackagingSource) *Resolver {
	return &Resolver{
		tiers:     tiers,
		upgrades:  upgrades,
		packaging: packaging,
	}
}

// Resolve prices one configured line.
//
// The product component is mandatory: a missing tier fails the whole
// resolution with NotFoundError. The upgrade and packaging components are
// optional decoration: an ID that does not resolve is omitted from the quote
// rather than failing it.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Quote, error) {
	if req.Qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	tier, err := r.tiers.FindTier(ctx, req.ProductID, req.MaterialID, req.Qty)
	if err != nil {
		return nil, err
	}

	qty := decimal.NewFromInt(int64(req.Qty))

	q := &Quote{
		Product: Component{
			UnitPrice: tier.UnitPrice,
			Qty:       req.Qty,
			Subtotal:  tier.UnitPrice.Mul(qty),
		},
	}
	q.Total = q.Product.Subtotal

	if req.UpgradeID != "" {
		price, ok, err := r.upgrades.UpgradePrice(ctx, req.UpgradeID)
		if err != nil {
			return nil, errors.Wrap(err, "upgrade price")
		}
		if ok {
			c := Component{
				UnitPrice: price,
				Qty:       req.Qty,
				Subtotal:  price.Mul(qty),
			}
			q.Upgrade = &c
			q.Total = q.Total.Add(c.Subtotal)
		}
	}

	if req.PackagingID != "" {
		price, ok, err := r.packaging.PackagingPrice(ctx, req.PackagingID)
		if err != nil {
			return nil, errors.Wrap(err, "packaging price")
		}
		if ok {
			// Flat surcharge per order line, independent of quantity.
			c := Component{
				UnitPrice: price,
				Subtotal:  price,
			}
			q.Packaging = &c
			q.Total = q.Total.Add(c.Subtotal)
		}
	}

	return q, nil
}
