// Package catalog defines the reference data a customer configures an order
// from: products, materials, quantity-banded pricing tiers, and the optional
// upgrade and packaging surcharges. The API only reads this data; it is
// maintained by administrative tooling.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrProductNotFound is returned when a requested product does not exist or
// is not active.
var ErrProductNotFound = errors.New("product not found")

// ProductStatus is the lifecycle state of a product.
type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
)

// Product is a configurable catalog item.
type Product struct {
	ID          string
	Name        string
	Description string
	ImageURL    string
	Status      ProductStatus
}

// Material is a substrate a product can be made from. Products and materials
// are related through pricing tiers: a material is offered for a product iff
// at least one tier exists for the pair.
type Material struct {
	ID          string
	Name        string
	Description string
}

// Tier maps a quantity range to a unit price for a (product, material) pair.
// Ranges for the same pair are disjoint, so a quantity matches at most one tier.
type Tier struct {
	ID         int64
	ProductID  string
	MaterialID string
	MinQty     int
	MaxQty     int
	UnitPrice  decimal.Decimal
}

// Contains reports whether qty falls inside the tier's quantity band.
func (t Tier) Contains(qty int) bool {
	return qty >= t.MinQty && qty <= t.MaxQty
}

// Upgrade is an optional per-unit surcharge (e.g. logo embossing) restricted
// to the products listed in ProductIDs.
type Upgrade struct {
	ID          string
	Name        string
	Description string
	UnitPrice   decimal.Decimal
	ProductIDs  []string
}

// AppliesTo reports whether the upgrade may attach to the given product.
func (u Upgrade) AppliesTo(productID string) bool {
	for _, id := range u.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// Packaging is an optional flat per-line surcharge with a design gallery.
type Packaging struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Designs     []Design
}

// Design is a ready-made artwork option for a packaging choice.
type Design struct {
	ID          string
	PackagingID string
	Name        string
	PreviewURL  string
	FileURL     string
}

// ProductListing is a product joined with its offered materials and the
// min/max unit price across all of its tiers, as shown on the storefront.
type ProductListing struct {
	Product
	Materials []Material
	MinPrice  decimal.Decimal
	MaxPrice  decimal.Decimal
}

// MaterialTiers groups a material with its pricing tiers for one product.
type MaterialTiers struct {
	Material
	Tiers []Tier
}

// ProductDetail is the full configuration surface for one product.
type ProductDetail struct {
	Product
	Materials []MaterialTiers
	Upgrades  []Upgrade
}

// Repository defines read operations over the catalog.
type Repository interface {
	// ListProducts returns all active products with materials and price
	// ranges resolved in batched queries.
	ListProducts(ctx context.Context) ([]ProductListing, error)
	// GetProductDetail returns one active product with per-material tiers and
	// applicable upgrades. Returns ErrProductNotFound when absent or inactive.
	GetProductDetail(ctx context.Context, id string) (*ProductDetail, error)
	// ListPackaging returns all packaging options with their design galleries.
	ListPackaging(ctx context.Context) ([]Packaging, error)
	// ListDesigns returns the designs for one packaging option.
	ListDesigns(ctx context.Context, packagingID string) ([]Design, error)
}
