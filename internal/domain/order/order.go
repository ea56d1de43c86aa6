// Package order implements order placement and tracking: server-side price
// re-resolution per line item, all-or-nothing persistence, collision-checked
// order numbers, and the administrative status progression.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when no order matches the given identifier.
	ErrNotFound = errors.New("order not found")
	// ErrDuplicateNumber is returned by the repository when an insert hits
	// the unique constraint on order_number. The service retries with a
	// freshly generated number.
	ErrDuplicateNumber = errors.New("duplicate order number")
	// ErrStatusConflict is returned when a status update loses a race with a
	// concurrent transition on the same order.
	ErrStatusConflict = errors.New("order status changed concurrently")
)

// Status is the lifecycle state of an order. The progression is strictly
// forward: pending → confirmed → processing → shipped → delivered, with
// cancelled reachable from any non-terminal state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing,
		StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// next is the single forward step from each non-terminal status.
var next = map[Status]Status{
	StatusPending:    StatusConfirmed,
	StatusConfirmed:  StatusProcessing,
	StatusProcessing: StatusShipped,
	StatusShipped:    StatusDelivered,
}

// CanTransitionTo reports whether an order in status s may move to target.
// Only the immediate forward step is allowed; cancellation is allowed from
// any non-terminal state; backward moves and step-skips are rejected.
func (s Status) CanTransitionTo(target Status) bool {
	if s.Terminal() {
		return false
	}
	if target == StatusCancelled {
		return true
	}
	return next[s] == target
}

// Order is the unit of atomicity: it is persisted together with all of its
// line items or not at all.
type Order struct {
	ID              string
	Number          string
	CustomerName    string
	CustomerContact string
	Email           string
	ShippingAddress string
	Total           decimal.Decimal
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Items           []LineItem
}

// LineItem is one configured product within an order. UnitPrice and Subtotal
// are snapshots of the resolution performed at commit time; they are never
// re-derived from the live tier table.
type LineItem struct {
	ID          int64
	ProductID   string
	MaterialID  string
	Qty         int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
	UpgradeID   string
	PackagingID string
	DesignID    string
	LogoText    string
	LogoURL     string
	DesignURL   string

	// Denormalized display names, populated on lookups only.
	ProductName   string
	MaterialName  string
	UpgradeName   string
	PackagingName string
	DesignName    string
}

// Summary is the header-only projection used by administrative listings.
type Summary struct {
	ID              string
	Number          string
	CustomerName    string
	CustomerContact string
	Email           string
	Total           decimal.Decimal
	Status          Status
	CreatedAt       time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create persists the order header and all line items atomically:
	// concurrent readers observe either none or all of the rows. Returns
	// ErrDuplicateNumber when the order number is already taken.
	Create(ctx context.Context, o *Order) error
	// GetByNumber returns the order with its line items, display names
	// resolved. Returns ErrNotFound when absent.
	GetByNumber(ctx context.Context, number string) (*Order, error)
	// GetByID is GetByNumber keyed by the internal row ID (admin detail).
	GetByID(ctx context.Context, id string) (*Order, error)
	// List returns the most recent orders, newest first.
	List(ctx context.Context, limit int) ([]Summary, error)
	// UpdateStatus moves an order from one status to another and bumps
	// updated_at. The update is guarded on the current status, so a
	// concurrent transition makes it fail with ErrStatusConflict rather than
	// silently overwriting. Returns ErrNotFound when the order is absent.
	UpdateStatus(ctx context.Context, id string, from, to Status) error
}
