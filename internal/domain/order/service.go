package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/allurecraft/order-api/internal/domain/pricing"
)

// ErrEmptyItems is returned when an order is submitted without line items.
var ErrEmptyItems = errors.New("items required")

// ValidationError indicates a missing or malformed customer-supplied field.
// It is caller-recoverable and names the field at fault.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ItemPricingError wraps a pricing failure with the index of the offending
// line item, so the caller can localize it in the submitted list.
type ItemPricingError struct {
	Index int
	Err   error
}

func (e *ItemPricingError) Error() string {
	return fmt.Sprintf("item %d: %s", e.Index, e.Err)
}

func (e *ItemPricingError) Unwrap() error { return e.Err }

// InvalidTransitionError indicates a rejected status change.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

// ItemRequest is one line of a submitted order, straight from the client.
// Any client-supplied price is ignored: the server re-resolves every line
// from current tiers.
type ItemRequest struct {
	ProductID   string
	MaterialID  string
	Qty         int
	UpgradeID   string
	PackagingID string
	DesignID    string
	LogoText    string
	LogoURL     string
	DesignURL   string
}

// PlaceRequest holds the input for placing an order.
type PlaceRequest struct {
	CustomerName    string
	CustomerContact string
	Email           string
	ShippingAddress string
	Items           []ItemRequest
}

// PlaceResult identifies a committed order. It is only produced after the
// transaction has committed; there are no partial results.
type PlaceResult struct {
	OrderID string
	Number  string
	Total   decimal.Decimal
}

// PriceResolver resolves one configured line to a quoted price. Implemented
// by pricing.Resolver.
type PriceResolver interface {
	Resolve(ctx context.Context, req pricing.Request) (*pricing.Quote, error)
}

// Service is the order transaction manager: it re-prices every submitted
// line, persists the order atomically, and generates the order reference.
type Service struct {
	resolver PriceResolver
	orders   Repository
	number   func() string
}

// NewService creates an order Service over the given resolver and repository.
func NewService(resolver PriceResolver, orders Repository) *Service {
	return &Service{
		resolver: resolver,
		orders:   orders,
		number:   NewNumber,
	}
}

// Place validates the request, resolves each line item's price from current
// tiers, and persists the order with all line items as one atomic unit.
// Either every row is committed and the identifier is returned, or nothing is
// persisted and an error is returned.
//
// A quote shown to the customer earlier is not consulted: prices are always
// re-resolved at commit time, so an administrative tier edit between quote
// and submission shows up as a different committed total. The quote breakdown
// returned by the pricing endpoint makes such divergence visible client-side.
func (s *Service) Place(ctx context.Context, req PlaceRequest) (*PlaceResult, error) {
	if err := validatePlaceRequest(req); err != nil {
		return nil, err
	}

	// Resolve every line before touching the orders table. A single failing
	// line aborts the whole order.
	items := make([]LineItem, len(req.Items))
	total := decimal.Zero
	for i, ir := range req.Items {
		quote, err := s.resolver.Resolve(ctx, pricing.Request{
			ProductID:   ir.ProductID,
			MaterialID:  ir.MaterialID,
			Qty:         ir.Qty,
			UpgradeID:   ir.UpgradeID,
			PackagingID: ir.PackagingID,
		})
		if err != nil {
			return nil, &ItemPricingError{Index: i, Err: err}
		}

		items[i] = LineItem{
			ProductID:   ir.ProductID,
			MaterialID:  ir.MaterialID,
			Qty:         ir.Qty,
			UnitPrice:   quote.Product.UnitPrice,
			Subtotal:    quote.Total,
			UpgradeID:   ir.UpgradeID,
			PackagingID: ir.PackagingID,
			DesignID:    ir.DesignID,
			LogoText:    ir.LogoText,
			LogoURL:     ir.LogoURL,
			DesignURL:   ir.DesignURL,
		}
		total = total.Add(quote.Total)
	}

	o := &Order{
		ID:              uuid.New().String(),
		CustomerName:    req.CustomerName,
		CustomerContact: req.CustomerContact,
		Email:           req.Email,
		ShippingAddress: req.ShippingAddress,
		Total:           total,
		Status:          StatusPending,
		Items:           items,
	}

	// The order number is generated without a store round trip; the unique
	// column is the collision check. On a collision the insert rolls back
	// and we retry with a fresh number, bounded by MaxCreateAttempts.
	var lastErr error
	for range MaxCreateAttempts {
		o.Number = s.number()
		err := s.orders.Create(ctx, o)
		if err == nil {
			return &PlaceResult{OrderID: o.ID, Number: o.Number, Total: o.Total}, nil
		}
		if !errors.Is(err, ErrDuplicateNumber) {
			return nil, errors.Wrap(err, "create order")
		}
		lastErr = err
	}
	return nil, errors.Wrap(lastErr, "order number collisions exhausted retries")
}

// GetByNumber returns the order for customer-facing tracking.
func (s *Service) GetByNumber(ctx context.Context, number string) (*Order, error) {
	if strings.TrimSpace(number) == "" {
		return nil, &ValidationError{Field: "order_number", Message: "required"}
	}
	return s.orders.GetByNumber(ctx, number)
}

// GetByID returns the order for the administrative detail view.
func (s *Service) GetByID(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// List returns the most recent orders for the administrative listing.
func (s *Service) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.orders.List(ctx, limit)
}

// UpdateStatus applies an administrative status transition after validating
// it against the fixed transition set.
func (s *Service) UpdateStatus(ctx context.Context, id string, target Status) (Status, error) {
	if !target.Valid() {
		return "", &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", target)}
	}

	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if !o.Status.CanTransitionTo(target) {
		return "", &InvalidTransitionError{From: o.Status, To: target}
	}

	if err := s.orders.UpdateStatus(ctx, id, o.Status, target); err != nil {
		return "", err
	}
	return o.Status, nil
}

func validatePlaceRequest(req PlaceRequest) error {
	if strings.TrimSpace(req.CustomerName) == "" {
		return &ValidationError{Field: "nama_pemesan", Message: "required"}
	}
	if strings.TrimSpace(req.CustomerContact) == "" {
		return &ValidationError{Field: "kontak_pemesan", Message: "required"}
	}
	if strings.TrimSpace(req.Email) == "" {
		return &ValidationError{Field: "email", Message: "required"}
	}
	if strings.TrimSpace(req.ShippingAddress) == "" {
		return &ValidationError{Field: "alamat_kirim", Message: "required"}
	}
	if len(req.Items) == 0 {
		return ErrEmptyItems
	}
	return nil
}
