package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/allurecraft/order-api/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

const insertOrderSQL = `INSERT INTO orders (
		id, order_number, customer_name, customer_contact, email,
		shipping_address, total, status
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// Optional references and decoration fields are stored as NULL, not ''.
const insertOrderItemSQL = `INSERT INTO order_items (
		order_id, product_id, material_id, qty, unit_price,
		upgrade_id, packaging_id, design_id,
		logo_text, logo_url, design_url, subtotal
	) VALUES ($1, $2, $3, $4, $5,
		NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''),
		NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), $12)`

const getOrderByNumberSQL = `SELECT id, order_number, customer_name, customer_contact, email,
		shipping_address, total, status, created_at, updated_at
	FROM orders
	WHERE order_number = $1`

const getOrderByIDSQL = `SELECT id, order_number, customer_name, customer_contact, email,
		shipping_address, total, status, created_at, updated_at
	FROM orders
	WHERE id = $1`

// Line items with denormalized display names for order-detail reconstruction.
const listOrderItemsSQL = `SELECT
		oi.id, oi.product_id, oi.material_id, oi.qty, oi.unit_price, oi.subtotal,
		COALESCE(oi.upgrade_id, ''), COALESCE(oi.packaging_id, ''), COALESCE(oi.design_id, ''),
		COALESCE(oi.logo_text, ''), COALESCE(oi.logo_url, ''), COALESCE(oi.design_url, ''),
		COALESCE(p.name, ''), COALESCE(m.name, ''),
		COALESCE(u.name, ''), COALESCE(pkg.name, ''), COALESCE(pd.name, '')
	FROM order_items oi
	LEFT JOIN products p ON p.id = oi.product_id
	LEFT JOIN materials m ON m.id = oi.material_id
	LEFT JOIN upgrades u ON u.id = oi.upgrade_id
	LEFT JOIN packaging pkg ON pkg.id = oi.packaging_id
	LEFT JOIN packaging_designs pd ON pd.id = oi.design_id
	WHERE oi.order_id = $1
	ORDER BY oi.id`

const listOrdersSQL = `SELECT id, order_number, customer_name, customer_contact, email,
		total, status, created_at
	FROM orders
	ORDER BY created_at DESC
	LIMIT $1`

const updateStatusSQL = `UPDATE orders
	SET status = $3, updated_at = now()
	WHERE id = $1 AND status = $2`

const orderExistsSQL = `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint errors.
const uniqueViolation = "23505"

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order header and all line items in a single
// transaction. Concurrent sessions observe either none or all of the rows;
// any failure (including an order-number collision) rolls everything back.
// A client that disconnects mid-insert leaves no partial rows: the server
// aborts the open transaction on connection loss.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning order transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, insertOrderSQL,
		o.ID, o.Number, o.CustomerName, o.CustomerContact, o.Email,
		o.ShippingAddress, o.Total, o.Status,
	)
	if err != nil {
		if isUniqueViolation(err, "orders_order_number_key") {
			return order.ErrDuplicateNumber
		}
		return fmt.Errorf("inserting order %q: %w", o.Number, err)
	}

	for i := range o.Items {
		item := &o.Items[i]
		_, err = tx.Exec(ctx, insertOrderItemSQL,
			o.ID, item.ProductID, item.MaterialID, item.Qty, item.UnitPrice,
			item.UpgradeID, item.PackagingID, item.DesignID,
			item.LogoText, item.LogoURL, item.DesignURL, item.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("inserting order item %d for %q: %w", i, o.Number, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %q: %w", o.Number, err)
	}
	return nil
}

// GetByNumber returns the order with its line items for customer tracking.
func (r *OrderRepository) GetByNumber(ctx context.Context, number string) (*order.Order, error) {
	return r.getOrder(ctx, getOrderByNumberSQL, number)
}

// GetByID returns the order with its line items for the admin detail view.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	return r.getOrder(ctx, getOrderByIDSQL, id)
}

func (r *OrderRepository) getOrder(ctx context.Context, query, key string) (*order.Order, error) {
	var o order.Order
	err := r.pool.QueryRow(ctx, query, key).Scan(
		&o.ID, &o.Number, &o.CustomerName, &o.CustomerContact, &o.Email,
		&o.ShippingAddress, &o.Total, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", key, err)
	}

	rows, err := r.pool.Query(ctx, listOrderItemsSQL, o.ID)
	if err != nil {
		return nil, fmt.Errorf("listing items for order %q: %w", o.Number, err)
	}
	o.Items, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.LineItem, error) {
		var it order.LineItem
		err := row.Scan(
			&it.ID, &it.ProductID, &it.MaterialID, &it.Qty, &it.UnitPrice, &it.Subtotal,
			&it.UpgradeID, &it.PackagingID, &it.DesignID,
			&it.LogoText, &it.LogoURL, &it.DesignURL,
			&it.ProductName, &it.MaterialName,
			&it.UpgradeName, &it.PackagingName, &it.DesignName,
		)
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning items for order %q: %w", o.Number, err)
	}

	return &o, nil
}

// List returns the most recent order headers, newest first.
func (r *OrderRepository) List(ctx context.Context, limit int) ([]order.Summary, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	summaries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Summary, error) {
		var s order.Summary
		err := row.Scan(&s.ID, &s.Number, &s.CustomerName, &s.CustomerContact,
			&s.Email, &s.Total, &s.Status, &s.CreatedAt)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning orders: %w", err)
	}
	return summaries, nil
}

// UpdateStatus moves an order between statuses, guarded on the expected
// current status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to order.Status) error {
	tag, err := r.pool.Exec(ctx, updateStatusSQL, id, from, to)
	if err != nil {
		return fmt.Errorf("updating status of order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing order from a lost status race.
		var exists bool
		if err := r.pool.QueryRow(ctx, orderExistsSQL, id).Scan(&exists); err != nil {
			return fmt.Errorf("checking order %q: %w", id, err)
		}
		if !exists {
			return order.ErrNotFound
		}
		return order.ErrStatusConflict
	}
	return nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == uniqueViolation &&
		pgErr.ConstraintName == constraint
}
