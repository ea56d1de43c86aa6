package pricing

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allurecraft/order-api/internal/domain/catalog"
)

// --- Mock implementations ---

type mockTierSource struct {
	tiers   []catalog.Tier
	findErr error
}

func (m *mockTierSource) FindTier(_ context.Context, productID, materialID string, qty int) (*catalog.Tier, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for i := range m.tiers {
		t := m.tiers[i]
		if t.ProductID == productID && t.MaterialID == materialID && t.Contains(qty) {
			return &t, nil
		}
	}
	return nil, &NotFoundError{ProductID: productID, MaterialID: materialID, Qty: qty}
}

type mockUpgradeSource struct {
	prices map[string]decimal.Decimal
	err    error
}

func (m *mockUpgradeSource) UpgradePrice(_ context.Context, id string) (decimal.Decimal, bool, error) {
	if m.err != nil {
		return decimal.Zero, false, m.err
	}
	p, ok := m.prices[id]
	return p, ok, nil
}

type mockPackagingSource struct {
	prices map[string]decimal.Decimal
}

func (m *mockPackagingSource) PackagingPrice(_ context.Context, id string) (decimal.Decimal, bool, error) {
	p, ok := m.prices[id]
	return p, ok, nil
}

// --- Helpers ---

func tier(product, material string, minQty, maxQty int, unitPrice string) catalog.Tier {
	return catalog.Tier{
		ProductID:  product,
		MaterialID: material,
		MinQty:     minQty,
		MaxQty:     maxQty,
		UnitPrice:  decimal.RequireFromString(unitPrice),
	}
}

func newResolver(tiers ...catalog.Tier) *Resolver {
	return NewResolver(
		&mockTierSource{tiers: tiers},
		&mockUpgradeSource{prices: map[string]decimal.Decimal{
			"emboss": decimal.RequireFromString("500"),
		}},
		&mockPackagingSource{prices: map[string]decimal.Decimal{
			"giftbox": decimal.RequireFromString("15000"),
		}},
	)
}

// --- Tests ---

func TestResolve_TierMatch(t *testing.T) {
	r := newResolver(
		tier("p1", "m1", 1, 49, "1000"),
		tier("p1", "m1", 50, 999, "800"),
	)

	q, err := r.Resolve(context.Background(), Request{ProductID: "p1", MaterialID: "m1", Qty: 10})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("10000").Equal(q.Total))
	assert.True(t, decimal.RequireFromString("1000").Equal(q.Product.UnitPrice))
	assert.Equal(t, 10, q.Product.Qty)
	assert.Nil(t, q.Upgrade)
	assert.Nil(t, q.Packaging)
}

func TestResolve_TierBoundaries(t *testing.T) {
	r := newResolver(
		tier("p1", "m1", 1, 49, "1000"),
		tier("p1", "m1", 50, 999, "800"),
	)

	tests := []struct {
		qty  int
		want string
	}{
		{qty: 1, want: "1000"},
		{qty: 49, want: "49000"},
		{qty: 50, want: "40000"},
		{qty: 999, want: "799200"},
	}
	for _, tt := range tests {
		q, err := r.Resolve(context.Background(), Request{ProductID: "p1", MaterialID: "m1", Qty: tt.qty})
		require.NoError(t, err, "qty %d", tt.qty)
		assert.True(t, decimal.RequireFromString(tt.want).Equal(q.Total),
			"qty %d: want %s, got %s", tt.qty, tt.want, q.Total)
	}
}

func TestResolve_NoTierMatches(t *testing.T) {
	r := newResolver(tier("p1", "m1", 50, 999, "800"))

	// Below the minimum band.
	_, err := r.Resolve(context.Background(), Request{ProductID: "p1", MaterialID: "m1", Qty: 10})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "p1", nf.ProductID)
	assert.Equal(t, 10, nf.Qty)

	// Above the maximum band.
	_, err = r.Resolve(context.Background(), Request{ProductID: "p1", MaterialID: "m1", Qty: 1500})
	require.ErrorAs(t, err, &nf)

	// Material not offered for this product.
	_, err = r.Resolve(context.Background(), Request{ProductID: "p1", MaterialID: "m2", Qty: 100})
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "m2", nf.MaterialID)
}

func TestResolve_InvalidQuantity(t *testing.T) {
	r := newResolver(tier("p1", "m1", 1, 49, "1000"))

	for _, qty := range []int{0, -3} {
		_, err := r.Resolve(context.Background(), Request{ProductID: "p1", MaterialID: "m1", Qty: qty})
		require.ErrorIs(t, err, ErrInvalidQuantity)
	}
}

func TestResolve_WithUpgradeAndPackaging(t *testing.T) {
	r := newResolver(tier("p1", "m1", 1, 49, "1000"))

	q, err := r.Resolve(context.Background(), Request{
		ProductID:   "p1",
		MaterialID:  "m1",
		Qty:         10,
		UpgradeID:   "emboss",
		PackagingID: "giftbox",
	})
	require.NoError(t, err)

	// product 10*1000 + upgrade 10*500 + flat 15000
	assert.True(t, decimal.RequireFromString("30000").Equal(q.Total))

	require.NotNil(t, q.Upgrade)
	assert.True(t, decimal.RequireFromString("500").Equal(q.Upgrade.UnitPrice))
	assert.Equal(t, 10, q.Upgrade.Qty)
	assert.True(t, decimal.RequireFromString("5000").Equal(q.Upgrade.Subtotal))

	// Packaging is flat: no quantity multiplier.
	require.NotNil(t, q.Packaging)
	assert.Equal(t, 0, q.Packaging.Qty)
	assert.True(t, decimal.RequireFromString("15000").Equal(q.Packaging.Subtotal))
}

func TestResolve_UnknownOptionalComponentsOmitted(t *testing.T) {
	r := newResolver(tier("p1", "m1", 1, 49, "1000"))

	base, err := r.Resolve(context.Background(), Request{ProductID: "p1", MaterialID: "m1", Qty: 10})
	require.NoError(t, err)

	decorated, err := r.Resolve(context.Background(), Request{
		ProductID:   "p1",
		MaterialID:  "m1",
		Qty:         10,
		UpgradeID:   "no-such-upgrade",
		PackagingID: "no-such-packaging",
	})
	require.NoError(t, err)

	// Unknown optional IDs degrade to the undecorated price, not an error.
	assert.True(t, base.Total.Equal(decorated.Total))
	assert.Nil(t, decorated.Upgrade)
	assert.Nil(t, decorated.Packaging)
}

func TestResolve_Deterministic(t *testing.T) {
	r := newResolver(
		tier("p1", "m1", 1, 49, "1000"),
		tier("p1", "m1", 50, 999, "800"),
	)
	req := Request{ProductID: "p1", MaterialID: "m1", Qty: 72, UpgradeID: "emboss"}

	first, err := r.Resolve(context.Background(), req)
	require.NoError(t, err)
	for range 10 {
		again, err := r.Resolve(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, first.Total.Equal(again.Total))
	}
}

func TestResolve_ExactDecimalArithmetic(t *testing.T) {
	// 0.1 * 3 is inexact in binary floating point; decimal must be exact.
	r := newResolver(tier("p1", "m1", 1, 100, "0.1"))

	q, err := r.Resolve(context.Background(), Request{ProductID: "p1", MaterialID: "m1", Qty: 3})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.3").Equal(q.Total))
}

func TestResolve_UpgradeSourceError(t *testing.T) {
	r := NewResolver(
		&mockTierSource{tiers: []catalog.Tier{tier("p1", "m1", 1, 49, "1000")}},
		&mockUpgradeSource{err: errors.New("db down")},
		&mockPackagingSource{},
	)

	// A store failure on an optional component is still a failure: only a
	// clean "not found" is allowed to degrade.
	_, err := r.Resolve(context.Background(), Request{
		ProductID: "p1", MaterialID: "m1", Qty: 1, UpgradeID: "emboss",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upgrade price")
}
