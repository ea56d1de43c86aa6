//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestQuote_TierPricing(t *testing.T) {
	req := quoteItemRequest{ProductID: "tumbler-custom", MaterialID: "stainless", Qty: 10}
	resp := doPost(t, "/api/price", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	quote := decodeJSON[quoteResponse](t, resp)
	// 10 pcs in the 1-49 tier at 65000.
	if quote.Breakdown.Product.UnitPrice != "65000" {
		t.Errorf("unit_price: got %q, want 65000", quote.Breakdown.Product.UnitPrice)
	}
	if quote.TotalPrice != "650000" {
		t.Errorf("total_price: got %q, want 650000", quote.TotalPrice)
	}
}

func TestQuote_TierBoundary(t *testing.T) {
	// Quantity 50 crosses into the 50-199 tier at 55000.
	req := quoteItemRequest{ProductID: "tumbler-custom", MaterialID: "stainless", Qty: 50}
	resp := doPost(t, "/api/price", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	quote := decodeJSON[quoteResponse](t, resp)
	if quote.Breakdown.Product.UnitPrice != "55000" {
		t.Errorf("unit_price: got %q, want 55000", quote.Breakdown.Product.UnitPrice)
	}
	if quote.TotalPrice != "2750000" {
		t.Errorf("total_price: got %q, want 2750000", quote.TotalPrice)
	}
}

func TestQuote_WithUpgradeAndPackaging(t *testing.T) {
	req := quoteItemRequest{
		ProductID:   "tumbler-custom",
		MaterialID:  "stainless",
		Qty:         10,
		UpgradeID:   "engraving",
		PackagingID: "box-kraft",
	}
	resp := doPost(t, "/api/price", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	quote := decodeJSON[quoteResponse](t, resp)
	if quote.Breakdown.Upgrade == nil {
		t.Fatal("breakdown.upgrade missing")
	}
	// Engraving is per unit: 10 x 8000.
	if quote.Breakdown.Upgrade.Subtotal != "80000" {
		t.Errorf("upgrade subtotal: got %q, want 80000", quote.Breakdown.Upgrade.Subtotal)
	}
	if quote.Breakdown.Packaging == nil {
		t.Fatal("breakdown.packaging missing")
	}
	// Packaging is flat per line.
	if quote.Breakdown.Packaging.Subtotal != "5000" {
		t.Errorf("packaging subtotal: got %q, want 5000", quote.Breakdown.Packaging.Subtotal)
	}
	// 650000 + 80000 + 5000.
	if quote.TotalPrice != "735000" {
		t.Errorf("total_price: got %q, want 735000", quote.TotalPrice)
	}
}

func TestQuote_UnknownUpgradeOmitted(t *testing.T) {
	req := quoteItemRequest{
		ProductID:  "tumbler-custom",
		MaterialID: "stainless",
		Qty:        10,
		UpgradeID:  "nonexistent-upgrade",
	}
	resp := doPost(t, "/api/price", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	quote := decodeJSON[quoteResponse](t, resp)
	if quote.Breakdown.Upgrade != nil {
		t.Error("unknown upgrade should be omitted from the breakdown")
	}
	if quote.TotalPrice != "650000" {
		t.Errorf("total_price: got %q, want 650000", quote.TotalPrice)
	}
}

func TestQuote_NoTier(t *testing.T) {
	// Lanyards start at 50 pcs; 10 falls outside every tier.
	req := quoteItemRequest{ProductID: "lanyard-custom", MaterialID: "tissue", Qty: 10}
	resp := doPost(t, "/api/price", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	if errResp.Message == "" {
		t.Error("error message is empty")
	}
}

func TestQuote_InvalidQuantity(t *testing.T) {
	req := quoteItemRequest{ProductID: "tumbler-custom", MaterialID: "stainless", Qty: 0}
	resp := doPost(t, "/api/price", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
