// Command seed-db loads the demo catalog: products, materials, quantity
// tiers, upgrades, and packaging with design galleries. Safe to re-run; every
// statement is an upsert.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sort"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/allurecraft/order-api/internal/storage/postgres"
)

func main() {
	var databaseURL string
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedTiers(ctx, pool); err != nil {
		return errors.Wrap(err, "seed pricing tiers")
	}
	if err := seedUpgrades(ctx, pool); err != nil {
		return errors.Wrap(err, "seed upgrades")
	}
	if err := seedPackaging(ctx, pool); err != nil {
		return errors.Wrap(err, "seed packaging")
	}

	return nil
}

const (
	upsertProductSQL = `
INSERT INTO products (id, name, description, image_url)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name, description = EXCLUDED.description, image_url = EXCLUDED.image_url`

	upsertMaterialSQL = `
INSERT INTO materials (id, name, description)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description`

	upsertTierSQL = `
INSERT INTO pricing_tiers (product_id, material_id, min_qty, max_qty, unit_price)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (product_id, material_id, min_qty) DO UPDATE SET
    max_qty = EXCLUDED.max_qty, unit_price = EXCLUDED.unit_price`

	upsertUpgradeSQL = `
INSERT INTO upgrades (id, name, description, unit_price, product_ids)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name, description = EXCLUDED.description,
    unit_price = EXCLUDED.unit_price, product_ids = EXCLUDED.product_ids`

	upsertPackagingSQL = `
INSERT INTO packaging (id, name, description, price, image_url)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name, description = EXCLUDED.description,
    price = EXCLUDED.price, image_url = EXCLUDED.image_url`

	upsertDesignSQL = `
INSERT INTO packaging_designs (id, packaging_id, name, preview_url)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET
    packaging_id = EXCLUDED.packaging_id, name = EXCLUDED.name, preview_url = EXCLUDED.preview_url`
)

func seedProducts(ctx context.Context, pool *pgxpool.Pool) error {
	products := [][4]string{
		{"tumbler-custom", "Tumbler Custom", "Tumbler dengan logo atau desain custom", "/images/tumbler.jpg"},
		{"totebag-custom", "Totebag Custom", "Totebag sablon custom untuk souvenir", "/images/totebag.jpg"},
		{"lanyard-custom", "Lanyard Custom", "Lanyard printing full color", "/images/lanyard.jpg"},
	}
	for _, p := range products {
		if _, err := pool.Exec(ctx, upsertProductSQL, p[0], p[1], p[2], p[3]); err != nil {
			return errors.Wrapf(err, "upsert product %s", p[0])
		}
		slog.Info("upserted product", slog.String("id", p[0]), slog.String("name", p[1]))
	}

	materials := [][3]string{
		{"stainless", "Stainless Steel", "Tahan karat, cocok untuk minuman panas"},
		{"plastik-bpa-free", "Plastik BPA Free", "Ringan dan aman untuk makanan"},
		{"kanvas", "Kanvas", "Bahan tebal untuk sablon"},
		{"blacu", "Blacu", "Bahan ekonomis untuk souvenir"},
		{"tissue", "Tissue Printing", "Tali lanyard printing dua sisi"},
	}
	for _, m := range materials {
		if _, err := pool.Exec(ctx, upsertMaterialSQL, m[0], m[1], m[2]); err != nil {
			return errors.Wrapf(err, "upsert material %s", m[0])
		}
	}
	slog.Info("upserted materials", slog.Int("count", len(materials)))

	return nil
}

type tierSeed struct {
	productID  string
	materialID string
	minQty     int
	maxQty     int
	unitPrice  string
}

func seedTiers(ctx context.Context, pool *pgxpool.Pool) error {
	tiers := []tierSeed{
		{"tumbler-custom", "stainless", 1, 49, "65000"},
		{"tumbler-custom", "stainless", 50, 199, "55000"},
		{"tumbler-custom", "stainless", 200, 999, "48000"},
		{"tumbler-custom", "plastik-bpa-free", 1, 49, "35000"},
		{"tumbler-custom", "plastik-bpa-free", 50, 999, "28000"},
		{"totebag-custom", "kanvas", 1, 49, "30000"},
		{"totebag-custom", "kanvas", 50, 299, "24000"},
		{"totebag-custom", "blacu", 12, 99, "15000"},
		{"totebag-custom", "blacu", 100, 999, "11000"},
		{"lanyard-custom", "tissue", 50, 199, "9000"},
		{"lanyard-custom", "tissue", 200, 1999, "6500"},
	}

	if err := checkDisjoint(tiers); err != nil {
		return err
	}

	for _, t := range tiers {
		price, err := decimal.NewFromString(t.unitPrice)
		if err != nil {
			return errors.Wrapf(err, "parse price for %s/%s", t.productID, t.materialID)
		}
		if _, err := pool.Exec(ctx, upsertTierSQL, t.productID, t.materialID, t.minQty, t.maxQty, price); err != nil {
			return errors.Wrapf(err, "upsert tier %s/%s min %d", t.productID, t.materialID, t.minQty)
		}
	}
	slog.Info("upserted pricing tiers", slog.Int("count", len(tiers)))

	return nil
}

// checkDisjoint rejects seed data where two tiers of the same (product,
// material) pair overlap. A quantity must resolve to at most one tier.
func checkDisjoint(tiers []tierSeed) error {
	groups := make(map[[2]string][]tierSeed)
	for _, t := range tiers {
		if t.maxQty < t.minQty {
			return errors.Errorf("tier %s/%s: max_qty %d below min_qty %d", t.productID, t.materialID, t.maxQty, t.minQty)
		}
		key := [2]string{t.productID, t.materialID}
		groups[key] = append(groups[key], t)
	}
	for key, group := range groups {
		sort.Slice(group, func(i, j int) bool { return group[i].minQty < group[j].minQty })
		for i := 1; i < len(group); i++ {
			if group[i].minQty <= group[i-1].maxQty {
				return errors.Errorf("overlapping tiers for %s/%s: [%d,%d] and [%d,%d]",
					key[0], key[1],
					group[i-1].minQty, group[i-1].maxQty, group[i].minQty, group[i].maxQty)
			}
		}
	}
	return nil
}

func seedUpgrades(ctx context.Context, pool *pgxpool.Pool) error {
	upgrades := []struct {
		id, name, description, price string
		productIDs                   []string
	}{
		{"engraving", "Laser Engraving", "Gravir nama per unit", "8000", []string{"tumbler-custom"}},
		{"full-print", "Full Body Print", "Sablon seluruh permukaan", "6000", []string{"totebag-custom", "tumbler-custom"}},
		{"stopper", "Stopper Besi", "Pengait besi untuk lanyard", "1500", []string{"lanyard-custom"}},
	}
	for _, u := range upgrades {
		price, err := decimal.NewFromString(u.price)
		if err != nil {
			return errors.Wrapf(err, "parse price for upgrade %s", u.id)
		}
		if _, err := pool.Exec(ctx, upsertUpgradeSQL, u.id, u.name, u.description, price, u.productIDs); err != nil {
			return errors.Wrapf(err, "upsert upgrade %s", u.id)
		}
	}
	slog.Info("upserted upgrades", slog.Int("count", len(upgrades)))

	return nil
}

func seedPackaging(ctx context.Context, pool *pgxpool.Pool) error {
	packs := [][5]string{
		{"box-kraft", "Box Kraft", "Box coklat polos daur ulang", "5000", "/images/box-kraft.jpg"},
		{"box-premium", "Box Premium", "Hard box dengan pita", "15000", "/images/box-premium.jpg"},
		{"pouch", "Pouch Spunbond", "Pouch serut ekonomis", "3000", "/images/pouch.jpg"},
	}
	for _, p := range packs {
		price, err := decimal.NewFromString(p[3])
		if err != nil {
			return errors.Wrapf(err, "parse price for packaging %s", p[0])
		}
		if _, err := pool.Exec(ctx, upsertPackagingSQL, p[0], p[1], p[2], price, p[4]); err != nil {
			return errors.Wrapf(err, "upsert packaging %s", p[0])
		}
	}

	designs := [][4]string{
		{"kraft-floral", "box-kraft", "Floral", "/images/designs/kraft-floral.jpg"},
		{"kraft-plain", "box-kraft", "Polos", "/images/designs/kraft-plain.jpg"},
		{"premium-gold", "box-premium", "Gold Foil", "/images/designs/premium-gold.jpg"},
		{"premium-navy", "box-premium", "Navy", "/images/designs/premium-navy.jpg"},
	}
	for _, d := range designs {
		if _, err := pool.Exec(ctx, upsertDesignSQL, d[0], d[1], d[2], d[3]); err != nil {
			return errors.Wrapf(err, "upsert design %s", d[0])
		}
	}
	slog.Info("upserted packaging", slog.Int("packs", len(packs)), slog.Int("designs", len(designs)))

	return nil
}
