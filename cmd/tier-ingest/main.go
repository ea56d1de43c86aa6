// Command tier-ingest imports supplier price sheets into the pricing_tiers
// table. Sheets are gzip-compressed CSV files, one tier per line:
//
//	product_id,material_id,min_qty,max_qty,unit_price
//
// Suppliers re-export full sheets every cycle, so files are large and mostly
// repeats. Files are parsed concurrently, exact duplicate rows are dropped,
// and the merged set is checked for overlapping quantity ranges before
// anything is written.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/allurecraft/order-api/internal/storage/postgres"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 1_000_000
)

type tierRow struct {
	productID  string
	materialID string
	minQty     int
	maxQty     int
	unitPrice  decimal.Decimal
}

func (t tierRow) key() string {
	return t.productID + "\x00" + t.materialID + "\x00" + strconv.Itoa(t.minQty)
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing tiers-*.csv.gz sheets")
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

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("tier ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("tier ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "tiers-*.csv.gz"))
	if err != nil {
		return errors.Wrap(err, "glob sheets")
	}
	if len(files) == 0 {
		return errors.Errorf("no tiers-*.csv.gz sheets in %s", dataDir)
	}
	sort.Strings(files)

	slog.Info("parsing sheets", slog.Int("files", len(files)))

	perFile := make([][]tierRow, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(parseSheet(gctx, i, f, perFile))
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "parse sheets")
	}

	tiers := mergeRows(perFile)
	if err := checkDisjoint(tiers); err != nil {
		return err
	}

	slog.Info("merged tiers", slog.Int("count", len(tiers)))

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	return writeTiers(ctx, pool, tiers)
}

// parseSheet streams one gzipped CSV sheet. Repeated rows within a sheet are
// dropped early: the bloom filter answers "definitely new" cheaply and only
// maybe-seen keys hit the exact map.
func parseSheet(ctx context.Context, idx int, path string, results [][]tierRow) func() error {
	return func() error {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open %s", path)
		}
		defer func() { _ = f.Close() }()

		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()

		filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		seen := make(map[string]struct{})
		var rows []tierRow
		var lineNo uint64

		scanner := bufio.NewScanner(gz)
		for scanner.Scan() {
			if err := ctx.Err(); err != nil {
				return err
			}
			lineNo++
			if lineNo%progressEvery == 0 {
				slog.Info("parse progress", slog.Int("file", idx+1), slog.Uint64("lines", lineNo))
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "product_id,") {
				continue
			}

			row, err := parseRow(line)
			if err != nil {
				return errors.Wrapf(err, "%s line %d", path, lineNo)
			}

			key := row.key()
			if filter.TestString(key) {
				if _, dup := seen[key]; dup {
					continue
				}
			}
			filter.AddString(key)
			seen[key] = struct{}{}
			rows = append(rows, row)
		}
		if err := scanner.Err(); err != nil {
			return errors.Wrapf(err, "scan %s", path)
		}

		slog.Info("sheet parsed",
			slog.Int("file", idx+1),
			slog.Uint64("lines", lineNo),
			slog.Int("tiers", len(rows)),
		)

		results[idx] = rows
		return nil
	}
}

func parseRow(line string) (tierRow, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 5 {
		return tierRow{}, errors.Errorf("expected 5 fields, got %d", len(fields))
	}

	minQty, err := strconv.Atoi(fields[2])
	if err != nil {
		return tierRow{}, errors.Wrap(err, "parse min_qty")
	}
	maxQty, err := strconv.Atoi(fields[3])
	if err != nil {
		return tierRow{}, errors.Wrap(err, "parse max_qty")
	}
	price, err := decimal.NewFromString(fields[4])
	if err != nil {
		return tierRow{}, errors.Wrap(err, "parse unit_price")
	}

	row := tierRow{
		productID:  strings.TrimSpace(fields[0]),
		materialID: strings.TrimSpace(fields[1]),
		minQty:     minQty,
		maxQty:     maxQty,
		unitPrice:  price,
	}
	switch {
	case row.productID == "" || row.materialID == "":
		return tierRow{}, errors.New("empty product_id or material_id")
	case row.minQty < 1:
		return tierRow{}, errors.Errorf("min_qty %d below 1", row.minQty)
	case row.maxQty < row.minQty:
		return tierRow{}, errors.Errorf("max_qty %d below min_qty %d", row.maxQty, row.minQty)
	case price.IsNegative():
		return tierRow{}, errors.New("negative unit_price")
	}
	return row, nil
}

// mergeRows combines per-sheet rows. Later sheets win on identical keys so a
// re-export with corrected prices supersedes the previous cycle.
func mergeRows(perFile [][]tierRow) []tierRow {
	byKey := make(map[string]int)
	var merged []tierRow
	for _, rows := range perFile {
		for _, row := range rows {
			if i, ok := byKey[row.key()]; ok {
				merged[i] = row
				continue
			}
			byKey[row.key()] = len(merged)
			merged = append(merged, row)
		}
	}
	return merged
}

// checkDisjoint rejects the batch when two tiers of the same (product,
// material) pair overlap. A quantity must resolve to at most one tier.
func checkDisjoint(tiers []tierRow) error {
	groups := make(map[[2]string][]tierRow)
	for _, t := range tiers {
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

const upsertTierSQL = `
INSERT INTO pricing_tiers (product_id, material_id, min_qty, max_qty, unit_price)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (product_id, material_id, min_qty) DO UPDATE SET
    max_qty = EXCLUDED.max_qty, unit_price = EXCLUDED.unit_price`

func writeTiers(ctx context.Context, pool *pgxpool.Pool, tiers []tierRow) error {
	slog.Info("writing tiers to database", slog.Int("count", len(tiers)))

	for i, t := range tiers {
		if _, err := pool.Exec(ctx, upsertTierSQL,
			t.productID, t.materialID, t.minQty, t.maxQty, t.unitPrice,
		); err != nil {
			return errors.Wrapf(err, "upsert tier %s/%s min %d", t.productID, t.materialID, t.minQty)
		}
		if (i+1)%1000 == 0 || i+1 == len(tiers) {
			slog.Info("write progress", slog.Int("written", i+1), slog.Int("total", len(tiers)))
		}
	}

	return nil
}
