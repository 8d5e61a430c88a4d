package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"mercadopublico-scraper/models"
)

const (
	productsTable  = "cm_productos"
	summariesTable = "cm_precios_minimos"
	refreshFunc    = "refrescar_cm_precios_region"
)

var (
	productColumns = []string{
		"id_producto", "nombre_producto", "numero_proveedores", "link_producto", "pagina", "updated_at",
	}
	summaryColumns = []string{
		"id_producto", "nombre_producto", "numero_proveedores", "link_producto", "id_interno",
		"precio_minimo_global", "region_mejor_precio", "precios_region", "updated_at",
	}
)

// PostgresWriter stores the catalog and price summaries in PostgreSQL.
type PostgresWriter struct {
	db           *sql.DB
	productBatch int
	summaryBatch int
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(ctx context.Context, dsn string, productBatch, summaryBatch int) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, fmt.Errorf("postgres: ping: %w", ctx.Err())
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{
		db:           db,
		productBatch: positiveOr(productBatch, 500),
		summaryBatch: positiveOr(summaryBatch, 200),
	}
	if err := pw.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate(ctx context.Context) error {
	_, err := pw.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS cm_productos (
			id_producto        TEXT        PRIMARY KEY,
			nombre_producto    TEXT        NOT NULL DEFAULT '',
			numero_proveedores INTEGER     NOT NULL DEFAULT 0,
			link_producto      TEXT        NOT NULL,
			pagina             INTEGER     NOT NULL DEFAULT 0,
			updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS cm_precios_minimos (
			id_producto          TEXT        PRIMARY KEY,
			nombre_producto      TEXT        NOT NULL DEFAULT '',
			numero_proveedores   INTEGER     NOT NULL DEFAULT 0,
			link_producto        TEXT        NOT NULL DEFAULT '',
			id_interno           TEXT        NOT NULL DEFAULT '',
			precio_minimo_global BIGINT      NOT NULL CHECK (precio_minimo_global > 0),
			region_mejor_precio  TEXT        NOT NULL,
			precios_region       JSONB       NOT NULL DEFAULT '{}'::jsonb,
			updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_precios_minimos_region ON cm_precios_minimos(region_mejor_precio);
		CREATE INDEX IF NOT EXISTS idx_precios_minimos_precio ON cm_precios_minimos(precio_minimo_global);
	`)
	return err
}

// UpsertProducts writes the catalog in batches, replacing earlier rows for
// the same product id.
func (pw *PostgresWriter) UpsertProducts(ctx context.Context, products []*models.Product) error {
	rows := make([]row, 0, len(products))
	for _, p := range products {
		rows = append(rows, row{
			key:  p.ID,
			args: []any{p.ID, p.Name, p.Providers, p.Link, p.Page, p.UpdatedAt},
		})
	}
	return pw.upsert(ctx, productsTable, productColumns, rows, pw.productBatch)
}

// WriteSummaries upserts price summaries in batches. A summary fully
// replaces the previous one for its product.
func (pw *PostgresWriter) WriteSummaries(ctx context.Context, summaries []*models.PriceSummary) error {
	rows := make([]row, 0, len(summaries))
	for _, s := range summaries {
		regions, err := json.Marshal(s.RegionPrices)
		if err != nil {
			return fmt.Errorf("postgres: encode region prices for %s: %w", s.ProductID, err)
		}
		rows = append(rows, row{
			key: s.ProductID,
			args: []any{
				s.ProductID, s.Name, s.Providers, s.Link, s.InternalID,
				s.MinPrice, s.BestRegion, string(regions), s.CheckedAt,
			},
		})
	}
	return pw.upsert(ctx, summariesTable, summaryColumns, rows, pw.summaryBatch)
}

// FetchProducts reads catalog products ordered by id. limit <= 0 reads all.
func (pw *PostgresWriter) FetchProducts(ctx context.Context, limit int) ([]*models.Product, error) {
	query := `
		SELECT id_producto, nombre_producto, numero_proveedores, link_producto, pagina, updated_at
		FROM cm_productos
		ORDER BY id_producto`
	var args []any
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := pw.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p := &models.Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Providers, &p.Link, &p.Page, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// RefreshRegionView calls the database function that rebuilds the
// per-region price table from cm_precios_minimos.
func (pw *PostgresWriter) RefreshRegionView(ctx context.Context) error {
	if _, err := pw.db.ExecContext(ctx, "SELECT "+pq.QuoteIdentifier(refreshFunc)+"()"); err != nil {
		return fmt.Errorf("postgres: %s: %w", refreshFunc, err)
	}
	return nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

type row struct {
	key  string
	args []any
}

func (pw *PostgresWriter) upsert(ctx context.Context, table string, columns []string, rows []row, batchSize int) error {
	for _, batch := range chunk(dedupe(rows), batchSize) {
		args := make([]any, 0, len(batch)*len(columns))
		for _, r := range batch {
			args = append(args, r.args...)
		}
		query := buildUpsert(table, columns, len(batch))
		if _, err := pw.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("postgres: upsert %s (%d rows): %w", table, len(batch), err)
		}
	}
	return nil
}

// buildUpsert renders a multi-row INSERT that updates every non-key column
// on conflict with the first column.
func buildUpsert(table string, columns []string, n int) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pq.QuoteIdentifier(c)
	}

	values := make([]string, n)
	for i := 0; i < n; i++ {
		ph := make([]string, len(columns))
		for j := range columns {
			ph[j] = fmt.Sprintf("$%d", i*len(columns)+j+1)
		}
		values[i] = "(" + strings.Join(ph, ",") + ")"
	}

	updates := make([]string, 0, len(columns)-1)
	for _, c := range quoted[1:] {
		updates = append(updates, c+" = EXCLUDED."+c)
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s ON CONFLICT (%s) DO UPDATE SET %s",
		pq.QuoteIdentifier(table),
		strings.Join(quoted, ", "),
		strings.Join(values, ","),
		quoted[0],
		strings.Join(updates, ", "),
	)
}

// dedupe keeps the last row per key; Postgres rejects an upsert that touches
// the same row twice in one statement.
func dedupe(rows []row) []row {
	last := make(map[string]int, len(rows))
	for i, r := range rows {
		last[r.key] = i
	}
	out := make([]row, 0, len(last))
	for i, r := range rows {
		if last[r.key] == i {
			out = append(out, r)
		}
	}
	return out
}

func chunk(rows []row, size int) [][]row {
	var out [][]row
	for i := 0; i < len(rows); i += size {
		end := i + size
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, rows[i:end])
	}
	return out
}

func positiveOr(n, fallback int) int {
	if n > 0 {
		return n
	}
	return fallback
}
