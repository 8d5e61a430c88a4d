package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"mercadopublico-scraper/models"
	"mercadopublico-scraper/pricing"
)

var summaryHeader = []string{
	"id_producto", "nombre_producto", "numero_proveedores", "link_producto",
	"precio_minimo_global", "region_mejor_precio", "checked_at",
}

// CSVWriter exports price summaries as a wide CSV with one Precio_<Region>
// column per region seen in the batch. Each write replaces the file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu   sync.Mutex
	path string
}

// NewCSVWriter prepares the output path, creating intermediate directories.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	return &CSVWriter{path: path}, nil
}

// WriteSummaries rewrites the CSV file with the given summaries.
func (c *CSVWriter) WriteSummaries(_ context.Context, summaries []*models.PriceSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	columns, perRow := regionColumns(summaries)

	tmp := c.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", tmp, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(append(append([]string{}, summaryHeader...), columns...)); err != nil {
		_ = f.Close()
		return fmt.Errorf("csv: write header: %w", err)
	}

	for i, s := range summaries {
		rec := []string{
			s.ProductID,
			s.Name,
			strconv.Itoa(s.Providers),
			s.Link,
			strconv.FormatInt(s.MinPrice, 10),
			s.BestRegion,
			s.CheckedAt.Format(time.RFC3339),
		}
		for _, col := range columns {
			if p, ok := perRow[i][col]; ok {
				rec = append(rec, strconv.FormatInt(p, 10))
			} else {
				rec = append(rec, "")
			}
		}
		if err := w.Write(rec); err != nil {
			_ = f.Close()
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("csv: flush: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("csv: close: %w", err)
	}
	return os.Rename(tmp, c.path)
}

// Close is a no-op; every write closes its own file.
func (c *CSVWriter) Close() error {
	return nil
}

// regionColumns returns the sorted column set and, per summary, the price
// for each column. Regions that collapse to the same column keep the lower price.
func regionColumns(summaries []*models.PriceSummary) ([]string, []map[string]int64) {
	seen := make(map[string]struct{})
	perRow := make([]map[string]int64, len(summaries))

	for i, s := range summaries {
		perRow[i] = make(map[string]int64, len(s.RegionPrices))
		for region, price := range s.RegionPrices {
			col := pricing.RegionColumn(region)
			if prev, ok := perRow[i][col]; !ok || price < prev {
				perRow[i][col] = price
			}
			seen[col] = struct{}{}
		}
	}

	columns := make([]string, 0, len(seen))
	for col := range seen {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns, perRow
}
