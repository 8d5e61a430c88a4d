package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"mercadopublico-scraper/models"
	"mercadopublico-scraper/utils"
)

// providersRegexp captures the first run of digits, e.g. "78 proveedores".
var providersRegexp = regexp.MustCompile(`\d+`)

// Cleaner transforms RawProducts into clean, validated Products.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean normalises raw catalog records. Records without an id or link are
// dropped, and the first record wins when an id repeats.
func (c *Cleaner) Clean(raw []*models.RawProduct) []*models.Product {
	seen := make(map[string]struct{})
	result := make([]*models.Product, 0, len(raw))

	for _, r := range raw {
		id := strings.TrimSpace(r.ID)
		link := strings.TrimSpace(r.Link)
		if id == "" || link == "" {
			c.logger.Warn("[cleaner] Dropping product without id or link: %q", normaliseText(r.Name))
			continue
		}

		if _, dup := seen[id]; dup {
			c.logger.Debug("[cleaner] Duplicate product id skipped: %s", id)
			continue
		}
		seen[id] = struct{}{}

		result = append(result, &models.Product{
			ID:        id,
			Name:      normaliseText(r.Name),
			Providers: parseProviders(r.Providers),
			Link:      link,
			Page:      r.Page,
			UpdatedAt: time.Now(),
		})
	}

	c.logger.Info("[cleaner] Cleaned %d → %d products (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

// parseProviders returns the provider count in raw, or 0 when it has none.
func parseProviders(raw string) int {
	match := providersRegexp.FindString(raw)
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return n
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
