package storage

import (
	"context"

	"mercadopublico-scraper/models"
)

// ProductStore persists the cleaned catalog and hands it back for price passes.
type ProductStore interface {
	UpsertProducts(ctx context.Context, products []*models.Product) error
	FetchProducts(ctx context.Context, limit int) ([]*models.Product, error)
}

// SummaryWriter persists price summaries. Writes are idempotent upserts
// keyed by product id.
type SummaryWriter interface {
	WriteSummaries(ctx context.Context, summaries []*models.PriceSummary) error
	Close() error
}
