// Package prices runs a price pass: fetch each product page, reconcile its
// inline price tables and collect one summary per product.
package prices

import (
	"context"
	"errors"
	"sort"
	"sync"

	"mercadopublico-scraper/config"
	"mercadopublico-scraper/fetch"
	"mercadopublico-scraper/models"
	"mercadopublico-scraper/pricing"
	"mercadopublico-scraper/utils"
)

// Scraper prices catalog products concurrently.
type Scraper struct {
	cfg     *config.Config
	fetcher fetch.Fetcher
	logger  *utils.Logger
}

// New creates a price Scraper.
func New(cfg *config.Config, fetcher fetch.Fetcher, logger *utils.Logger) *Scraper {
	return &Scraper{cfg: cfg, fetcher: fetcher, logger: logger}
}

// Scrape prices every product and returns the summaries ordered by product
// id. Products that fail to fetch or have no usable price are logged and
// left out; one product's failure never affects another.
func (s *Scraper) Scrape(ctx context.Context, products []*models.Product) []*models.PriceSummary {
	pool := utils.NewWorkerPool(s.cfg.MaxConcurrency, s.cfg.RateLimit)
	seen := utils.NewKeySet()

	var mu sync.Mutex
	summaries := make([]*models.PriceSummary, 0, len(products))

	s.logger.Info("[prices] Pricing %d products (concurrency %d)", len(products), s.cfg.MaxConcurrency)

	for i, p := range products {
		if !seen.Add(p.ID) {
			s.logger.Debug("[prices] Duplicate product %s skipped", p.ID)
			continue
		}

		idx, product := i+1, p
		submitted := pool.Submit(ctx, func(ctx context.Context) {
			summary := s.priceProduct(ctx, idx, len(products), product)
			if summary == nil {
				return
			}
			mu.Lock()
			summaries = append(summaries, summary)
			mu.Unlock()
		})
		if !submitted {
			s.logger.Warn("[prices] Pass cancelled after %d/%d products", i, len(products))
			break
		}
	}
	pool.Wait()

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ProductID < summaries[j].ProductID
	})

	s.logger.Info("[prices] Pass complete: %d/%d products priced", len(summaries), seen.Size())
	return summaries
}

func (s *Scraper) priceProduct(ctx context.Context, idx, total int, p *models.Product) (summary *models.PriceSummary) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("[prices] [%d/%d] %s: panic while pricing: %v", idx, total, p.ID, r)
			summary = nil
		}
	}()

	html, err := s.fetcher.Fetch(ctx, p.Link)
	if err != nil {
		s.logger.Error("[prices] [%d/%d] %s: fetch failed: %v", idx, total, p.ID, err)
		return nil
	}

	summary, err = pricing.Summarize(html, p)
	if errors.Is(err, pricing.ErrNoUsablePrice) {
		s.logger.Warn("[prices] [%d/%d] %s: %v", idx, total, p.ID, err)
		return nil
	}
	if err != nil {
		s.logger.Error("[prices] [%d/%d] %s: %v", idx, total, p.ID, err)
		return nil
	}

	s.logger.Info("[prices] [%d/%d] %s: minimum $%d (%s)",
		idx, total, p.ID, summary.MinPrice, summary.BestRegion)
	return summary
}
