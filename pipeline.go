package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"mercadopublico-scraper/models"
	"mercadopublico-scraper/services"
	"mercadopublico-scraper/storage"
	"mercadopublico-scraper/utils"
)

const (
	modeCatalog = "catalog"
	modePrices  = "prices"
	modeAll     = "all"
)

type catalogScraper interface {
	Scrape(ctx context.Context) ([]*models.RawProduct, error)
}

type priceScraper interface {
	Scrape(ctx context.Context, products []*models.Product) []*models.PriceSummary
}

type regionRefresher interface {
	RefreshRegionView(ctx context.Context) error
}

// pipeline ties the crawls to storage. Every collaborator is passed in so a
// pass can run against fakes.
type pipeline struct {
	logger      *utils.Logger
	catalog     catalogScraper
	prices      priceScraper
	products    storage.ProductStore
	writers     []storage.SummaryWriter
	refresher   regionRefresher
	report      io.Writer
	maxProducts int
}

func (p *pipeline) run(ctx context.Context, mode string) error {
	switch mode {
	case modeCatalog:
		return p.runCatalog(ctx)
	case modePrices:
		return p.runPrices(ctx)
	case modeAll:
		if err := p.runCatalog(ctx); err != nil {
			return err
		}
		return p.runPrices(ctx)
	}
	return fmt.Errorf("unknown mode %q (want %s, %s or %s)", mode, modeCatalog, modePrices, modeAll)
}

func (p *pipeline) runCatalog(ctx context.Context) error {
	p.logger.Info("=== Catalog crawl starting ===")

	raw, err := p.catalog.Scrape(ctx)
	if err != nil {
		return fmt.Errorf("catalog crawl: %w", err)
	}

	products := services.NewCleaner(p.logger).Clean(raw)
	if len(products) == 0 {
		return errors.New("catalog crawl: no products after cleaning")
	}

	if err := p.products.UpsertProducts(ctx, products); err != nil {
		return fmt.Errorf("catalog crawl: %w", err)
	}
	p.logger.Info("Catalog stored: %d products", len(products))
	return nil
}

func (p *pipeline) runPrices(ctx context.Context) error {
	p.logger.Info("=== Price pass starting ===")

	products, err := p.products.FetchProducts(ctx, p.maxProducts)
	if err != nil {
		return fmt.Errorf("price pass: %w", err)
	}
	if len(products) == 0 {
		return errors.New("price pass: catalog is empty, run the catalog crawl first")
	}

	summaries := p.prices.Scrape(ctx, products)

	reportSvc := services.NewReportService(p.logger)
	reportSvc.Print(p.report, reportSvc.Generate(distinctIDs(products), summaries))

	if len(summaries) == 0 {
		return errors.New("price pass: no product yielded a usable price")
	}

	var errs []error
	for _, w := range p.writers {
		if err := w.WriteSummaries(ctx, summaries); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("price pass: %w", errors.Join(errs...))
	}
	p.logger.Info("Summaries stored: %d products", len(summaries))

	if p.refresher != nil {
		if err := p.refresher.RefreshRegionView(ctx); err != nil {
			return fmt.Errorf("price pass: %w", err)
		}
		p.logger.Info("Region price table refreshed")
	}
	return nil
}

// distinctIDs counts the products the price pass actually attempts; the
// scraper skips repeated ids.
func distinctIDs(products []*models.Product) int {
	seen := utils.NewKeySet()
	for _, p := range products {
		seen.Add(p.ID)
	}
	return seen.Size()
}
