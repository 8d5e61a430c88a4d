// Package catalog walks the paginated product listing and harvests one
// RawProduct per product card.
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"mercadopublico-scraper/config"
	"mercadopublico-scraper/fetch"
	"mercadopublico-scraper/models"
	"mercadopublico-scraper/utils"
)

var (
	productIDRegexp = regexp.MustCompile(`ID\s+(\d+)`)
	digitsRegexp    = regexp.MustCompile(`(\d+)`)
)

// Scraper crawls the catalog listing pages.
type Scraper struct {
	cfg     *config.Config
	fetcher fetch.Fetcher
	logger  *utils.Logger
	limiter *rate.Limiter
}

// New creates a catalog Scraper.
func New(cfg *config.Config, fetcher fetch.Fetcher, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger,
		limiter: utils.NewLimiter(cfg.RateLimit),
	}
}

// PageURL builds the listing URL for a 1-based page number.
func PageURL(base string, page, size int) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("catalog: parse base url: %w", err)
	}
	q := u.Query()
	q.Set("p", strconv.Itoa(page))
	q.Set("product_list_limit", strconv.Itoa(size))
	q.Set("product_list_mode", "list")
	q.Set("product_list_order", "name")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Scrape reads the product total from the first page, then fetches every
// listing page with bounded concurrency. A page that fails is logged and
// contributes nothing; only failing to read the total is fatal.
func (s *Scraper) Scrape(ctx context.Context) ([]*models.RawProduct, error) {
	size := s.cfg.PageSize
	if size <= 0 {
		size = 25
	}

	firstURL, err := PageURL(s.cfg.CatalogBaseURL, 1, size)
	if err != nil {
		return nil, err
	}

	s.logger.Info("[catalog] Reading product total from %s", firstURL)
	firstHTML, err := s.fetcher.Fetch(ctx, firstURL)
	if err != nil {
		return nil, fmt.Errorf("catalog: first page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(firstHTML))
	if err != nil {
		return nil, fmt.Errorf("catalog: parse first page: %w", err)
	}
	total, ok := ParseTotal(doc)
	if !ok {
		return nil, fmt.Errorf("catalog: product total not found on %s", firstURL)
	}

	pages := (total + size - 1) / size
	if s.cfg.MaxPages > 0 && pages > s.cfg.MaxPages {
		pages = s.cfg.MaxPages
	}
	s.logger.Info("[catalog] %d products across %d pages (size %d)", total, pages, size)

	results := make([][]*models.RawProduct, pages+1)
	results[1] = ParseProducts(doc, 1, s.cfg.CatalogBaseURL)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.cfg.MaxConcurrency, 1))

	for page := 2; page <= pages; page++ {
		page := page
		g.Go(func() error {
			if err := s.limiter.Wait(gctx); err != nil {
				return err
			}
			results[page] = s.scrapePage(gctx, page, size)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	var all []*models.RawProduct
	for page, products := range results {
		if page == 0 {
			continue
		}
		all = append(all, products...)
	}

	s.logger.Info("[catalog] Scrape complete, %d raw products", len(all))
	return all, nil
}

func (s *Scraper) scrapePage(ctx context.Context, page, size int) []*models.RawProduct {
	pageURL, err := PageURL(s.cfg.CatalogBaseURL, page, size)
	if err != nil {
		s.logger.Error("[catalog] Page %d: %v", page, err)
		return nil
	}

	html, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		s.logger.Error("[catalog] Page %d failed: %v", page, err)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		s.logger.Error("[catalog] Page %d unparseable: %v", page, err)
		return nil
	}

	products := ParseProducts(doc, page, s.cfg.CatalogBaseURL)
	s.logger.Debug("[catalog] Page %d: %d products", page, len(products))
	return products
}

// ParseTotal reads the product total, which the toolbar renders as the
// second span.toolbar-number ("Items 1-25 of 1234"). A zero total is
// reported as missing.
func ParseTotal(doc *goquery.Document) (int, bool) {
	spans := doc.Find("span.toolbar-number")
	if spans.Length() < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(spans.Eq(1).Text()))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// ParseProducts extracts every product card on a listing page. Relative
// links are resolved against base.
func ParseProducts(doc *goquery.Document, page int, base string) []*models.RawProduct {
	baseURL, _ := url.Parse(base)
	now := time.Now()

	var products []*models.RawProduct
	doc.Find("li.item.product.product-item").Each(func(_ int, card *goquery.Selection) {
		link := card.Find("a.product-item-link").First()
		href, _ := link.Attr("href")

		p := &models.RawProduct{
			Name:      strings.TrimSpace(link.Text()),
			Link:      resolve(baseURL, strings.TrimSpace(href)),
			Page:      page,
			ScrapedAt: now,
		}

		if m := digitsRegexp.FindStringSubmatch(card.Find("div.sellers-count").First().Text()); m != nil {
			p.Providers = m[1]
		}
		if m := productIDRegexp.FindStringSubmatch(card.Find("div.product-id-top").First().Text()); m != nil {
			p.ID = m[1]
		}

		products = append(products, p)
	})
	return products
}

func resolve(base *url.URL, href string) string {
	if href == "" || base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil || ref.IsAbs() {
		return href
	}
	return base.ResolveReference(ref).String()
}
