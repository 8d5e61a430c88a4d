package prices

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercadopublico-scraper/config"
	"mercadopublico-scraper/models"
	"mercadopublico-scraper/utils"
)

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls map[string]int
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[url]++
	if url == "https://shop.test/panic" {
		panic("boom")
	}
	if html, ok := f.pages[url]; ok {
		return html, nil
	}
	return "", errors.New("http 404")
}

const (
	pricedPage = `<script>
		var spConfig = {"productId": "501",
			"region_names": {"13": "Región Metropolitana"},
			"jsonResult": {"13": {"7": {"price": "1,000"}, "8": {"price": "950"}}},
			"offerPrices": {"7": {"501": {"13": {"special_price": "800"}}}}};
	</script>`
	zeroPage    = `<script>jsonResult = {"13": {"7": {"price": "0"}}}</script>`
	noTablePage = `<html><body>Producto no disponible</body></html>`
)

func testScraper(f *fakeFetcher) *Scraper {
	cfg := &config.Config{MaxConcurrency: 3}
	return New(cfg, f, utils.NewTestLogger(io.Discard))
}

func TestScrapeCollectsPricedProducts(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://shop.test/b": pricedPage,
		"https://shop.test/a": pricedPage,
		"https://shop.test/z": zeroPage,
		"https://shop.test/n": noTablePage,
	}}

	products := []*models.Product{
		{ID: "B", Name: "Arroz", Providers: 2, Link: "https://shop.test/b"},
		{ID: "A", Name: "Aceite", Providers: 1, Link: "https://shop.test/a"},
		{ID: "Z", Name: "Sin precio", Link: "https://shop.test/z"},
		{ID: "N", Name: "Sin tabla", Link: "https://shop.test/n"},
		{ID: "X", Name: "Caído", Link: "https://shop.test/missing"},
	}

	summaries := testScraper(f).Scrape(context.Background(), products)
	require.Len(t, summaries, 2)

	assert.Equal(t, "A", summaries[0].ProductID)
	assert.Equal(t, "B", summaries[1].ProductID)
	assert.Equal(t, int64(800), summaries[1].MinPrice)
	assert.Equal(t, "Región Metropolitana", summaries[1].BestRegion)
	assert.Equal(t, "501", summaries[1].InternalID)
	assert.Equal(t, 2, summaries[1].Providers)
}

func TestScrapeSkipsDuplicateIDs(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{"https://shop.test/a": pricedPage}}
	products := []*models.Product{
		{ID: "A", Link: "https://shop.test/a"},
		{ID: "A", Link: "https://shop.test/a"},
	}

	summaries := testScraper(f).Scrape(context.Background(), products)
	assert.Len(t, summaries, 1)
	assert.Equal(t, 1, f.calls["https://shop.test/a"])
}

func TestScrapeIsolatesPanics(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{"https://shop.test/a": pricedPage}}
	products := []*models.Product{
		{ID: "P", Link: "https://shop.test/panic"},
		{ID: "A", Link: "https://shop.test/a"},
	}

	summaries := testScraper(f).Scrape(context.Background(), products)
	require.Len(t, summaries, 1)
	assert.Equal(t, "A", summaries[0].ProductID)
}

func TestScrapeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &fakeFetcher{pages: map[string]string{"https://shop.test/a": pricedPage}}
	summaries := testScraper(f).Scrape(ctx, []*models.Product{{ID: "A", Link: "https://shop.test/a"}})
	assert.Empty(t, summaries)
}
