package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercadopublico-scraper/extract"
	"mercadopublico-scraper/models"
)

const productPage = `<!doctype html>
<html><head><title>Arroz grado 1</title></head>
<body>
<div class="product-info-main" data-product="x"></div>
<script type="text/x-magento-init">
{"*": {"sellerPrices": {
	"productId": "4471",
	"region_names": {"13": "Región Metropolitana", "5": "Región de Valparaíso"},
	"jsonResult": {
		"13": {"201": {"price": "15,167.00"}, "202": {"price": "14,990.00"}},
		"5":  {"201": {"price": "16,000.00"}},
		"9":  {"203": {"price": "0"}}
	},
	"offerPrices": {"201": {"4471": {"5": {"special_price": "13,500.00"}}}}
}}}
</script>
</body></html>`

func TestExtractEndToEnd(t *testing.T) {
	res, err := Extract(productPage, "999")
	require.NoError(t, err)

	assert.Equal(t, "4471", res.InternalID)
	assert.Equal(t, RegionPrices{
		"Región Metropolitana": 14990,
		"Región de Valparaíso": 13500,
	}, res.Regions)
	assert.Equal(t, int64(13500), res.MinPrice)
	assert.Equal(t, "Región de Valparaíso", res.BestRegion)
}

func TestExtractFallsBackToKnownID(t *testing.T) {
	doc := `jsonResult = {"13": {"p": {"price": "900"}}};
		offerPrices = {"p": {"CAT-1": {"13": {"special_price": "450"}}}};`

	res, err := Extract(doc, "CAT-1")
	require.NoError(t, err)
	assert.Equal(t, "CAT-1", res.InternalID)
	assert.Equal(t, RegionPrices{"Region_ID_13": 450}, res.Regions)
}

func TestExtractMissingBaseTable(t *testing.T) {
	doc := `<html><script>region_names = {"13": "RM"}; offerPrices = {"p": {}};</script></html>`

	_, err := Extract(doc, "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoUsablePrice)
	assert.ErrorIs(t, err, extract.ErrNotFound)
}

func TestExtractMalformedBaseTable(t *testing.T) {
	_, err := Extract(`jsonResult = {13: {p: 1}}`, "1")
	assert.ErrorIs(t, err, ErrNoUsablePrice)
	assert.ErrorIs(t, err, extract.ErrMalformed)
}

func TestExtractAllZeroPrices(t *testing.T) {
	_, err := Extract(`jsonResult = {"13": {"p": {"price": "0"}}, "5": "n/a"}`, "1")
	assert.ErrorIs(t, err, ErrNoUsablePrice)
}

func TestExtractMalformedEnrichmentDegrades(t *testing.T) {
	doc := `region_names = {13: RM}; offerPrices = {'p': {'1': {'13': {'special_price': '5'}}}
		jsonResult = {"13": {"p": {"price": "900"}}}`

	res, err := Extract(doc, "1")
	require.NoError(t, err)
	assert.Equal(t, RegionPrices{"Region_ID_13": 900}, res.Regions)
}

func TestSummarize(t *testing.T) {
	p := &models.Product{ID: "999", Name: "Arroz grado 1", Providers: 3, Link: "https://example.test/arroz"}

	s, err := Summarize(productPage, p)
	require.NoError(t, err)

	assert.Equal(t, "999", s.ProductID)
	assert.Equal(t, "Arroz grado 1", s.Name)
	assert.Equal(t, 3, s.Providers)
	assert.Equal(t, p.Link, s.Link)
	assert.Equal(t, "4471", s.InternalID)
	assert.Equal(t, int64(13500), s.MinPrice)
	assert.Equal(t, "Región de Valparaíso", s.BestRegion)
	assert.Len(t, s.RegionPrices, 2)
	assert.False(t, s.CheckedAt.IsZero())
}
