package pricing

import (
	"errors"
	"fmt"
	"time"

	"mercadopublico-scraper/extract"
	"mercadopublico-scraper/models"
)

// ErrNoUsablePrice means the page produced no positive price in any region:
// the base table is missing, malformed or holds only zero prices. The product
// is skipped for the pass.
var ErrNoUsablePrice = errors.New("pricing: no usable price")

// Result is the reconciled pricing of one product page.
type Result struct {
	InternalID string
	Regions    RegionPrices
	MinPrice   int64
	BestRegion string
}

// Extract locates the inline tables in doc and reconciles them. knownID is
// the catalog id of the product; it stands in for the page's internal
// productId when the page does not declare one.
//
// Only a missing base table is terminal. Missing or malformed region names
// and offers degrade to placeholders and base prices.
func Extract(doc, knownID string) (*Result, error) {
	base, err := extract.Object(doc, extract.BasePrices)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoUsablePrice, err)
	}

	// Both are optional enrichment; on failure Object returns a nil map.
	names, _ := extract.Object(doc, extract.RegionNames)
	offers, _ := extract.Object(doc, extract.OfferPrices)

	internalID, ok := extract.FindProductID(doc)
	if !ok {
		internalID = knownID
	}

	regions := Reconcile(Tables{
		Base:        base,
		Offers:      offers,
		ProductID:   internalID,
		RegionNames: names,
	})

	region, price, ok := regions.Min()
	if !ok {
		return nil, fmt.Errorf("%w: %d regions in base table, none priced", ErrNoUsablePrice, len(base))
	}

	return &Result{
		InternalID: internalID,
		Regions:    regions,
		MinPrice:   price,
		BestRegion: region,
	}, nil
}

// Summarize runs Extract for a catalog product and folds the result into the
// summary that gets persisted.
func Summarize(doc string, p *models.Product) (*models.PriceSummary, error) {
	res, err := Extract(doc, p.ID)
	if err != nil {
		return nil, err
	}

	return &models.PriceSummary{
		ProductID:    p.ID,
		Name:         p.Name,
		Providers:    p.Providers,
		Link:         p.Link,
		InternalID:   res.InternalID,
		MinPrice:     res.MinPrice,
		BestRegion:   res.BestRegion,
		RegionPrices: res.Regions,
		CheckedAt:    time.Now(),
	}, nil
}
