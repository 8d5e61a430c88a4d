// Package extract locates and decodes JSON objects that product pages embed
// inline in their script blocks.
package extract

import "errors"

var (
	// ErrNotFound is returned when a key is absent from the page, no object
	// follows it, or the object does not close inside the scan window.
	ErrNotFound = errors.New("extract: embedded object not found")

	// ErrMalformed is returned when every repair strategy failed to produce
	// valid JSON from a located object.
	ErrMalformed = errors.New("extract: embedded object malformed")
)

// Key identifies one kind of inline value looked up in a product page.
type Key int

const (
	RegionNames Key = iota
	BasePrices
	OfferPrices
	ProductID
)

// Tokens returns the literal tokens searched for the key, in priority order.
// Later tokens are only consulted when earlier ones yield nothing usable.
func (k Key) Tokens() []string {
	switch k {
	case RegionNames:
		return []string{"region_names", "regionMapping"}
	case BasePrices:
		return []string{"jsonResult"}
	case OfferPrices:
		return []string{"offerPrices"}
	case ProductID:
		return []string{"productId"}
	}
	return nil
}

func (k Key) String() string {
	switch k {
	case RegionNames:
		return "region-names"
	case BasePrices:
		return "base-prices"
	case OfferPrices:
		return "offer-prices"
	case ProductID:
		return "product-id"
	}
	return "unknown"
}
