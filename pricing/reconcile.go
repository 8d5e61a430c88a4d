package pricing

import "sort"

// RegionPrices maps a region display name to the cheapest price found for a
// product in that region. Every value is positive.
type RegionPrices map[string]int64

// Tables are the decoded inline objects of one product page.
type Tables struct {
	// Base is region id -> provider id -> {"price": ...}.
	Base map[string]any
	// Offers is provider id -> product id -> region id -> {"special_price": ...}.
	Offers map[string]any
	// ProductID is the middle key into Offers.
	ProductID string
	// RegionNames is region id -> display name.
	RegionNames map[string]any
}

// RegionName resolves a region id to its display name, or the placeholder
// "Region_ID_<id>" when the map has no usable entry.
func RegionName(names map[string]any, regionID string) string {
	if name, ok := names[regionID].(string); ok && name != "" {
		return name
	}
	return "Region_ID_" + regionID
}

// Reconcile computes the minimum price per region. A positive special price
// from the offer table replaces the provider's base price; regions without
// any positive price are left out.
func Reconcile(t Tables) RegionPrices {
	result := make(RegionPrices)

	for regionID, rawProviders := range t.Base {
		providers, ok := rawProviders.(map[string]any)
		if !ok {
			continue
		}

		var best int64
		for providerID, rawData := range providers {
			data, ok := rawData.(map[string]any)
			if !ok {
				continue
			}

			price := NormalizePrice(data["price"])
			if special, ok := offerPrice(t.Offers, providerID, t.ProductID, regionID); ok {
				price = special
			}
			if price > 0 && (best == 0 || price < best) {
				best = price
			}
		}
		if best == 0 {
			continue
		}

		// Two region ids may share a display name; keep the cheaper one so
		// the result does not depend on map order.
		name := RegionName(t.RegionNames, regionID)
		if prev, ok := result[name]; !ok || best < prev {
			result[name] = best
		}
	}

	return result
}

// Min returns the global minimum and the region achieving it. Among several
// regions at the minimum the lexicographically first name is chosen.
func (rp RegionPrices) Min() (region string, price int64, ok bool) {
	names := make([]string, 0, len(rp))
	for name := range rp {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if p := rp[name]; !ok || p < price {
			region, price, ok = name, p, true
		}
	}
	return region, price, ok
}
