package pricing

// lookup descends through nested objects one key per level. A missing key or
// a level that is not an object at any depth makes the whole lookup absent.
func lookup(v any, keys ...string) (any, bool) {
	cur := v
	for _, k := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		next, ok := obj[k]
		if !ok || next == nil {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// offerPrice returns the positive special price for one provider, product
// and region, if the offer table has one.
func offerPrice(offers map[string]any, providerID, productID, regionID string) (int64, bool) {
	if offers == nil || productID == "" {
		return 0, false
	}
	raw, ok := lookup(offers, providerID, productID, regionID, "special_price")
	if !ok {
		return 0, false
	}
	price := NormalizePrice(raw)
	return price, price > 0
}
