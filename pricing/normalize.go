// Package pricing turns the inline price tables of a product page into a
// minimum price per region.
package pricing

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// NormalizePrice converts a raw price of unknown shape into a whole currency
// amount, truncating any fraction. Anything missing, empty, negative or
// unparseable yields 0, which callers treat as "no usable price".
//
//	"15,167.00" -> 15167
//	"$2.500"    -> 2
//	"abc"       -> 0
func NormalizePrice(v any) int64 {
	switch t := v.(type) {
	case nil:
		return 0
	case string:
		return parseAmount(cleanPriceString(t))
	case json.Number:
		return parseAmount(string(t))
	case float64:
		return toAmount(t)
	case float32:
		return toAmount(float64(t))
	case int:
		return toAmount(float64(t))
	case int64:
		return toAmount(float64(t))
	}
	return 0
}

// cleanPriceString drops thousands separators and currency symbols, then
// trims surrounding whitespace.
func cleanPriceString(s string) string {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Sc, r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

func parseAmount(s string) int64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return toAmount(f)
}

func toAmount(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 || f >= math.MaxInt64 {
		return 0
	}
	return int64(math.Trunc(f))
}
