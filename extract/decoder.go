package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Repair rewrites an object span before a strict JSON parse.
type Repair struct {
	Name  string
	Apply func(span string) string
}

// Repairs are tried in order; the first one that parses wins. Each is applied
// to the original span, not to the output of the previous one.
var Repairs = []Repair{
	{Name: "strip-newlines-unescape-quotes", Apply: StripNewlinesUnescapeQuotes},
	{Name: "single-to-double-quotes", Apply: SingleToDoubleQuotes},
}

// StripNewlinesUnescapeQuotes drops raw CR/LF characters and turns \" into ".
func StripNewlinesUnescapeQuotes(span string) string {
	span = strings.ReplaceAll(span, "\n", "")
	span = strings.ReplaceAll(span, "\r", "")
	return strings.ReplaceAll(span, `\"`, `"`)
}

// SingleToDoubleQuotes replaces every single quote with a double quote.
func SingleToDoubleQuotes(span string) string {
	return strings.ReplaceAll(span, "'", `"`)
}

// Decode parses span into nested map[string]any / []any / scalar values.
// Numbers are kept as json.Number so large prices survive exactly.
func Decode(span string) (any, error) {
	var lastErr error
	for _, r := range Repairs {
		v, err := decodeStrict(r.Apply(span))
		if err == nil {
			return v, nil
		}
		lastErr = fmt.Errorf("%s: %v", r.Name, err)
	}
	return nil, fmt.Errorf("%w: %v", ErrMalformed, lastErr)
}

func decodeStrict(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	// Trailing garbage is a parse failure, same as a strict loads.
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing data after object")
	}
	return v, nil
}
