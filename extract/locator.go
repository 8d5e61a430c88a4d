package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxScanWindow bounds how far past the opening brace Locate will scan
// looking for the matching close.
const MaxScanWindow = 500000

var productIDRegexp = regexp.MustCompile(`"` + regexp.QuoteMeta(ProductID.Tokens()[0]) + `"\s*:\s*"(\d+)"`)

// Locate returns the balanced {...} span that follows the first occurrence of
// token in doc. When the bare token is absent it retries with the token quoted
// as a JSON key.
//
// Braces are counted byte by byte with no awareness of string literals, so a
// '}' inside a quoted value closes the object early. Page payloads have been
// keyed on these historical boundaries, so the behaviour is kept as is.
func Locate(doc, token string) (string, error) {
	idx := strings.Index(doc, token)
	if idx == -1 {
		idx = strings.Index(doc, `"`+token+`"`)
	}
	if idx == -1 {
		return "", fmt.Errorf("%w: key %q absent", ErrNotFound, token)
	}

	rel := strings.IndexByte(doc[idx:], '{')
	if rel == -1 {
		return "", fmt.Errorf("%w: no object after key %q", ErrNotFound, token)
	}
	open := idx + rel

	limit := open + MaxScanWindow
	if limit > len(doc) {
		limit = len(doc)
	}

	depth := 0
	for i := open; i < limit; i++ {
		switch doc[i] {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth == 0 {
			return doc[open : i+1], nil
		}
	}

	return "", fmt.Errorf("%w: object after key %q not closed within %d bytes",
		ErrNotFound, token, MaxScanWindow)
}

// Object locates and decodes the inline object for key. Each of the key's
// tokens is tried in order and the first one that yields a non-empty object
// wins. The returned error wraps ErrNotFound or ErrMalformed.
func Object(doc string, key Key) (map[string]any, error) {
	lastErr := fmt.Errorf("%w: no tokens for %s", ErrNotFound, key)

	for _, token := range key.Tokens() {
		span, err := Locate(doc, token)
		if err != nil {
			lastErr = err
			continue
		}

		v, err := Decode(span)
		if err != nil {
			lastErr = fmt.Errorf("key %q: %w", token, err)
			continue
		}

		obj, ok := v.(map[string]any)
		if !ok {
			lastErr = fmt.Errorf("%w: key %q is not an object", ErrMalformed, token)
			continue
		}
		if len(obj) == 0 {
			lastErr = fmt.Errorf("%w: key %q holds an empty object", ErrNotFound, token)
			continue
		}
		return obj, nil
	}

	return nil, lastErr
}

// FindProductID returns the page's internal product id, the value of the first
// quoted-digit "productId" field.
func FindProductID(doc string) (string, bool) {
	m := productIDRegexp.FindStringSubmatch(doc)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}
