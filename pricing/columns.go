package pricing

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var columnReplacer = strings.NewReplacer(" ", "_", "-", "_", ".", "")

// RegionColumn turns a region display name into an ASCII column name,
// e.g. "Región de Valparaíso" -> "Precio_Valparaiso".
func RegionColumn(region string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	cleaned, _, err := transform.String(t, region)
	if err != nil {
		cleaned = region
	}

	cleaned = strings.ReplaceAll(cleaned, "Region de ", "")
	cleaned = strings.ReplaceAll(cleaned, "Region del ", "")
	return "Precio_" + columnReplacer.Replace(cleaned)
}
