// Package normalize holds the pure text-to-value conversions shared by all
// sources: price parsing, ISBN validation and cleanup, punctuation stripping.
// Every function is total — malformed input degrades to a zero value, it
// never panics or returns an error the caller must branch on.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var priceRe = regexp.MustCompile(`\d+[,.]?\d*`)

// PriceFromText returns the first decimal run in the text, comma or dot
// separated. The second value is false when no digits are present.
func PriceFromText(text string) (string, bool) {
	m := priceRe.FindString(text)
	return m, m != ""
}

// PriceToFloat parses a price string, accepting a comma as decimal separator.
func PriceToFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}

// ExtractPrice combines PriceFromText and PriceToFloat. Returns nil when the
// text holds no parsable price.
func ExtractPrice(text string) *float64 {
	raw, ok := PriceFromText(text)
	if !ok {
		return nil
	}
	f, err := PriceToFloat(raw)
	if err != nil {
		return nil
	}
	return &f
}

// FormatPrice renders a numeric price with its currency symbol:
// "16.50 €" by default, "CHF 16.50" for Swiss francs (case-insensitive
// match). A nil price renders as the empty string.
func FormatPrice(price *float64, currency string) string {
	if price == nil {
		return ""
	}
	if strings.EqualFold(currency, "chf") {
		return fmt.Sprintf("CHF %.2f", *price)
	}
	return fmt.Sprintf("%.2f €", *price)
}

// FormatPriceRaw is FormatPrice for prices kept as raw strings: the value
// passes through without re-rounding, only the currency is attached.
func FormatPriceRaw(price string, currency string) string {
	if price == "" {
		return ""
	}
	if strings.EqualFold(currency, "chf") {
		return "CHF " + price
	}
	return price + " €"
}

// IsISBN reports whether the token is an EAN/ISBN: decimal digits only, with
// a length of exactly 10 or 13.
func IsISBN(token string) bool {
	if len(token) != 10 && len(token) != 13 {
		return false
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// CleanISBN removes ASCII punctuation (most of all the dash) from an ISBN,
// leaving the digits-only form a barcode scanner produces.
func CleanISBN(isbn string) string {
	return StripPunctuation(isbn)
}

// StripPunctuation removes ASCII punctuation characters from the string.
// Fancy unicode punctuation («, ») is left alone, matching what search
// engines tolerate in a query.
func StripPunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsPunct(r) || unicode.IsSymbol(r)) && r != ' ' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Capitalize upper-cases the first letter and lower-cases the rest, the way
// the French sources expect titles and publisher names to be displayed.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// Availability codes used by the Dilicom catalog.
const (
	AvailabilityUnknown      = 0
	AvailabilityAvailable    = 1
	AvailabilityDiscontinued = 6
)

var availabilityLabels = map[int]string{
	AvailabilityAvailable:    "Disponible",
	AvailabilityDiscontinued: "Arrêt de commercialisation",
	AvailabilityUnknown:      "disponibilité inconnue",
}

// AvailabilityLabel maps a Dilicom availability code to its display label.
// Unknown codes map to the "unknown" label.
func AvailabilityLabel(code int) string {
	if label, ok := availabilityLabels[code]; ok {
		return label
	}
	return availabilityLabels[AvailabilityUnknown]
}
