package usecase

import (
	"strconv"
	"strings"

	"github.com/comparaprecos/backend/internal/domain"
)

// minIdentifierLength is the shortest barcode accepted as a real GTIN/EAN.
// Anything shorter is almost certainly a store-internal code and would
// produce false-positive collisions across retailers.
const minIdentifierLength = 8

// ExtractPrice derives the effective price of a raw record. Rules are tried
// in priority order, promotional before baseline, numeric before localized
// string. The order is a contract (see extract_test.go), not an accident:
//
//  1. pricing.promotionalPrice
//  2. pricing.price
//  3. promotionalPrice as number
//  4. price as number
//  5. special as localized string
//  6. price as localized string
//  7. promotionalPrice as localized string
//
// Returns false when no rule yields a positive price; such a record flows
// onward and can only end up unmatched or excluded from a group.
func ExtractPrice(p domain.StoreProduct) (float64, bool) {
	if p.Pricing != nil {
		if p.Pricing.PromotionalPrice > 0 {
			return p.Pricing.PromotionalPrice, true
		}
		if p.Pricing.Price > 0 {
			return p.Pricing.Price, true
		}
	}
	if p.PromotionalPrice.Number != nil && *p.PromotionalPrice.Number > 0 {
		return *p.PromotionalPrice.Number, true
	}
	if p.Price.Number != nil && *p.Price.Number > 0 {
		return *p.Price.Number, true
	}
	if v, ok := ParseLocalizedPrice(p.Special); ok {
		return v, true
	}
	if v, ok := ParseLocalizedPrice(p.Price.Text); ok {
		return v, true
	}
	if v, ok := ParseLocalizedPrice(p.PromotionalPrice.Text); ok {
		return v, true
	}
	return 0, false
}

// ParseLocalizedPrice parses a Brazilian-format currency string:
// "R$ 1.234,56" -> 1234.56. A bare numeric string ("19.9") parses as-is.
// Returns false for empty, unparsable, or non-positive values.
func ParseLocalizedPrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.TrimSpace(strings.TrimPrefix(s, "R$"))
	if strings.Contains(s, ",") {
		// Decimal comma format: dots are thousands separators.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// ExtractIdentifier returns the record's barcode-like identifier, trying the
// possible field names in priority order: gtin, ean, barcode, codigo. The
// first field that normalizes to a valid code wins. Returns "" when the
// record carries no usable identifier.
func ExtractIdentifier(p domain.StoreProduct) string {
	for _, raw := range []string{p.Gtin, p.Ean, p.Barcode, p.Codigo} {
		if id := normalizeIdentifier(raw); id != "" {
			return id
		}
	}
	return ""
}

// normalizeIdentifier trims the raw value and rejects degenerate codes:
// empty, the literal "0" placeholder, or shorter than minIdentifierLength.
func normalizeIdentifier(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" || id == "0" || len(id) < minIdentifierLength {
		return ""
	}
	return id
}
