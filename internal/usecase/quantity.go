package usecase

import (
	"regexp"
	"strconv"
	"strings"
)

// Unit families after normalization.
const (
	UnitMilliliter = "ml"
	UnitGram       = "g"
	UnitCount      = "un"
)

// defaultQuantityTolerance is the allowed relative difference between two
// package sizes for them to still count as the same product.
const defaultQuantityTolerance = 0.12

// quantityPattern matches a package-size expression inside a product name:
// a decimal-comma-tolerant number followed by a volume, mass, or count unit.
// Longer unit spellings come first so "2lt" never half-matches as "l".
var quantityPattern = regexp.MustCompile(
	`(?i)(\d+(?:[.,]\d+)?)\s*(ml|litros?|lt|l|kg|gramas?|gr|g|unidades?|unid|und|un)\b`,
)

// Quantity is a package size parsed from a product name, normalized so that
// differing spellings of the same magnitude compare equal (all volumes in
// milliliters, all masses in grams).
type Quantity struct {
	Value float64
	Unit  string
}

// ExtractQuantity scans a product name for the first quantity expression.
// Returns nil when the name carries no size information, which downstream
// means "unconstrained" (see QuantitiesCompatible).
func ExtractQuantity(name string) *Quantity {
	m := quantityPattern.FindStringSubmatch(name)
	if m == nil {
		return nil
	}

	num := strings.Replace(m[1], ",", ".", 1)
	value, err := strconv.ParseFloat(num, 64)
	if err != nil || value <= 0 {
		return nil
	}

	switch strings.ToLower(m[2]) {
	case "ml":
		return &Quantity{Value: value, Unit: UnitMilliliter}
	case "l", "lt", "litro", "litros":
		return &Quantity{Value: value * 1000, Unit: UnitMilliliter}
	case "g", "gr", "grama", "gramas":
		return &Quantity{Value: value, Unit: UnitGram}
	case "kg":
		return &Quantity{Value: value * 1000, Unit: UnitGram}
	case "un", "und", "unid", "unidade", "unidades":
		return &Quantity{Value: value, Unit: UnitCount}
	}
	return nil
}

// QuantitiesCompatible is the hard gate applied before any text-similarity
// scoring. Two absent quantities are compatible; one absent and one present
// are not (a generic listing must never absorb a sized one); two present
// quantities are compatible only when same unit family and within tolerance
// of the larger value. The rule is deliberately asymmetric: it exists to
// keep "Refrigerante 350ml" away from "Refrigerante 2L".
func QuantitiesCompatible(a, b *Quantity, tolerance float64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Unit != b.Unit {
		return false
	}
	if tolerance <= 0 {
		tolerance = defaultQuantityTolerance
	}
	larger := a.Value
	if b.Value > larger {
		larger = b.Value
	}
	diff := a.Value - b.Value
	if diff < 0 {
		diff = -diff
	}
	return diff <= larger*tolerance
}
