package usecase

import (
	"testing"

	"github.com/comparaprecos/backend/internal/domain"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestExtractPrice(t *testing.T) {
	t.Run("nested pricing promotional price wins over everything", func(t *testing.T) {
		p := domain.StoreProduct{
			Pricing:          &domain.Pricing{Price: 10.0, PromotionalPrice: 7.5},
			Price:            domain.FlexPrice{Number: floatPtr(12.0)},
			PromotionalPrice: domain.FlexPrice{Number: floatPtr(11.0)},
		}
		price, ok := ExtractPrice(p)
		if !ok || price != 7.5 {
			t.Errorf("price = %v, %v; want 7.5, true", price, ok)
		}
	})

	t.Run("nested pricing price used when promotional is zero", func(t *testing.T) {
		p := domain.StoreProduct{
			Pricing: &domain.Pricing{Price: 10.0},
			Price:   domain.FlexPrice{Number: floatPtr(12.0)},
		}
		price, ok := ExtractPrice(p)
		if !ok || price != 10.0 {
			t.Errorf("price = %v, %v; want 10.0, true", price, ok)
		}
	})

	t.Run("numeric promotional price beats numeric price", func(t *testing.T) {
		p := domain.StoreProduct{
			Price:            domain.FlexPrice{Number: floatPtr(12.0)},
			PromotionalPrice: domain.FlexPrice{Number: floatPtr(9.99)},
		}
		price, ok := ExtractPrice(p)
		if !ok || price != 9.99 {
			t.Errorf("price = %v, %v; want 9.99, true", price, ok)
		}
	})

	t.Run("special string beats price string", func(t *testing.T) {
		p := domain.StoreProduct{
			Price:   domain.FlexPrice{Text: "R$ 24,90"},
			Special: "R$ 19,90",
		}
		price, ok := ExtractPrice(p)
		if !ok || price != 19.90 {
			t.Errorf("price = %v, %v; want 19.90, true", price, ok)
		}
	})

	t.Run("localized price string parsed when no numeric form", func(t *testing.T) {
		p := domain.StoreProduct{Price: domain.FlexPrice{Text: "R$ 12,34"}}
		price, ok := ExtractPrice(p)
		if !ok || price != 12.34 {
			t.Errorf("price = %v, %v; want 12.34, true", price, ok)
		}
	})

	t.Run("zero numeric price falls through to string forms", func(t *testing.T) {
		p := domain.StoreProduct{
			Price:            domain.FlexPrice{Number: floatPtr(0)},
			PromotionalPrice: domain.FlexPrice{Text: "R$ 5,00"},
		}
		price, ok := ExtractPrice(p)
		if !ok || price != 5.0 {
			t.Errorf("price = %v, %v; want 5.0, true", price, ok)
		}
	})

	t.Run("returns false when no rule yields a positive price", func(t *testing.T) {
		p := domain.StoreProduct{Name: "Produto sem preco"}
		if _, ok := ExtractPrice(p); ok {
			t.Error("expected no extractable price")
		}
	})
}

func TestParseLocalizedPrice(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"R$ 12,34", 12.34, true},
		{"R$ 1.234,56", 1234.56, true},
		{"R$12,34", 12.34, true},
		{"  R$ 7,99  ", 7.99, true},
		{"19.9", 19.9, true},
		{"19,9", 19.9, true},
		{"1234", 1234, true},
		{"", 0, false},
		{"R$", 0, false},
		{"abc", 0, false},
		{"0", 0, false},
		{"-5,00", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseLocalizedPrice(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseLocalizedPrice(%q) = %v, %v; want %v, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestExtractIdentifier(t *testing.T) {
	t.Run("gtin wins when valid", func(t *testing.T) {
		p := domain.StoreProduct{Gtin: "7891234567895", Ean: "7899999999999"}
		if id := ExtractIdentifier(p); id != "7891234567895" {
			t.Errorf("identifier = %q, want gtin", id)
		}
	})

	t.Run("falls through to ean when gtin is degenerate", func(t *testing.T) {
		p := domain.StoreProduct{Gtin: "0", Ean: "7899999999999"}
		if id := ExtractIdentifier(p); id != "7899999999999" {
			t.Errorf("identifier = %q, want ean", id)
		}
	})

	t.Run("barcode and codigo are tried in order", func(t *testing.T) {
		p := domain.StoreProduct{Barcode: "12345", Codigo: "78912345"}
		if id := ExtractIdentifier(p); id != "78912345" {
			t.Errorf("identifier = %q, want codigo (barcode too short)", id)
		}
	})

	t.Run("trims whitespace", func(t *testing.T) {
		p := domain.StoreProduct{Gtin: "  7891234567895  "}
		if id := ExtractIdentifier(p); id != "7891234567895" {
			t.Errorf("identifier = %q, want trimmed gtin", id)
		}
	})

	t.Run("rejects short codes", func(t *testing.T) {
		p := domain.StoreProduct{Gtin: "1234567"}
		if id := ExtractIdentifier(p); id != "" {
			t.Errorf("identifier = %q, want empty for 7-char code", id)
		}
	})

	t.Run("returns empty when nothing usable", func(t *testing.T) {
		p := domain.StoreProduct{Gtin: "", Ean: "0", Barcode: "  "}
		if id := ExtractIdentifier(p); id != "" {
			t.Errorf("identifier = %q, want empty", id)
		}
	})
}
