package domain

import (
	"bytes"
	"encoding/json"
)

// Store labels. The comparison always runs over exactly these three sources.
const (
	StoreItalo  = "italo"
	StoreMarcon = "marcon"
	StoreAlfa   = "alfa"
)

// StoreOrder is the canonical iteration order used whenever stage output
// must be deterministic (representative-name selection, tie-breaks).
var StoreOrder = []string{StoreItalo, StoreMarcon, StoreAlfa}

// FlexPrice holds a price field that arrives either as a JSON number or as a
// localized currency string ("R$ 12,34"). Both forms are preserved as-is;
// parsing to an effective price happens in the extraction stage.
type FlexPrice struct {
	Number *float64
	Text   string
}

// UnmarshalJSON accepts a number, a string, or null.
func (p *FlexPrice) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &p.Text)
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	p.Number = &n
	return nil
}

// MarshalJSON round-trips whichever form was received.
func (p FlexPrice) MarshalJSON() ([]byte, error) {
	if p.Number != nil {
		return json.Marshal(*p.Number)
	}
	if p.Text != "" {
		return json.Marshal(p.Text)
	}
	return []byte("null"), nil
}

// IsZero reports whether no price representation is present.
func (p FlexPrice) IsZero() bool {
	return p.Number == nil && p.Text == ""
}

// Pricing is the nested pricing sub-object some storefront APIs return.
type Pricing struct {
	Price            float64 `json:"price,omitempty"`
	PromotionalPrice float64 `json:"promotionalPrice,omitempty"`
}

// StoreProduct is one raw scraped product record. Field names mirror what the
// retailer scrapers actually emit: the identifier may arrive under any of
// gtin/ean/barcode/codigo and the price under several representations.
// Records are created once per scrape and never mutated by the pipeline.
type StoreProduct struct {
	ID               string    `json:"id,omitempty"`
	Name             string    `json:"name"`
	Brand            string    `json:"brand,omitempty"`
	Gtin             string    `json:"gtin,omitempty"`
	Ean              string    `json:"ean,omitempty"`
	Barcode          string    `json:"barcode,omitempty"`
	Codigo           string    `json:"codigo,omitempty"`
	Price            FlexPrice `json:"price,omitempty"`
	PromotionalPrice FlexPrice `json:"promotionalPrice,omitempty"`
	Special          string    `json:"special,omitempty"`
	Pricing          *Pricing  `json:"pricing,omitempty"`
	Discount         int       `json:"discount,omitempty"`
	InPromotion      bool      `json:"inPromotion,omitempty"`
	SalesUnit        string    `json:"salesUnit,omitempty"`
	Image            string    `json:"image,omitempty"`
	Store            string    `json:"store,omitempty"`
}
