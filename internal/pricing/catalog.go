package pricing

import "math"

// Pack models a purchasable SKU in the store.
type Pack struct {
	ID          string `yaml:"id"`            // SKU id, e.g., "6480"
	Name        string `yaml:"name"`          // display name, e.g., "6480 Genesis Crystals"
	Tokens      int    `yaml:"tokens"`        // base crystals granted
	BonusTokens int    `yaml:"bonus_tokens"`  // extra crystals on repeat purchases
	FirstTimeX2 bool   `yaml:"first_time_x2"` // first purchase grants 2x Tokens instead of the bonus
	PriceCents  int    `yaml:"price_cents"`
}

// Catalog is a regional store and its tax rate.
type Catalog struct {
	TokenName string `yaml:"token_name"` // e.g., "Genesis Crystal"
	Currency  string `yaml:"currency"`   // ISO code, e.g., "USD"
	// If prices are pre-tax, TaxRate is applied on subtotal to compute total.
	// For tax-inclusive prices set TaxRate=0.
	TaxRate float64 `yaml:"tax_rate"`
	Packs   []Pack  `yaml:"packs"`
}

// FirstTimeState describes per-pack first-time eligibility.
type FirstTimeState map[string]bool // packID -> true if first-time x2 is still available

// AllFirstTime marks every x2 pack of cat as still available.
func AllFirstTime(cat Catalog) FirstTimeState {
	out := FirstTimeState{}
	for _, p := range cat.Packs {
		if p.FirstTimeX2 {
			out[p.ID] = true
		}
	}
	return out
}

// DefaultStore is the Genesis Crystal price list in USD. Genesis Crystals
// convert 1:1 into the premium currency used to buy fates.
func DefaultStore() Catalog {
	return Catalog{
		TokenName: "Genesis Crystal",
		Currency:  "USD",
		Packs: []Pack{
			{ID: "60", Name: "60 Genesis Crystals", Tokens: 60, FirstTimeX2: true, PriceCents: 99},
			{ID: "300", Name: "300 Genesis Crystals", Tokens: 300, BonusTokens: 30, FirstTimeX2: true, PriceCents: 499},
			{ID: "980", Name: "980 Genesis Crystals", Tokens: 980, BonusTokens: 110, FirstTimeX2: true, PriceCents: 1499},
			{ID: "1980", Name: "1980 Genesis Crystals", Tokens: 1980, BonusTokens: 260, FirstTimeX2: true, PriceCents: 2999},
			{ID: "3280", Name: "3280 Genesis Crystals", Tokens: 3280, BonusTokens: 600, FirstTimeX2: true, PriceCents: 4999},
			{ID: "6480", Name: "6480 Genesis Crystals", Tokens: 6480, BonusTokens: 1600, FirstTimeX2: true, PriceCents: 9999},
		},
	}
}

// Plan summarizes a purchase plan.
type Plan struct {
	Purchases   []Purchase `json:"purchases"`
	SubCents    int        `json:"sub_cents"` // subtotal before tax
	TaxCents    int        `json:"tax_cents"`
	TotalCents  int        `json:"total_cents"`
	TotalTokens int        `json:"total_tokens"`
	Wishes      int        `json:"wishes"` // fates the tokens convert to
	Currency    string     `json:"currency"`
}

// Purchase is one line item in the plan.
type Purchase struct {
	PackID     string `json:"pack_id"`
	Name       string `json:"name"`
	Qty        int    `json:"qty"`
	UnitPrice  int    `json:"unit_price"`  // cents
	UnitTokens int    `json:"unit_tokens"` // tokens per unit in this plan (x2/bonus applied)
	Subtotal   int    `json:"subtotal"`    // cents
}

// applyTax computes tax and total given a subtotal and a tax rate.
func applyTax(sub int, taxRate float64) (tax int, total int) {
	if taxRate <= 0 {
		return 0, sub
	}
	t := int(math.Round(float64(sub) * taxRate))
	return t, sub + t
}
