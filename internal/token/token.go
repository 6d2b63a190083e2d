package token

// Token defines how many units of a wish currency a pull costs.
type Token struct {
	Name       string `json:"name" yaml:"name"`                                     // e.g. "Intertwined Fate", "Acquaint Fate"
	PerDraw    int    `json:"per_draw" yaml:"per_draw"`                             // units per single pull
	PerTenDraw int    `json:"per_ten_draw,omitempty" yaml:"per_ten_draw,omitempty"` // 0 => 10 * PerDraw
}

// Exchange rate between the premium currency and one fate.
const PrimogemsPerFate = 160

var (
	IntertwinedFate = Token{Name: "Intertwined Fate", PerDraw: 1}
	AcquaintFate    = Token{Name: "Acquaint Fate", PerDraw: 1}
)

// ForSingles is the cost of n single pulls.
func (t Token) ForSingles(n int) int {
	if n <= 0 {
		return 0
	}
	return n * t.PerDraw
}

// ForBatches is the cost of n ten-pulls.
func (t Token) ForBatches(n int) int {
	if n <= 0 {
		return 0
	}
	if t.PerTenDraw > 0 {
		return n * t.PerTenDraw
	}
	return n * 10 * t.PerDraw
}

// TokensForDraws returns the cheapest cost of n pulls, taking as many
// ten-pulls as fit.
func (t Token) TokensForDraws(n int) int {
	if n <= 0 {
		return 0
	}
	return t.ForBatches(n/10) + t.ForSingles(n%10)
}

// Primogems converts a fate count to premium currency.
func Primogems(fates int) int { return fates * PrimogemsPerFate }
