package banner

import (
	"fmt"

	"github.com/xtding233/gacha-wish/internal/gacha"
	"github.com/xtding233/gacha-wish/internal/token"
)

// Pull counts shared by every preset.
const (
	BatchSize      = 10
	FourStarPity   = 10
	BeginnerBudget = 20
)

// Preset returns the mechanics of a banner kind without items. Catalogs
// fill in Items and may override any field.
func Preset(kind Kind) (Config, error) {
	switch kind {
	case Beginner:
		return Config{
			Kind: Beginner,
			Name: "Beginners' Wish",
			Rates: gacha.Rates{
				Base5: 0.006,
				Base4: 0.051,
				Pity4: FourStarPity,
				Soft4: &gacha.SoftPityConfig{StartAt: 7, TargetProb: 0.6},
			},
			Budget:    BeginnerBudget,
			FirstPull: "Noelle",
			Cost:      token.Token{Name: token.AcquaintFate.Name, PerDraw: 1, PerTenDraw: 8},
		}, nil
	case Character:
		return Config{
			Kind:   Character,
			Name:   "Character Event Wish",
			Rates:  standardRates(90, 0.006, 0.051, 73),
			RateUp: &RateUpConfig{OffProbs: []float64{0.5}, MaxOff: 1},
			Cost:   token.IntertwinedFate,
		}, nil
	case Weapon:
		return Config{
			Kind:  Weapon,
			Name:  "Weapon Event Wish",
			Rates: standardRates(80, 0.007, 0.06, 62),
			Cost:  token.IntertwinedFate,
		}, nil
	case Standard:
		return Config{
			Kind:  Standard,
			Name:  "Standard Wish",
			Rates: standardRates(90, 0.006, 0.051, 73),
			Cost:  token.AcquaintFate,
		}, nil
	}
	return Config{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func standardRates(pity5 int, base5, base4 float64, softStart int) gacha.Rates {
	return gacha.Rates{
		Base5: base5,
		Base4: base4,
		Pity5: pity5,
		Pity4: FourStarPity,
		Soft5: &gacha.SoftPityConfig{StartAt: softStart, TargetProb: 0.9},
		Soft4: &gacha.SoftPityConfig{StartAt: 7, TargetProb: 0.6},
	}
}
