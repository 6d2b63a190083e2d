package banner

import (
	"errors"
	"fmt"

	"github.com/xtding233/gacha-wish/internal/gacha"
	"github.com/xtding233/gacha-wish/internal/item"
	"github.com/xtding233/gacha-wish/internal/token"
)

var (
	ErrUnknownKind   = errors.New("unknown banner kind")
	ErrInvalidConfig = errors.New("invalid banner config")
)

// Kind identifies one of the banner parameterizations.
type Kind string

const (
	Beginner  Kind = "beginner"
	Character Kind = "character"
	// Weapon has the lower 80-pull cap and no 50/50; only Character carries a rate-up.
	Weapon    Kind = "weapon"
	Standard  Kind = "standard"
)

// Kinds lists every supported banner kind.
var Kinds = []Kind{Beginner, Character, Weapon, Standard}

// ParseKind maps a name to a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// RateUpConfig enables the featured 5* mechanic. See gacha.RateUp.
type RateUpConfig struct {
	OffProbs []float64 `yaml:"off_probs"`
	MaxOff   int       `yaml:"max_off"`
}

// Config is everything that distinguishes one banner from another.
// Banners differ only in data; the pull arithmetic is shared.
type Config struct {
	Kind      Kind
	Name      string
	Items     []item.Item
	Rates     gacha.Rates
	RateUp    *RateUpConfig // nil: 5* items are drawn uniformly
	Budget    int           // total pulls allowed, 0 for unlimited
	FirstPull string        // item granted on pull #1, empty for none
	Cost      token.Token
}

// Limited reports whether the banner has a pull budget.
func (c Config) Limited() bool { return c.Budget > 0 }

// clone deep-copies the parts of c that sessions normalize or mutate.
func (c Config) clone() Config {
	out := c
	out.Items = append([]item.Item(nil), c.Items...)
	if c.Rates.Soft5 != nil {
		s := *c.Rates.Soft5
		out.Rates.Soft5 = &s
	}
	if c.Rates.Soft4 != nil {
		s := *c.Rates.Soft4
		out.Rates.Soft4 = &s
	}
	if c.RateUp != nil {
		r := *c.RateUp
		r.OffProbs = append([]float64(nil), c.RateUp.OffProbs...)
		out.RateUp = &r
	}
	return out
}
