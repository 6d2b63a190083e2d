package gacha

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrInvalidRates = errors.New("invalid rates")

func validateProb(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return ErrInvalidProb
	}
	if p < 0 || p > 1 {
		return ErrInvalidProb
	}
	return nil
}

// Validate checks the rates and normalizes their soft ramps in place.
func (r *Rates) Validate() error {
	var errs []string

	if validateProb(r.Base5) != nil {
		errs = append(errs, "base5 must be in [0,1]")
	}
	if validateProb(r.Base4) != nil {
		errs = append(errs, "base4 must be in [0,1]")
	}
	if r.Base5+r.Base4 > 1 {
		errs = append(errs, "base5 + base4 must not exceed 1")
	}
	if r.Pity5 < 0 {
		errs = append(errs, "pity5 must be >= 0 (0 disables hard pity)")
	}
	if r.Pity4 < 0 {
		errs = append(errs, "pity4 must be >= 0 (0 disables hard pity)")
	}
	if err := normalizeSoft(r.Soft5, r.Pity5); err != nil {
		errs = append(errs, "soft5: "+err.Error())
	}
	if err := normalizeSoft(r.Soft4, r.Pity4); err != nil {
		errs = append(errs, "soft4: "+err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRates, strings.Join(errs, "; "))
	}
	return nil
}

func normalizeSoft(c *SoftPityConfig, pity int) error {
	if c == nil {
		return nil
	}
	c.Pity = pity
	return c.normalize()
}
