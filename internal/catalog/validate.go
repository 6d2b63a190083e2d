package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xtding233/gacha-wish/internal/gacha"
)

var ErrInvalidCatalog = errors.New("catalog validation failed")

// ValidateRaw checks semantic constraints of a merged RawConfig.
func ValidateRaw(cfg RawConfig) error {
	var errs []string
	m := cfg.Mechanics

	if m.Base5 != nil && (*m.Base5 < 0 || *m.Base5 > 1) {
		errs = append(errs, "mechanics.base5 must be in [0,1]")
	}
	if m.Base4 != nil && (*m.Base4 < 0 || *m.Base4 > 1) {
		errs = append(errs, "mechanics.base4 must be in [0,1]")
	}
	if m.Pity5 != nil && *m.Pity5 < 0 {
		errs = append(errs, "mechanics.pity5 must be >= 0 (0 disables hard pity)")
	}
	if m.Pity4 != nil && *m.Pity4 < 0 {
		errs = append(errs, "mechanics.pity4 must be >= 0 (0 disables hard pity)")
	}
	errs = append(errs, validateSoft("mechanics.soft5", m.Soft5, m.Pity5)...)
	errs = append(errs, validateSoft("mechanics.soft4", m.Soft4, m.Pity4)...)

	if m.RateUp != nil {
		for i, p := range m.RateUp.OffProbs {
			if !(p > 0 && p < 1) {
				errs = append(errs, fmt.Sprintf("mechanics.rate_up.off_probs[%d] must be in (0,1)", i))
			}
		}
		if m.RateUp.MaxOff < 0 || m.RateUp.MaxOff > 1 {
			errs = append(errs, "mechanics.rate_up.max_off must be 0 or 1 (0 keeps the default of 1)")
		}
	}
	if m.Budget != nil && *m.Budget < 0 {
		errs = append(errs, "mechanics.budget must be >= 0 (0 means unlimited)")
	}

	if cfg.Cost != nil {
		if cfg.Cost.PerDraw != nil && *cfg.Cost.PerDraw < 0 {
			errs = append(errs, "cost.per_draw must be >= 0")
		}
		if cfg.Cost.PerTenDraw != nil && *cfg.Cost.PerTenDraw < 0 {
			errs = append(errs, "cost.per_ten_draw must be >= 0")
		}
	}

	if len(cfg.Items) == 0 {
		errs = append(errs, "items must not be empty")
	}
	for i, it := range cfg.Items {
		if it.Name == "" {
			errs = append(errs, fmt.Sprintf("items[%d].name is required", i))
		}
		if !it.Rating.Valid() {
			errs = append(errs, fmt.Sprintf("items[%d].rating must be 3, 4 or 5", i))
		}
		if !it.Category.Valid() {
			errs = append(errs, fmt.Sprintf("items[%d].category must be character or weapon", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(errs, "; "))
	}
	return nil
}

func validateSoft(field string, s *SoftCfg, pity *int) []string {
	if s == nil {
		return nil
	}
	var errs []string
	if s.Target != nil && (*s.Target <= 0 || *s.Target >= 1) {
		errs = append(errs, field+".target must be in (0,1)")
	}
	if s.StartAt != nil && pity != nil && (*s.StartAt < 0 || *s.StartAt >= *pity-1) {
		errs = append(errs, field+".start_at must satisfy 0 <= start_at < pity-1")
	}
	switch gacha.Easing(s.Easing) {
	case "", gacha.EaseLinear, gacha.EaseOutQuad, gacha.EaseInOutCubic:
	default:
		errs = append(errs, field+".easing must be one of: linear, easeOutQuad, easeInOutCubic")
	}
	return errs
}

