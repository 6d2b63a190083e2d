// resolve.go
package catalog

import (
	"fmt"

	"github.com/xtding233/gacha-wish/internal/banner"
	"github.com/xtding233/gacha-wish/internal/gacha"
)

// Resolve builds the banner configuration for kind: preset ← default.yaml ←
// banners/<kind>.yaml. The result is ready for banner.NewSession.
func (l *Loader) Resolve(kind banner.Kind) (banner.Config, error) {
	cfg, err := banner.Preset(kind)
	if err != nil {
		return banner.Config{}, err
	}
	raw, err := l.LoadMerged(string(kind))
	if err != nil {
		return banner.Config{}, err
	}
	if err := ValidateRaw(raw); err != nil {
		return banner.Config{}, fmt.Errorf("banner %s: %w", kind, err)
	}
	return apply(cfg, raw), nil
}

// ResolveAll resolves every banner kind, stopping at the first failure.
func (l *Loader) ResolveAll() (map[banner.Kind]banner.Config, error) {
	out := make(map[banner.Kind]banner.Config, len(banner.Kinds))
	for _, k := range banner.Kinds {
		cfg, err := l.Resolve(k)
		if err != nil {
			return nil, err
		}
		out[k] = cfg
	}
	return out, nil
}

func apply(cfg banner.Config, raw RawConfig) banner.Config {
	if raw.Name != "" {
		cfg.Name = raw.Name
	}
	cfg.Items = raw.Items

	m := raw.Mechanics
	if m.Base5 != nil {
		cfg.Rates.Base5 = *m.Base5
	}
	if m.Base4 != nil {
		cfg.Rates.Base4 = *m.Base4
	}
	if m.Pity5 != nil {
		cfg.Rates.Pity5 = *m.Pity5
	}
	if m.Pity4 != nil {
		cfg.Rates.Pity4 = *m.Pity4
	}
	cfg.Rates.Soft5 = applySoft(cfg.Rates.Soft5, m.Soft5)
	cfg.Rates.Soft4 = applySoft(cfg.Rates.Soft4, m.Soft4)
	if m.Budget != nil {
		cfg.Budget = *m.Budget
	}
	if m.FirstPull != nil {
		cfg.FirstPull = *m.FirstPull
	}

	if ru := m.RateUp; ru != nil {
		switch {
		case ru.Enabled != nil && !*ru.Enabled:
			cfg.RateUp = nil
		default:
			next := banner.RateUpConfig{OffProbs: []float64{0.5}, MaxOff: 1}
			if cfg.RateUp != nil {
				next = *cfg.RateUp
			}
			if len(ru.OffProbs) > 0 {
				next.OffProbs = append([]float64(nil), ru.OffProbs...)
			}
			if ru.MaxOff > 0 {
				next.MaxOff = ru.MaxOff
			}
			cfg.RateUp = &next
		}
	}

	if c := raw.Cost; c != nil {
		if c.Name != "" {
			cfg.Cost.Name = c.Name
		}
		if c.PerDraw != nil {
			cfg.Cost.PerDraw = *c.PerDraw
		}
		if c.PerTenDraw != nil {
			cfg.Cost.PerTenDraw = *c.PerTenDraw
		}
	}
	return cfg
}

func applySoft(base *gacha.SoftPityConfig, s *SoftCfg) *gacha.SoftPityConfig {
	if s == nil {
		return base
	}
	var out gacha.SoftPityConfig
	if base != nil {
		out = *base
	}
	if s.StartAt != nil {
		out.StartAt = *s.StartAt
	}
	if s.Target != nil {
		out.TargetProb = *s.Target
	}
	if s.Easing != "" {
		out.Easing = gacha.Easing(s.Easing)
	}
	return &out
}
