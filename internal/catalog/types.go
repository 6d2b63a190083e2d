// types.go
package catalog

import "github.com/xtding233/gacha-wish/internal/item"

// RawConfig mirrors one catalog YAML file. Every mechanics field is
// optional; unset fields fall through to default.yaml and then to the
// built-in preset of the banner kind.
type RawConfig struct {
	Version   string      `yaml:"version"`
	Name      string      `yaml:"name,omitempty"`
	Mechanics Mechanics   `yaml:"mechanics"`
	Cost      *CostConfig `yaml:"cost,omitempty"`
	Items     []item.Item `yaml:"items,omitempty"`
	Notes     string      `yaml:"notes,omitempty"`
}

type Mechanics struct {
	Base5     *float64      `yaml:"base5"`
	Base4     *float64      `yaml:"base4"`
	Pity5     *int          `yaml:"pity5"`
	Pity4     *int          `yaml:"pity4"`
	Soft5     *SoftCfg      `yaml:"soft5,omitempty"`
	Soft4     *SoftCfg      `yaml:"soft4,omitempty"`
	RateUp    *RateUpConfig `yaml:"rate_up,omitempty"`
	Budget    *int          `yaml:"budget,omitempty"`
	FirstPull *string       `yaml:"first_pull,omitempty"`
}

type SoftCfg struct {
	StartAt *int     `yaml:"start_at,omitempty"`
	Target  *float64 `yaml:"target,omitempty"`
	Easing  string   `yaml:"easing,omitempty"`
}

type RateUpConfig struct {
	Enabled  *bool     `yaml:"enabled,omitempty"` // false removes the preset's rate-up
	OffProbs []float64 `yaml:"off_probs,omitempty"`
	MaxOff   int       `yaml:"max_off,omitempty"`
}

type CostConfig struct {
	Name       string `yaml:"name"`
	PerDraw    *int   `yaml:"per_draw"`
	PerTenDraw *int   `yaml:"per_ten_draw"`
}
