package gacha

import "errors"

// Easing specifies how the probability ramps up as we approach pity.
type Easing string

const (
	EaseLinear     Easing = "linear"
	EaseOutQuad    Easing = "easeOutQuad"
	EaseInOutCubic Easing = "easeInOutCubic"
)

var ErrSoftPityConfig = errors.New("invalid soft pity config")

// SoftPityConfig defines the ramp before hard pity.
// Example: Pity=90, StartAt=73, Target=0.9 → from the 74th pull since the
// last hit the probability climbs toward 0.9, and pull 90 is certain.
type SoftPityConfig struct {
	Pity       int     `yaml:"-"`        // hard pity threshold, copied from the rates
	StartAt    int     `yaml:"start_at"` // misses since last hit before the ramp begins
	TargetProb float64 `yaml:"target"`   // probability at the last pull before hard pity, in (0,1)
	Easing     Easing  `yaml:"easing"`
}

// normalize validates and adjusts StartAt; returns error if invalid.
func (c *SoftPityConfig) normalize() error {
	if c.Pity <= 1 {
		return ErrSoftPityConfig
	}
	if c.TargetProb <= 0 || c.TargetProb >= 1 {
		return ErrSoftPityConfig
	}
	if c.StartAt < 0 {
		c.StartAt = 0
	}
	// Ramp ends at (Pity-1). StartAt must be < (Pity-1) to have room to ramp.
	if c.StartAt >= c.Pity-1 {
		return ErrSoftPityConfig
	}
	switch c.Easing {
	case "":
		c.Easing = EaseLinear
	case EaseLinear, EaseOutQuad, EaseInOutCubic:
	default:
		return ErrSoftPityConfig
	}
	return nil
}

// Prob computes the probability for the upcoming pull given count misses
// since the last hit:
// - count+1 >= Pity: 1 (hard pity).
// - count >= StartAt: ramp from pBase toward TargetProb at (Pity-1).
// - otherwise pBase.
func (c *SoftPityConfig) Prob(count int, pBase float64) float64 {
	if c.Pity > 0 && count+1 >= c.Pity {
		return 1.0
	}
	if count < c.StartAt {
		return pBase
	}
	end := c.Pity - 1
	length := float64(end - c.StartAt)
	if length <= 0 {
		return pBase
	}
	t := float64(count-c.StartAt) / length
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	switch c.Easing {
	case EaseOutQuad:
		// f(t) = 1 - (1 - t)^2
		t = 1 - (1-t)*(1-t)
	case EaseInOutCubic:
		if t < 0.5 {
			t = 4 * t * t * t
		} else {
			t = 1 - (-2*t+2)*(-2*t+2)*(-2*t+2)/2
		}
	}
	target := c.TargetProb
	if target < pBase {
		target = pBase
	}
	p := pBase + (target-pBase)*t
	if p < 0 {
		p = 0
	}
	if p > 0.999999999999 { // keep < 1 to avoid pre-hard-pity guarantee
		p = 0.999999999999
	}
	return p
}
