package gacha

import "math"

// RateUp resolves a 5* hit into featured (UP) or off-banner.
// - If GuaranteedNext is set, the hit is featured and the flag clears.
// - Otherwise off ~ Bernoulli(OffProbs[idx]), idx = min(OffStreak, len(OffProbs)-1).
// - An off hit increments OffStreak; once OffStreak reaches MaxOff the next
//   hit is guaranteed featured.
// - A featured hit resets OffStreak and clears the guarantee.
// With the default [0.5] and MaxOff 1 this is the classic 50/50.
type RateUp struct {
	OffProbs       []float64
	MaxOff         int
	GuaranteedNext bool
	OffStreak      int
}

// NewRateUp initializes a RateUp.
// If maxOff <= 0 => maxOff = len(offProbs). If offProbs empty => [0.5].
func NewRateUp(offProbs []float64, maxOff int) *RateUp {
	if len(offProbs) == 0 {
		offProbs = []float64{0.5}
	}
	clamped := make([]float64, len(offProbs))
	for i, p := range offProbs {
		if !(p > 0 && p < 1) {
			p = 0.5
		}
		clamped[i] = p
	}
	if maxOff <= 0 {
		maxOff = len(clamped)
	}
	return &RateUp{OffProbs: clamped, MaxOff: maxOff}
}

// currentOffProb returns the probability of going off-banner at the current streak.
func (b *RateUp) currentOffProb() float64 {
	idx := b.OffStreak
	if idx < 0 {
		idx = 0
	}
	if idx >= len(b.OffProbs) {
		idx = len(b.OffProbs) - 1 // repeat the last value
	}
	p := b.OffProbs[idx]
	if p <= 0 {
		p = math.SmallestNonzeroFloat64
	}
	if p >= 1 {
		p = 1 - 1e-12
	}
	return p
}

// Resolve decides whether the current 5* hit is featured and updates the streak.
func (b *RateUp) Resolve(rng RandomSource) bool {
	featured := b.GuaranteedNext || !hit(b.currentOffProb(), rng)
	b.Observe(featured)
	return featured
}

// Observe records a 5* obtained outside of Resolve, e.g. a fixed grant.
func (b *RateUp) Observe(featured bool) {
	if featured {
		b.OffStreak = 0
		b.GuaranteedNext = false
		return
	}
	b.OffStreak++
	if b.OffStreak >= b.MaxOff {
		b.GuaranteedNext = true
	}
}
