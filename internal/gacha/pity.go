package gacha

import "github.com/xtding233/gacha-wish/internal/item"

// PityTracker owns the per-rarity miss counters of one session.
// A 5* resets both counters, a 4* resets only the 4* counter.
// Total is monotonic.
type PityTracker struct {
	Pity5 int // 0 disables the 5* hard pity
	Pity4 int // 0 disables the 4* hard pity

	SinceLast5 int
	SinceLast4 int
	Total      int
}

// NewPityTracker creates a zeroed tracker with the given hard pity caps.
func NewPityTracker(pity5, pity4 int) *PityTracker {
	return &PityTracker{Pity5: pity5, Pity4: pity4}
}

// HardPityDue5 reports whether the upcoming pull is the Pity5-th since the last 5*.
func (t *PityTracker) HardPityDue5() bool {
	return t.Pity5 > 0 && t.SinceLast5+1 >= t.Pity5
}

// HardPityDue4 reports whether the upcoming pull must be at least 4*.
func (t *PityTracker) HardPityDue4() bool {
	return t.Pity4 > 0 && t.SinceLast4+1 >= t.Pity4
}

// RecordResult applies one pull of rating r to the counters.
func (t *PityTracker) RecordResult(r item.Rating) {
	t.Total++
	switch {
	case r >= item.FiveStar:
		t.SinceLast5 = 0
		t.SinceLast4 = 0
	case r == item.FourStar:
		t.SinceLast5++
		t.SinceLast4 = 0
	default:
		t.SinceLast5++
		t.SinceLast4++
	}
}
