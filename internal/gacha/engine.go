package gacha

import "github.com/xtding233/gacha-wish/internal/item"

// Rates describes the rarity odds and pity caps of one banner.
type Rates struct {
	Base5 float64
	Base4 float64
	Pity5 int // hard pity for 5*, 0 for none
	Pity4 int // hard pity for 4*, 0 for none
	Soft5 *SoftPityConfig
	Soft4 *SoftPityConfig
}

// PityState is a snapshot of everything a session carries between pulls.
type PityState struct {
	SinceLast5         int  `json:"since_last_5"`
	SinceLast4         int  `json:"since_last_4"`
	TotalAttempts      int  `json:"total_attempts"`
	GuaranteedFeatured bool `json:"guaranteed_featured"`
	OffStreak          int  `json:"off_streak,omitempty"`
}

// Engine turns randomness into items for one session. It owns the pity
// tracker and, on rate-up banners, the featured guarantee.
// An Engine is not safe for concurrent use.
type Engine struct {
	Rates   Rates
	Tracker *PityTracker
	RateUp  *RateUp // nil when the banner has no featured mechanic
	RNG     RandomSource
}

// NewEngine validates rates and returns a zeroed engine.
// rateUp may be nil. A nil rng falls back to DefaultRNG.
func NewEngine(rates Rates, rateUp *RateUp, rng RandomSource) (*Engine, error) {
	if err := rates.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	return &Engine{
		Rates:   rates,
		Tracker: NewPityTracker(rates.Pity5, rates.Pity4),
		RateUp:  rateUp,
		RNG:     rng,
	}, nil
}

// Roll produces one item from pool and records it.
func (e *Engine) Roll(pool *item.Pool) item.Item {
	r := e.rollRating()
	var it item.Item
	if r == item.FiveStar && e.RateUp != nil {
		if e.RateUp.Resolve(e.RNG) {
			it = pick(pool.Featured(), e.RNG)
		} else {
			it = pick(pool.Standard(), e.RNG)
		}
	} else {
		it = pick(pool.Of(r), e.RNG)
	}
	e.Tracker.RecordResult(r)
	return it
}

// Accept records an item handed out without a draw, such as a banner's
// fixed first pull, so counters and guarantees stay consistent.
func (e *Engine) Accept(it item.Item) {
	if it.Rating == item.FiveStar && e.RateUp != nil {
		e.RateUp.Observe(it.Featured)
	}
	e.Tracker.RecordResult(it.Rating)
}

// State returns a copy of the current counters.
func (e *Engine) State() PityState {
	s := PityState{
		SinceLast5:    e.Tracker.SinceLast5,
		SinceLast4:    e.Tracker.SinceLast4,
		TotalAttempts: e.Tracker.Total,
	}
	if e.RateUp != nil {
		s.GuaranteedFeatured = e.RateUp.GuaranteedNext
		s.OffStreak = e.RateUp.OffStreak
	}
	return s
}

// Prob5 is the 5* probability of the upcoming pull.
func (e *Engine) Prob5() float64 {
	return effectiveProb(e.Rates.Soft5, e.Tracker.Pity5, e.Tracker.SinceLast5, e.Rates.Base5)
}

// Prob4 is the 4* probability of the upcoming pull, given it is not a 5*.
func (e *Engine) Prob4() float64 {
	return effectiveProb(e.Rates.Soft4, e.Tracker.Pity4, e.Tracker.SinceLast4, e.Rates.Base4)
}

func (e *Engine) rollRating() item.Rating {
	if e.Tracker.HardPityDue5() {
		return item.FiveStar
	}
	// one uniform sample over the stacked intervals [0,p5) [p5,p5+p4) [p5+p4,1)
	p5 := e.Prob5()
	u := e.RNG.Float64()
	if u < p5 {
		return item.FiveStar
	}
	if e.Tracker.HardPityDue4() {
		return item.FourStar
	}
	if u < p5+e.Prob4() {
		return item.FourStar
	}
	return item.ThreeStar
}

func effectiveProb(soft *SoftPityConfig, pity, count int, base float64) float64 {
	if pity > 0 && count+1 >= pity {
		return 1
	}
	if soft == nil {
		return base
	}
	return soft.Prob(count, base)
}
