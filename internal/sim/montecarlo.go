package sim

import (
	"errors"
	"math"
	"sort"

	"github.com/xtding233/gacha-wish/internal/banner"
	"github.com/xtding233/gacha-wish/internal/gacha"
	"github.com/xtding233/gacha-wish/internal/item"
)

var ErrUnknownGoal = errors.New("unknown simulation goal")

// TrialGoal selects what the simulation measures per trial.
type TrialGoal string

const (
	// Pulls until the first 5*.
	GoalFirstFiveStar TrialGoal = "first_5"
	// Pulls until the first featured 5*. Falls back to the first 5* on
	// banners without a rate-up.
	GoalFirstFeatured TrialGoal = "first_featured"
	// Given a fixed budget of pulls, count 5* (featured on rate-up banners).
	GoalFixedBudget TrialGoal = "fixed_budget"
)

// ParseGoal maps a name to a TrialGoal.
func ParseGoal(s string) (TrialGoal, error) {
	switch g := TrialGoal(s); g {
	case GoalFirstFiveStar, GoalFirstFeatured, GoalFixedBudget:
		return g, nil
	}
	return "", ErrUnknownGoal
}

// Params describes one simulation run.
type Params struct {
	Banner   banner.Config
	Goal     TrialGoal
	Trials   int
	Seed     uint64 // trial i uses seed+i
	NumDraws int    // pulls per trial for GoalFixedBudget
	MaxDraws int    // give-up point for the first_* goals; default 10000
}

// Stats summarizes simulation results.
type Stats struct {
	Trials int     `json:"trials"`
	Misses int     `json:"misses"` // trials that never reached the goal
	Mean   float64 `json:"mean"`
	Var    float64 `json:"var"`
	StdDev float64 `json:"stddev"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
	Max    int     `json:"max"`
	// Optional: raw samples if caller needs histograms/exports
	Samples []int `json:"-"`
}

// calcStats computes mean/variance/percentiles for integer samples.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	// variance (population)
	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)

	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		if n == 1 || p <= 0 {
			return float64(cp[0])
		}
		if p >= 1 {
			return float64(cp[n-1])
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return float64(cp[i])
		}
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Stats{
		Trials:  n,
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Max:     cp[n-1],
		Samples: xs,
	}
}

// simulateOne returns the primary metric of one trial, and false when a
// first_* goal was not reached before the budget or MaxDraws ran out.
func simulateOne(p Params, seed uint64) (int, bool, error) {
	s, err := banner.NewSession(p.Banner, banner.WithRNG(gacha.NewSeededRNG(seed)))
	if err != nil {
		return 0, false, err
	}
	rateUp := p.Banner.RateUp != nil

	switch p.Goal {
	case GoalFirstFiveStar, GoalFirstFeatured:
		for draws := 1; draws <= p.MaxDraws; draws++ {
			it, ok := s.RollOnce()
			if !ok {
				return 0, false, nil
			}
			if it.Rating != item.FiveStar {
				continue
			}
			if p.Goal == GoalFirstFiveStar || !rateUp || it.Featured {
				return draws, true, nil
			}
		}
		return 0, false, nil

	case GoalFixedBudget:
		count := 0
		for i := 0; i < p.NumDraws; i++ {
			it, ok := s.RollOnce()
			if !ok {
				break
			}
			if it.Rating == item.FiveStar && (!rateUp || it.Featured) {
				count++
			}
		}
		return count, true, nil
	}
	return 0, false, ErrUnknownGoal
}

// RunMonteCarlo repeats trials and returns summary stats. Trials that miss
// a first_* goal are counted in Misses and excluded from the distribution.
func RunMonteCarlo(p Params) (Stats, error) {
	if p.Trials <= 0 {
		return Stats{}, nil
	}
	if p.MaxDraws <= 0 {
		p.MaxDraws = 10000
	}
	samples := make([]int, 0, p.Trials)
	misses := 0
	for i := 0; i < p.Trials; i++ {
		v, ok, err := simulateOne(p, p.Seed+uint64(i))
		if err != nil {
			return Stats{}, err
		}
		if !ok {
			misses++
			continue
		}
		samples = append(samples, v)
	}
	st := calcStats(samples)
	st.Trials = p.Trials
	st.Misses = misses
	return st, nil
}
