package banner

import (
	"fmt"
	"strings"

	"github.com/xtding233/gacha-wish/internal/gacha"
	"github.com/xtding233/gacha-wish/internal/item"
)

// Session is one player's independent run on a banner. It is a plain state
// machine: no I/O, no locking. Callers sharing a Session across goroutines
// must serialize access themselves.
type Session struct {
	cfg    Config
	pool   *item.Pool
	engine *gacha.Engine
	first  *item.Item

	onBatchDisabled func()
	batchDisabled   bool
}

// Option customizes a Session.
type Option func(*Session)

// WithRNG injects the random source. Sessions default to gacha.DefaultRNG,
// and a nil rng keeps that default.
func WithRNG(rng gacha.RandomSource) Option {
	return func(s *Session) {
		if rng == nil {
			rng = gacha.DefaultRNG()
		}
		s.engine.RNG = rng
	}
}

// WithBatchDisabled registers fn to run once, as soon as a budget-limited
// banner has fewer than BatchSize pulls left.
func WithBatchDisabled(fn func()) Option {
	return func(s *Session) { s.onBatchDisabled = fn }
}

// NewSession validates cfg and returns a fresh session with zeroed state.
// Catalog faults are reported here, never during a roll.
func NewSession(cfg Config, opts ...Option) (*Session, error) {
	cfg = cfg.clone()

	pool, err := item.NewPool(cfg.Items)
	if err != nil {
		return nil, fmt.Errorf("banner %s: %w", cfg.Kind, err)
	}
	if err := validateConfig(cfg, pool); err != nil {
		return nil, err
	}

	var rateUp *gacha.RateUp
	if cfg.RateUp != nil {
		rateUp = gacha.NewRateUp(cfg.RateUp.OffProbs, cfg.RateUp.MaxOff)
	}
	engine, err := gacha.NewEngine(cfg.Rates, rateUp, nil)
	if err != nil {
		return nil, fmt.Errorf("banner %s: %w", cfg.Kind, err)
	}

	s := &Session{cfg: cfg, pool: pool, engine: engine}
	if cfg.FirstPull != "" {
		it, _ := pool.Lookup(cfg.FirstPull)
		s.first = &it
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func validateConfig(cfg Config, pool *item.Pool) error {
	var errs []string
	if cfg.Budget < 0 {
		errs = append(errs, "budget must be >= 0 (0 means unlimited)")
	}
	if cfg.FirstPull != "" {
		if _, ok := pool.Lookup(cfg.FirstPull); !ok {
			errs = append(errs, fmt.Sprintf("first pull %q is not in the pool", cfg.FirstPull))
		}
	}
	if cfg.RateUp != nil {
		if len(pool.Featured()) == 0 {
			errs = append(errs, "rate-up banner needs at least one featured 5* item")
		}
		if len(pool.Standard()) == 0 {
			errs = append(errs, "rate-up banner needs at least one standard 5* item")
		}
		if maxOff(*cfg.RateUp) != 1 {
			errs = append(errs, "rate-up max_off must be 1: a lost 50/50 guarantees the next 5*")
		}
	} else if len(pool.Featured()) > 0 {
		errs = append(errs, "featured items require a rate-up mechanic")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: banner %s: %s", ErrInvalidConfig, cfg.Kind, strings.Join(errs, "; "))
	}
	return nil
}

// maxOff is the off-banner streak that triggers the guarantee, as
// gacha.NewRateUp resolves it.
func maxOff(r RateUpConfig) int {
	switch {
	case r.MaxOff > 0:
		return r.MaxOff
	case len(r.OffProbs) > 0:
		return len(r.OffProbs)
	}
	return 1
}

// Kind is the banner's discriminator.
func (s *Session) Kind() Kind { return s.cfg.Kind }

// Config returns the banner configuration the session was built from.
func (s *Session) Config() Config { return s.cfg.clone() }

// AttemptsCount is the number of accepted pulls so far.
func (s *Session) AttemptsCount() int { return s.engine.Tracker.Total }

// State snapshots the pity and guarantee counters.
func (s *Session) State() gacha.PityState { return s.engine.State() }

// Remaining reports the pulls left on a budget-limited banner. limited is
// false for banners without a budget.
func (s *Session) Remaining() (left int, limited bool) {
	if !s.cfg.Limited() {
		return 0, false
	}
	left = s.cfg.Budget - s.AttemptsCount()
	if left < 0 {
		left = 0
	}
	return left, true
}

// BatchAvailable reports whether Roll would currently succeed.
func (s *Session) BatchAvailable() bool {
	left, limited := s.Remaining()
	return !limited || left >= BatchSize
}

// RollOnce performs a single pull. ok is false only when a budget-limited
// banner has no pulls left; state is untouched in that case.
func (s *Session) RollOnce() (it item.Item, ok bool) {
	if left, limited := s.Remaining(); limited && left == 0 {
		return item.Item{}, false
	}
	if s.first != nil && s.AttemptsCount() == 0 {
		it = *s.first
		s.engine.Accept(it)
	} else {
		it = s.engine.Roll(s.pool)
	}
	s.checkBatch()
	return it, true
}

// Roll performs a ten-pull, returning items in draw order. It is refused,
// with no state change, when fewer than BatchSize budgeted pulls remain.
func (s *Session) Roll() ([]item.Item, bool) {
	if !s.BatchAvailable() {
		return nil, false
	}
	out := make([]item.Item, 0, BatchSize)
	for range BatchSize {
		it, _ := s.RollOnce()
		out = append(out, it)
	}
	return out, true
}

func (s *Session) checkBatch() {
	if s.batchDisabled || s.BatchAvailable() {
		return
	}
	s.batchDisabled = true
	if s.onBatchDisabled != nil {
		s.onBatchDisabled()
	}
}
