package banner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/gacha-wish/internal/gacha"
	"github.com/xtding233/gacha-wish/internal/item"
)

func baseItems() []item.Item {
	return []item.Item{
		{Name: "Cool Steel", Rating: item.ThreeStar, Category: item.Weapon, Image: "cool-steel.png"},
		{Name: "Thrilling Tales of Dragon Slayers", Rating: item.ThreeStar, Category: item.Weapon, Image: "ttds.png"},
		{Name: "Slingshot", Rating: item.ThreeStar, Category: item.Weapon, Image: "slingshot.png"},
		{Name: "Noelle", Rating: item.FourStar, Category: item.Character, Image: "noelle.png"},
		{Name: "Xingqiu", Rating: item.FourStar, Category: item.Character, Image: "xingqiu.png"},
		{Name: "Sacrificial Sword", Rating: item.FourStar, Category: item.Weapon, Image: "sacrificial-sword.png"},
	}
}

func standardFives() []item.Item {
	return []item.Item{
		{Name: "Diluc", Rating: item.FiveStar, Category: item.Character, Image: "diluc.png"},
		{Name: "Mona", Rating: item.FiveStar, Category: item.Character, Image: "mona.png"},
		{Name: "Skyward Harp", Rating: item.FiveStar, Category: item.Weapon, Image: "skyward-harp.png"},
	}
}

func testConfig(t *testing.T, kind Kind) Config {
	t.Helper()
	cfg, err := Preset(kind)
	require.NoError(t, err)
	cfg.Items = append(baseItems(), standardFives()...)
	if kind == Character {
		cfg.Items = append(cfg.Items, item.Item{
			Name: "Ganyu", Rating: item.FiveStar, Category: item.Character, Featured: true, Image: "ganyu.png",
		})
	}
	return cfg
}

func newTestSession(t *testing.T, kind Kind, seed uint64, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{WithRNG(gacha.NewSeededRNG(seed))}, opts...)
	s, err := NewSession(testConfig(t, kind), opts...)
	require.NoError(t, err)
	return s
}

func countRating(items []item.Item, r item.Rating) int {
	n := 0
	for _, it := range items {
		if it.Rating == r {
			n++
		}
	}
	return n
}

func TestHardPityWithinCap(t *testing.T) {
	t.Parallel()

	caps := map[Kind]int{Character: 90, Weapon: 80, Standard: 90}
	for kind, pity := range caps {
		kind, pity := kind, pity
		t.Run(string(kind), func(t *testing.T) {
			t.Parallel()
			for seed := uint64(0); seed < 25; seed++ {
				s := newTestSession(t, kind, seed)
				var pulls []item.Item
				for i := 0; i < 2*pity; i++ {
					it, ok := s.RollOnce()
					require.True(t, ok)
					pulls = append(pulls, it)
				}
				assert.GreaterOrEqual(t, countRating(pulls[:pity], item.FiveStar), 1, "seed %d: no 5* in first %d", seed, pity)
				assert.GreaterOrEqual(t, countRating(pulls, item.FiveStar), 2, "seed %d: fewer than two 5* in %d", seed, 2*pity)
				assert.Equal(t, 2*pity, s.AttemptsCount())
			}
		})
	}
}

func TestBatchAttemptsAndGuarantees(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind Kind
		pity int
	}{
		{Character, 90},
		{Weapon, 80},
		{Standard, 90},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(string(tc.kind), func(t *testing.T) {
			t.Parallel()
			s := newTestSession(t, tc.kind, 2024)
			batches := 2 * tc.pity / BatchSize

			var all []item.Item
			for b := 1; b <= batches; b++ {
				got, ok := s.Roll()
				require.True(t, ok)
				require.Len(t, got, BatchSize)
				all = append(all, got...)
				assert.Equal(t, b*BatchSize, s.AttemptsCount())
			}
			assert.GreaterOrEqual(t, countRating(all[:tc.pity], item.FiveStar), 1)
			assert.GreaterOrEqual(t, countRating(all, item.FiveStar), 2)
		})
	}
}

func TestTenthSinglePullIsAtLeastFourStar(t *testing.T) {
	t.Parallel()

	for _, kind := range []Kind{Character, Weapon, Standard, Beginner} {
		for seed := uint64(0); seed < 50; seed++ {
			s := newTestSession(t, kind, seed)
			var pulls []item.Item
			for i := 0; i < 10; i++ {
				it, ok := s.RollOnce()
				require.True(t, ok)
				pulls = append(pulls, it)
			}
			assert.Less(t, countRating(pulls, item.ThreeStar), 10, "%s seed %d", kind, seed)
		}
	}
}

func TestAnyTenConsecutivePullsHoldAFourStar(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, Standard, 5)
	misses := 0
	for i := 0; i < 2000; i++ {
		it, _ := s.RollOnce()
		if it.Rating >= item.FourStar {
			misses = 0
			continue
		}
		misses++
		require.Less(t, misses, 10, "pull %d", i+1)
	}
}

func TestRateUpGuaranteeLaw(t *testing.T) {
	t.Parallel()

	for seed := uint64(0); seed < 20; seed++ {
		s := newTestSession(t, Character, seed)
		lostLast := false
		fives := 0
		for i := 0; i < 3000; i++ {
			it, _ := s.RollOnce()
			if it.Rating != item.FiveStar {
				continue
			}
			fives++
			if lostLast {
				require.True(t, it.Featured, "seed %d pull %d: %s after a lost 50/50", seed, i+1, it.Name)
			}
			lostLast = !it.Featured
			assert.Equal(t, lostLast, s.State().GuaranteedFeatured)
		}
		assert.Greater(t, fives, 0)
	}
}

func TestFeaturedWithinTwoCaps(t *testing.T) {
	t.Parallel()

	for seed := uint64(0); seed < 30; seed++ {
		s := newTestSession(t, Character, seed)
		found := false
		for b := 0; b < 18 && !found; b++ {
			got, ok := s.Roll()
			require.True(t, ok)
			for _, it := range got {
				if it.Name == "Ganyu" {
					found = true
				}
			}
		}
		assert.True(t, found, "seed %d: featured item not obtained within 180 pulls", seed)
	}
}

func TestStandardBannerNeverGuarantees(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, Standard, 8)
	for i := 0; i < 500; i++ {
		it, _ := s.RollOnce()
		assert.False(t, it.Featured)
		assert.False(t, s.State().GuaranteedFeatured)
	}
}

func TestBeginnerBatches(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, Beginner, 1)

	first, ok := s.Roll()
	require.True(t, ok)
	require.Len(t, first, BatchSize)
	assert.Equal(t, "Noelle", first[0].Name)
	assert.Greater(t, BatchSize-countRating(first, item.ThreeStar), 0)
	assert.Equal(t, 10, s.AttemptsCount())

	second, ok := s.Roll()
	require.True(t, ok)
	assert.Greater(t, BatchSize-countRating(second, item.ThreeStar), 0)

	third, ok := s.Roll()
	assert.False(t, ok)
	assert.Nil(t, third)
	assert.Equal(t, 20, s.AttemptsCount())

	_, ok = s.RollOnce()
	assert.False(t, ok)
	assert.Equal(t, 20, s.AttemptsCount())
}

func TestBeginnerSinglesDisableBatch(t *testing.T) {
	t.Parallel()

	disabled := 0
	s := newTestSession(t, Beginner, 3, WithBatchDisabled(func() { disabled++ }))

	for i := 0; i < 11; i++ {
		it, ok := s.RollOnce()
		require.True(t, ok)
		if i == 0 {
			assert.Equal(t, "Noelle", it.Name)
		}
	}
	assert.Equal(t, 1, disabled)

	before := s.State()
	got, ok := s.Roll()
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.Equal(t, before, s.State(), "refused batch must not mutate state")

	for i := 0; i < 8; i++ {
		_, ok := s.RollOnce()
		require.True(t, ok)
	}
	_, ok = s.Roll()
	assert.False(t, ok)

	_, ok = s.RollOnce()
	require.True(t, ok)
	left, limited := s.Remaining()
	assert.True(t, limited)
	assert.Equal(t, 0, left)

	_, ok = s.RollOnce()
	assert.False(t, ok)
	assert.Equal(t, 1, disabled, "callback fires once")
}

func TestUnlimitedBannersReportNoBudget(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, Character, 1)
	_, limited := s.Remaining()
	assert.False(t, limited)
	assert.True(t, s.BatchAvailable())
}

func TestSessionDeterminism(t *testing.T) {
	t.Parallel()

	run := func() ([]string, gacha.PityState) {
		s := newTestSession(t, Character, 77)
		var names []string
		for i := 0; i < 5; i++ {
			it, _ := s.RollOnce()
			names = append(names, it.Name)
		}
		for i := 0; i < 20; i++ {
			got, _ := s.Roll()
			for _, it := range got {
				names = append(names, it.Name)
			}
		}
		return names, s.State()
	}
	a, sa := run()
	b, sb := run()
	assert.Equal(t, a, b)
	assert.Equal(t, sa, sb)
}

func TestSessionsAreIndependent(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, Character)
	a, err := NewSession(cfg, WithRNG(gacha.NewSeededRNG(1)))
	require.NoError(t, err)
	b, err := NewSession(cfg, WithRNG(gacha.NewSeededRNG(1)))
	require.NoError(t, err)

	a.Roll()
	assert.Equal(t, 10, a.AttemptsCount())
	assert.Equal(t, 0, b.AttemptsCount())
	assert.Equal(t, gacha.PityState{}, b.State())
}

func TestNewSessionRejectsBadConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
		msg     string
	}{
		{
			name:    "empty rating bucket",
			mutate:  func(c *Config) { c.Items = baseItems() },
			wantErr: item.ErrInvalidPool,
			msg:     "no 5* items",
		},
		{
			name:    "rate-up without featured",
			mutate:  func(c *Config) { c.Items = append(baseItems(), standardFives()...) },
			wantErr: ErrInvalidConfig,
			msg:     "featured 5*",
		},
		{
			name:    "missing first pull",
			mutate:  func(c *Config) { c.FirstPull = "Amber" },
			wantErr: ErrInvalidConfig,
			msg:     "first pull",
		},
		{
			name:    "negative budget",
			mutate:  func(c *Config) { c.Budget = -1 },
			wantErr: ErrInvalidConfig,
			msg:     "budget",
		},
		{
			name:    "rate-up streak above one",
			mutate:  func(c *Config) { c.RateUp = &RateUpConfig{OffProbs: []float64{0.5}, MaxOff: 2} },
			wantErr: ErrInvalidConfig,
			msg:     "max_off",
		},
		{
			name:    "rate-up streak from off probs",
			mutate:  func(c *Config) { c.RateUp = &RateUpConfig{OffProbs: []float64{0.5, 0.5}} },
			wantErr: ErrInvalidConfig,
			msg:     "max_off",
		},
		{
			name:    "bad rates",
			mutate:  func(c *Config) { c.Rates.Base5 = 2 },
			wantErr: gacha.ErrInvalidRates,
			msg:     "base5",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := testConfig(t, Character)
			tc.mutate(&cfg)
			_, err := NewSession(cfg)
			require.ErrorIs(t, err, tc.wantErr)
			assert.ErrorContains(t, err, tc.msg)
		})
	}
}

func TestNilRNGKeepsDefaultSource(t *testing.T) {
	t.Parallel()

	s, err := NewSession(testConfig(t, Standard), WithRNG(nil))
	require.NoError(t, err)

	require.NotPanics(t, func() {
		_, ok := s.RollOnce()
		assert.True(t, ok)
		items, ok := s.Roll()
		assert.True(t, ok)
		assert.Len(t, items, BatchSize)
	})
	assert.Equal(t, 11, s.AttemptsCount())
}

func TestFeaturedRequiresRateUp(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, Weapon)
	cfg.Items = append(cfg.Items, item.Item{Name: "Staff of Homa", Rating: item.FiveStar, Category: item.Weapon, Featured: true})
	_, err := NewSession(cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	k, err := ParseKind("weapon")
	require.NoError(t, err)
	assert.Equal(t, Weapon, k)

	_, err = ParseKind("chronicled")
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = Preset("chronicled")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
