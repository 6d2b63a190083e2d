package gacha

import "testing"

// fixedRNG replays a list of Float64 values and always picks index 0.
type fixedRNG struct {
	vals []float64
	i    int
}

func (f *fixedRNG) Float64() float64 {
	v := f.vals[f.i%len(f.vals)]
	f.i++
	return v
}

func (f *fixedRNG) IntN(int) int { return 0 }

func TestRateUpLossGuaranteesNext(t *testing.T) {
	ru := NewRateUp(nil, 0)
	if ru.MaxOff != 1 || len(ru.OffProbs) != 1 || ru.OffProbs[0] != 0.5 {
		t.Fatalf("default should be a single 50/50; got %+v", ru)
	}
	// 0.1 < 0.5 => off-banner
	rng := &fixedRNG{vals: []float64{0.1}}
	if ru.Resolve(rng) {
		t.Fatalf("first hit should lose the 50/50")
	}
	if !ru.GuaranteedNext {
		t.Fatalf("a loss must set the guarantee")
	}
	if !ru.Resolve(rng) {
		t.Fatalf("guaranteed hit must be featured")
	}
	if ru.GuaranteedNext || ru.OffStreak != 0 {
		t.Fatalf("featured hit must clear state; got %+v", ru)
	}
}

func TestRateUpWinKeepsNoGuarantee(t *testing.T) {
	ru := NewRateUp([]float64{0.5}, 1)
	rng := &fixedRNG{vals: []float64{0.9}}
	for i := 0; i < 5; i++ {
		if !ru.Resolve(rng) {
			t.Fatalf("0.9 >= 0.5 should win, i=%d", i)
		}
		if ru.GuaranteedNext {
			t.Fatalf("wins never set the guarantee")
		}
	}
}

func TestRateUpMultiOff(t *testing.T) {
	ru := NewRateUp([]float64{0.5, 0.4}, 2)
	rng := &fixedRNG{vals: []float64{0.0}}
	ru.Resolve(rng)
	if ru.GuaranteedNext {
		t.Fatalf("one off of two allowed should not guarantee yet")
	}
	ru.Resolve(rng)
	if !ru.GuaranteedNext {
		t.Fatalf("second consecutive off should guarantee")
	}
	if !ru.Resolve(rng) {
		t.Fatalf("third hit must be featured")
	}
}

func TestRateUpClampsBadProbs(t *testing.T) {
	ru := NewRateUp([]float64{0, 1.5}, 0)
	for _, p := range ru.OffProbs {
		if p != 0.5 {
			t.Fatalf("out of range probabilities fall back to 0.5; got %v", ru.OffProbs)
		}
	}
}
