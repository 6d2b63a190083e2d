package gacha

import (
	"errors"
	"testing"

	"github.com/xtding233/gacha-wish/internal/item"
)

func testPool(t *testing.T) *item.Pool {
	t.Helper()
	p, err := item.NewPool([]item.Item{
		{Name: "Slingshot", Rating: item.ThreeStar, Category: item.Weapon},
		{Name: "Debate Club", Rating: item.ThreeStar, Category: item.Weapon},
		{Name: "Noelle", Rating: item.FourStar, Category: item.Character},
		{Name: "Xingqiu", Rating: item.FourStar, Category: item.Character},
		{Name: "Ganyu", Rating: item.FiveStar, Category: item.Character, Featured: true},
		{Name: "Diluc", Rating: item.FiveStar, Category: item.Character},
		{Name: "Qiqi", Rating: item.FiveStar, Category: item.Character},
	})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func characterRates() Rates {
	return Rates{
		Base5: 0.006,
		Base4: 0.051,
		Pity5: 90,
		Pity4: 10,
		Soft5: &SoftPityConfig{StartAt: 73, TargetProb: 0.9},
		Soft4: &SoftPityConfig{StartAt: 7, TargetProb: 0.6},
	}
}

func TestNewEngineRejectsBadRates(t *testing.T) {
	_, err := NewEngine(Rates{Base5: 0.7, Base4: 0.5}, nil, nil)
	if !errors.Is(err, ErrInvalidRates) {
		t.Fatalf("want ErrInvalidRates, got %v", err)
	}
	_, err = NewEngine(Rates{Base5: 0.01, Soft5: &SoftPityConfig{StartAt: 1, TargetProb: 0.5}}, nil, nil)
	if !errors.Is(err, ErrInvalidRates) {
		t.Fatalf("soft ramp without hard pity must fail, got %v", err)
	}
}

func TestEngineHardPityForcesFiveStar(t *testing.T) {
	pool := testPool(t)
	// base rates of zero leave hard pity as the only way to a 4* or 5*
	e, err := NewEngine(Rates{Pity5: 90, Pity4: 10}, nil, NewSeededRNG(3))
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 180; i++ {
		it := e.Roll(pool)
		switch {
		case i%90 == 0:
			if it.Rating != item.FiveStar {
				t.Fatalf("pull %d should be forced 5*, got %v", i, it.Rating)
			}
		case i%10 == 0:
			if it.Rating != item.FourStar {
				t.Fatalf("pull %d should be forced 4*, got %v", i, it.Rating)
			}
		default:
			if it.Rating != item.ThreeStar {
				t.Fatalf("pull %d should be 3*, got %v", i, it.Rating)
			}
		}
	}
	if got := e.State().TotalAttempts; got != 180 {
		t.Fatalf("total attempts = %d", got)
	}
}

func TestEngineRateUpLaw(t *testing.T) {
	pool := testPool(t)
	e, err := NewEngine(characterRates(), NewRateUp(nil, 1), NewSeededRNG(11))
	if err != nil {
		t.Fatal(err)
	}
	var lastFive *item.Item
	fives := 0
	for i := 0; i < 20000; i++ {
		it := e.Roll(pool)
		if it.Rating != item.FiveStar {
			continue
		}
		fives++
		if lastFive != nil && !lastFive.Featured && !it.Featured {
			t.Fatalf("two consecutive off-banner 5*: %s then %s", lastFive.Name, it.Name)
		}
		cp := it
		lastFive = &cp
	}
	if fives == 0 {
		t.Fatalf("expected some 5* in 20000 pulls")
	}
}

func TestEngineAcceptKeepsCounters(t *testing.T) {
	pool := testPool(t)
	e, err := NewEngine(characterRates(), NewRateUp(nil, 1), NewSeededRNG(1))
	if err != nil {
		t.Fatal(err)
	}
	diluc, _ := pool.Lookup("Diluc")
	e.Accept(diluc)
	st := e.State()
	if !st.GuaranteedFeatured || st.TotalAttempts != 1 || st.SinceLast5 != 0 {
		t.Fatalf("accepting an off-banner 5* should guarantee the next; got %+v", st)
	}
}

func TestEngineDeterminism(t *testing.T) {
	pool := testPool(t)
	run := func() ([]string, PityState) {
		e, err := NewEngine(characterRates(), NewRateUp(nil, 1), NewSeededRNG(99))
		if err != nil {
			t.Fatal(err)
		}
		names := make([]string, 0, 300)
		for i := 0; i < 300; i++ {
			names = append(names, e.Roll(pool).Name)
		}
		return names, e.State()
	}
	a, sa := run()
	b, sb := run()
	if sa != sb {
		t.Fatalf("final state differs: %+v vs %+v", sa, sb)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("pull %d differs: %s vs %s", i, a[i], b[i])
		}
	}
}
