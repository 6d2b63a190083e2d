package gacha

import "errors"

var ErrInvalidProb = errors.New("invalid probability p; must be 0..1")

// Draw under p, return if it is hit
// p <=0 => no hit. p>= 1 => must hit. otherwise, rng.Float64() < p
func Draw(p float64, rng RandomSource) (bool, error) {
	if err := validateProb(p); err != nil {
		return false, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	return hit(p, rng), nil
}

func hit(p float64, rng RandomSource) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return rng.Float64() < p
}

// pick selects uniformly among xs, which must be non-empty.
func pick[T any](xs []T, rng RandomSource) T {
	if len(xs) == 1 {
		return xs[0]
	}
	return xs[rng.IntN(len(xs))]
}
