package gacha

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource is the only randomness the engine consumes. Sessions take
// one explicitly so pity boundaries and guarantee sequences can be replayed.
type RandomSource interface {
	Float64() float64 // [0, 1)
	IntN(n int) int   // [0, n)
}

// crypto random : default generation method
type cryptoRNG struct{}

func (cryptoRNG) Float64() float64 {
	// Read 53bit random => [0, 1)
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		return rand.Float64()
	}
	u := binary.BigEndian.Uint64(buf[:]) >> 11 // 53 bits
	return float64(u) / (1 << 53)
}

func (c cryptoRNG) IntN(n int) int {
	i := int(c.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

func DefaultRNG() RandomSource { return cryptoRNG{} }

// Replicable RNG (tests, Monte Carlo, seeded sessions)
type seededRNG struct{ r *rand.Rand }

func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }

func (s *seededRNG) IntN(n int) int { return s.r.IntN(n) }
