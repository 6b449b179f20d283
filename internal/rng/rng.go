// Package rng provides the injectable randomness source carried through
// the hero and settlement engines. Production uses a seeded PRNG
// (crypto-seeded when no seed is given); tests inject fixed sequences to
// make ticks deterministic.
package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"
)

// Source is the randomness contract the engines accept.
type Source interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
	// IntN returns a uniform value in [0, n). n must be > 0.
	IntN(n int) int
}

type seeded struct {
	r *rand.Rand
}

// New returns a seeded Source. Seed 0 draws a seed from crypto/rand so
// unseeded worlds differ between runs.
func New(seed int64) Source {
	if seed == 0 {
		seed = cryptoSeed()
	}
	return &seeded{r: rand.New(rand.NewSource(seed))}
}

func (s *seeded) Float64() float64 { return s.r.Float64() }
func (s *seeded) IntN(n int) int   { return s.r.Intn(n) }

func cryptoSeed() int64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		// crypto/rand failing is effectively unreachable; fall back to a
		// fixed seed rather than panic inside world setup.
		return 1
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
}

// Locked wraps a Source for shared use across tick workers.
type Locked struct {
	mu  sync.Mutex
	src Source
}

// NewLocked returns a mutex-guarded view of src.
func NewLocked(src Source) *Locked {
	return &Locked{src: src}
}

func (l *Locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}

func (l *Locked) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.IntN(n)
}

// Sequence replays a fixed list of floats, cycling when exhausted.
// IntN derives its result from the next float in the stream.
type Sequence struct {
	Values []float64
	i      int
}

func (s *Sequence) next() float64 {
	if len(s.Values) == 0 {
		return 0.5
	}
	v := s.Values[s.i%len(s.Values)]
	s.i++
	return v
}

func (s *Sequence) Float64() float64 { return s.next() }

func (s *Sequence) IntN(n int) int {
	v := int(s.next() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}
