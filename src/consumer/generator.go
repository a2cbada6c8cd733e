// Package consumer implements the generator adapters that pull seed
// material out of a ring (spec §4.6-§4.9): they either replace an
// underlying generator outright or advance a jumpable one by a
// seed-shaped distance.
package consumer

import (
	"encoding/binary"
	"math/rand/v2"
)

// Generator is the minimal random-number surface a consumer delegates to.
// It stands in for spec.md's "underlying generator", whose concrete
// algorithm is explicitly out of scope (spec §1).
type Generator interface {
	Uint64() uint64
	Int64() int64
	Int() int
	Float64() float64
	Bool() bool
	Bytes(p []byte)
}

// Jumpable is a Generator whose state space is large enough that distinct
// jump distances are effectively independent (spec §4.9, §6).
type Jumpable interface {
	Generator
	JumpPowerOfTwo(k int)
}

// SplittableGenerator is a Generator that can produce an independent
// descendant, used as the alternate seed source for
// ThreadLocalReplacingGenerator.SplitSeeded (spec §4.7).
type SplittableGenerator interface {
	Generator
	Split() SplittableGenerator
}

// GeneratorFactory is the consumer-side collaborator contract (spec §6):
// given a seed byte buffer of length S, return a fresh generator instance
// whose state is fully determined by the seed.
type GeneratorFactory func(seed []byte) (Generator, error)

// randGenerator adapts math/rand/v2's *rand.Rand to Generator.
type randGenerator struct {
	r *rand.Rand
}

func (g *randGenerator) Uint64() uint64   { return g.r.Uint64() }
func (g *randGenerator) Int64() int64     { return g.r.Int64() }
func (g *randGenerator) Int() int         { return g.r.Int() }
func (g *randGenerator) Float64() float64 { return g.r.Float64() }
func (g *randGenerator) Bool() bool       { return g.r.Uint64()&1 == 1 }
func (g *randGenerator) Bytes(p []byte) {
	for len(p) > 0 {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], g.r.Uint64())
		n := copy(p, buf[:])
		p = p[n:]
	}
}

// ChaCha8SeedSize is the seed length NewChaCha8Factory requires.
const ChaCha8SeedSize = 32

// NewChaCha8Factory returns a GeneratorFactory whose generators are seeded
// deterministically from exactly ChaCha8SeedSize bytes, using
// math/rand/v2's ChaCha8 source. This is the default underlying generator
// for the basic and thread-local replacing consumers; spec §1 places the
// choice of PRNG algorithm out of scope, so any deterministic factory
// satisfies the contract, and math/rand/v2 is the standard-library choice
// since no example repo in the retrieval pack ships a seed-from-bytes PRNG
// factory library.
func NewChaCha8Factory() GeneratorFactory {
	return func(seed []byte) (Generator, error) {
		if len(seed) != ChaCha8SeedSize {
			return nil, ErrInvalidArgument
		}
		var s [ChaCha8SeedSize]byte
		copy(s[:], seed)
		return &randGenerator{r: rand.New(rand.NewChaCha8(s))}, nil
	}
}

// CounterJumpGenerator is a splitmix64-based Jumpable generator: its state
// is a single counter advanced by a fixed increment per step, so jumping by
// 2^k steps is an O(1) add of 2^k increments. It gives
// JumpReseededGenerator (spec §4.9) a concrete delegate to drive and test;
// the choice of jumpable algorithm is, like the replacing generators'
// delegate, explicitly out of scope for this spec (spec §1).
type CounterJumpGenerator struct {
	state uint64
}

// NewCounterJumpGenerator returns a CounterJumpGenerator with the given
// initial counter value.
func NewCounterJumpGenerator(seed uint64) *CounterJumpGenerator {
	return &CounterJumpGenerator{state: seed}
}

// JumpPowerOfTwo advances the generator by 2^k steps, i.e. the counter by
// 2^k times the per-step increment, wrapping modulo 2^64. For k > 63 that
// product is 0 mod 2^64, so the call is a no-op, as it is for k < 0.
func (g *CounterJumpGenerator) JumpPowerOfTwo(k int) {
	if k < 0 || k > 63 {
		return
	}
	g.state += (uint64(1) << uint(k)) * counterJumpIncrement
}

// counterJumpIncrement is splitmix64's golden-ratio per-step increment.
const counterJumpIncrement = 0x9E3779B97F4A7C15

// Uint64 returns splitmix64(state) and advances state by its golden-ratio
// increment.
func (g *CounterJumpGenerator) Uint64() uint64 {
	g.state += counterJumpIncrement
	z := g.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

func (g *CounterJumpGenerator) Int64() int64     { return int64(g.Uint64() >> 1) }
func (g *CounterJumpGenerator) Int() int         { return int(g.Int64()) }
func (g *CounterJumpGenerator) Float64() float64 { return float64(g.Uint64()>>11) * (1.0 / (1 << 53)) }
func (g *CounterJumpGenerator) Bool() bool       { return g.Uint64()&1 == 1 }

func (g *CounterJumpGenerator) Bytes(p []byte) {
	for len(p) > 0 {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], g.Uint64())
		n := copy(p, buf[:])
		p = p[n:]
	}
}
