package consumer

import (
	"context"

	"go.uber.org/atomic"

	"github.com/lost-woods/random/src/ring"
)

// EntropyCountingGenerator wraps a BasicReplacingGenerator and maintains a
// signed entropy_bits counter, initialized to S*8 and reset to S*8 on every
// reseed (spec §4.8). The counter is advisory: it never gates operation, it
// is exposed for callers that want to force a reseed themselves.
type EntropyCountingGenerator struct {
	basic       *BasicReplacingGenerator
	entropyBits atomic.Int64
	fresh       int64
}

// NewEntropyCountingGenerator builds an entropy-counting generator with the
// given seed size and factory, drawing from r.
func NewEntropyCountingGenerator(r *ring.Ring, seedSize int, factory GeneratorFactory) *EntropyCountingGenerator {
	fresh := int64(seedSize) * 8
	g := &EntropyCountingGenerator{
		basic: NewBasicReplacingGenerator(r, seedSize, factory),
		fresh: fresh,
	}
	g.entropyBits.Store(fresh)
	g.basic.onReseed = func() { g.entropyBits.Store(g.fresh) }
	return g
}

// EntropyBits returns the current advisory entropy-bit balance. It can go
// negative when a caller overdraws between reseeds -- that is intentional,
// see P7 in SPEC_FULL.md: a signed, non-wrapping counter makes overdraw
// visible instead of silently hiding it.
func (g *EntropyCountingGenerator) EntropyBits() int64 { return g.entropyBits.Load() }

// Bool debits 1 bit per spec §4.8.
func (g *EntropyCountingGenerator) Bool(ctx context.Context) (bool, error) {
	v, err := g.basic.Bool(ctx)
	if err != nil {
		return false, err
	}
	g.entropyBits.Sub(1)
	return v, nil
}

// Bytes debits 8*len(p) bits per spec §4.8.
func (g *EntropyCountingGenerator) Bytes(ctx context.Context, p []byte) error {
	if err := g.basic.Bytes(ctx, p); err != nil {
		return err
	}
	g.entropyBits.Sub(int64(8 * len(p)))
	return nil
}

// Int64 debits 64 bits per spec §4.8's "fixed-width ints by their width".
func (g *EntropyCountingGenerator) Int64(ctx context.Context) (int64, error) {
	v, err := g.basic.Int64(ctx)
	if err != nil {
		return 0, err
	}
	g.entropyBits.Sub(64)
	return v, nil
}

// Int debits 64 bits, matching Go's platform-native int width on every
// platform this module targets.
func (g *EntropyCountingGenerator) Int(ctx context.Context) (int, error) {
	v, err := g.basic.Int(ctx)
	if err != nil {
		return 0, err
	}
	g.entropyBits.Sub(64)
	return v, nil
}

// Float64 debits 64 bits, billing the full width of the Uint64 draw
// math/rand/v2's Float64 scales down from. Spec §9 leaves the exact debit
// for float draws unspecified; see the Open Question decision in
// DESIGN.md for why the full underlying width is billed rather than a
// smaller mantissa-only count.
func (g *EntropyCountingGenerator) Float64(ctx context.Context) (float64, error) {
	v, err := g.basic.Float64(ctx)
	if err != nil {
		return 0, err
	}
	g.entropyBits.Sub(64)
	return v, nil
}
