package consumer

import (
	"context"

	"github.com/lost-woods/random/src/ring"
)

// JumpReseededGenerator advances a Jumpable delegate by a seed-shaped
// distance instead of replacing its state outright (spec §4.9): whenever
// an exact poll of the ring succeeds, every set bit at position i in the
// seed becomes one call to JumpPowerOfTwo(i).
type JumpReseededGenerator struct {
	r        *ring.Ring
	seedSize int
	scratch  []byte
	delegate Jumpable
}

// NewJumpReseededGenerator builds a jump-reseeded generator wrapping
// delegate, drawing seedSize-byte jump distances from r.
func NewJumpReseededGenerator(r *ring.Ring, seedSize int, delegate Jumpable) *JumpReseededGenerator {
	return &JumpReseededGenerator{r: r, seedSize: seedSize, scratch: make([]byte, seedSize), delegate: delegate}
}

// applySeedJumps walks seed's bits most-significant-bit first within each
// byte and calls jump once per set bit, per spec §9's Open Question
// decision ("for each set bit at position i in the seed, call
// jump_power_of_two(i)"), recorded in DESIGN.md.
func applySeedJumps(seed []byte, jump func(i int)) {
	for i := 0; i < len(seed)*8; i++ {
		byteIndex := i / 8
		bitOffset := uint(7 - (i % 8))
		if (seed[byteIndex]>>bitOffset)&1 != 0 {
			jump(i)
		}
	}
}

func (g *JumpReseededGenerator) maybeReseed() error {
	ok, err := g.r.PollExact(g.scratch, 0, g.seedSize)
	if err != nil {
		return err
	}
	if ok {
		applySeedJumps(g.scratch, g.delegate.JumpPowerOfTwo)
	}
	return nil
}

// Uint64 jumps the delegate by the seed's shape (if fresh bytes were
// available) and delegates the draw.
func (g *JumpReseededGenerator) Uint64() (uint64, error) {
	if err := g.maybeReseed(); err != nil {
		return 0, err
	}
	return g.delegate.Uint64(), nil
}

// Int64 jumps the delegate by the seed's shape and delegates the draw.
func (g *JumpReseededGenerator) Int64() (int64, error) {
	if err := g.maybeReseed(); err != nil {
		return 0, err
	}
	return g.delegate.Int64(), nil
}

// Bytes jumps the delegate by the seed's shape and fills p.
func (g *JumpReseededGenerator) Bytes(p []byte) error {
	if err := g.maybeReseed(); err != nil {
		return err
	}
	g.delegate.Bytes(p)
	return nil
}

// Split returns an independent generator seeded from a fresh S bytes drawn
// from the ring, per spec §9's stated default for the Open Question left by
// the source ("split ... is left unimplemented").
func (g *JumpReseededGenerator) Split(ctx context.Context, newDelegate func() Jumpable) (*JumpReseededGenerator, error) {
	seed := make([]byte, g.seedSize)
	if err := g.r.Read(ctx, seed, 0, g.seedSize); err != nil {
		return nil, err
	}
	child := newDelegate()
	applySeedJumps(seed, child.JumpPowerOfTwo)
	return NewJumpReseededGenerator(g.r, g.seedSize, child), nil
}
