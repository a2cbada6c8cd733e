package consumer

import (
	"context"

	"github.com/lost-woods/random/src/ring"
)

// BasicReplacingGenerator wraps an underlying generator built from ring
// seed material, replacing it wholesale whenever fresh bytes are available
// (spec §4.6). It is not safe for concurrent use by multiple goroutines
// sharing one instance -- see ThreadLocalReplacingGenerator for that.
type BasicReplacingGenerator struct {
	r        *ring.Ring
	seedSize int
	scratch  []byte
	factory  GeneratorFactory
	current  Generator

	// onReseed, if set, is invoked every time ensure() installs a new
	// current generator (initial construction or opportunistic reseed).
	// EntropyCountingGenerator uses this hook to reset its bit counter.
	onReseed func()
}

// NewBasicReplacingGenerator builds a generator that draws seedSize-byte
// seeds from r and constructs delegates with factory.
func NewBasicReplacingGenerator(r *ring.Ring, seedSize int, factory GeneratorFactory) *BasicReplacingGenerator {
	return &BasicReplacingGenerator{
		r:        r,
		seedSize: seedSize,
		scratch:  make([]byte, seedSize),
		factory:  factory,
	}
}

// ensure blocks on the ring for the first seed; afterwards it
// opportunistically reseeds via a nonblocking exact poll (spec §4.6).
func (g *BasicReplacingGenerator) ensure(ctx context.Context) error {
	if g.current == nil {
		if err := g.r.Read(ctx, g.scratch, 0, g.seedSize); err != nil {
			return err
		}
		gen, err := g.factory(g.scratch)
		if err != nil {
			return err
		}
		g.current = gen
		if g.onReseed != nil {
			g.onReseed()
		}
		return nil
	}

	ok, err := g.r.PollExact(g.scratch, 0, g.seedSize)
	if err != nil {
		return err
	}
	if ok {
		gen, err := g.factory(g.scratch)
		if err != nil {
			return err
		}
		g.current = gen
		if g.onReseed != nil {
			g.onReseed()
		}
	}
	return nil
}

// Uint64 delegates to the current underlying generator, reseeding first per
// the §4.6 policy.
func (g *BasicReplacingGenerator) Uint64(ctx context.Context) (uint64, error) {
	if err := g.ensure(ctx); err != nil {
		return 0, err
	}
	return g.current.Uint64(), nil
}

// Int64 delegates to the current underlying generator, reseeding first.
func (g *BasicReplacingGenerator) Int64(ctx context.Context) (int64, error) {
	if err := g.ensure(ctx); err != nil {
		return 0, err
	}
	return g.current.Int64(), nil
}

// Int delegates to the current underlying generator, reseeding first.
func (g *BasicReplacingGenerator) Int(ctx context.Context) (int, error) {
	if err := g.ensure(ctx); err != nil {
		return 0, err
	}
	return g.current.Int(), nil
}

// Float64 delegates to the current underlying generator, reseeding first.
func (g *BasicReplacingGenerator) Float64(ctx context.Context) (float64, error) {
	if err := g.ensure(ctx); err != nil {
		return 0, err
	}
	return g.current.Float64(), nil
}

// Bool delegates to the current underlying generator, reseeding first.
func (g *BasicReplacingGenerator) Bool(ctx context.Context) (bool, error) {
	if err := g.ensure(ctx); err != nil {
		return false, err
	}
	return g.current.Bool(), nil
}

// Bytes fills p from the current underlying generator, reseeding first.
func (g *BasicReplacingGenerator) Bytes(ctx context.Context, p []byte) error {
	if err := g.ensure(ctx); err != nil {
		return err
	}
	g.current.Bytes(p)
	return nil
}

// Reader adapts g to io.Reader, backed by Bytes, for callers (like the
// demo HTTP handlers in src/api) that only need a plain byte stream and
// don't need per-call error/context threading.
func (g *BasicReplacingGenerator) Reader(ctx context.Context) *generatorReader {
	return &generatorReader{g: g, ctx: ctx}
}

type generatorReader struct {
	g   *BasicReplacingGenerator
	ctx context.Context
}

func (gr *generatorReader) Read(p []byte) (int, error) {
	if err := gr.g.Bytes(gr.ctx, p); err != nil {
		return 0, err
	}
	return len(p), nil
}
