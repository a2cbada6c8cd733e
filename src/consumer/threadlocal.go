package consumer

import (
	"context"
	"sync"

	"github.com/lost-woods/random/src/ring"
)

// ThreadHandle is an opaque per-caller key used by
// ThreadLocalReplacingGenerator in place of goroutine-local storage, which
// the Go runtime does not expose (spec §9: "an explicit per-thread map
// keyed by the thread identifier"). Callers should allocate one handle per
// logical worker and pass it on every call.
type ThreadHandle struct{}

// NewThreadHandle allocates a fresh handle.
func NewThreadHandle() *ThreadHandle { return &ThreadHandle{} }

// ThreadLocalReplacingGenerator is BasicReplacingGenerator's per-thread twin
// (spec §4.7): each ThreadHandle gets its own underlying generator, lazily
// constructed on first use.
type ThreadLocalReplacingGenerator struct {
	r        *ring.Ring
	seedSize int
	factory  GeneratorFactory
	slots    sync.Map // *ThreadHandle -> Generator

	// initSeed, if set, supplies the *initial* per-handle seed instead of
	// blocking on the ring; opportunistic reseeds still poll the ring
	// regardless. Populated only by SplitSeeded.
	initSeed SplittableGenerator
}

// NewThreadLocalReplacingGenerator builds a thread-local generator whose
// per-handle seeds -- both initial and opportunistic reseeds -- come from r.
func NewThreadLocalReplacingGenerator(r *ring.Ring, seedSize int, factory GeneratorFactory) *ThreadLocalReplacingGenerator {
	return &ThreadLocalReplacingGenerator{r: r, seedSize: seedSize, factory: factory}
}

func (g *ThreadLocalReplacingGenerator) ensure(ctx context.Context, h *ThreadHandle) (Generator, error) {
	if v, ok := g.slots.Load(h); ok {
		cur := v.(Generator)
		scratch := make([]byte, g.seedSize)
		reseeded, err := g.r.PollExact(scratch, 0, g.seedSize)
		if err != nil {
			return nil, err
		}
		if reseeded {
			gen, err := g.factory(scratch)
			if err != nil {
				return nil, err
			}
			g.slots.Store(h, gen)
			return gen, nil
		}
		return cur, nil
	}

	scratch := make([]byte, g.seedSize)
	if g.initSeed != nil {
		g.initSeed.Bytes(scratch)
	} else if err := g.r.Read(ctx, scratch, 0, g.seedSize); err != nil {
		return nil, err
	}
	gen, err := g.factory(scratch)
	if err != nil {
		return nil, err
	}
	g.slots.Store(h, gen)
	return gen, nil
}

// Uint64 delegates to h's generator, lazily constructing or opportunistically
// reseeding it first.
func (g *ThreadLocalReplacingGenerator) Uint64(ctx context.Context, h *ThreadHandle) (uint64, error) {
	gen, err := g.ensure(ctx, h)
	if err != nil {
		return 0, err
	}
	return gen.Uint64(), nil
}

// Int64 delegates to h's generator.
func (g *ThreadLocalReplacingGenerator) Int64(ctx context.Context, h *ThreadHandle) (int64, error) {
	gen, err := g.ensure(ctx, h)
	if err != nil {
		return 0, err
	}
	return gen.Int64(), nil
}

// Bytes fills p from h's generator.
func (g *ThreadLocalReplacingGenerator) Bytes(ctx context.Context, h *ThreadHandle, p []byte) error {
	gen, err := g.ensure(ctx, h)
	if err != nil {
		return err
	}
	gen.Bytes(p)
	return nil
}

// Split returns the same adapter: each thread already has its own
// generator, so logical splitting is a no-op (spec §4.7).
func (g *ThreadLocalReplacingGenerator) Split() *ThreadLocalReplacingGenerator {
	return g
}

// SplitSeeded returns a new thread-local generator whose *initial* per-handle
// seed comes from seedSource instead of the ring; opportunistic reseeds
// still poll the same ring as g does (spec §4.7: "An explicit
// splittable-seeded variant uses a supplied splittable generator as the
// seed source instead of the ring").
func (g *ThreadLocalReplacingGenerator) SplitSeeded(seedSource SplittableGenerator) *ThreadLocalReplacingGenerator {
	return &ThreadLocalReplacingGenerator{
		r:        g.r,
		seedSize: g.seedSize,
		factory:  g.factory,
		initSeed: seedSource.Split(),
	}
}
