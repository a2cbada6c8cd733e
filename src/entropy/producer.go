package entropy

import (
	"context"
	"errors"
	"weak"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/lost-woods/random/src/ring"
)

// Producer is a long-running worker that fills a staging buffer from a
// Source and pushes it into a ring via the weak-reference form of blocking
// write (spec §4.5), so it exits cleanly once the ring is no longer
// reachable instead of spinning against a buffer nobody will ever drain.
type Producer struct {
	ringRef weak.Pointer[ring.Ring]
	source  Source
	staging []byte
	log     *zap.SugaredLogger
}

// NewProducer builds a producer that reads len(staging) bytes at a time
// from source and writes them into r.
func NewProducer(r *ring.Ring, source Source, stagingSize int, log *zap.SugaredLogger) *Producer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Producer{
		ringRef: weak.Make(r),
		source:  source,
		staging: make([]byte, stagingSize),
		log:     log,
	}
}

// Run executes the producer loop until ctx is cancelled or the ring becomes
// unreachable (state machine: initialized -> running -> terminated, spec
// §4.10). Any error from the entropy source is the caller's policy per
// spec §4.11: Run logs it and keeps retrying rather than exiting.
func (p *Producer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := p.source.Fill(p.staging); err != nil {
			p.log.Warnw("entropy source read failed, retrying", "error", err)
			continue
		}

		if err := ring.WriteWeak(ctx, p.ringRef, p.staging, 0, len(p.staging)); err != nil {
			if errors.Is(err, ring.ErrCancelled) {
				return nil
			}
			return err
		}

		if p.ringRef.Value() == nil {
			p.log.Debugw("ring no longer reachable, producer exiting")
			return nil
		}
	}
}

// RunAll starts every producer concurrently under ctx and blocks until all
// of them return, folding any non-cancellation errors together so a caller
// managing a whole producer pool sees a single combined error.
func RunAll(ctx context.Context, producers ...*Producer) error {
	results := make(chan error, len(producers))
	for _, p := range producers {
		go func(p *Producer) { results <- p.Run(ctx) }(p)
	}

	var combined error
	for range producers {
		combined = multierr.Append(combined, <-results)
	}
	return combined
}
