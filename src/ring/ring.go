// Package ring implements the lock-free, allocation-free byte ring buffer
// that mediates hand-off between entropy producers and seed consumers.
//
// The ring never exposes a byte that was not written and never hands the
// same logical byte to two readers. All synchronization is done with three
// atomic counters (bytes finished reading is implicit, equal to bytes
// started reading) plus a single compare-and-swap on the write-publish
// path; there are no locks and no per-operation allocation.
package ring

import (
	"context"
	"fmt"
	"runtime"
	"weak"

	"go.uber.org/atomic"
)

// Ring is a fixed-capacity, power-of-two-sized byte ring buffer safe for
// unbounded concurrent use by any number of writers and readers.
type Ring struct {
	capacity uint64
	mask     uint64
	storage  []byte

	wStarted  atomic.Uint64 // bytes claimed by writers
	wFinished atomic.Uint64 // bytes durably written and safe to read
	rStarted  atomic.Uint64 // bytes claimed by readers
}

// New creates a Ring of the given capacity in bytes, which must be a
// positive power of two.
func New(capacity int) (*Ring, error) {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		return nil, ErrInvalidArgument
	}
	return &Ring{
		capacity: uint64(capacity),
		mask:     uint64(capacity - 1),
		storage:  make([]byte, capacity),
	}, nil
}

// Capacity returns the ring's fixed capacity in bytes.
func (r *Ring) Capacity() int {
	return int(r.capacity)
}

// Available returns a point-in-time estimate of how many bytes are
// currently readable: the gap between what has been durably written and
// what readers have already claimed. Under concurrent access the true value
// may have changed by the time the caller sees it; this is a monitoring aid,
// not a synchronization primitive.
func (r *Ring) Available() int {
	n := int64(r.wFinished.Load()) - int64(r.rStarted.Load())
	if n < 0 {
		return 0
	}
	if n > int64(r.capacity) {
		return int(r.capacity)
	}
	return int(n)
}

func boundsOK(off, length, bufLen int) bool {
	return off >= 0 && length >= 0 && off+length <= bufLen
}

// Offer writes up to min(length, capacity) bytes from src[off:off+length]
// and returns the number actually written, which may be zero. A nonzero
// return of k guarantees those k bytes are visible to any later Poll whose
// claim falls into that logical range.
func (r *Ring) Offer(src []byte, off, length int) (int, error) {
	if length < 0 || !boundsOK(off, length, len(src)) {
		return 0, ErrInvalidArgument
	}
	if length == 0 {
		return 0, nil
	}
	if uint64(length) > r.capacity {
		length = int(r.capacity)
	}

	writeStart := r.wStarted.Add(uint64(length)) - uint64(length)
	writeLimit := r.rStarted.Load() + r.capacity

	var actual int
	switch {
	case writeStart >= writeLimit:
		actual = 0
	case writeStart+uint64(length) > writeLimit:
		actual = int(writeLimit - writeStart)
	default:
		actual = length
	}

	if actual > 0 {
		r.copyIn(writeStart, src, off, actual)
		// Reject out-of-order finishes: if a later writer's claim already
		// finished, publishing here would expose the gap this claim left
		// behind. Losing the race just means the bytes are dropped, which
		// is safe for entropy.
		if !r.wFinished.CompareAndSwap(writeStart, writeStart+uint64(actual)) {
			actual = 0
		}
	}

	if actual < length {
		r.wStarted.Sub(uint64(length - actual))
	}
	return actual, nil
}

// Poll reads up to min(length, capacity) bytes into dst[off:off+length] and
// returns the number actually read. A nonzero return is a commitment that
// those logical positions will never be returned again.
func (r *Ring) Poll(dst []byte, off, length int) (int, error) {
	if length < 0 || !boundsOK(off, length, len(dst)) {
		return 0, ErrInvalidArgument
	}
	if length == 0 {
		return 0, nil
	}
	if uint64(length) > r.capacity {
		length = int(r.capacity)
	}

	readStart := r.rStarted.Add(uint64(length)) - uint64(length)
	written := r.wFinished.Load()

	var actual int
	switch {
	case readStart >= written:
		actual = 0
	case readStart+uint64(length) > written:
		actual = int(written - readStart)
	default:
		actual = length
	}

	if actual > 0 {
		r.copyOut(readStart, dst, off, actual)
	}
	if actual < length {
		r.rStarted.Sub(uint64(length - actual))
	}
	return actual, nil
}

// PollExact reads exactly length bytes or none at all. If Poll returns a
// partial read, the claimed-but-unused bytes are pushed back into the ring
// via Offer; any portion that push-back cannot place is simply dropped,
// since dropping entropy is safe.
func (r *Ring) PollExact(dst []byte, off, length int) (bool, error) {
	if length < 0 || !boundsOK(off, length, len(dst)) {
		return false, ErrInvalidArgument
	}
	if uint64(length) > r.capacity {
		return false, nil
	}

	n, err := r.Poll(dst, off, length)
	if err != nil {
		return false, err
	}
	if n == length {
		return true, nil
	}
	if n > 0 {
		r.Offer(dst, off, n)
	}
	return false, nil
}

// Write blocks until exactly length bytes from src[off:off+length] have
// been written, retrying Offer and yielding the scheduler on zero-progress
// iterations. It returns ErrCancelled if ctx is done before completion.
func (r *Ring) Write(ctx context.Context, src []byte, off, length int) error {
	if length < 0 || !boundsOK(off, length, len(src)) {
		return ErrInvalidArgument
	}
	written := 0
	for written < length {
		if err := checkCancelled(ctx); err != nil {
			return err
		}
		n, err := r.Offer(src, off+written, length-written)
		if err != nil {
			return err
		}
		if n == 0 {
			runtime.Gosched()
			continue
		}
		written += n
	}
	return nil
}

// Read blocks until exactly length bytes have been read into
// dst[off:off+length], retrying Poll and yielding the scheduler on
// zero-progress iterations. It returns ErrCancelled if ctx is done before
// completion.
func (r *Ring) Read(ctx context.Context, dst []byte, off, length int) error {
	if length < 0 || !boundsOK(off, length, len(dst)) {
		return ErrInvalidArgument
	}
	read := 0
	for read < length {
		if err := checkCancelled(ctx); err != nil {
			return err
		}
		n, err := r.Poll(dst, off+read, length-read)
		if err != nil {
			return err
		}
		if n == 0 {
			runtime.Gosched()
			continue
		}
		read += n
	}
	return nil
}

// WriteWeak is Write's producer-side termination hook: it takes a weak
// reference to the ring instead of a strong one, and returns cleanly with
// no error the moment the ring is no longer reachable, instead of spinning
// forever against a buffer nobody will ever drain again.
func WriteWeak(ctx context.Context, ringRef weak.Pointer[Ring], src []byte, off, length int) error {
	if length < 0 || off < 0 {
		return ErrInvalidArgument
	}
	written := 0
	for written < length {
		if err := checkCancelled(ctx); err != nil {
			return err
		}
		r := ringRef.Value()
		if r == nil {
			return nil
		}
		n, err := r.Offer(src, off+written, length-written)
		if err != nil {
			return err
		}
		if n == 0 {
			runtime.Gosched()
			continue
		}
		written += n
	}
	return nil
}

func checkCancelled(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
	default:
		return nil
	}
}

// copyIn copies src[off:off+n] into storage starting at the physical index
// derived from the logical position start, splitting the copy in two when
// it wraps past the end of storage.
func (r *Ring) copyIn(start uint64, src []byte, off, n int) {
	idx := start & r.mask
	first := r.capacity - idx
	if uint64(n) <= first {
		copy(r.storage[idx:idx+uint64(n)], src[off:off+n])
		return
	}
	copy(r.storage[idx:], src[off:off+int(first)])
	copy(r.storage[:uint64(n)-first], src[off+int(first):off+n])
}

// copyOut is copyIn's mirror image for the read path.
func (r *Ring) copyOut(start uint64, dst []byte, off, n int) {
	idx := start & r.mask
	first := r.capacity - idx
	if uint64(n) <= first {
		copy(dst[off:off+n], r.storage[idx:idx+uint64(n)])
		return
	}
	copy(dst[off:off+int(first)], r.storage[idx:])
	copy(dst[off+int(first):off+n], r.storage[:uint64(n)-first])
}
