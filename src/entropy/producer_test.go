package entropy_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lost-woods/random/src/entropy"
	"github.com/lost-woods/random/src/ring"
)

// countingSource fills every call with a fixed byte value and counts calls.
type countingSource struct {
	mu    sync.Mutex
	value byte
	calls int
}

func (s *countingSource) Fill(buf []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	for i := range buf {
		buf[i] = s.value
	}
	return nil
}

func TestProducer_FillsRingFromSource(t *testing.T) {
	r, err := ring.New(64)
	require.NoError(t, err)

	src := &countingSource{value: 0x42}
	p := entropy.NewProducer(r, src, 16, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	got := make([]byte, 16)
	require.NoError(t, r.Read(context.Background(), got, 0, len(got)))
	for _, b := range got {
		require.Equal(t, byte(0x42), b)
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("producer did not stop after context cancellation")
	}
}

// flakySource fails the first N calls, then succeeds.
type flakySource struct {
	mu       sync.Mutex
	failLeft int
}

func (s *flakySource) Fill(buf []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLeft > 0 {
		s.failLeft--
		return errors.New("transient entropy source failure")
	}
	for i := range buf {
		buf[i] = 0x7
	}
	return nil
}

func TestProducer_RetriesOnSourceError(t *testing.T) {
	r, err := ring.New(32)
	require.NoError(t, err)

	src := &flakySource{failLeft: 5}
	p := entropy.NewProducer(r, src, 8, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Run(ctx) }()

	got := make([]byte, 8)
	require.NoError(t, r.Read(context.Background(), got, 0, len(got)))
	for _, b := range got {
		require.Equal(t, byte(0x7), b)
	}
}

func TestRunAll_StopsAllProducersOnCancel(t *testing.T) {
	r, err := ring.New(64)
	require.NoError(t, err)

	p1 := entropy.NewProducer(r, &countingSource{value: 1}, 8, nil)
	p2 := entropy.NewProducer(r, &countingSource{value: 2}, 8, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- entropy.RunAll(ctx, p1, p2) }()

	// Let both producers run for a bit, draining as they go so neither
	// blocks forever on a full ring.
	sink := make([]byte, 8)
	for i := 0; i < 20; i++ {
		_, _ = r.Poll(sink, 0, len(sink))
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("RunAll did not return after cancellation")
	}
}
