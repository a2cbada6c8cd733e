// Package entropy provides the producer-side collaborators of the seed
// pipeline: the entropy source contract and the concrete sources that fill
// a producer's staging buffer.
package entropy

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/tarm/serial"

	"github.com/lost-woods/random/src/rng"
)

// Source is the entropy source contract (spec §6): given a caller-owned
// buffer, fill it with cryptographically-strong random bytes.
type Source interface {
	Fill(buf []byte) error
}

// OSSource draws from the host's cryptographic RNG. This is spec.md's named
// out-of-scope collaborator ("the operating-system entropy syscalls"), so
// it is a thin wrapper around crypto/rand rather than an ecosystem library.
type OSSource struct{}

// NewOSSource returns a Source backed by crypto/rand.
func NewOSSource() OSSource { return OSSource{} }

// Fill implements Source.
func (OSSource) Fill(buf []byte) error {
	if _, err := rand.Read(buf); err != nil {
		return pkgerrors.Wrap(err, "os entropy source read failed")
	}
	return nil
}

// SerialSource draws from a hardware TRNG exposed as a serial device. It is
// the teacher's usbserial.go, adapted to hand its bytes to a Producer
// instead of serving each HTTP request directly from the port.
type SerialSource struct {
	port   *serial.Port
	health *rng.Health
}

// NewSerialSourceFromEnv opens a serial port from env vars and performs an
// initial health check, exactly as the teacher's NewSerialRNGFromEnv did.
// Required env vars: SERIAL_DEVICE_NAME, SERIAL_BAUD_RATE,
// SERIAL_READ_TIMEOUT (milliseconds).
func NewSerialSourceFromEnv() (*SerialSource, error) {
	name := os.Getenv("SERIAL_DEVICE_NAME")
	if name == "" {
		return nil, errors.New("SERIAL_DEVICE_NAME is required")
	}

	baudStr := os.Getenv("SERIAL_BAUD_RATE")
	baud, err := strconv.Atoi(baudStr)
	if err != nil || baud <= 0 {
		return nil, fmt.Errorf("invalid SERIAL_BAUD_RATE: %q", baudStr)
	}

	timeoutStr := os.Getenv("SERIAL_READ_TIMEOUT")
	timeoutMs, err := strconv.Atoi(timeoutStr)
	if err != nil || timeoutMs < 0 {
		return nil, fmt.Errorf("invalid SERIAL_READ_TIMEOUT: %q", timeoutStr)
	}

	cfg := &serial.Config{
		Name:        name,
		Baud:        baud,
		Size:        8,
		ReadTimeout: time.Duration(timeoutMs) * time.Millisecond,
	}

	p, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "opening serial RNG device")
	}

	h := rng.NewHealth()
	if err := rng.HealthCheckRNG(p, h); err != nil {
		h.Set(false, err.Error())
		return nil, err
	}
	h.Set(true, "")

	return &SerialSource{port: p, health: h}, nil
}

// Fill implements Source.
func (s *SerialSource) Fill(buf []byte) error {
	if _, err := io.ReadFull(s.port, buf); err != nil {
		if s.health != nil {
			s.health.Set(false, "serial RNG read failed: "+err.Error())
		}
		return pkgerrors.Wrap(err, "serial entropy source read failed")
	}
	return nil
}

// Health exposes the underlying hardware health monitor, or nil if this
// source has none (only SerialSource carries one; OSSource is assumed
// always healthy since crypto/rand failures are already fatal to the
// process by convention).
func (s *SerialSource) Health() *rng.Health { return s.health }
