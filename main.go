package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/lost-woods/random/src/entropy"
	"github.com/lost-woods/random/src/server"
)

var (
	zapLogger, _ = zap.NewProduction()
	log          = zapLogger.Sugar()

	port = "777"
)

// entropySources builds the producer pool's sources. A configured hardware
// TRNG is preferred; the OS CSPRNG is always added as a second source so the
// ring keeps filling even if the serial device is absent or misconfigured.
func entropySources() []entropy.Source {
	sources := []entropy.Source{entropy.NewOSSource()}

	if os.Getenv("SERIAL_DEVICE_NAME") == "" {
		return sources
	}

	serialSrc, err := entropy.NewSerialSourceFromEnv()
	if err != nil {
		log.Warnw("serial entropy source unavailable, falling back to OS entropy only", "error", err)
		return sources
	}

	return append([]entropy.Source{serialSrc}, sources...)
}

func main() {
	defer zapLogger.Sync()

	srv, err := server.New(port, entropySources(), log)
	if err != nil {
		log.Fatal(err)
	}

	srv.RunOrDie()
}
