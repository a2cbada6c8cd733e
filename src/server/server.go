package server

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lost-woods/random/src/api"
	"github.com/lost-woods/random/src/consumer"
	"github.com/lost-woods/random/src/entropy"
	"github.com/lost-woods/random/src/rng"
	"github.com/lost-woods/random/src/ring"
)

// ringCapacity and stagingSize size the pipeline sitting behind the demo
// HTTP surface. They're picked generously relative to the largest single
// request (RandomBytes tops out at 256 bytes) so producers stay well ahead
// of consumers under normal load.
const (
	ringCapacity = 1 << 16
	stagingSize  = 4096
)

type Server struct {
	port   string
	router *gin.Engine
	cancel context.CancelFunc
}

// New wires the demo HTTP surface to the seed pipeline: sources feed a
// ring via background producers, and every handler draws request bytes and
// UUIDs from a single ring-backed consumer shared across goroutines through
// rng.LockedReader.
func New(port string, sources []entropy.Source, log *zap.SugaredLogger) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	r, err := ring.New(ringCapacity)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	producers := make([]*entropy.Producer, 0, len(sources))
	for _, src := range sources {
		producers = append(producers, entropy.NewProducer(r, src, stagingSize, log))
	}
	go func() {
		if err := entropy.RunAll(ctx, producers...); err != nil && ctx.Err() == nil {
			log.Errorw("entropy producer pool exited with error", "error", err)
		}
	}()

	gen := consumer.NewBasicReplacingGenerator(r, consumer.ChaCha8SeedSize, consumer.NewChaCha8Factory())
	reader := rng.NewLockedReader(gen.Reader(ctx))

	h := rng.NewHealth()
	// Optimistic until the first periodic check runs: the pipeline itself
	// has no notion of "unhealthy", only the underlying sources do.
	h.Set(true, "")
	for _, src := range sources {
		if s, ok := src.(*entropy.SerialSource); ok && s.Health() != nil {
			h = s.Health()
			break
		}
	}

	interval := 10_000 * time.Millisecond
	if msStr := os.Getenv("RNG_HEALTH_INTERVAL"); msStr != "" {
		if ms, err := strconv.Atoi(msStr); err == nil && ms > 0 {
			interval = time.Duration(ms) * time.Millisecond
		}
	}
	go rng.PeriodicHealthCheck(reader, h, interval)

	router.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET"},
		AllowHeaders:     []string{"X-API-KEY", "Accept"},
		AllowAllOrigins:  true,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(api.CheckHeader("X-API-KEY", api.APIKeyFromEnv()))

	handlers := api.NewHandlers(reader, h, log)
	handlers.SetRingPressure(func() (available, capacity int) {
		return r.Available(), r.Capacity()
	})
	router.GET("/", handlers.RandomNumber)
	router.GET("/bytes", handlers.RandomBytes)
	router.GET("/cards", handlers.RandomCards)
	router.GET("/strings", handlers.RandomStrings)
	router.GET("/percent", handlers.RandomPercent)
	router.GET("/health", handlers.Health)

	return &Server{port: port, router: router, cancel: cancel}, nil
}

func (s *Server) RunOrDie() {
	defer s.cancel()
	if err := s.router.Run(":" + s.port); err != nil {
		panic(err)
	}
}
