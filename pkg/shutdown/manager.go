package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	shutdownDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shutdown_duration_seconds",
		Help:    "Total time taken to shutdown gracefully",
		Buckets: []float64{1, 5, 10, 15, 20, 25, 30},
	})

	shutdownErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shutdown_errors_total",
		Help: "Total number of shutdown errors by component",
	}, []string{"component"})
)

// ShutdownFunc shuts down one component. The context carries the
// overall shutdown deadline.
type ShutdownFunc func(context.Context) error

type component struct {
	name string
	fn   ShutdownFunc
}

// Manager coordinates graceful shutdown of service components.
// Components shut down in reverse registration order, so register
// in dependency order: database first, then broker connections,
// then consumers and servers.
type Manager struct {
	logger     *zap.Logger
	mu         sync.Mutex
	components []component
	timeout    time.Duration
}

// NewManager creates a shutdown manager with the given overall timeout.
func NewManager(logger *zap.Logger, timeout time.Duration) *Manager {
	return &Manager{
		logger:  logger,
		timeout: timeout,
	}
}

// Register adds a shutdown function. Registration order matters:
// the last component registered shuts down first.
func (sm *Manager) Register(name string, fn ShutdownFunc) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.components = append(sm.components, component{name: name, fn: fn})
}

// RegisterCloser registers a component exposing Close() error.
func (sm *Manager) RegisterCloser(name string, closer interface{ Close() error }) {
	sm.Register(name, func(context.Context) error {
		return closer.Close()
	})
}

// RegisterNoErr registers a shutdown function with no error return.
func (sm *Manager) RegisterNoErr(name string, fn func()) {
	sm.Register(name, func(context.Context) error {
		fn()
		return nil
	})
}

// WaitForShutdown blocks until SIGINT or SIGTERM, then runs Shutdown.
// Closing trigger forces shutdown without a signal; pass nil when no
// internal failure path needs to trigger it.
func (sm *Manager) WaitForShutdown(trigger <-chan struct{}) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		sm.logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
			zap.Duration("timeout", sm.timeout),
		)
	case <-trigger:
		sm.logger.Warn("Internal shutdown triggered",
			zap.Duration("timeout", sm.timeout),
		)
	}

	sm.Shutdown()
}

// Shutdown runs all registered shutdown functions in reverse
// registration order, sequentially, under a single deadline.
func (sm *Manager) Shutdown() {
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), sm.timeout)
	defer cancel()

	sm.mu.Lock()
	components := make([]component, len(sm.components))
	copy(components, sm.components)
	sm.mu.Unlock()

	sm.logger.Info("Starting graceful shutdown",
		zap.Int("component_count", len(components)),
	)

	failed := 0
	for i := len(components) - 1; i >= 0; i-- {
		comp := components[i]

		if ctx.Err() != nil {
			sm.logger.Warn("Shutdown deadline exceeded, skipping remaining components",
				zap.String("next_component", comp.name),
			)
			break
		}

		compStart := time.Now()
		if err := comp.fn(ctx); err != nil {
			failed++
			shutdownErrors.WithLabelValues(comp.name).Inc()
			sm.logger.Error("Component shutdown failed",
				zap.String("component", comp.name),
				zap.Error(err),
				zap.Duration("elapsed", time.Since(compStart)),
			)
			continue
		}
		sm.logger.Info("Component shut down",
			zap.String("component", comp.name),
			zap.Duration("elapsed", time.Since(compStart)),
		)
	}

	elapsed := time.Since(start)
	shutdownDuration.Observe(elapsed.Seconds())

	if failed > 0 {
		sm.logger.Error("Graceful shutdown completed with errors",
			zap.Int("error_count", failed),
			zap.Duration("elapsed", elapsed),
		)
		return
	}
	sm.logger.Info("Graceful shutdown completed",
		zap.Duration("elapsed", elapsed),
	)
}
