// Package shutdown coordinates graceful teardown of a running scan:
// the first signal cancels the scan context, registered cleanups run in
// reverse order, and a second signal aborts immediately.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/PentesterFlow/LocalScan/internal/logger"
)

// Callback is a cleanup function run during shutdown.
type Callback func(ctx context.Context) error

// Handler manages graceful shutdown for one scan run.
type Handler struct {
	mu            sync.Mutex
	callbacks     []Callback
	callbackNames []string

	isShuttingDown atomic.Bool
	done           chan struct{}
	timeout        time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	sigChan chan os.Signal

	onShutdownStart func()
	log             *logger.Logger
}

// Config holds shutdown configuration.
type Config struct {
	Timeout         time.Duration
	Signals         []os.Signal
	OnShutdownStart func()
}

// New creates a shutdown handler listening for the configured signals.
func New(cfg Config) *Handler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if len(cfg.Signals) == 0 {
		cfg.Signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}

	ctx, cancel := context.WithCancel(context.Background())

	h := &Handler{
		done:            make(chan struct{}),
		timeout:         cfg.Timeout,
		ctx:             ctx,
		cancel:          cancel,
		sigChan:         make(chan os.Signal, 1),
		onShutdownStart: cfg.OnShutdownStart,
		log:             logger.Global().WithComponent("shutdown"),
	}

	signal.Notify(h.sigChan, cfg.Signals...)
	go h.wait()

	return h
}

// Register registers a named cleanup. Cleanups run in reverse order of
// registration.
func (h *Handler) Register(name string, cb Callback) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.callbacks = append(h.callbacks, cb)
	h.callbackNames = append(h.callbackNames, name)
}

// RegisterFunc registers a simple cleanup function.
func (h *Handler) RegisterFunc(name string, fn func()) {
	h.Register(name, func(context.Context) error {
		fn()
		return nil
	})
}

// Context returns the context cancelled when shutdown begins. Run the
// scan under this context.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// IsShuttingDown reports whether shutdown has started.
func (h *Handler) IsShuttingDown() bool {
	return h.isShuttingDown.Load()
}

// Done is closed when shutdown completes.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}

// wait blocks for a signal, then shuts down. A second signal during
// cleanup exits without waiting.
func (h *Handler) wait() {
	select {
	case <-h.sigChan:
	case <-h.ctx.Done():
		return
	}

	go func() {
		<-h.sigChan
		os.Exit(1)
	}()

	h.Shutdown()
}

// Shutdown cancels the scan context and runs cleanups in reverse order,
// each bounded by the configured timeout.
func (h *Handler) Shutdown() {
	if !h.isShuttingDown.CompareAndSwap(false, true) {
		return
	}

	if h.onShutdownStart != nil {
		h.onShutdownStart()
	}

	h.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	h.mu.Lock()
	callbacks := make([]Callback, len(h.callbacks))
	copy(callbacks, h.callbacks)
	names := make([]string, len(h.callbackNames))
	copy(names, h.callbackNames)
	h.mu.Unlock()

	for i := len(callbacks) - 1; i >= 0; i-- {
		h.runCallback(ctx, names[i], callbacks[i])
	}

	close(h.done)
}

// Trigger starts shutdown programmatically, as if a signal arrived.
func (h *Handler) Trigger() {
	h.Shutdown()
}

func (h *Handler) runCallback(ctx context.Context, name string, cb Callback) {
	h.log.Debugf("Running cleanup: %s", name)

	done := make(chan error, 1)
	go func() {
		done <- cb(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			h.log.WithError(err).Warnf("Cleanup %s failed", name)
		}
	case <-ctx.Done():
		h.log.Warnf("Cleanup %s timed out", name)
	}
}
