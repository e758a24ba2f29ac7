// Package goroutine runs the service's background work: broker consumers and
// periodic maintenance such as the expired OTP sweep.
package goroutine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/shandysiswandi/easymed/internal/pkg/stacktrace"
	"go.uber.org/atomic"
)

// DefaultMaxGoroutine is used per CPU when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 100

// ErrPanic wraps a value recovered from a panicking task.
var ErrPanic = errors.New("goroutine: task panicked")

// Manager runs tasks with a concurrency limit. Task errors, including
// recovered panics, are collected and returned by Wait.
type Manager struct {
	mu      sync.Mutex
	errs    []error
	wg      sync.WaitGroup
	sema    chan struct{}
	active  *atomic.Int64
	stateMu sync.RWMutex
	closed  bool
}

func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}

	return &Manager{
		sema:   make(chan struct{}, maxGoroutine),
		active: atomic.NewInt64(0),
	}
}

// Go runs f in a new goroutine and reports whether it was started. It is not
// started when the manager is closed or at its limit.
func (g *Manager) Go(pCtx context.Context, f func(ctx context.Context) error) bool {
	if g == nil {
		return false
	}

	g.stateMu.RLock()
	defer g.stateMu.RUnlock()

	if g.closed {
		slog.WarnContext(pCtx, "goroutine manager is closed, skipping new goroutine")
		return false
	}

	select {
	case g.sema <- struct{}{}:
	default:
		slog.WarnContext(pCtx, "Maximum goroutine limit reached, failed to start new goroutine")
		return false
	}

	g.active.Inc()
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() {
			<-g.sema
			g.active.Dec()

			if rvr := recover(); rvr != nil {
				stack := debug.Stack()
				if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
					slog.ErrorContext(pCtx, "panic occurred in goroutine", "panic", rvr, "stack", paths)
				} else {
					slog.ErrorContext(pCtx, "panic occurred in goroutine", "panic", rvr, "stack", string(stack))
				}
				g.record(fmt.Errorf("%w: %v", ErrPanic, rvr))
			}
		}()

		if err := pCtx.Err(); err != nil {
			slog.WarnContext(pCtx, "goroutine canceled", "because", err)
			return
		}
		if err := f(pCtx); err != nil {
			g.record(err)
		}
	}()

	return true
}

// Every runs f once per interval until ctx is done. Errors from f are logged
// and do not stop the loop. A non-positive interval disables the task.
func (g *Manager) Every(pCtx context.Context, name string, interval time.Duration, f func(ctx context.Context) error) bool {
	if interval <= 0 {
		slog.WarnContext(pCtx, "periodic task disabled", "task", name, "interval", interval)
		return false
	}

	return g.Go(pCtx, func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := f(ctx); err != nil {
					slog.ErrorContext(ctx, "periodic task failed", "task", name, "error", err)
				}
			}
		}
	})
}

// Active returns the number of running tasks.
func (g *Manager) Active() int64 {
	if g == nil {
		return 0
	}
	return g.active.Load()
}

// Wait closes the manager to new work, blocks until every task returns and
// joins the collected errors.
func (g *Manager) Wait() error {
	if g == nil {
		return nil
	}

	g.stateMu.Lock()
	g.closed = true
	g.stateMu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}

func (g *Manager) record(err error) {
	g.mu.Lock()
	g.errs = append(g.errs, err)
	g.mu.Unlock()
}
