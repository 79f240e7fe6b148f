// Package bootstrap runs a process until it finishes or receives a
// termination signal, then releases its resources.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

const defaultShutdownTimeout = 10 * time.Second

type shutdownHook struct {
	name string
	fn   func(ctx context.Context) error
}

// App runs shutdown hooks in reverse registration order once the process is
// done, so resources opened first are released last.
type App struct {
	mu    sync.Mutex
	hooks []shutdownHook

	shutdownTimeout time.Duration
	signals         []os.Signal
	logger          *slog.Logger
}

type Option func(*App)

// WithShutdownTimeout bounds how long all hooks together may take.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(a *App) { a.shutdownTimeout = timeout }
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *App) { a.logger = logger }
}

// WithSignals replaces the signals that stop Run. The default is SIGINT and SIGTERM.
func WithSignals(signals ...os.Signal) Option {
	return func(a *App) { a.signals = signals }
}

func New(opts ...Option) *App {
	a := &App{
		shutdownTimeout: defaultShutdownTimeout,
		signals:         []os.Signal{os.Interrupt, syscall.SIGTERM},
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AddShutdownHook registers fn under name. It may be called from inside the
// run function.
func (a *App) AddShutdownHook(name string, fn func(ctx context.Context) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hooks = append(a.hooks, shutdownHook{name: name, fn: fn})
}

// Run calls run and waits until it returns or a signal arrives, then runs
// the shutdown hooks. The errors of run and of every failed hook are joined.
func (a *App) Run(ctx context.Context, run func(ctx context.Context) error) error {
	ctx, cancel := signal.NotifyContext(ctx, a.signals...)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx)
	}()

	var (
		runErr  error
		runDone bool
	)
	select {
	case <-ctx.Done():
		a.logger.Info("shutting down", "reason", context.Cause(ctx))
	case runErr = <-errCh:
		runDone = true
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancelShutdown()
	shutdownErr := a.shutdown(shutdownCtx)

	if !runDone {
		select {
		case runErr = <-errCh:
		case <-shutdownCtx.Done():
			runErr = fmt.Errorf("wait for run to return: %w", shutdownCtx.Err())
		}
	}
	return errors.Join(runErr, shutdownErr)
}

func (a *App) shutdown(ctx context.Context) error {
	a.mu.Lock()
	hooks := append([]shutdownHook(nil), a.hooks...)
	a.hooks = nil
	a.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i].fn(ctx); err != nil {
			a.logger.Error("shutdown hook failed", "hook", hooks[i].name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", hooks[i].name, err))
			continue
		}
		a.logger.Debug("shutdown hook finished", "hook", hooks[i].name)
	}
	return errors.Join(errs...)
}
