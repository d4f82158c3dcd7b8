package tinyd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/indigo-web/tinyd/config"
	"github.com/indigo-web/tinyd/http/status"
	"github.com/indigo-web/tinyd/internal/metrics"
	"github.com/indigo-web/tinyd/internal/server"
	"github.com/indigo-web/tinyd/transport"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// App binds the configured address and serves every accepted connection in its own
// goroutine.
type App struct {
	cfg     *config.Config
	log     zerolog.Logger
	metrics *metrics.Metrics
	tcp     *transport.TCP
	hooks   hooks
	stopCh  chan error
}

// New returns a new App instance. The config must not be modified afterward.
func New(cfg *config.Config, log zerolog.Logger) *App {
	return &App{
		cfg:     cfg,
		log:     log,
		metrics: metrics.New(),
		tcp:     transport.NewTCP(),
		stopCh:  make(chan error, 1),
	}
}

// NotifyOnStart calls the callback at the moment, when the listener is bound and the server
// is about to accept connections.
func (a *App) NotifyOnStart(cb func()) *App {
	a.hooks.OnStart = cb
	return a
}

// NotifyOnStop calls the callback at the moment, when no more connections are accepted and
// the accepted ones are served or closed.
func (a *App) NotifyOnStop(cb func()) *App {
	a.hooks.OnStop = cb
	return a
}

// Addr returns the address the server listens on. It's valid only after the start.
func (a *App) Addr() net.Addr {
	return a.tcp.Addr()
}

// Serve binds the address and serves until the context is done, Stop or GracefulStop is
// called, or the listener fails. Done context is the same as GracefulStop. Failing to bind
// is returned immediately.
func (a *App) Serve(ctx context.Context) error {
	addr := net.JoinHostPort(a.cfg.Server.Host, a.cfg.Server.Port)
	if err := a.tcp.Bind(addr); err != nil {
		return fmt.Errorf("bind %s: %w", addr, err)
	}

	srv := server.NewServer(a.cfg, a.log, a.metrics)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.tcp.Listen(a.cfg.NET, srv.Serve)
	})

	var exposition *http.Server
	if a.cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", a.metrics.Handler())
		exposition = &http.Server{
			Addr:              a.cfg.Metrics.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			if err := exposition.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics: %w", err)
			}

			return nil
		})
	}

	stopReason := status.ErrGracefulShutdown
	g.Go(func() error {
		select {
		case <-ctx.Done():
		case stopReason = <-a.stopCh:
		}

		a.tcp.Stop()
		a.tcp.Close()
		if exposition != nil {
			_ = exposition.Close()
		}

		return nil
	})

	a.log.Info().
		Stringer("addr", a.tcp.Addr()).
		Str("metrics", a.cfg.Metrics.Addr).
		Msg("listening")
	callIfNotNil(a.hooks.OnStart)

	err := g.Wait()
	a.log.Info().Err(err).Str("reason", stopReason.Error()).Msg("stopped accepting connections")
	a.drain(stopReason)
	callIfNotNil(a.hooks.OnStop)

	return err
}

// GracefulStop stops accepting new connections, but lets the accepted ones be served
// for at most Net.ShutdownTimeout.
//
// NOTE: the call isn't blocking. Serve returns when the connections are done.
func (a *App) GracefulStop() {
	a.requestStop(status.ErrGracefulShutdown)
}

// Stop stops accepting new connections and closes all the accepted ones.
//
// NOTE: the call isn't blocking.
func (a *App) Stop() {
	a.requestStop(status.ErrShutdown)
}

func (a *App) requestStop(reason error) {
	select {
	case a.stopCh <- reason:
	default:
		// a stop is already requested
	}
}

// drain waits for the accepted connections. Must be called only after the listener stopped.
func (a *App) drain(reason error) {
	if errors.Is(reason, status.ErrShutdown) {
		a.tcp.Interrupt()
	}

	done := make(chan struct{})
	go func() {
		a.tcp.Wait()
		close(done)
	}()

	timer := time.NewTimer(a.cfg.NET.ShutdownTimeout)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		a.log.Warn().
			Dur("timeout", a.cfg.NET.ShutdownTimeout).
			Msg("connections are still open after the shutdown timeout, closing them")
		a.tcp.Interrupt()
		<-done
	}
}

type hooks struct {
	OnStart, OnStop func()
}

func callIfNotNil(f func()) {
	if f != nil {
		f()
	}
}
