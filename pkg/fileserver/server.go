// Package fileserver serves files from a document root over a minimal
// HTTP/1.1 subset, one request per connection.
package fileserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const maxAcceptBackoff = time.Second

// Server accepts connections and hands each one to its own goroutine.
type Server struct {
	Addr string

	opts     Options
	handler  *Handler
	closeCtx context.Context
	close    context.CancelFunc
}

// NewServer creates a new file server.
func NewServer(opts Options) *Server {
	opts = opts.withDefaults()
	closeCtx, closeCancel := context.WithCancel(context.Background())
	return &Server{
		Addr:     opts.ListenAddr,
		opts:     opts,
		handler:  NewHandler(opts),
		closeCtx: closeCtx,
		close:    closeCancel,
	}
}

// Options returns the effective server options.
func (s *Server) Options() Options { return s.opts }

// Close stops the server as if its context had been cancelled.
func (s *Server) Close() error {
	s.close()
	return nil
}

// ListenAndServe listens on s.Addr and serves until ctx is cancelled or
// Close is called.
func (s *Server) ListenAndServe(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(ctx, lis)
}

// Serve accepts connections on lis until ctx is cancelled, Close is called
// or lis is closed. It returns after every in-flight connection is done.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	slog.Info("Serving files",
		slog.String("addr", lis.Addr().String()),
		slog.String("root", s.opts.DocRoot),
		slog.Int("max_connections", s.opts.MaxConnections))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		select {
		case <-ctx.Done():
		case <-s.closeCtx.Done():
		}

		if err := lis.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			slog.Warn("failed to close listener", slog.Any("error", err))
		}
		return nil
	})

	var conns sync.WaitGroup
	g.Go(func() error {
		defer cancel()
		return s.acceptLoop(ctx, lis, &conns)
	})

	err := g.Wait()
	conns.Wait()
	slog.Info("Server stopped", slog.String("addr", lis.Addr().String()))
	return err
}

func (s *Server) acceptLoop(ctx context.Context, lis net.Listener, conns *sync.WaitGroup) error {
	sem := semaphore.NewWeighted(int64(s.opts.MaxConnections))
	var backoff time.Duration
	for {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil
		}

		conn, err := lis.Accept()
		if err != nil {
			sem.Release(1)
			if errors.Is(err, net.ErrClosed) {
				return nil
			}

			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else {
				backoff = min(2*backoff, maxAcceptBackoff)
			}
			slog.Warn("Failed to accept connection",
				slog.Any("error", err),
				slog.Duration("retry_in", backoff))

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			continue
		}
		backoff = 0

		conns.Add(1)
		go func() {
			defer conns.Done()
			defer sem.Release(1)
			s.handler.ServeConn(ctx, conn)
		}()
	}
}
