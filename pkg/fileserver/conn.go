package fileserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"

	"github.com/apoxy-dev/apoxy-static/pkg/httpwire"
)

// Handler serves exactly one request per connection.
type Handler struct {
	router         *Router
	readBufferSize int
	readTimeout    time.Duration
}

// NewHandler returns a Handler for opts.
func NewHandler(opts Options) *Handler {
	opts = opts.withDefaults()
	return &Handler{
		router:         NewRouter(opts.docRoot()),
		readBufferSize: opts.ReadBufferSize,
		readTimeout:    opts.ReadTimeout,
	}
}

// ServeConn reads one request from conn, writes one response and closes
// conn. A connection that sends nothing is closed without a response.
// Cancelling ctx interrupts the wait for a request. A request that was
// already read is still answered.
func (h *Handler) ServeConn(ctx context.Context, conn net.Conn) {
	logger := slog.With(
		slog.String("conn_id", uuid.NewString()),
		slog.String("remote", conn.RemoteAddr().String()))

	defer func() {
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			logger.Debug("Failed to close connection", slog.Any("error", err))
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			sentry.CurrentHub().Recover(r)
			logger.Error("Panic while serving connection", slog.Any("panic", r))
		}
	}()

	if h.readTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(h.readTimeout)); err != nil {
			logger.Warn("Failed to set read deadline", slog.Any("error", err))
		}
	}

	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	buf := make([]byte, h.readBufferSize)
	n, err := conn.Read(buf)
	if n == 0 {
		switch {
		case err == nil, errors.Is(err, io.EOF):
			logger.Debug("Connection closed before sending a request")
		case errors.Is(err, os.ErrDeadlineExceeded):
			logger.Debug("Timed out waiting for request")
		default:
			logger.Warn("Failed to read request", slog.Any("error", err))
		}
		return
	}

	res := h.respond(logger, buf[:n])

	if err := httpwire.WriteResponse(conn, res); err != nil {
		logger.Warn("Failed to write response", slog.Any("error", err))
		return
	}
	logger.Info("Response sent",
		slog.Int("status", res.StatusCode),
		slog.Int("bytes", len(res.Body)))
}

func (h *Handler) respond(logger *slog.Logger, raw []byte) *httpwire.Response {
	req, err := httpwire.ParseRequest(raw)
	if err != nil {
		logger.Warn("Failed to parse request", slog.Any("error", err))
		return h.router.RouteError(err)
	}

	logger.Info("Request",
		slog.String("method", req.Method),
		slog.String("target", req.Target),
		slog.String("version", req.Version))

	res, err := h.router.Route(req)
	if err != nil {
		logger.Debug("Request not served", slog.Any("error", err))
	}
	return res
}
