package fileserver_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/apoxy-dev/apoxy-static/pkg/fileserver"
)

// startServer runs a server on a loopback port until the test ends. The
// returned wait func blocks until Serve returns.
func startServer(t *testing.T, opts fileserver.Options) (string, context.CancelFunc, func() error) {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := fileserver.NewServer(opts)

	var serveErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		serveErr = srv.Serve(ctx, lis)
	}()
	wait := func() error {
		select {
		case <-done:
			return serveErr
		case <-time.After(5 * time.Second):
			return errors.New("server did not stop")
		}
	}
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, wait())
	})
	return lis.Addr().String(), cancel, wait
}

func rawRequest(addr, raw string) ([]byte, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	if err := conn.SetDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return nil, err
	}
	if _, err := io.WriteString(conn, raw); err != nil {
		return nil, err
	}
	return io.ReadAll(conn)
}

func TestServer(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"index.html": "<html><body>Index</body></html>",
		"style.css":  "h1{color:red}",
	})
	addr, _, _ := startServer(t, fileserver.Options{DocRoot: dir})

	t.Run("net/http client", func(t *testing.T) {
		res, err := http.Get("http://" + addr + "/")
		require.NoError(t, err)
		t.Cleanup(func() {
			require.NoError(t, res.Body.Close())
		})

		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "text/html", res.Header.Get("Content-Type"))
		assert.True(t, res.Close)
		assert.Equal(t, "<html><body>Index</body></html>", string(body))
	})

	t.Run("One response per connection", func(t *testing.T) {
		// Two pipelined requests still get a single response.
		out, err := rawRequest(addr, "GET /style.css HTTP/1.1\r\n\r\nGET / HTTP/1.1\r\n\r\n")
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(string(out), "HTTP/1.1 "))
		assert.True(t, strings.HasSuffix(string(out), "\r\n\r\nh1{color:red}"))
	})

	t.Run("Concurrent clients", func(t *testing.T) {
		var g errgroup.Group
		for i := 0; i < 50; i++ {
			target := "/"
			if i%2 == 0 {
				target = "/style.css"
			}
			g.Go(func() error {
				out, err := rawRequest(addr, fmt.Sprintf("GET %s HTTP/1.1\r\n\r\n", target))
				if err != nil {
					return err
				}
				if !strings.HasPrefix(string(out), "HTTP/1.1 200 OK\r\n") {
					return fmt.Errorf("unexpected response for %s: %q", target, out)
				}
				return nil
			})
		}
		require.NoError(t, g.Wait())
	})
}

func TestServerMaxConnections(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"index.html": "ok"})
	addr, _, _ := startServer(t, fileserver.Options{DocRoot: dir, MaxConnections: 1})

	// An idle client occupies the only slot.
	idle, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { idle.Close() })

	// Give the server time to accept it.
	time.Sleep(100 * time.Millisecond)

	waiting, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer waiting.Close()
	_, err = io.WriteString(waiting, "GET / HTTP/1.1\r\n\r\n")
	require.NoError(t, err)

	require.NoError(t, waiting.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, err = waiting.Read(make([]byte, 1))
	var netErr net.Error
	require.True(t, errors.As(err, &netErr) && netErr.Timeout(), "expected timeout, got %v", err)

	// Freeing the slot lets the queued connection through.
	require.NoError(t, idle.Close())
	require.NoError(t, waiting.SetReadDeadline(time.Now().Add(5*time.Second)))
	out, err := io.ReadAll(waiting)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "HTTP/1.1 200 OK\r\n"))
}

var errAcceptFailed = errors.New("accept: too many open files")

// failingListener fails the first failures calls to Accept.
type failingListener struct {
	net.Listener
	failures atomic.Int32
	calls    atomic.Int32
}

func (l *failingListener) Accept() (net.Conn, error) {
	l.calls.Add(1)
	if l.failures.Add(-1) >= 0 {
		return nil, errAcceptFailed
	}
	return l.Listener.Accept()
}

func TestServerAcceptErrors(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"index.html": "still here"})

	inner, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	lis := &failingListener{Listener: inner}
	lis.failures.Store(3)

	ctx, cancel := context.WithCancel(context.Background())
	srv := fileserver.NewServer(fileserver.Options{DocRoot: dir})
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(ctx, lis)
	})

	out, err := rawRequest(inner.Addr().String(), "GET / HTTP/1.1\r\n\r\n")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "HTTP/1.1 200 OK\r\n"))
	assert.True(t, strings.HasSuffix(string(out), "still here"))
	// Three failures, then the accept that served the request.
	assert.GreaterOrEqual(t, lis.calls.Load(), int32(4))

	cancel()
	require.NoError(t, g.Wait())
}

func TestServerShutdown(t *testing.T) {
	addr, cancel, wait := startServer(t, fileserver.Options{DocRoot: t.TempDir()})

	// An in-flight connection that never sends a request.
	idle, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer idle.Close()
	time.Sleep(50 * time.Millisecond)

	cancel()
	require.NoError(t, wait())

	_, err = net.DialTimeout("tcp", addr, time.Second)
	assert.Error(t, err)

	require.NoError(t, idle.SetReadDeadline(time.Now().Add(time.Second)))
	_, err = idle.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
}

func TestServerClose(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := fileserver.NewServer(fileserver.Options{DocRoot: t.TempDir()})
	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		return srv.Serve(ctx, lis)
	})

	require.NoError(t, srv.Close())
	require.NoError(t, g.Wait())
}

func TestNewServerDefaults(t *testing.T) {
	srv := fileserver.NewServer(fileserver.Options{})
	assert.Equal(t, fileserver.DefaultOptions(), srv.Options())
	assert.Equal(t, ":8080", srv.Addr)
}
