package tinyd

import (
	"bufio"
	"context"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/indigo-web/tinyd/config"
	"github.com/indigo-web/tinyd/http"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server = config.Server{Host: "127.0.0.1", Port: "0"}
	cfg.NET.AcceptLoopInterruptPeriod = 50 * time.Millisecond
	return cfg
}

// startApp starts the app and returns it along with the channel Serve's result is sent to.
func startApp(t *testing.T, cfg *config.Config) (*App, <-chan error) {
	app := New(cfg, zerolog.Nop())
	started := make(chan struct{})
	app.NotifyOnStart(func() {
		close(started)
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Serve(ctx)
	}()

	select {
	case <-started:
	case err := <-errCh:
		require.FailNow(t, "app failed to start", err)
	case <-time.After(time.Second):
		require.FailNow(t, "app did not start")
	}

	return app, errCh
}

func requireStopped(t *testing.T, errCh <-chan error) {
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(time.Second):
		require.Fail(t, "app did not stop")
	}
}

// runApp starts the app and returns its address along with a function stopping it.
func runApp(t *testing.T, cfg *config.Config) (addr string, stop func()) {
	app, errCh := startApp(t, cfg)

	return app.Addr().String(), func() {
		app.Stop()
		requireStopped(t, errCh)
	}
}

// dialServed connects and makes sure the connection is already accepted by completing a
// keep-alive request on it.
func dialServed(t *testing.T, addr string) (net.Conn, *bufio.Reader) {
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
	})

	_, err = conn.Write([]byte("GET / HTTP/1.1\r\nConnection: keep-alive\r\n\r\n"))
	require.NoError(t, err)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))

	reader := bufio.NewReader(conn)
	stub := make([]byte, len(http.Stub()))
	_, err = io.ReadFull(reader, stub)
	require.NoError(t, err)
	require.Equal(t, http.Stub(), stub)

	return conn, reader
}

func TestApp(t *testing.T) {
	stub := string(http.Stub())

	t.Run("round trip", func(t *testing.T) {
		addr, stop := runApp(t, testConfig())
		defer stop()

		conn, err := net.Dial("tcp", addr)
		require.NoError(t, err)
		defer conn.Close()

		_, err = conn.Write([]byte(
			"GET / HTTP/1.1\r\nConnection: keep-alive\r\n\r\n" +
				"GET / HTTP/1.1\r\nHost: localhost\r\n\r\n",
		))
		require.NoError(t, err)

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		data, err := io.ReadAll(conn)
		require.NoError(t, err)
		require.Equal(t, stub+stub, string(data))
	})

	t.Run("idle connection does not block others", func(t *testing.T) {
		addr, stop := runApp(t, testConfig())
		defer stop()

		idle, err := net.Dial("tcp", addr)
		require.NoError(t, err)
		defer idle.Close()
		_, err = idle.Write([]byte("GET / HTTP/1.1\r\nConnection: keep-alive\r\n"))
		require.NoError(t, err)

		conn, err := net.Dial("tcp", addr)
		require.NoError(t, err)
		defer conn.Close()
		_, err = conn.Write([]byte("GET / HTTP/1.1\r\n\r\n"))
		require.NoError(t, err)

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		data, err := io.ReadAll(conn)
		require.NoError(t, err)
		require.Equal(t, stub, string(data))
	})

	t.Run("read timeout", func(t *testing.T) {
		cfg := testConfig()
		cfg.NET.ReadTimeout = 50 * time.Millisecond
		addr, stop := runApp(t, cfg)
		defer stop()

		conn, err := net.Dial("tcp", addr)
		require.NoError(t, err)
		defer conn.Close()

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		_, err = conn.Read(make([]byte, 1))
		require.ErrorIs(t, err, io.EOF)
	})

	t.Run("response format", func(t *testing.T) {
		addr, stop := runApp(t, testConfig())
		defer stop()

		conn, err := net.Dial("tcp", addr)
		require.NoError(t, err)
		defer conn.Close()

		_, err = conn.Write([]byte("DELETE /anything HTTP/1.0\r\n\r\n"))
		require.NoError(t, err)

		reader := bufio.NewReader(conn)
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		require.Equal(t, "HTTP/1.1 200 OK\r\n", line)

		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		length, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Content-Length:")))
		require.NoError(t, err)
		require.Equal(t, 1, length)
	})

	t.Run("context cancel", func(t *testing.T) {
		app := New(testConfig(), zerolog.Nop())
		ctx, cancel := context.WithCancel(context.Background())
		app.NotifyOnStart(cancel)

		stopped := false
		app.NotifyOnStop(func() {
			stopped = true
		})

		require.NoError(t, app.Serve(ctx))
		require.True(t, stopped)
	})

	t.Run("graceful stop finishes in-flight request", func(t *testing.T) {
		app, errCh := startApp(t, testConfig())
		conn, reader := dialServed(t, app.Addr().String())

		_, err := conn.Write([]byte("GET /last HTTP/1.1\r\n"))
		require.NoError(t, err)
		app.GracefulStop()

		select {
		case <-errCh:
			require.FailNow(t, "app stopped before the request was served")
		case <-time.After(100 * time.Millisecond):
		}

		_, err = net.DialTimeout("tcp", app.Addr().String(), 100*time.Millisecond)
		require.Error(t, err, "new connections must be refused")

		_, err = conn.Write([]byte("Host: a\r\n\r\n"))
		require.NoError(t, err)
		data, err := io.ReadAll(reader)
		require.NoError(t, err)
		require.Equal(t, stub, string(data))

		requireStopped(t, errCh)
	})

	t.Run("stop closes idle connections", func(t *testing.T) {
		cfg := testConfig()
		cfg.NET.ShutdownTimeout = time.Hour
		app, errCh := startApp(t, cfg)
		_, reader := dialServed(t, app.Addr().String())

		app.Stop()
		requireStopped(t, errCh)

		_, err := reader.ReadByte()
		require.ErrorIs(t, err, io.EOF)
	})

	t.Run("graceful stop is bounded", func(t *testing.T) {
		cfg := testConfig()
		cfg.NET.ShutdownTimeout = 50 * time.Millisecond
		app, errCh := startApp(t, cfg)
		_, reader := dialServed(t, app.Addr().String())

		app.GracefulStop()
		requireStopped(t, errCh)

		_, err := reader.ReadByte()
		require.ErrorIs(t, err, io.EOF)
	})

	t.Run("bind failure", func(t *testing.T) {
		occupied, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer occupied.Close()

		cfg := testConfig()
		_, cfg.Server.Port, err = net.SplitHostPort(occupied.Addr().String())
		require.NoError(t, err)

		err = New(cfg, zerolog.Nop()).Serve(context.Background())
		require.ErrorContains(t, err, "bind")
	})
}
