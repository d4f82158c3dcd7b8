package transport

import (
	"errors"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/indigo-web/tinyd/config"
)

// TCP is the acceptor. It serves every connection in its own goroutine and keeps track of
// the ones being served, so they can be waited for or closed at once.
type TCP struct {
	l     *net.TCPListener
	wg    *sync.WaitGroup
	stop  *atomic.Bool
	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// NewTCP returns an unbound acceptor. Bind must be called before Listen.
func NewTCP() *TCP {
	return &TCP{
		wg:    new(sync.WaitGroup),
		stop:  new(atomic.Bool),
		conns: make(map[net.Conn]struct{}),
	}
}

func bindTCP(addr string) (*net.TCPListener, error) {
	tcpaddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, err
	}

	return net.ListenTCP("tcp", tcpaddr)
}

func (t *TCP) Bind(addr string) (err error) {
	t.l, err = bindTCP(addr)
	return err
}

// Addr returns the address the listener is bound to. Must be called after Bind.
func (t *TCP) Addr() net.Addr {
	return t.l.Addr()
}

// Listen accepts connections until stopped, serving each one in a separate goroutine. The
// connection is closed as soon as the callback returns.
func (t *TCP) Listen(cfg config.NET, cb func(conn net.Conn)) error {
	for !t.stop.Load() {
		err := t.l.SetDeadline(time.Now().Add(cfg.AcceptLoopInterruptPeriod))
		if err != nil {
			if t.stop.Load() {
				return nil
			}

			return err
		}

		conn, err := t.l.Accept()
		if err != nil {
			switch {
			case errors.Is(err, os.ErrDeadlineExceeded):
				continue
			case t.stop.Load() && errors.Is(err, net.ErrClosed):
				return nil
			}

			return err
		}

		t.track(conn)
		t.wg.Add(1)
		go func(conn net.Conn) {
			defer t.wg.Done()
			cb(conn)
			_ = conn.Close()
			t.untrack(conn)
		}(conn)
	}

	return nil
}

func (t *TCP) track(conn net.Conn) {
	t.mu.Lock()
	t.conns[conn] = struct{}{}
	t.mu.Unlock()
}

func (t *TCP) untrack(conn net.Conn) {
	t.mu.Lock()
	delete(t.conns, conn)
	t.mu.Unlock()
}

// Stop makes Listen return. Already accepted connections are left untouched.
func (t *TCP) Stop() {
	t.stop.Store(true)
}

// Close closes the listener, interrupting pending Accept immediately.
func (t *TCP) Close() {
	_ = t.l.Close()
}

// Interrupt closes all the connections currently being served. Their sessions end on the
// next read or write.
func (t *TCP) Interrupt() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for conn := range t.conns {
		_ = conn.Close()
	}
}

// Wait blocks until all the accepted connections are served.
func (t *TCP) Wait() {
	t.wg.Wait()
}
