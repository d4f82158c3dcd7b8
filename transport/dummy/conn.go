package dummy

import (
	"io"
	"net"
	"time"
)

// Conn is a net.Conn which serves prepared data on reads and collects everything written
// into it. Reads may be limited to small chunks in order to emulate a fragmented stream.
type Conn struct {
	// Data holds everything written into the connection.
	Data   []byte
	input  []byte
	chunk  int
	nop    bool
	closed bool
	remote net.Addr
}

func NewConn(input string) *Conn {
	return &Conn{
		input:  []byte(input),
		remote: &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 54321},
	}
}

// Chunked limits every read to return at most n bytes.
func (c *Conn) Chunked(n int) *Conn {
	c.chunk = n
	return c
}

// Nop disables collecting written data.
func (c *Conn) Nop() *Conn {
	c.nop = true
	return c
}

func (c *Conn) Read(b []byte) (n int, err error) {
	if c.closed {
		return 0, net.ErrClosed
	}

	if len(c.input) == 0 {
		return 0, io.EOF
	}

	if c.chunk > 0 && len(b) > c.chunk {
		b = b[:c.chunk]
	}

	n = copy(b, c.input)
	c.input = c.input[n:]

	return n, nil
}

func (c *Conn) Write(b []byte) (n int, err error) {
	if c.closed {
		return 0, net.ErrClosed
	}

	if !c.nop {
		c.Data = append(c.Data, b...)
	}

	return len(b), nil
}

func (c *Conn) Close() error {
	c.closed = true
	return nil
}

// Closed reports whether Close was called.
func (c *Conn) Closed() bool {
	return c.closed
}

func (c *Conn) LocalAddr() net.Addr {
	return nil
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.remote
}

func (c *Conn) SetDeadline(time.Time) error {
	return nil
}

func (c *Conn) SetReadDeadline(time.Time) error {
	return nil
}

func (c *Conn) SetWriteDeadline(time.Time) error {
	return nil
}
