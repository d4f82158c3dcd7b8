package transport

import (
	"net"
	"time"
)

type Client interface {
	Read([]byte) (int, error)
	Write([]byte) error
	Conn() net.Conn
	Remote() net.Addr
	Close() error
}

type client struct {
	conn    net.Conn
	timeout time.Duration
}

// NewClient wraps the connection. Zero timeout means reads may wait for data forever.
func NewClient(conn net.Conn, timeout time.Duration) Client {
	return &client{
		conn:    conn,
		timeout: timeout,
	}
}

// Read reads data into b, refreshing the idle deadline beforehand if it is enabled.
func (c *client) Read(b []byte) (int, error) {
	if c.timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return 0, err
		}
	}

	return c.conn.Read(b)
}

// Write writes the whole data into the underlying connection.
func (c *client) Write(b []byte) error {
	_, err := c.conn.Write(b)
	return err
}

// Conn unwraps the underlying net.Conn.
func (c *client) Conn() net.Conn {
	return c.conn
}

// Remote returns the remote address of the connection.
func (c *client) Remote() net.Addr {
	return c.conn.RemoteAddr()
}

// Close closes the connection.
func (c *client) Close() error {
	return c.conn.Close()
}
