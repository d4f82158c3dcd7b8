package http

import (
	"net"

	"github.com/indigo-web/tinyd/kv"
)

type Headers = *kv.Storage

// Request represents the framing of an HTTP/1.x request: its request line and headers.
// Request body is never read.
type Request struct {
	// Method is the first token of the request line, taken as is.
	Method string
	// URI is the second token of the request line. It is neither decoded nor validated.
	URI string
	// Version is the third token of the request line, e.g. HTTP/1.1.
	Version string
	// Headers holds header values by their lower-cased names. Repeated headers override
	// previous values.
	Headers Headers
	// KeepAlive is set only if the client explicitly asked for it via Connection: keep-alive.
	KeepAlive bool
	// Remote holds the remote address of the connection the request came from.
	Remote net.Addr
}

func NewRequest(headers Headers, remote net.Addr) *Request {
	return &Request{
		Headers: headers,
		Remote:  remote,
	}
}

// Reset prepares the request to be filled by the next request on the same connection.
func (r *Request) Reset() {
	r.Method = ""
	r.URI = ""
	r.Version = ""
	r.Headers.Clear()
	r.KeepAlive = false
}
