package http

import (
	"strconv"

	"github.com/indigo-web/tinyd/http/status"
)

var stub = render(status.OK, "O")

// Stub returns the serialized response which is written to every request regardless of
// its method and URI. The returned slice must not be modified.
func Stub() []byte {
	return stub
}

func render(code status.Code, body string) []byte {
	buff := make([]byte, 0, 64)
	buff = append(buff, "HTTP/1.1 "...)
	buff = strconv.AppendUint(buff, uint64(code), 10)
	buff = append(buff, ' ')
	buff = append(buff, status.Text(code)...)
	buff = append(buff, "\r\nContent-Length: "...)
	buff = strconv.AppendInt(buff, int64(len(body)), 10)
	buff = append(buff, "\r\n\r\n"...)

	return append(buff, body...)
}
