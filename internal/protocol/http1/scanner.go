package http1

import (
	"bytes"
	"unicode/utf8"

	"github.com/indigo-web/tinyd/http/status"
)

var crlf = []byte("\r\n")

// ScanLine looks for the first CRLF-terminated line in data. The returned line excludes the
// CRLF and references the data itself, consumed is the amount of bytes taken by the line
// together with its terminator. A CR which isn't followed by LF is an ordinary character.
//
// Zero consumed with nil error means no complete line is in data yet. A line that isn't a
// valid UTF-8 text results in status.ErrDecode, as it can't be fixed by reading more.
func ScanLine(data []byte) (line []byte, consumed int, err error) {
	boundary := bytes.Index(data, crlf)
	if boundary == -1 {
		return nil, 0, nil
	}

	line = data[:boundary]
	if !utf8.Valid(line) {
		return nil, 0, status.ErrDecode
	}

	return line, boundary + len(crlf), nil
}
