package http1

import (
	"strings"

	"github.com/indigo-web/tinyd/http"
	"github.com/indigo-web/tinyd/http/status"
	"github.com/indigo-web/tinyd/internal/buffer"
	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
)

// Parser is a resumable parser of the request line and headers. It takes complete lines
// out of the buffer one by one, so the buffer holds at most one incomplete line between
// calls.
type Parser struct {
	state   parserState
	request *http.Request
}

func NewParser(request *http.Request) *Parser {
	return &Parser{
		state:   eRequestLine,
		request: request,
	}
}

// Parse consumes as many lines from the buffer as available. Pending means the buffer must
// be filled with more data and Parse called again. Any error leaves the parser in an
// undefined state.
func (p *Parser) Parse(buff *buffer.Buffer) (State, error) {
	for {
		switch p.state {
		case eRequestLine:
			line, n, err := nextLine(buff)
			switch {
			case err != nil:
				return Error, err
			case n == 0:
				return Pending, nil
			}

			err = p.parseRequestLine(line)
			buff.Consume(n)
			if err != nil {
				return Error, err
			}

			p.state = eHeaderLine
		case eHeaderLine:
			header, err := readHeaderLine(buff)
			if err != nil {
				return Error, err
			}

			switch header.kind {
			case lineNeedMore:
				return Pending, nil
			case lineEnd:
				p.state = eComplete
				return HeadersCompleted, nil
			case lineField:
				p.setHeader(header.key, header.value)
			default:
				panic("BUG: unknown header line kind")
			}
		case eComplete:
			return HeadersCompleted, nil
		default:
			panic("BUG: unknown parser state")
		}
	}
}

// Reset prepares the parser for the next request. The request itself isn't touched.
func (p *Parser) Reset() {
	p.state = eRequestLine
}

func (p *Parser) parseRequestLine(line []byte) error {
	text := string(line)
	method, rest, found := strings.Cut(text, " ")
	if !found {
		return status.ErrMalformedRequestLine
	}

	uri, version, found := strings.Cut(rest, " ")
	if !found || strings.IndexByte(version, ' ') != -1 {
		return status.ErrMalformedRequestLine
	}

	p.request.Method = method
	p.request.URI = uri
	p.request.Version = version

	return nil
}

func (p *Parser) setHeader(key, value string) {
	if strcomp.EqualFold(key, "connection") && strcomp.EqualFold(value, "keep-alive") {
		p.request.KeepAlive = true
	}

	p.request.Headers.Set(key, value)
}

func readHeaderLine(buff *buffer.Buffer) (headerLine, error) {
	line, n, err := nextLine(buff)
	switch {
	case err != nil:
		return headerLine{}, err
	case n == 0:
		return headerLine{kind: lineNeedMore}, nil
	case len(line) == 0:
		buff.Consume(n)
		return headerLine{kind: lineEnd}, nil
	}

	// the line is a view into the buffer, so only copies may outlive the Consume
	key, value, found := strings.Cut(uf.B2S(line), ":")
	if !found {
		buff.Consume(n)
		return headerLine{}, status.ErrMalformedHeaderLine
	}

	header := headerLine{
		kind:  lineField,
		key:   strings.Clone(strings.TrimSpace(key)),
		value: strings.Clone(strings.TrimSpace(value)),
	}
	buff.Consume(n)

	return header, nil
}

// nextLine returns the next complete line in the buffer. Having no complete line while the
// buffer is full is an error, as the line will never fit.
func nextLine(buff *buffer.Buffer) (line []byte, n int, err error) {
	line, n, err = ScanLine(buff.Bytes())
	if err == nil && n == 0 && buff.Full() {
		return nil, 0, status.ErrBufferFull
	}

	return line, n, err
}
