package status

import "errors"

type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

var (
	ErrMalformedRequestLine = NewError(BadRequest, "malformed request line")
	ErrMalformedHeaderLine  = NewError(BadRequest, "malformed header line")
	ErrDecode               = NewError(BadRequest, "line is not a valid utf-8 text")
	// ErrBufferFull is returned when the connection buffer reached its capacity without
	// holding a single complete line.
	ErrBufferFull = NewError(RequestHeaderFieldsTooLarge, "no more buffer capacity")
)

var (
	// ErrShutdown is the stop reason, when the accepted connections are closed at once.
	ErrShutdown = errors.New("shutdown")
	// ErrGracefulShutdown is the stop reason, when the accepted connections are served
	// before the server stops.
	ErrGracefulShutdown = errors.New("graceful shutdown")
)
