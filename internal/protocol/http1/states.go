package http1

// State represents the state of the request's parsing
type State uint8

const (
	Pending State = iota + 1
	HeadersCompleted
	Error
)

type parserState uint8

const (
	eRequestLine parserState = iota + 1
	eHeaderLine
	eComplete
)

// lineKind tags the outcome of an attempt to read a single header line.
type lineKind uint8

const (
	lineField lineKind = iota + 1
	lineNeedMore
	lineEnd
)

type headerLine struct {
	kind       lineKind
	key, value string
}
