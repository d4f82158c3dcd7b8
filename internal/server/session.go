package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/indigo-web/tinyd/config"
	"github.com/indigo-web/tinyd/http"
	"github.com/indigo-web/tinyd/http/status"
	"github.com/indigo-web/tinyd/internal/buffer"
	"github.com/indigo-web/tinyd/internal/metrics"
	"github.com/indigo-web/tinyd/internal/protocol/http1"
	"github.com/indigo-web/tinyd/kv"
	"github.com/indigo-web/tinyd/transport"
	"github.com/rs/zerolog"
)

// Server drives sessions of accepted connections. It holds nothing but read-only
// dependencies, so a single instance is shared by all the connections.
type Server struct {
	cfg     *config.Config
	log     zerolog.Logger
	metrics *metrics.Metrics
}

func NewServer(cfg *config.Config, log zerolog.Logger, m *metrics.Metrics) *Server {
	return &Server{
		cfg:     cfg,
		log:     log,
		metrics: m,
	}
}

// Serve processes requests coming from the connection one after another until the client
// doesn't want the connection to be kept alive, or any error occurs. The connection is
// always closed on return.
func (s *Server) Serve(conn net.Conn) {
	s.metrics.Connected()
	defer s.metrics.Disconnected()

	client := transport.NewClient(conn, s.cfg.NET.ReadTimeout)
	sess := newSession(s, client)
	sess.log.Debug().Msg("connection accepted")

	for sess.HandleRequest() {
	}

	_ = client.Close()
}

type session struct {
	srv     *Server
	log     zerolog.Logger
	client  transport.Client
	buff    *buffer.Buffer
	request *http.Request
	parser  *http1.Parser
}

// newSession allocates everything a connection needs for its whole lifetime. The buffer
// especially must outlive single requests, as it may already hold the next pipelined one.
func newSession(srv *Server, client transport.Client) *session {
	request := http.NewRequest(kv.NewPrealloc(10), client.Remote())

	return &session{
		srv:     srv,
		log:     srv.log.With().Str("remote", remoteString(client.Remote())).Logger(),
		client:  client,
		buff:    buffer.New(srv.cfg.NET.BufferSize),
		request: request,
		parser:  http1.NewParser(request),
	}
}

// HandleRequest makes a single step of the session. Returns false when the session is over.
func (s *session) HandleRequest() (ok bool) {
	state, err := s.parser.Parse(s.buff)
	switch state {
	case http1.Pending:
		s.srv.metrics.Fill()
		if _, err = s.buff.Fill(s.client); err != nil {
			s.onReadError(err)
			return false
		}
	case http1.HeadersCompleted:
		s.srv.metrics.Request()
		s.logRequest()

		if err = s.client.Write(http.Stub()); err != nil {
			s.log.Warn().Err(err).Msg("failed to write the response")
			return false
		}

		if !s.request.KeepAlive {
			return false
		}

		s.parser.Reset()
		s.request.Reset()
	case http1.Error:
		s.onParseError(err)
		return false
	default:
		panic(fmt.Sprintf("BUG: got unexpected parser state: %d", state))
	}

	return true
}

func (s *session) logRequest() {
	event := s.log.Debug()
	if !event.Enabled() {
		return
	}

	headers := zerolog.Dict()
	for key, value := range s.request.Headers.Pairs() {
		headers.Str(key, value)
	}

	event.
		Str("method", s.request.Method).
		Str("uri", s.request.URI).
		Str("version", s.request.Version).
		Bool("keep_alive", s.request.KeepAlive).
		Int("pipelined", s.buff.Len()).
		Dict("headers", headers).
		Msg("request")
}

func (s *session) onReadError(err error) {
	switch {
	case errors.Is(err, io.EOF):
		s.log.Debug().Msg("connection closed by peer")
	case errors.Is(err, os.ErrDeadlineExceeded):
		s.log.Debug().Dur("timeout", s.srv.cfg.NET.ReadTimeout).Msg("idle connection timed out")
	default:
		s.log.Warn().Err(err).Msg("failed to read from the connection")
	}
}

func (s *session) onParseError(err error) {
	reason := errorReason(err)
	s.srv.metrics.ParseError(reason)

	event := s.log.Info().Err(err).Str("reason", reason)
	var httpErr status.HTTPError
	if errors.As(err, &httpErr) {
		event = event.Uint16("code", uint16(httpErr.Code))
	}

	if errors.Is(err, status.ErrBufferFull) {
		event = event.Int("buffer_size", s.buff.Cap())
	}

	event.Msg("bad request")
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, status.ErrMalformedRequestLine):
		return "malformed_request_line"
	case errors.Is(err, status.ErrMalformedHeaderLine):
		return "malformed_header_line"
	case errors.Is(err, status.ErrDecode):
		return "decode"
	case errors.Is(err, status.ErrBufferFull):
		return "buffer_full"
	default:
		return "other"
	}
}

func remoteString(addr net.Addr) string {
	if addr == nil {
		return ""
	}

	return addr.String()
}
