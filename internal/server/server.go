// Package server accepts client connections and runs the sequential
// frame loop over each one: read a line, dispatch, write the response,
// repeat until the peer closes. Connections are serviced concurrently;
// within one connection requests are strictly sequential. There is no
// idle timeout, request timeout, or connection cap.
package server

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"league-roster-service/internal/handler"
	"league-roster-service/internal/protocol"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Server is the TCP front of the roster service.
type Server struct {
	addr       string
	dispatcher *handler.Dispatcher
	listener   net.Listener
}

// New creates a server that will listen on addr.
func New(addr string, d *handler.Dispatcher) *Server {
	return &Server{addr: addr, dispatcher: d}
}

// Listen binds the listener without accepting yet, so callers can learn
// the bound address (tests use ":0").
func (s *Server) Listen() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	s.listener = lis
	return nil
}

// Addr returns the bound address. Only valid after Listen.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve runs the accept loop until the listener is closed. Each
// accepted connection gets its own goroutine.
func (s *Server) Serve() error {
	log.Info().Str("addr", s.listener.Addr().String()).Msg("server listening")

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Error().Err(err).Msg("accept failed")
			continue
		}
		go s.handleConn(conn)
	}
}

// Close stops the accept loop. In-flight connections are not drained.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	connID := uuid.New().String()
	log.Info().Str("conn", connID).Str("peer", conn.RemoteAddr().String()).
		Msg("client connected")
	defer log.Info().Str("conn", connID).Msg("client disconnected")

	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			resp := s.handleFrame(line)
			frame, encErr := protocol.Encode(resp)
			if encErr != nil {
				frame, _ = protocol.Encode(protocol.ErrResponse(
					protocol.CodeServerError, "failed to encode response"))
			}
			if _, werr := conn.Write(frame); werr != nil {
				log.Warn().Str("conn", connID).Err(werr).Msg("write failed")
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				log.Warn().Str("conn", connID).Err(err).Msg("read failed")
			}
			return
		}
	}
}

// handleFrame decodes and dispatches one frame. A malformed frame or a
// dispatch panic yields an error envelope; the connection loop always
// continues to the next frame.
func (s *Server) handleFrame(line []byte) (resp protocol.Response) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("dispatch panicked")
			resp = protocol.ErrResponse(protocol.CodeServerError, "internal server error")
		}
	}()

	req, err := protocol.Decode(line)
	if err != nil {
		return protocol.ErrResponse(protocol.CodeBadJSON, "invalid JSON")
	}
	return s.dispatcher.Dispatch(context.Background(), req)
}
