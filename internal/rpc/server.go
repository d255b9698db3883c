// Package rpc carries tagged JSON records between the engine and its UI peer,
// one object per line in each direction.
package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"textassist/engine/internal/logging"
)

const maxMessageSize = 10 * 1024 * 1024

// Envelope is the part of every inbound record used for dispatch.
type Envelope struct {
	Type string `json:"type"`
}

// Handler receives the full raw record. Handlers run on the read loop, one
// at a time and in arrival order, so they must not block for long.
type Handler func(ctx context.Context, raw json.RawMessage) error

type Server struct {
	reader   *bufio.Reader
	writer   *bufio.Writer
	mu       sync.Mutex
	handlers map[string]Handler
	logger   *slog.Logger
}

func NewServer(r io.Reader, w io.Writer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Server{
		reader:   bufio.NewReader(r),
		writer:   bufio.NewWriter(w),
		handlers: make(map[string]Handler),
		logger:   logger,
	}
}

func (s *Server) Register(msgType string, handler Handler) {
	s.handlers[msgType] = handler
}

// Serve reads records until EOF, ctx is done, or a read fails. Malformed
// records are logged and skipped; the protocol has no error reply.
func (s *Server) Serve(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line, err := s.reader.ReadBytes('\n')
		if len(line) > 0 {
			s.dispatch(ctx, line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			s.logger.Error("rpc.read_failed", "error", err.Error())
			return err
		}
	}
}

func (s *Server) dispatch(ctx context.Context, line []byte) {
	if strings.TrimSpace(string(line)) == "" {
		return
	}
	if len(line) > maxMessageSize {
		s.logger.Warn("rpc.message_too_large", "bytes", len(line))
		return
	}
	var env Envelope
	if err := json.Unmarshal(line, &env); err != nil {
		s.logger.Warn("rpc.invalid_json", "error", err.Error())
		return
	}
	handler, ok := s.handlers[env.Type]
	if !ok {
		s.logger.Warn("rpc.unknown_type", "type", env.Type)
		return
	}
	s.logger.Debug("rpc.inbound", "type", env.Type, "message", logging.RedactJSON(line))
	if err := handler(ctx, json.RawMessage(line)); err != nil {
		s.logger.Warn("rpc.handler_failed", "type", env.Type, "error", err.Error())
	}
}

// Post writes one record to the peer. It is safe for concurrent use.
func (s *Server) Post(msg any) {
	s.logger.Debug("rpc.outbound", "message", logging.RedactAny(msg))
	s.send(msg)
}

func (s *Server) send(payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("rpc.encode_failed", "error", err.Error())
		return
	}
	_, _ = s.writer.Write(append(data, '\n'))
	_ = s.writer.Flush()
}
