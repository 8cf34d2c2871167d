package internal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ananthvk/memkv/internal/resp"
)

var errInvalidRequest = errors.New("invalid request")

func (s *Server) handleConn(conn net.Conn) {
	defer s.untrack(conn)
	defer conn.Close()

	logger := s.logger.With(
		"conn_id", uuid.NewString(),
		"remote_address", conn.RemoteAddr().String(),
	)
	s.metrics.clientConnected()
	defer s.metrics.clientDisconnected()

	logger.Info("client connected")
	s.serveConn(conn, logger)
	logger.Info("client disconnected")
}

// serveConn reads requests from rw until the peer goes away or sends something
// that cannot be decoded. Replies are written in request order.
func (s *Server) serveConn(rw io.ReadWriter, logger *slog.Logger) {
	decoder := resp.NewDecoderSize(rw, s.cfg.MaxBufferBytes)
	writer := bufio.NewWriter(rw)
	limiter := newLimiter(s.cfg.RateLimit)

	for {
		req, err := decoder.Next()
		if err != nil {
			switch {
			case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
			case errors.Is(err, resp.ErrProtocolError), errors.Is(err, resp.ErrBufferFull):
				s.metrics.protocolError()
				logger.Warn("closing connection on malformed input", "error", err)
			default:
				logger.Debug("read failed", "error", err)
			}
			return
		}

		reply := s.execute(req, limiter)
		if err := sendResponse(reply, writer); err != nil {
			logger.Debug("write failed", "error", err)
			return
		}
	}
}

func (s *Server) execute(req resp.Value, limiter *rate.Limiter) resp.Value {
	name, args, err := parseRequest(req)
	if err != nil {
		return resp.Error(err.Error())
	}
	if limiter != nil && !limiter.Allow() {
		s.metrics.rateLimit()
		return resp.Error("rate limit exceeded")
	}
	return s.kv.Execute(name, args)
}

// parseRequest splits a request into the command name and its arguments. The name
// may be a bulk or a simple string, the arguments can be any frame.
func parseRequest(req resp.Value) (string, []resp.Value, error) {
	if req.Type != resp.ValueTypeArray || len(req.Array) == 0 {
		return "", nil, fmt.Errorf("%w: request must be a non-empty array", errInvalidRequest)
	}
	if !req.Array[0].IsText() {
		return "", nil, fmt.Errorf("%w: command name must be a string", errInvalidRequest)
	}
	return string(req.Array[0].Buffer), req.Array[1:], nil
}

func sendResponse(value resp.Value, writer *bufio.Writer) error {
	if err := resp.Serialize(value, writer); err != nil {
		return err
	}
	return writer.Flush()
}

func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	burst := int(math.Ceil(perSecond))
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}
