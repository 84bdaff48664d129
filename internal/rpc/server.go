// Package rpc serves the task store as JSON-RPC 2.0 over a line-delimited
// stream, for agents that drive the tracker from stdio.
package rpc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"todocal/internal/models"
	"todocal/internal/store"
)

// JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeNotFound       = -32004
)

// maxLineBytes bounds a single request line.
const maxLineBytes = 1 << 20

// Server dispatches JSON-RPC requests to the store.
type Server struct {
	store   *store.Store
	logger  *log.Logger
	methods map[string]method
}

// NewServer creates a new RPC server. A nil logger discards output.
func NewServer(s *store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	srv := &Server{store: s, logger: logger}
	srv.methods = srv.methodTable()
	return srv
}

// Protocol types

type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Serve reads one request per line from r and writes one response per
// line to w until r is exhausted or ctx is done. Notifications (requests
// without an id) get no response.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	reader := bufio.NewReaderSize(r, 64<<10)
	writer := bufio.NewWriter(w)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := reader.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			if resp := s.handleLine(ctx, line); resp != nil {
				if werr := s.send(writer, resp); werr != nil {
					return werr
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (s *Server) handleLine(ctx context.Context, line []byte) *Response {
	if len(line) > maxLineBytes {
		return errorResponse(nil, CodeInvalidRequest, "request too large")
	}
	if !json.Valid(line) {
		return errorResponse(nil, CodeParseError, "parse error")
	}

	var req Request
	if err := json.Unmarshal(line, &req); err != nil || req.JSONRPC != "2.0" || req.Method == "" {
		return errorResponse(req.ID, CodeInvalidRequest, "invalid request")
	}

	result, rpcErr := s.dispatch(ctx, &req)
	if req.ID == nil {
		return nil
	}
	if rpcErr != nil {
		return errorResponse(req.ID, rpcErr.Code, rpcErr.Message)
	}
	return &Response{JSONRPC: "2.0", ID: req.ID, Result: result}
}

func (s *Server) dispatch(ctx context.Context, req *Request) (any, *Error) {
	m, ok := s.methods[req.Method]
	if !ok {
		return nil, &Error{Code: CodeMethodNotFound, Message: "method not found: " + req.Method}
	}

	params, err := models.ParseFields(req.Params)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: "params must be an object"}
	}

	s.logger.Debug("rpc call", "method", req.Method)
	result, err := m(ctx, params)
	if err != nil {
		return nil, s.mapError(req.Method, err)
	}
	return result, nil
}

func (s *Server) mapError(method string, err error) *Error {
	switch {
	case errors.Is(err, models.ErrInvalid):
		return &Error{Code: CodeInvalidParams, Message: err.Error()}
	case errors.Is(err, models.ErrNotFound):
		return &Error{Code: CodeNotFound, Message: err.Error()}
	default:
		s.logger.Error("rpc call failed", "method", method, "err", err)
		return &Error{Code: CodeInternalError, Message: "internal error"}
	}
}

func (s *Server) send(w *bufio.Writer, resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
		return err
	}
	return w.Flush()
}

func errorResponse(id json.RawMessage, code int, message string) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &Error{Code: code, Message: message},
	}
}
