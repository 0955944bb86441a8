package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/ruteri/sequencer-seeder/metrics"
)

// maxBodySize is the maximum allowed request body size (1MB).
const maxBodySize = 1024 * 1024

// HandlerFunc serves one method. The returned value is encoded as the result.
type HandlerFunc func(ctx context.Context, params json.RawMessage) (any, error)

// ErrorMapper converts a handler error into its wire representation.
type ErrorMapper func(err error) *Error

// Method adapts a typed handler, decoding params into P before calling fn.
func Method[P any](fn func(ctx context.Context, params *P) (any, error)) HandlerFunc {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		params := new(P)
		if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
			if err := json.Unmarshal(raw, params); err != nil {
				return nil, InvalidParams(err)
			}
		}
		return fn(ctx, params)
	}
}

// Server dispatches JSON-RPC requests to a table of named methods.
type Server struct {
	surface  string
	methods  map[string]HandlerFunc
	mapError ErrorMapper
	log      *slog.Logger
}

// NewServer creates a server for one RPC surface. surface labels logs and metrics.
func NewServer(surface string, methods map[string]HandlerFunc, mapError ErrorMapper, log *slog.Logger) *Server {
	if mapError == nil {
		mapError = DefaultErrorMapper
	}
	return &Server{
		surface:  surface,
		methods:  methods,
		mapError: mapError,
		log:      log.With("surface", surface),
	}
}

// Methods returns the registered method names in sorted order.
func (s *Server) Methods() []string {
	names := make([]string, 0, len(s.methods))
	for name := range s.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ServeHTTP handles single and batch requests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		s.writeJSON(w, errorResponse(nil, NewError(CodeParseError, "failed to read request body")))
		return
	}
	if len(body) > maxBodySize {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var batch []json.RawMessage
		if err := json.Unmarshal(body, &batch); err != nil || len(batch) == 0 {
			s.writeJSON(w, errorResponse(nil, NewError(CodeInvalidRequest, "invalid batch")))
			return
		}
		responses := make([]*Response, 0, len(batch))
		for _, raw := range batch {
			if resp := s.handleRaw(r.Context(), raw); resp != nil {
				responses = append(responses, resp)
			}
		}
		if len(responses) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		s.writeJSON(w, responses)
		return
	}

	resp := s.handleRaw(r.Context(), body)
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.writeJSON(w, resp)
}

// handleRaw returns nil for notifications.
func (s *Server) handleRaw(ctx context.Context, raw json.RawMessage) *Response {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return errorResponse(nil, NewError(CodeParseError, "parse error"))
	}
	if req.JSONRPC != Version || req.Method == "" {
		return errorResponse(req.ID, NewError(CodeInvalidRequest, "invalid request"))
	}

	resp := s.Call(ctx, &req)
	if len(req.ID) == 0 {
		return nil
	}
	return resp
}

// Call dispatches one decoded request.
func (s *Server) Call(ctx context.Context, req *Request) *Response {
	started := time.Now()

	handler, ok := s.methods[req.Method]
	if !ok {
		metrics.ObserveRPC(s.surface, "unknown", strconv.Itoa(CodeMethodNotFound), started)
		return errorResponse(req.ID, NewError(CodeMethodNotFound, "method not found: "+req.Method))
	}

	result, err := handler(ctx, req.Params)
	if err != nil {
		rpcErr := s.mapError(err)
		if rpcErr.Code == CodeInternalError {
			s.log.Error("rpc call failed", "method", req.Method, "err", err)
		} else {
			s.log.Warn("rpc call rejected", "method", req.Method, "code", rpcErr.Code, "err", err)
		}
		metrics.ObserveRPC(s.surface, req.Method, strconv.Itoa(rpcErr.Code), started)
		return errorResponse(req.ID, rpcErr)
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		s.log.Error("failed to encode rpc result", "method", req.Method, "err", err)
		metrics.ObserveRPC(s.surface, req.Method, strconv.Itoa(CodeInternalError), started)
		return errorResponse(req.ID, NewError(CodeInternalError, "failed to encode result"))
	}

	s.log.Debug("rpc call served", "method", req.Method, "duration", time.Since(started))
	metrics.ObserveRPC(s.surface, req.Method, "ok", started)
	return &Response{JSONRPC: Version, ID: idOrNull(req.ID), Result: encoded}
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to write rpc response", "err", err)
	}
}

func errorResponse(id json.RawMessage, err *Error) *Response {
	return &Response{JSONRPC: Version, ID: idOrNull(id), Error: err}
}

func idOrNull(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return json.RawMessage("null")
	}
	return id
}

// DefaultErrorMapper reports invalid params and *Error values as such and
// everything else as an internal error.
func DefaultErrorMapper(err error) *Error {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	if errors.Is(err, ErrInvalidParams) {
		return NewError(CodeInvalidParams, err.Error())
	}
	return NewError(CodeInternalError, err.Error())
}
