// Package mcp serves the ams screens as MCP tools over stdio JSON-RPC.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/ams-studio/ams/pkg/auth"
	"github.com/ams-studio/ams/pkg/config"
	"github.com/ams-studio/ams/pkg/logging"
	"github.com/ams-studio/ams/pkg/screen"
	"github.com/ams-studio/ams/pkg/session"
)

const maxLineBytes = 1024 * 1024

// Server answers MCP requests read line by line.
type Server struct {
	data    screen.DataService
	store   *session.Store
	guard   *auth.Guard
	cfg     *config.Config
	version string
	log     *zap.Logger
	now     func() time.Time
}

// New creates a Server. Every tool call requires a valid stored session.
func New(data screen.DataService, store *session.Store, cfg *config.Config, version string, log *zap.Logger) *Server {
	log = logging.OrNop(log)
	return &Server{
		data:    data,
		store:   store,
		guard:   auth.NewGuard(store, nil, log),
		cfg:     cfg,
		version: version,
		log:     log,
		now:     time.Now,
	}
}

// Run serves requests from r until r is exhausted or ctx is cancelled.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.write(w, errorResponse(nil, CodeParseError, "parse error"))
			continue
		}
		if req.JSONRPC != jsonrpcVersion {
			s.write(w, errorResponse(req.ID, CodeInvalidRequest, "jsonrpc must be 2.0"))
			continue
		}

		if resp := s.dispatch(ctx, &req); resp != nil {
			s.write(w, *resp)
		}
	}
	return scanner.Err()
}

func (s *Server) dispatch(ctx context.Context, req *Request) *Response {
	switch req.Method {
	case "initialize":
		return result(req, InitializeResult{
			ProtocolVersion: ProtocolVersion,
			ServerInfo:      ServerInfo{Name: "ams", Version: s.version},
			Capabilities:    map[string]any{"tools": map[string]any{}},
		})
	case "notifications/initialized":
		return nil
	case "ping":
		return result(req, map[string]any{})
	case "tools/list":
		return result(req, ToolsListResult{Tools: allTools})
	case "tools/call":
		return s.callTool(ctx, req)
	}
	if len(req.ID) == 0 {
		return nil
	}
	resp := errorResponse(req.ID, CodeMethodNotFound, fmt.Sprintf("unknown method: %s", req.Method))
	return &resp
}

func (s *Server) callTool(ctx context.Context, req *Request) *Response {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		resp := errorResponse(req.ID, CodeInvalidParams, "invalid params")
		return &resp
	}

	handler, ok := toolHandlers[params.Name]
	if !ok {
		return result(req, errorResult(fmt.Sprintf("unknown tool: %s", params.Name)))
	}
	s.log.Debug("tool call", zap.String("tool", params.Name))
	return result(req, handler(ctx, s, params.Arguments))
}

func (s *Server) write(w io.Writer, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("marshal response", zap.Error(err))
		return
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		s.log.Error("write response", zap.Error(err))
	}
}
