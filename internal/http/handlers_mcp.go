package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	applog "mealplan/internal/log"
)

// handleMCP serves a single MCP tools/call request posted as JSON.
func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	limit := s.maxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}

	var request protocol.CallToolRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit)).Decode(&request); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", ErrMalformedBody, err), "mcp_call")
		return
	}

	result, err := s.tools.Call(r.Context(), &request)
	if err != nil {
		writeError(w, r, err, "mcp_call")
		return
	}
	atomic.AddInt64(&s.appMetrics.toolCalls, 1)
	applog.FromContext(r.Context()).DebugContext(r.Context(), "MCP tool called",
		"tool", request.Name)
	NewJSONResponse().Body(result).Write(w)
}
