package server

import (
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// maxResponseBytes is the process-wide response size cap from §4.8: a
// handler result that would exceed this is truncated and marked with
// responseTruncated rather than ever growing the stdio frame unbounded.
const maxResponseBytes = 512 * 1024

// toolResult is the common shape every search_* handler builds before
// marshaling: a summary string plus whatever the tool returns, with
// warnings and branchWarning folded in at the edge by jsonResult.
type toolResult = map[string]interface{}

// jsonResult marshals data as the tool's JSON response, adding a
// branchWarning field when the server started on a non-default branch and
// capping the payload per §4.8/§7.
func (s *Server) jsonResult(data toolResult) (*mcp.CallToolResult, error) {
	if s.branchWarning != "" {
		data["branchWarning"] = s.branchWarning
	}

	buf, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	if len(buf) > maxResponseBytes {
		truncated := toolResult{
			"summary":           data["summary"],
			"responseTruncated": true,
		}
		if s.branchWarning != "" {
			truncated["branchWarning"] = s.branchWarning
		}
		buf, err = json.Marshal(truncated)
		if err != nil {
			return nil, err
		}
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(buf)}},
	}, nil
}

// errorResult reports a tool-level error inside the result object (IsError
// set) rather than as a JSON-RPC protocol error, per the MCP convention:
// the client model needs to see the error text to self-correct.
func (s *Server) errorResult(summary string, err error) (*mcp.CallToolResult, error) {
	res, marshalErr := s.jsonResult(toolResult{
		"summary": summary,
		"error":   err.Error(),
	})
	if marshalErr != nil {
		return nil, marshalErr
	}
	res.IsError = true
	return res, nil
}

// notReadyResult is returned by handlers whose backing index hasn't
// finished its initial build; the client is expected to retry.
func (s *Server) notReadyResult(index string) (*mcp.CallToolResult, error) {
	return s.jsonResult(toolResult{
		"summary": index + " index is still building, please retry",
		"ready":   false,
	})
}
