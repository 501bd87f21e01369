// Package mcpclient implements a minimal MCP (Model Context Protocol)
// client over JSON-RPC-over-HTTP, plus the process-wide registry the MCP
// node resolves a server's client from by id.
//
// No third-party MCP client library appears with a usable example anywhere
// in the retrieved corpus (see DESIGN.md); this is a deliberate,
// documented stdlib exception, grounded on the same net/http-JSON
// hand-rolling precedent as the teacher's own HTTPTool.
package mcpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/duragraph/workflow-go/internal/pkg/wferrors"
)

// rpcRequest is a JSON-RPC 2.0 request envelope.
type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int64       `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// Client issues `tools/call` JSON-RPC requests against one MCP server.
type Client interface {
	Call(ctx context.Context, callName string, arguments interface{}) (interface{}, error)
}

// HTTPClient is a Client backed by a plain HTTP JSON-RPC endpoint.
type HTTPClient struct {
	endpoint string
	http     *http.Client
	nextID   int64
}

// NewHTTPClient returns a Client POSTing JSON-RPC envelopes to endpoint.
func NewHTTPClient(endpoint string) *HTTPClient {
	return &HTTPClient{endpoint: endpoint, http: &http.Client{}}
}

// Call sends a `tools/call` request naming callName with arguments and
// returns the decoded result.
func (c *HTTPClient) Call(ctx context.Context, callName string, arguments interface{}) (interface{}, error) {
	id := atomic.AddInt64(&c.nextID, 1)
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  "tools/call",
		Params: map[string]interface{}{
			"name":      callName,
			"arguments": arguments,
		},
	}
	raw, err := json.Marshal(reqBody)
	if err != nil {
		return nil, wferrors.Serialization("mcp request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, wferrors.Transport("mcp", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, wferrors.Transport("mcp", err)
	}
	defer resp.Body.Close()

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, wferrors.Serialization("mcp response", err)
	}
	if rpcResp.Error != nil {
		return nil, wferrors.Transport("mcp", fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message))
	}

	var result interface{}
	if len(rpcResp.Result) > 0 {
		if err := json.Unmarshal(rpcResp.Result, &result); err != nil {
			return nil, wferrors.Serialization("mcp result", err)
		}
	}
	return result, nil
}

// Registry is the process-wide, mutex-guarded map from server id to Client.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]Client
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry { return &Registry{clients: make(map[string]Client)} }

// Register installs a Client under serverID.
func (r *Registry) Register(serverID string, client Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[serverID] = client
}

// Get resolves a previously-registered Client by serverID.
func (r *Registry) Get(serverID string) (Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[serverID]
	return c, ok
}

// Default is the process-wide registry MCP nodes resolve their server
// client from, unless a test wires a scoped one in instead.
var Default = NewRegistry()
