// Package execctx implements Context: the per-run materialization of a
// compiled graph.Graph into instantiated execnode.Executable values, keyed
// by node id. Grounded on original_source/src/model/context.rs's
// Context::from_graph and the teacher's "materialize once, read-only
// during the run" idiom (internal/domain/execution/state.go).
package execctx

import (
	"github.com/duragraph/workflow-go/internal/execnode"
	"github.com/duragraph/workflow-go/internal/graph"
)

// Context holds the instantiated executor for every node in one compiled
// graph, plus a scratch string metadata map a run may annotate. It
// satisfies execnode.Context so control-class nodes (Parallel, Aggregator,
// Repeat) can resolve their children through it.
type Context struct {
	executors map[string]execnode.Executable
	Metadata  map[string]string
}

// Build walks every node record in g and instantiates its Executable via
// execnode.New, returning the first construction error encountered (a
// node record malformed for its kind). The graph must already be compiled.
func Build(g *graph.Graph, deps execnode.Dependencies) (*Context, error) {
	executors := make(map[string]execnode.Executable, len(g.Nodes()))
	for _, n := range g.Nodes() {
		exec, err := execnode.New(n, deps)
		if err != nil {
			return nil, err
		}
		executors[n.ID] = exec
	}
	return &Context{executors: executors, Metadata: make(map[string]string)}, nil
}

// Executor resolves a node id to its instantiated Executable.
func (c *Context) Executor(id string) (execnode.Executable, bool) {
	e, ok := c.executors[id]
	return e, ok
}
