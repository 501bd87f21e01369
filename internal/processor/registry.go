// Package processor implements the process-wide registry of named
// input/output side-effect hooks that nodes resolve by name at execute time.
package processor

import (
	"context"
	"log"
	"sync"

	"github.com/duragraph/workflow-go/internal/flowdata"
)

// InputFunc is an input processor: FlowData -> optional FlowData. Returning
// ok=false signals "drop this input, treat as if none was delivered."
type InputFunc func(ctx context.Context, nodeID string, data flowdata.FlowData) (flowdata.FlowData, bool, error)

// OutputFunc is an output processor: FlowOutput -> optional FlowOutput.
type OutputFunc func(ctx context.Context, nodeID string, out flowdata.FlowOutput) (flowdata.FlowOutput, bool, error)

// Registry is a process-wide, mutex-guarded store of named processors.
// Writes happen only at startup; reads happen once per node dispatch.
type Registry struct {
	mu      sync.RWMutex
	inputs  map[string]InputFunc
	outputs map[string]OutputFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{inputs: make(map[string]InputFunc), outputs: make(map[string]OutputFunc)}
}

// RegisterInput names an input processor.
func (r *Registry) RegisterInput(name string, fn InputFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs[name] = fn
}

// RegisterOutput names an output processor.
func (r *Registry) RegisterOutput(name string, fn OutputFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outputs[name] = fn
}

// GetInput resolves a named input processor.
func (r *Registry) GetInput(name string) (InputFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.inputs[name]
	return fn, ok
}

// GetOutput resolves a named output processor.
func (r *Registry) GetOutput(name string) (OutputFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.outputs[name]
	return fn, ok
}

// Default is the process-wide singleton the graph's NodeBase instances
// resolve processor names against, mirroring the ambient PROCESSOR_REGISTRY
// every node consults at execute time.
var Default = NewRegistry()

func init() {
	RegisterDefaults(Default)
}

// RegisterDefaults installs the logging and validation processors on r.
// Default receives them at package init; a registry from NewRegistry starts
// empty until this is called on it.
func RegisterDefaults(r *Registry) {
	r.RegisterInput("logging", LoggingInput)
	r.RegisterOutput("logging", LoggingOutput)
	r.RegisterOutput("validation", ValidationOutput)
}

// LoggingInput passes input through unchanged, logging its arrival.
func LoggingInput(_ context.Context, nodeID string, data flowdata.FlowData) (flowdata.FlowData, bool, error) {
	log.Printf("node %s: input kind=%s", nodeID, data.Kind)
	return data, true, nil
}

// LoggingOutput passes output through unchanged, logging its kind.
func LoggingOutput(_ context.Context, nodeID string, out flowdata.FlowOutput) (flowdata.FlowOutput, bool, error) {
	log.Printf("node %s: output kind=%s", nodeID, out.Kind)
	return out, true, nil
}

// ValidationOutput rejects an output envelope with no recognizable kind set.
func ValidationOutput(_ context.Context, nodeID string, out flowdata.FlowOutput) (flowdata.FlowOutput, bool, error) {
	switch out.Kind {
	case flowdata.OutputData, flowdata.OutputControl, flowdata.OutputStream, flowdata.OutputParallel:
		return out, true, nil
	default:
		return flowdata.FlowOutput{}, false, nil
	}
}
