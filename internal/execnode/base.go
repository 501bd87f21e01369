// Package execnode implements NodeBase, the Executable contract, and the
// ten concrete node variants (Input, Identity, Prompt, LLM, Http, Mcp,
// Branch, Parallel, Aggregator, Repeat).
package execnode

import (
	"context"

	"github.com/duragraph/workflow-go/internal/flowdata"
	"github.com/duragraph/workflow-go/internal/pkg/wferrors"
	"github.com/duragraph/workflow-go/internal/processor"
)

// State is a node's lifecycle state during one run.
type State string

const (
	StatePending   State = "Pending"
	StateRunning   State = "Running"
	StateCompleted State = "Completed"
	StateFailed    State = "Failed"
	StateCancelled State = "Cancelled"
)

// NodeBase is the state every variant embeds: id, lifecycle state, a
// scratch metadata map, and the *names* (not instances) of its processors.
// Resolving names against the registry at execute time keeps graph
// serialization (plain strings) decoupled from runtime side effects.
type NodeBase struct {
	ID             string
	State          State
	Metadata       map[string]string
	InputProcessor *string
	OutputProcessor *string
	Registry       *processor.Registry
}

// NewNodeBase returns a NodeBase in the Pending state, resolving processors
// against the given registry (the process-wide default if reg is nil).
func NewNodeBase(id string, inputProc, outputProc *string, reg *processor.Registry) NodeBase {
	if reg == nil {
		reg = processor.Default
	}
	return NodeBase{
		ID:              id,
		State:           StatePending,
		Metadata:        make(map[string]string),
		InputProcessor:  inputProc,
		OutputProcessor: outputProc,
		Registry:        reg,
	}
}

func (b *NodeBase) SetState(s State) { b.State = s }

func (b *NodeBase) SetMetadata(key, value string) {
	if b.Metadata == nil {
		b.Metadata = make(map[string]string)
	}
	b.Metadata[key] = value
}

func (b *NodeBase) GetMetadata(key string) (string, bool) {
	v, ok := b.Metadata[key]
	return v, ok
}

// ProcessInput runs the named input processor (if set and resolvable),
// otherwise passes input through unchanged. A resolved processor that
// declines the input (ok=false) yields "no input available".
func (b *NodeBase) ProcessInput(ctx context.Context, input *flowdata.FlowData) (*flowdata.FlowData, error) {
	if b.InputProcessor == nil || input == nil {
		return input, nil
	}
	fn, ok := b.Registry.GetInput(*b.InputProcessor)
	if !ok {
		return input, nil
	}
	out, keep, err := fn(ctx, b.ID, *input)
	if err != nil {
		return nil, err
	}
	if !keep {
		return nil, nil
	}
	return &out, nil
}

// ProcessOutput runs the named output processor (if set and resolvable),
// otherwise passes output through unchanged.
func (b *NodeBase) ProcessOutput(ctx context.Context, output flowdata.FlowOutput) (*flowdata.FlowOutput, error) {
	if b.OutputProcessor == nil {
		return &output, nil
	}
	fn, ok := b.Registry.GetOutput(*b.OutputProcessor)
	if !ok {
		return &output, nil
	}
	out, keep, err := fn(ctx, b.ID, output)
	if err != nil {
		return nil, err
	}
	if !keep {
		return nil, nil
	}
	return &out, nil
}

// Context is the minimal view of a run's executor map that control-class
// nodes (Parallel, Aggregator, Repeat) need to dispatch their children.
// execctx.Context implements this.
type Context interface {
	Executor(id string) (Executable, bool)
}

// Executable is the uniform contract every node variant satisfies:
// process_input -> core_execute -> process_output.
type Executable interface {
	Base() *NodeBase
	ProcessInput(ctx context.Context, input *flowdata.FlowData) (*flowdata.FlowData, error)
	CoreExecute(ctx context.Context, input *flowdata.FlowData, rc Context) (flowdata.FlowOutput, error)
	ProcessOutput(ctx context.Context, output flowdata.FlowOutput) (*flowdata.FlowOutput, error)
}

// Execute runs the canonical three-stage pipeline. If process_output
// returns nil, that is surfaced as an execution error rather than silently
// swallowed (spec's resolved Open Question).
func Execute(ctx context.Context, e Executable, input *flowdata.FlowData, rc Context) (flowdata.FlowOutput, error) {
	base := e.Base()
	base.SetState(StateRunning)

	processedInput, err := e.ProcessInput(ctx, input)
	if err != nil {
		base.SetState(StateFailed)
		return flowdata.FlowOutput{}, err
	}

	out, err := e.CoreExecute(ctx, processedInput, rc)
	if err != nil {
		base.SetState(StateFailed)
		return flowdata.FlowOutput{}, err
	}

	processedOutput, err := e.ProcessOutput(ctx, out)
	if err != nil {
		base.SetState(StateFailed)
		return flowdata.FlowOutput{}, err
	}
	if processedOutput == nil {
		base.SetState(StateFailed)
		return flowdata.FlowOutput{}, wferrors.ExecutionError(base.ID, "process_output returned no output")
	}

	base.SetState(StateCompleted)
	return *processedOutput, nil
}
