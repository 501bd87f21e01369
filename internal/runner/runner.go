// Package runner implements the Runner: the single-threaded cooperative
// scheduler that dispatches ready nodes, resolves their input, applies the
// branch-skip cascade, and forwards stream chunks. This is the component
// spec.md §4.3 calls "the heart of the design." The scheduling algorithm
// itself follows original_source/src/runner.rs literally (ready queue,
// pending_predecessors counters, input_refs indirection); the ambient
// shape around each dispatch — a span, a counter, a published lifecycle
// event, a ctx.Done() check — is carried over from the teacher's
// internal/infrastructure/graph.Engine.executeNode.
package runner

import (
	"bytes"
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duragraph/workflow-go/internal/execnode"
	"github.com/duragraph/workflow-go/internal/flowdata"
	"github.com/duragraph/workflow-go/internal/graph"
	"github.com/duragraph/workflow-go/internal/pkg/wferrors"
	"github.com/duragraph/workflow-go/internal/streaming"
	"github.com/duragraph/workflow-go/internal/wfevents"
)

// Context is the minimal view of a run's materialized executors the Runner
// needs: resolve a node id to its Executable. execctx.Context implements
// this, keeping this package from importing execctx directly (execctx
// already imports execnode and graph; this avoids a cycle and keeps the
// Runner's dependency surface to the contract it actually uses).
type Context interface {
	Executor(id string) (execnode.Executable, bool)
}

// Runner drives one run of a compiled graph to completion. A Runner value
// is single-use: construct one with New, call Run once.
type Runner struct {
	graph *graph.Graph
	ctx   Context
	bus   *wfevents.Bus
	sink  streaming.Sink
	runID string

	inputs              map[string]flowdata.FlowData
	outputs             map[string]flowdata.FlowData
	inputRefs           map[string]string
	pendingPredecessors map[string]int
	delivered           map[string]bool
	skipped             map[string]bool
	queue               []string
}

// Option configures a Runner at construction.
type Option func(*Runner)

// WithBus installs the wfevents.Bus node lifecycle events publish to.
func WithBus(bus *wfevents.Bus) Option {
	return func(r *Runner) { r.bus = bus }
}

// WithSink installs the channel Stream-kind outputs forward their chunks
// to. A nil sink (the default) means Stream outputs are collected but
// never forwarded externally.
func WithSink(sink streaming.Sink) Option {
	return func(r *Runner) { r.sink = sink }
}

// WithRunID tags every published event and span with a caller-supplied run
// identifier (defaults to the empty string, which is a valid tag for a
// single ad hoc run).
func WithRunID(id string) Option {
	return func(r *Runner) { r.runID = id }
}

// New returns a Runner over a compiled graph and its materialized
// execution context.
func New(g *graph.Graph, rc Context, opts ...Option) *Runner {
	r := &Runner{
		graph:               g,
		ctx:                 rc,
		inputs:              make(map[string]flowdata.FlowData),
		outputs:             make(map[string]flowdata.FlowData),
		inputRefs:           make(map[string]string),
		pendingPredecessors: make(map[string]int),
		delivered:           make(map[string]bool),
		skipped:             make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the graph to completion from an optional initial payload,
// which is seeded as the input of the graph's designated start node (see
// prepare).
// Returns outputs["end"], or NoEndNode if the run terminated without ever
// producing one.
func (r *Runner) Run(ctx context.Context, initial *flowdata.FlowData) (flowdata.FlowData, error) {
	if !r.graph.Compiled() {
		return flowdata.FlowData{}, wferrors.GraphNotCompiled()
	}
	start, ok := r.graph.StartNode()
	if !ok {
		return flowdata.FlowData{}, wferrors.NoStartNode()
	}

	runsActive.Inc()
	defer runsActive.Dec()

	r.prepare(start, initial)

	for len(r.queue) > 0 {
		select {
		case <-ctx.Done():
			return flowdata.FlowData{}, ctx.Err()
		default:
		}

		current := r.queue[0]
		r.queue = r.queue[1:]

		if err := r.dispatch(ctx, current); err != nil {
			return flowdata.FlowData{}, err
		}
	}

	end, ok := r.outputs[graph.EndNodeID]
	if !ok {
		return flowdata.FlowData{}, wferrors.NoEndNode()
	}
	return end, nil
}

// prepare seeds pending-predecessor counts for every node and enqueues only
// the graph's designated start node with the initial payload. A node with
// zero predecessors that isn't the start node is never spontaneously
// scheduled — it is either unreachable, or a control node's child meant to
// run only via that parent's direct rc.Executor(childID) lookup (Parallel,
// Aggregator, Repeat), never through the ready queue.
func (r *Runner) prepare(start string, initial *flowdata.FlowData) {
	for _, n := range r.graph.Nodes() {
		r.pendingPredecessors[n.ID] = len(r.graph.Predecessors(n.ID))
	}

	r.delivered[start] = true
	r.queue = append(r.queue, start)
	if initial != nil {
		r.inputs[start] = *initial
	}
}

// resolveInput implements spec.md §4.3's input resolution: a seeded
// inputs entry wins, then an input_refs indirection to a producer's
// output, then "no input" (legitimate for an Input node).
func (r *Runner) resolveInput(id string) *flowdata.FlowData {
	if d, ok := r.inputs[id]; ok {
		return &d
	}
	if src, ok := r.inputRefs[id]; ok {
		if d, ok := r.outputs[src]; ok {
			return &d
		}
	}
	return nil
}

func (r *Runner) sortedSuccessors(id string) []string {
	succ := r.graph.Successors(id)
	out := make([]string, 0, len(succ))
	for s := range succ {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// dispatch resolves v's input, executes it, and routes its FlowOutput.
func (r *Runner) dispatch(ctx context.Context, v string) error {
	exec, ok := r.ctx.Executor(v)
	if !ok {
		return wferrors.NodeNotFound(v)
	}

	kind := "unknown"
	if rec, ok := r.graph.Node(v); ok {
		kind = string(rec.Kind)
	}

	spanCtx, span := tracer.Start(ctx, "runner.dispatch",
		trace.WithAttributes(attribute.String("node.id", v), attribute.String("node.kind", kind)))
	defer span.End()

	start := time.Now()
	input := r.resolveInput(v)

	r.publish(spanCtx, wfevents.NodeStarted{RunIDValue: r.runID, NodeID: v, NodeKind: kind, OccurredAt: start})

	out, err := execnode.Execute(spanCtx, exec, input, r.ctx.(execnode.Context))
	if err != nil {
		recordDispatch(kind, "error", time.Since(start))
		span.RecordError(err)
		r.publish(spanCtx, wfevents.NodeFailed{RunIDValue: r.runID, NodeID: v, NodeKind: kind, Error: err.Error(), OccurredAt: time.Now()})
		return err
	}

	if err := r.route(spanCtx, v, out); err != nil {
		recordDispatch(kind, "error", time.Since(start))
		span.RecordError(err)
		r.publish(spanCtx, wfevents.NodeFailed{RunIDValue: r.runID, NodeID: v, NodeKind: kind, Error: err.Error(), OccurredAt: time.Now()})
		return err
	}

	recordDispatch(kind, "ok", time.Since(start))
	r.publish(spanCtx, wfevents.NodeCompleted{
		RunIDValue: r.runID, NodeID: v, NodeKind: kind, OutputKind: string(out.Kind),
		DurationMs: time.Since(start).Milliseconds(), OccurredAt: time.Now(),
	})
	return nil
}

// route dispatches on the FlowOutput kind, updating outputs/inputRefs and
// driving the branch-skip cascade as spec.md §4.3 describes.
func (r *Runner) route(ctx context.Context, v string, out flowdata.FlowOutput) error {
	switch out.Kind {
	case flowdata.OutputData:
		r.outputs[v] = out.Data
		for _, s := range r.sortedSuccessors(v) {
			r.deliver(s, v)
		}
		return nil

	case flowdata.OutputControl:
		target, ok := r.graph.HandleRoute(v, out.Control.NextHandle)
		if !ok {
			return wferrors.ExecutionError(v, "no edge registered for handle "+out.Control.NextHandle)
		}
		r.outputs[v] = out.Control.Data
		for _, s := range r.sortedSuccessors(v) {
			if s == target {
				r.deliver(s, v)
			} else {
				r.markSkipped(ctx, s, "branch handle "+out.Control.NextHandle+" not selected")
			}
		}
		return nil

	case flowdata.OutputStream:
		buf, err := r.drainStream(ctx, v, out.Stream)
		if err != nil {
			return err
		}
		r.outputs[v] = flowdata.NewTextData(buf.String())
		for _, s := range r.sortedSuccessors(v) {
			r.deliver(s, v)
		}
		return nil

	case flowdata.OutputParallel:
		return r.routeParallel(ctx, v, out.Parallel)

	default:
		return wferrors.ExecutionError(v, "node produced an output with no recognizable kind")
	}
}

// drainStream forwards every chunk to the sink (if any) tagged with v,
// concatenating them into the buffer that becomes v's logical output.
func (r *Runner) drainStream(ctx context.Context, v string, chunks <-chan []byte) (*bytes.Buffer, error) {
	buf := &bytes.Buffer{}
	for {
		select {
		case <-ctx.Done():
			return nil, wferrors.StreamChunkError(v, ctx.Err())
		case chunk, ok := <-chunks:
			if !ok {
				return buf, nil
			}
			buf.Write(chunk)
			if r.sink != nil {
				select {
				case r.sink <- streaming.Chunk{NodeID: v, Data: chunk}:
				case <-ctx.Done():
					return nil, wferrors.StreamChunkError(v, ctx.Err())
				}
			}
		}
	}
}

// routeParallel resolves each fan-out entry's handle to its target and
// delivers that entry's own payload directly to it (bypassing the
// single outputs[v] indirection every other output kind uses, since a
// Parallel node's children each need a distinct payload). Any direct
// successor of v not named by a resolved handle is branch-skipped.
func (r *Runner) routeParallel(ctx context.Context, v string, flows []flowdata.ControlFlow) error {
	chosen := make(map[string]bool, len(flows))
	merged := flowdata.NewCollection()
	for _, flow := range flows {
		target, ok := r.graph.HandleRoute(v, flow.NextHandle)
		if !ok {
			return wferrors.ExecutionError(v, "no edge registered for parallel handle "+flow.NextHandle)
		}
		chosen[target] = true
		merged.MergeInto(flow.Data)
		r.inputs[target] = flow.Data
		r.deliverPrepared(target, v)
	}
	r.outputs[v] = merged

	for _, s := range r.sortedSuccessors(v) {
		if !chosen[s] {
			r.markSkipped(ctx, s, "not addressed by any parallel handle")
		}
	}
	return nil
}

// deliver records a live delivery from `from` to `s` via the outputs
// indirection (inputRefs), decrementing s's pending-predecessor count and
// enqueuing it once the count reaches zero.
func (r *Runner) deliver(s, from string) {
	r.inputRefs[s] = from
	r.deliverPrepared(s, from)
}

// deliverPrepared shares the counter/delivered/enqueue bookkeeping between
// deliver (ordinary Data/Control/Stream successors) and routeParallel
// (which pre-seeds inputs[s] directly instead of an inputRefs indirection).
func (r *Runner) deliverPrepared(s, from string) {
	r.delivered[s] = true
	r.pendingPredecessors[s]--
	if r.pendingPredecessors[s] == 0 {
		r.queue = append(r.queue, s)
	}
}

// markSkipped marks s as branch-skipped and cascades the decrement to its
// own successors. If s reaches zero pending predecessors without ever
// having been delivered to (no live path reached it), it is itself
// skipped and the cascade continues; if it was already delivered via some
// other path, it becomes ready to execute instead. This is the scheduling
// correctness point spec.md §9 calls out explicitly.
func (r *Runner) markSkipped(ctx context.Context, s string, reason string) {
	if r.skipped[s] {
		return
	}
	r.pendingPredecessors[s]--
	if r.pendingPredecessors[s] > 0 {
		return
	}
	if r.delivered[s] {
		r.queue = append(r.queue, s)
		return
	}

	r.skipped[s] = true
	r.publish(ctx, wfevents.NodeSkipped{RunIDValue: r.runID, NodeID: s, Reason: reason, OccurredAt: time.Now()})
	for _, t := range r.sortedSuccessors(s) {
		r.markSkipped(ctx, t, reason)
	}
}

func (r *Runner) publish(ctx context.Context, ev wfevents.Event) {
	if r.bus != nil {
		r.bus.Publish(ctx, ev)
	}
}
