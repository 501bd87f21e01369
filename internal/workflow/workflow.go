// Package workflow is the thin facade tying graph compilation, node
// materialization, and the scheduler together into the single entry point
// a caller (the CLI's run command, its HTTP handlers) actually needs. Grounded on
// the teacher's internal/infrastructure/graph.Engine.Execute, which plays
// the same "wire the pieces, run, return" role over its own richer
// dependency set.
package workflow

import (
	"context"

	"github.com/duragraph/workflow-go/internal/execctx"
	"github.com/duragraph/workflow-go/internal/execnode"
	"github.com/duragraph/workflow-go/internal/flowdata"
	"github.com/duragraph/workflow-go/internal/graph"
	"github.com/duragraph/workflow-go/internal/runner"
	"github.com/duragraph/workflow-go/internal/streaming"
	"github.com/duragraph/workflow-go/internal/wfevents"
)

// Workflow wraps a compiled graph with the dependencies its nodes need to
// run: LLM/MCP client factories and (optionally) an event bus shared across
// every run it starts. A stream sink is given per run (WithSink on Start).
type Workflow struct {
	graph *graph.Graph
	deps  execnode.Dependencies
	bus   *wfevents.Bus
}

// Option configures a Workflow at construction.
type Option func(*Workflow)

// WithDependencies installs the LLM/MCP client factories node construction
// resolves against. Omitting this leaves every dependency at its
// sensible default (DefaultClientFactory, mcpclient.Default registry).
func WithDependencies(deps execnode.Dependencies) Option {
	return func(w *Workflow) { w.deps = deps }
}

// WithBus installs the event bus every run publishes node lifecycle
// events to.
func WithBus(bus *wfevents.Bus) Option {
	return func(w *Workflow) { w.bus = bus }
}

// New returns a Workflow over a compiled graph, compiling g first if it is
// not compiled yet. Returns the compile error (e.g. CycleDetected) if that
// fails.
func New(g *graph.Graph, opts ...Option) (*Workflow, error) {
	if !g.Compiled() {
		if err := g.Compile(); err != nil {
			return nil, err
		}
	}
	w := &Workflow{graph: g}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// RunOption configures a single Start call.
type RunOption func(*runOpts)

type runOpts struct {
	sink  streaming.Sink
	runID string
}

// WithSink forwards this run's Stream-kind chunks to sink.
func WithSink(sink streaming.Sink) RunOption {
	return func(o *runOpts) { o.sink = sink }
}

// WithRunID tags this run's events and spans with id.
func WithRunID(id string) RunOption {
	return func(o *runOpts) { o.runID = id }
}

// Start materializes a fresh execution context from the graph and runs it
// to completion from an optional initial payload. Each call is
// independent: node state, pending-predecessor counts, and delivered
// outputs never carry over between calls.
func (w *Workflow) Start(ctx context.Context, initial *flowdata.FlowData, opts ...RunOption) (flowdata.FlowData, error) {
	o := &runOpts{}
	for _, opt := range opts {
		opt(o)
	}

	rc, err := execctx.Build(w.graph, w.deps)
	if err != nil {
		return flowdata.FlowData{}, err
	}

	runnerOpts := []runner.Option{runner.WithBus(w.bus), runner.WithRunID(o.runID)}
	if o.sink != nil {
		runnerOpts = append(runnerOpts, runner.WithSink(o.sink))
	}

	rn := runner.New(w.graph, rc, runnerOpts...)
	return rn.Run(ctx, initial)
}
