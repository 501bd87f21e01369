package runner

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duragraph/workflow-go/internal/execctx"
	"github.com/duragraph/workflow-go/internal/execnode"
	"github.com/duragraph/workflow-go/internal/flowdata"
	"github.com/duragraph/workflow-go/internal/graph"
	"github.com/duragraph/workflow-go/internal/graphmodel"
	"github.com/duragraph/workflow-go/internal/pkg/wferrors"
	"github.com/duragraph/workflow-go/internal/wfevents"
)

func strp(s string) *string { return &s }

func textInputNode(id, text string) graphmodel.Node {
	cfg, _ := json.Marshal(execnode.InputConfig{Literal: flowdata.NewTextData(text)})
	return graphmodel.Node{ID: id, Kind: graphmodel.KindInput, Data: cfg}
}

func numberInputNode(id string, n float64) graphmodel.Node {
	cfg, _ := json.Marshal(execnode.InputConfig{Literal: flowdata.NewNumberData(n)})
	return graphmodel.Node{ID: id, Kind: graphmodel.KindInput, Data: cfg}
}

func identityNode(id string) graphmodel.Node {
	return graphmodel.Node{ID: id, Kind: graphmodel.KindIdentity}
}

func branchNode(id string, cfg execnode.BranchConfig) graphmodel.Node {
	data, _ := json.Marshal(cfg)
	return graphmodel.Node{ID: id, Kind: graphmodel.KindBranch, Data: data}
}

func aggregatorNode(id string, cfg execnode.AggregatorConfig) graphmodel.Node {
	data, _ := json.Marshal(cfg)
	return graphmodel.Node{ID: id, Kind: graphmodel.KindAggregator, Data: data}
}

func repeatNode(id string, cfg execnode.RepeatConfig) graphmodel.Node {
	data, _ := json.Marshal(cfg)
	return graphmodel.Node{ID: id, Kind: graphmodel.KindRepeat, Data: data}
}

func parallelNode(id string, cfg execnode.ParallelConfig) graphmodel.Node {
	data, _ := json.Marshal(cfg)
	return graphmodel.Node{ID: id, Kind: graphmodel.KindParallel, Data: data}
}

func buildRunner(t *testing.T, g *graph.Graph, opts ...Option) *Runner {
	t.Helper()
	require.NoError(t, g.Compile())
	rc, err := execctx.Build(g, execnode.Dependencies{})
	require.NoError(t, err)
	return New(g, rc, opts...)
}

func TestRunLinearPassthrough(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.SetStartNode(textInputNode(graph.StartNodeID, "hello")))
	require.NoError(t, g.SetEndNode(identityNode(graph.EndNodeID)))
	_, err := g.AddEdge(graph.StartNodeID, graph.EndNodeID, nil, nil)
	require.NoError(t, err)

	r := buildRunner(t, g)
	out, err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	text, err := out.AsText()
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestRunBranchSkipCascade(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.SetStartNode(textInputNode(graph.StartNodeID, "yes")))
	require.NoError(t, g.AddNode(branchNode("b", execnode.BranchConfig{
		Branches: []execnode.BranchCase{{ID: "yes", Condition: "==", Value: "yes"}},
		Default:  "no",
	})))
	require.NoError(t, g.AddNode(identityNode("yes-sink")))
	require.NoError(t, g.AddNode(identityNode("no-sink")))
	require.NoError(t, g.SetEndNode(identityNode(graph.EndNodeID)))

	_, err := g.AddEdge(graph.StartNodeID, "b", nil, nil)
	require.NoError(t, err)
	_, err = g.AddEdge("b", "yes-sink", strp("yes"), nil)
	require.NoError(t, err)
	_, err = g.AddEdge("b", "no-sink", strp("no"), nil)
	require.NoError(t, err)
	_, err = g.AddEdge("yes-sink", graph.EndNodeID, nil, nil)
	require.NoError(t, err)
	_, err = g.AddEdge("no-sink", graph.EndNodeID, nil, nil)
	require.NoError(t, err)

	var skipped []string
	bus := wfevents.NewBus()
	bus.Subscribe(wfevents.EventTypeNodeSkipped, func(_ context.Context, ev wfevents.Event) {
		skipped = append(skipped, ev.(wfevents.NodeSkipped).NodeID)
	})

	r := buildRunner(t, g, WithBus(bus))
	out, err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	text, err := out.AsText()
	require.NoError(t, err)
	assert.Equal(t, "yes", text)
	assert.Contains(t, skipped, "no-sink")
	assert.NotContains(t, skipped, graph.EndNodeID)
}

func TestRunAggregatorResolvesChildrenByIDOnly(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.SetStartNode(numberInputNode(graph.StartNodeID, 7)))
	require.NoError(t, g.AddNode(aggregatorNode("agg", execnode.AggregatorConfig{
		Branches: map[string]string{"a": "childA", "b": "childB"},
	})))
	// childA/childB are deliberately disconnected: the Aggregator resolves
	// them via rc.Executor, not via graph edges, so they carry no edges and
	// must never be scheduled at the top level.
	require.NoError(t, g.AddNode(identityNode("childA")))
	require.NoError(t, g.AddNode(identityNode("childB")))
	require.NoError(t, g.SetEndNode(identityNode(graph.EndNodeID)))

	_, err := g.AddEdge(graph.StartNodeID, "agg", nil, nil)
	require.NoError(t, err)
	_, err = g.AddEdge("agg", graph.EndNodeID, nil, nil)
	require.NoError(t, err)

	r := buildRunner(t, g)
	out, err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	items, err := out.AsCollection()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, float64(7), items[0].Num)
	assert.Equal(t, float64(7), items[1].Num)
}

func TestRunRepeatResolvesChildByIDOnly(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.SetStartNode(textInputNode(graph.StartNodeID, "same")))
	require.NoError(t, g.AddNode(repeatNode("rep", execnode.RepeatConfig{
		ChildID: "child", MaxIterations: 3,
	})))
	require.NoError(t, g.AddNode(identityNode("child")))
	require.NoError(t, g.SetEndNode(identityNode(graph.EndNodeID)))

	_, err := g.AddEdge(graph.StartNodeID, "rep", nil, nil)
	require.NoError(t, err)
	_, err = g.AddEdge("rep", graph.EndNodeID, nil, nil)
	require.NoError(t, err)

	r := buildRunner(t, g)
	out, err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	text, err := out.AsText()
	require.NoError(t, err)
	assert.Equal(t, "same", text)
}

func TestRunParallelFansOutToDistinctGraphSuccessors(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.SetStartNode(textInputNode(graph.StartNodeID, "fanout")))
	require.NoError(t, g.AddNode(parallelNode("par", execnode.ParallelConfig{
		Branches: map[string]string{"left": "workerA", "right": "workerB"},
	})))
	// workerA/workerB compute each branch's payload and are never addressed
	// by a graph edge; the handle edges below are the real continuation.
	require.NoError(t, g.AddNode(identityNode("workerA")))
	require.NoError(t, g.AddNode(identityNode("workerB")))
	require.NoError(t, g.AddNode(identityNode("right-sink")))
	require.NoError(t, g.SetEndNode(identityNode(graph.EndNodeID)))

	_, err := g.AddEdge(graph.StartNodeID, "par", nil, nil)
	require.NoError(t, err)
	_, err = g.AddEdge("par", graph.EndNodeID, strp("left"), nil)
	require.NoError(t, err)
	_, err = g.AddEdge("par", "right-sink", strp("right"), nil)
	require.NoError(t, err)

	r := buildRunner(t, g)
	out, err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	text, err := out.AsText()
	require.NoError(t, err)
	assert.Equal(t, "fanout", text)
}

func TestRunFailsOnUncompiledGraph(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.SetStartNode(identityNode(graph.StartNodeID)))

	r := New(g, nil)
	_, err := r.Run(context.Background(), nil)
	assert.ErrorIs(t, err, wferrors.ErrGraphNotCompiled)
}

func TestRunFailsWithNoStartNode(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.AddNode(identityNode("x")))

	r := buildRunner(t, g)
	_, err := r.Run(context.Background(), nil)
	assert.ErrorIs(t, err, wferrors.ErrNoStartNode)
}

func TestRunFailsWithNoEndNode(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.SetStartNode(textInputNode(graph.StartNodeID, "x")))
	require.NoError(t, g.AddNode(identityNode("only")))
	_, err := g.AddEdge(graph.StartNodeID, "only", nil, nil)
	require.NoError(t, err)

	r := buildRunner(t, g)
	_, err = r.Run(context.Background(), nil)
	assert.ErrorIs(t, err, wferrors.ErrNoEndNode)
}
