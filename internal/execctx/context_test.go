package execctx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duragraph/workflow-go/internal/execnode"
	"github.com/duragraph/workflow-go/internal/graph"
	"github.com/duragraph/workflow-go/internal/graphmodel"
)

func TestBuildMaterializesAnExecutorPerNode(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.AddNode(graphmodel.Node{ID: "a", Kind: graphmodel.KindIdentity}))
	require.NoError(t, g.AddNode(graphmodel.Node{ID: "b", Kind: graphmodel.KindIdentity}))
	require.NoError(t, g.Compile())

	ctx, err := Build(g, execnode.Dependencies{})
	require.NoError(t, err)

	_, ok := ctx.Executor("a")
	assert.True(t, ok)
	_, ok = ctx.Executor("b")
	assert.True(t, ok)
	_, ok = ctx.Executor("missing")
	assert.False(t, ok)
}

func TestBuildPropagatesConstructionErrors(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.AddNode(graphmodel.Node{
		ID:   "bad-prompt",
		Kind: graphmodel.KindPrompt,
		Data: []byte(`{"template":"   "}`),
	}))
	require.NoError(t, g.Compile())

	_, err := Build(g, execnode.Dependencies{})
	assert.Error(t, err)
}
