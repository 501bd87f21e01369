package execnode

import (
	"github.com/duragraph/workflow-go/internal/graphmodel"
	"github.com/duragraph/workflow-go/internal/mcpclient"
	"github.com/duragraph/workflow-go/internal/pkg/wferrors"
	"github.com/duragraph/workflow-go/internal/processor"
)

// Dependencies bundles the collaborators variant constructors need beyond
// their own config: the LLM client factory, the MCP client registry, and
// the processor registry. Each defaults sensibly when left zero.
type Dependencies struct {
	LLMClientFactory ClientFactory
	MCPRegistry      *mcpclient.Registry
	Processors       *processor.Registry
}

// New builds the Executable for one node record, dispatching on its kind.
// This is the Go variant-dispatch idiom (cf. teacher's
// GetExecutorForNodeType), generalized to the ten kinds this spec defines
// and returning an error for a malformed record instead of a default
// fallback.
func New(n graphmodel.Node, deps Dependencies) (Executable, error) {
	base := NewNodeBase(n.ID, n.Processors.Input, n.Processors.Output, deps.Processors)

	switch n.Kind {
	case graphmodel.KindInput:
		return NewInputNode(base, n.Data)
	case graphmodel.KindIdentity:
		return NewIdentityNode(base), nil
	case graphmodel.KindPrompt:
		return NewPromptNode(base, n.Data)
	case graphmodel.KindLLM:
		return NewLLMNode(base, n.Data, deps.LLMClientFactory)
	case graphmodel.KindHTTP:
		return NewHTTPNode(base, n.Data)
	case graphmodel.KindMCP:
		return NewMCPNode(base, n.Data, deps.MCPRegistry)
	case graphmodel.KindBranch:
		return NewBranchNode(base, n.Data)
	case graphmodel.KindParallel:
		return NewParallelNode(base, n.Data)
	case graphmodel.KindAggregator:
		return NewAggregatorNode(base, n.Data)
	case graphmodel.KindRepeat:
		return NewRepeatNode(base, n.Data)
	default:
		return nil, wferrors.NodeConfigMissing(n.ID, "unknown node kind "+string(n.Kind))
	}
}
