// Package graphmodel holds the declarative, serializable records that make
// up a graph: nodes, edges, and the canonical persistence shape.
package graphmodel

import "encoding/json"

// Class distinguishes a node kind as belonging to the Data family (ordinary
// dataflow) or the Control family (branch-style, handle-routed).
type Class string

const (
	ClassData    Class = "Data"
	ClassControl Class = "Control"
)

// Kind enumerates the concrete node variants. Each belongs to exactly one Class.
type Kind string

const (
	KindInput      Kind = "Input"
	KindIdentity   Kind = "Identity"
	KindPrompt     Kind = "Prompt"
	KindLLM        Kind = "LLM"
	KindHTTP       Kind = "Http"
	KindMCP        Kind = "Mcp"
	KindBranch     Kind = "Branch"
	KindParallel   Kind = "Parallel"
	KindRepeat     Kind = "Repeat"
	KindAggregator Kind = "Aggregator"
)

// ClassOf reports which family a kind belongs to.
func ClassOf(k Kind) Class {
	switch k {
	case KindBranch, KindParallel, KindRepeat, KindAggregator:
		return ClassControl
	default:
		return ClassData
	}
}

// Processors names the optional input/output side-effect hooks a node
// resolves by name from the process-wide ProcessorRegistry at run time.
type Processors struct {
	Input  *string `json:"input,omitempty"`
	Output *string `json:"output,omitempty"`
}

// Node is the declarative record stored by the Graph: id, kind, a
// kind-specific config blob, and optional processor/binding names.
type Node struct {
	ID         string          `json:"id"`
	Kind       Kind            `json:"kind"`
	Data       json.RawMessage `json:"data"`
	Processors Processors      `json:"processors"`
	InputID    *string         `json:"inputId,omitempty"`
	OutputID   *string         `json:"outputId,omitempty"`
}

// Class reports the node's family, derived from its Kind.
func (n Node) Class() Class { return ClassOf(n.Kind) }
