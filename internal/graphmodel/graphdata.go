package graphmodel

import "encoding/json"

// wireNodeType is the tagged-union shape spec.md §6 assigns a node's kind:
// {"Data": "Prompt"} or {"Control": "Branch"}.
type wireNodeType struct {
	Data    *Kind `json:"Data,omitempty"`
	Control *Kind `json:"Control,omitempty"`
}

// WireNode is Node's on-the-wire persistence shape.
type WireNode struct {
	ID         string          `json:"id"`
	NodeType   wireNodeType    `json:"nodeType"`
	Data       json.RawMessage `json:"data"`
	Processors Processors      `json:"processors"`
	InputID    *string         `json:"inputId,omitempty"`
	OutputID   *string         `json:"outputId,omitempty"`
}

// ToWire converts a Node to its persistence shape.
func (n Node) ToWire() WireNode {
	w := WireNode{ID: n.ID, Data: n.Data, Processors: n.Processors, InputID: n.InputID, OutputID: n.OutputID}
	kind := n.Kind
	if n.Class() == ClassControl {
		w.NodeType.Control = &kind
	} else {
		w.NodeType.Data = &kind
	}
	return w
}

// FromWire converts a persisted node back to the in-memory record. The
// Class is re-derived from the Kind, not trusted from the wire tag.
func (w WireNode) FromWire() Node {
	var kind Kind
	if w.NodeType.Control != nil {
		kind = *w.NodeType.Control
	} else if w.NodeType.Data != nil {
		kind = *w.NodeType.Data
	}
	return Node{ID: w.ID, Kind: kind, Data: w.Data, Processors: w.Processors, InputID: w.InputID, OutputID: w.OutputID}
}

// WireEdge is Edge's on-the-wire shape. The edge kind is intentionally
// absent: it is re-derived from node kinds at load time.
type WireEdge struct {
	ID           string  `json:"id"`
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	SourceHandle *string `json:"sourceHandle,omitempty"`
	TargetHandle *string `json:"targetHandle,omitempty"`
}

// GraphData is the canonical, round-trippable JSON persistence shape for a
// graph: nodes, edges, and the reserved start/end node ids.
type GraphData struct {
	Nodes     []WireNode `json:"nodes"`
	Edges     []WireEdge `json:"edges"`
	StartNode *string    `json:"startNode,omitempty"`
	EndNode   *string    `json:"endNode,omitempty"`
}
