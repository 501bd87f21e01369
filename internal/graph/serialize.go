package graph

import (
	"encoding/json"

	"github.com/duragraph/workflow-go/internal/graphmodel"
	"github.com/duragraph/workflow-go/internal/pkg/wferrors"
)

// ToJSON serializes the graph to its canonical persistence shape. The edge
// kind is not persisted; it is re-derived from node kinds on load.
func (g *Graph) ToJSON() ([]byte, error) {
	data := graphmodel.GraphData{
		StartNode: g.startNode,
		EndNode:   g.endNode,
	}
	for _, n := range g.Nodes() {
		data.Nodes = append(data.Nodes, n.ToWire())
	}
	for _, e := range g.Edges() {
		data.Edges = append(data.Edges, graphmodel.WireEdge{
			ID:           e.ID,
			Source:       e.Source,
			Target:       e.Target,
			SourceHandle: e.SourceHandle,
			TargetHandle: e.TargetHandle,
		})
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, wferrors.Serialization("graph", err)
	}
	return raw, nil
}

// FromJSON rebuilds a Graph from its persisted shape by re-issuing AddNode
// and AddEdge for every record, so edge-kind inference re-runs and every
// invariant is re-validated, then compiles the result.
func FromJSON(raw []byte) (*Graph, error) {
	var data graphmodel.GraphData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, wferrors.Serialization("graph", err)
	}

	g := New()
	for _, wn := range data.Nodes {
		if err := g.AddNode(wn.FromWire()); err != nil {
			return nil, err
		}
	}
	if data.StartNode != nil {
		id := *data.StartNode
		g.startNode = &id
	}
	if data.EndNode != nil {
		id := *data.EndNode
		g.endNode = &id
	}
	for _, we := range data.Edges {
		if _, err := g.AddEdge(we.Source, we.Target, we.SourceHandle, we.TargetHandle); err != nil {
			return nil, err
		}
	}
	if err := g.Compile(); err != nil {
		return nil, err
	}
	return g, nil
}
