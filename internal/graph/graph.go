// Package graph implements the Graph aggregate: topology storage, mutation
// API, edge-kind inference and the handle routing table (maintained by the
// edge mutations), and compilation (cycle check + adjacency).
package graph

import (
	"sort"

	"github.com/duragraph/workflow-go/internal/graphmodel"
	"github.com/duragraph/workflow-go/internal/pkg/wferrors"
)

// StartNodeID and EndNodeID are the two reserved node identifiers every
// compiled graph must carry exactly once (spec.md invariant 6).
const (
	StartNodeID = "start"
	EndNodeID   = "end"
)

type handleKey struct {
	source string
	handle string
}

// Graph owns the node/edge topology, the handle-routing table the edge
// mutations maintain, and the adjacency structures produced by Compile.
type Graph struct {
	nodes     map[string]graphmodel.Node
	edgeOrder []string
	edges     map[string]graphmodel.Edge
	startNode *string
	endNode   *string
	compiled  bool

	predecessors map[string]map[string]struct{}
	successors   map[string]map[string]struct{}
	handleRoutes map[handleKey]string
}

// New returns an empty, uncompiled Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]graphmodel.Node),
		edges: make(map[string]graphmodel.Edge),
	}
}

// Compiled reports whether Compile has succeeded since the last mutation.
func (g *Graph) Compiled() bool { return g.compiled }

// Node looks up a node record by id.
func (g *Graph) Node(id string) (graphmodel.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns every node record, in no particular order.
func (g *Graph) Nodes() []graphmodel.Node {
	out := make([]graphmodel.Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	return out
}

// Edges returns every edge, in insertion order.
func (g *Graph) Edges() []graphmodel.Edge {
	out := make([]graphmodel.Edge, 0, len(g.edgeOrder))
	for _, id := range g.edgeOrder {
		out = append(out, g.edges[id])
	}
	return out
}

// StartNode returns the graph's configured start node id, if any.
func (g *Graph) StartNode() (string, bool) {
	if g.startNode == nil {
		return "", false
	}
	return *g.startNode, true
}

// EndNode returns the graph's configured end node id, if any.
func (g *Graph) EndNode() (string, bool) {
	if g.endNode == nil {
		return "", false
	}
	return *g.endNode, true
}

// AddNode inserts a new node record. Fails with NodeAlreadyExists on a
// colliding id. Clears the compiled flag.
func (g *Graph) AddNode(n graphmodel.Node) error {
	if _, exists := g.nodes[n.ID]; exists {
		return wferrors.NodeAlreadyExists(n.ID)
	}
	g.nodes[n.ID] = n
	g.compiled = false
	return nil
}

// SetStartNode adds the node (if not already present) and records it as
// the graph's single start node.
func (g *Graph) SetStartNode(n graphmodel.Node) error {
	if _, exists := g.nodes[n.ID]; !exists {
		if err := g.AddNode(n); err != nil {
			return err
		}
	}
	id := n.ID
	g.startNode = &id
	g.compiled = false
	return nil
}

// SetEndNode adds the node (if not already present) and records it as the
// graph's single end node.
func (g *Graph) SetEndNode(n graphmodel.Node) error {
	if _, exists := g.nodes[n.ID]; !exists {
		if err := g.AddNode(n); err != nil {
			return err
		}
	}
	id := n.ID
	g.endNode = &id
	g.compiled = false
	return nil
}

// UpdateNode replaces an existing node record. Fails with NodeNotFound if
// the id is missing. Clears the compiled flag.
func (g *Graph) UpdateNode(n graphmodel.Node) error {
	if _, exists := g.nodes[n.ID]; !exists {
		return wferrors.NodeNotFound(n.ID)
	}
	g.nodes[n.ID] = n
	g.compiled = false
	return nil
}

// RemoveNode deletes the node and every edge referencing it. Clears
// start/end if either pointed here. Clears the compiled flag.
func (g *Graph) RemoveNode(id string) error {
	if _, exists := g.nodes[id]; !exists {
		return wferrors.NodeNotFound(id)
	}
	delete(g.nodes, id)

	remaining := g.edgeOrder[:0:0]
	for _, eid := range g.edgeOrder {
		e := g.edges[eid]
		if e.Source == id || e.Target == id {
			delete(g.edges, eid)
			continue
		}
		remaining = append(remaining, eid)
	}
	g.edgeOrder = remaining

	if g.startNode != nil && *g.startNode == id {
		g.startNode = nil
	}
	if g.endNode != nil && *g.endNode == id {
		g.endNode = nil
	}
	g.compiled = false
	return nil
}

func edgeID(source, target string) string { return source + "-" + target }

// AddEdge connects source to target. Infers the edge kind from the source
// node's class, rejects control-to-control edges, rejects edges into the
// start node or out of the end node, and registers a handle route when a
// source handle is given.
func (g *Graph) AddEdge(source, target string, sourceHandle, targetHandle *string) (graphmodel.Edge, error) {
	srcNode, ok := g.nodes[source]
	if !ok {
		return graphmodel.Edge{}, wferrors.NodeNotFound(source)
	}
	tgtNode, ok := g.nodes[target]
	if !ok {
		return graphmodel.Edge{}, wferrors.NodeNotFound(target)
	}
	if g.endNode != nil && *g.endNode == source {
		return graphmodel.Edge{}, wferrors.InvalidEdge("end node cannot have outgoing edges")
	}
	if g.startNode != nil && *g.startNode == target {
		return graphmodel.Edge{}, wferrors.InvalidEdge("start node cannot have incoming edges")
	}

	kind := graphmodel.EdgeData
	if srcNode.Class() == graphmodel.ClassControl {
		if tgtNode.Class() == graphmodel.ClassControl {
			return graphmodel.Edge{}, wferrors.InvalidEdge("control node cannot connect directly to another control node")
		}
		kind = graphmodel.EdgeControl
	}

	e := graphmodel.Edge{
		ID:           edgeID(source, target),
		Source:       source,
		Target:       target,
		Kind:         kind,
		SourceHandle: sourceHandle,
		TargetHandle: targetHandle,
	}
	g.edges[e.ID] = e
	g.edgeOrder = append(g.edgeOrder, e.ID)
	if sourceHandle != nil {
		if g.handleRoutes == nil {
			g.handleRoutes = make(map[handleKey]string)
		}
		g.handleRoutes[handleKey{source: source, handle: *sourceHandle}] = target
	}
	g.compiled = false
	return e, nil
}

// RemoveEdge deletes the edge between source and target, if present.
func (g *Graph) RemoveEdge(source, target string) error {
	id := edgeID(source, target)
	e, ok := g.edges[id]
	if !ok {
		return wferrors.InvalidEdge("no edge " + id)
	}
	delete(g.edges, id)
	for i, eid := range g.edgeOrder {
		if eid == id {
			g.edgeOrder = append(g.edgeOrder[:i], g.edgeOrder[i+1:]...)
			break
		}
	}
	if e.SourceHandle != nil {
		delete(g.handleRoutes, handleKey{source: e.Source, handle: *e.SourceHandle})
	}
	g.compiled = false
	return nil
}

// UpdateEdge replaces the handles of an existing edge, re-deriving the
// handle route if present.
func (g *Graph) UpdateEdge(source, target string, sourceHandle, targetHandle *string) error {
	id := edgeID(source, target)
	e, ok := g.edges[id]
	if !ok {
		return wferrors.InvalidEdge("no edge " + id)
	}
	if e.SourceHandle != nil {
		delete(g.handleRoutes, handleKey{source: e.Source, handle: *e.SourceHandle})
	}
	e.SourceHandle = sourceHandle
	e.TargetHandle = targetHandle
	g.edges[id] = e
	if sourceHandle != nil {
		if g.handleRoutes == nil {
			g.handleRoutes = make(map[handleKey]string)
		}
		g.handleRoutes[handleKey{source: source, handle: *sourceHandle}] = target
	}
	g.compiled = false
	return nil
}

// HandleRoute resolves a Control output's (source, handle) pair to its
// chosen successor node id.
func (g *Graph) HandleRoute(source, handle string) (string, bool) {
	target, ok := g.handleRoutes[handleKey{source: source, handle: handle}]
	return target, ok
}

// Predecessors returns the set of node ids with an edge into v. Valid only
// after a successful Compile.
func (g *Graph) Predecessors(v string) map[string]struct{} { return g.predecessors[v] }

// Successors returns the set of node ids v has an edge into. Valid only
// after a successful Compile.
func (g *Graph) Successors(v string) map[string]struct{} { return g.successors[v] }

// Compile rebuilds predecessors/successors from the edge list, then
// topologically sorts preferring the start node first; a cycle (or an edge
// to a missing node) fails the compile and leaves compiled=false with the
// graph's node/edge state untouched.
func (g *Graph) Compile() error {
	predecessors := make(map[string]map[string]struct{}, len(g.nodes))
	successors := make(map[string]map[string]struct{}, len(g.nodes))
	for id := range g.nodes {
		predecessors[id] = make(map[string]struct{})
		successors[id] = make(map[string]struct{})
	}
	for _, id := range g.edgeOrder {
		e := g.edges[id]
		if _, ok := g.nodes[e.Source]; !ok {
			return wferrors.NodeNotFound(e.Source)
		}
		if _, ok := g.nodes[e.Target]; !ok {
			return wferrors.NodeNotFound(e.Target)
		}
		successors[e.Source][e.Target] = struct{}{}
		predecessors[e.Target][e.Source] = struct{}{}
	}

	inDegree := make(map[string]int, len(g.nodes))
	for id, preds := range predecessors {
		inDegree[id] = len(preds)
	}

	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	queue := make([]string, 0, len(ids))
	if g.startNode != nil {
		if _, ok := inDegree[*g.startNode]; ok {
			queue = append(queue, *g.startNode)
		}
	}
	for _, id := range ids {
		if inDegree[id] == 0 && !contains(queue, id) {
			queue = append(queue, id)
		}
	}

	visited := 0
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		visited++
		succIDs := make([]string, 0, len(successors[v]))
		for s := range successors[v] {
			succIDs = append(succIDs, s)
		}
		sort.Strings(succIDs)
		for _, s := range succIDs {
			inDegree[s]--
			if inDegree[s] == 0 {
				queue = append(queue, s)
			}
		}
	}

	if visited != len(g.nodes) {
		return wferrors.CycleDetected()
	}

	g.predecessors = predecessors
	g.successors = successors
	g.compiled = true
	return nil
}

func contains(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
