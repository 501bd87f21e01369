// Package streaming defines the Sink a Stream-kind FlowOutput forwards its
// chunks to, and the Bridge that republishes wfevents onto NATS for
// external consumers. Grounded on the teacher's
// internal/infrastructure/streaming package, narrowed to this spec's four
// node-lifecycle events plus raw chunk forwarding (the teacher's richer
// values/updates/messages/debug stream-mode taxonomy has no equivalent
// concept here: this spec's Stream output is raw bytes, not structured
// per-node state deltas).
package streaming

// Chunk is one delivery to a Sink: a slice of bytes produced by node
// NodeID, in the order its Stream output emitted them.
type Chunk struct {
	NodeID string
	Data   []byte
}

// Sink is the channel a Stream-kind FlowOutput's bytes are forwarded to.
// The caller owns the receiving end; an unbuffered or buffered channel
// both satisfy the "unbounded multi-producer channel" contract as long as
// the receiver keeps draining it.
type Sink chan<- Chunk
