package streaming

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duragraph/workflow-go/internal/wfevents"
)

type recordingPublisher struct {
	topics   []string
	payloads []interface{}
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, payload interface{}) error {
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
	return nil
}

func TestBridgeForwardsEveryLifecycleEventType(t *testing.T) {
	pub := &recordingPublisher{}
	bridge := NewBridge(pub)
	bus := wfevents.NewBus()
	bridge.Attach(bus)

	bus.Publish(context.Background(), wfevents.NodeStarted{RunIDValue: "run-1", NodeID: "n1"})
	bus.Publish(context.Background(), wfevents.NodeCompleted{RunIDValue: "run-1", NodeID: "n1"})
	bus.Publish(context.Background(), wfevents.NodeFailed{RunIDValue: "run-1", NodeID: "n2", Error: "boom"})
	bus.Publish(context.Background(), wfevents.NodeSkipped{RunIDValue: "run-1", NodeID: "n3", Reason: "branch"})

	require.Len(t, pub.topics, 4)
	assert.Equal(t, "duragraph.runs.run-1.execution.node_started", pub.topics[0])
	assert.Equal(t, "duragraph.runs.run-1.execution.node_completed", pub.topics[1])
	assert.Equal(t, "duragraph.runs.run-1.execution.node_failed", pub.topics[2])
	assert.Equal(t, "duragraph.runs.run-1.execution.node_skipped", pub.topics[3])
}

func TestBridgeTopicIncludesRunID(t *testing.T) {
	pub := &recordingPublisher{}
	bridge := NewBridge(pub)
	bus := wfevents.NewBus()
	bridge.Attach(bus)

	bus.Publish(context.Background(), wfevents.NodeStarted{RunIDValue: "run-xyz", NodeID: "n1"})
	require.Len(t, pub.topics, 1)
	assert.Contains(t, pub.topics[0], "run-xyz")
}
