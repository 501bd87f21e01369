package streaming

import (
	"context"
	"fmt"
	"log"

	"github.com/duragraph/workflow-go/internal/wfevents"
)

// Publisher is the minimal NATS/Watermill publishing contract the Bridge
// needs; messaging.Publisher (internal/messaging/nats.go) satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
}

// Bridge subscribes to a wfevents.Bus and republishes every node lifecycle
// event onto NATS under "duragraph.runs.<runID>.<eventType>", the same
// subject shape the teacher's StreamingBridge uses for its own richer
// stream-mode taxonomy (internal/infrastructure/streaming.bridge.go),
// narrowed here to the four events this scheduler emits.
type Bridge struct {
	publisher Publisher
}

// NewBridge returns a Bridge publishing through publisher.
func NewBridge(publisher Publisher) *Bridge {
	return &Bridge{publisher: publisher}
}

// Attach subscribes the bridge to every node lifecycle event type on bus.
// Publish errors are swallowed to a best-effort log line: a dropped
// telemetry event must never fail the run that produced it.
func (b *Bridge) Attach(bus *wfevents.Bus) {
	for _, eventType := range []string{
		wfevents.EventTypeNodeStarted,
		wfevents.EventTypeNodeCompleted,
		wfevents.EventTypeNodeFailed,
		wfevents.EventTypeNodeSkipped,
	} {
		bus.Subscribe(eventType, b.forward)
	}
}

func (b *Bridge) forward(ctx context.Context, event wfevents.Event) {
	topic := fmt.Sprintf("duragraph.runs.%s.%s", event.RunID(), event.EventType())
	if err := b.publisher.Publish(ctx, topic, event); err != nil {
		log.Printf("streaming bridge: publish to %s failed: %v", topic, err)
	}
}
