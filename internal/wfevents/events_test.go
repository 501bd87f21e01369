package wfevents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishInvokesHandlersInRegistrationOrder(t *testing.T) {
	bus := NewBus()
	var order []string
	bus.Subscribe(EventTypeNodeStarted, func(_ context.Context, ev Event) {
		order = append(order, "first")
	})
	bus.Subscribe(EventTypeNodeStarted, func(_ context.Context, ev Event) {
		order = append(order, "second")
	})

	bus.Publish(context.Background(), NodeStarted{RunIDValue: "r1", NodeID: "n1"})
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestPublishOnlyInvokesMatchingEventType(t *testing.T) {
	bus := NewBus()
	var gotStarted, gotFailed int
	bus.Subscribe(EventTypeNodeStarted, func(_ context.Context, ev Event) { gotStarted++ })
	bus.Subscribe(EventTypeNodeFailed, func(_ context.Context, ev Event) { gotFailed++ })

	bus.Publish(context.Background(), NodeStarted{RunIDValue: "r1", NodeID: "n1"})
	assert.Equal(t, 1, gotStarted)
	assert.Equal(t, 0, gotFailed)
}

func TestPublishWithNoSubscribersIsANoop(t *testing.T) {
	bus := NewBus()
	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), NodeSkipped{RunIDValue: "r1", NodeID: "n1", Reason: "unreached"})
	})
}

func TestEventAccessorsReturnConstructorFields(t *testing.T) {
	ev := NodeCompleted{RunIDValue: "r1", NodeID: "n1", NodeKind: "Identity", OutputKind: "Data"}
	assert.Equal(t, EventTypeNodeCompleted, ev.EventType())
	assert.Equal(t, "r1", ev.RunID())
}
