// Package messaging adapts a Watermill NATS publisher to the
// streaming.Publisher contract streaming.Bridge forwards wfevents
// through, grounded on the teacher's
// internal/infrastructure/messaging/nats.Publisher.
package messaging

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
)

const runsStreamName = "duragraph-runs"

// Publisher wraps a Watermill NATS publisher.
type Publisher struct {
	publisher *nats.Publisher
}

// NewPublisher connects to natsURL, ensures the duragraph.runs JetStream
// stream exists (mirroring the teacher's ensureStreams step), and returns
// a Publisher ready for streaming.Bridge.Attach.
func NewPublisher(natsURL string) (*Publisher, error) {
	nc, err := natsgo.Connect(natsURL)
	if err != nil {
		return nil, err
	}
	defer nc.Close()

	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}
	if err := ensureRunsStream(js); err != nil {
		return nil, err
	}

	pub, err := nats.NewPublisher(
		nats.PublisherConfig{URL: natsURL, Marshaler: nats.GobMarshaler{}},
		watermill.NopLogger{},
	)
	if err != nil {
		return nil, err
	}
	return &Publisher{publisher: pub}, nil
}

// Publish marshals payload to JSON and publishes it to topic, satisfying
// streaming.Publisher.
func (p *Publisher) Publish(_ context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.publisher.Publish(topic, message.NewMessage(watermill.NewUUID(), data))
}

// Close closes the underlying Watermill publisher.
func (p *Publisher) Close() error {
	return p.publisher.Close()
}

func ensureRunsStream(js natsgo.JetStreamContext) error {
	if _, err := js.StreamInfo(runsStreamName); err == nil {
		return nil
	}
	_, err := js.AddStream(&natsgo.StreamConfig{
		Name:     runsStreamName,
		Subjects: []string{"duragraph.runs.>"},
		Storage:  natsgo.FileStorage,
		Replicas: 1,
	})
	return err
}
