package gcp

import (
	"context"
	"fmt"
	"sync"

	"cloud.google.com/go/pubsub"
)

// NewPubSubClient creates a Pub/Sub client for the given project ID.
func NewPubSubClient(ctx context.Context, projectID string) (*pubsub.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a pubsub client")
	}

	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Pub/Sub client: %w", err)
	}

	return client, nil
}

// PubSubPublisher implements MessagePublisher on Pub/Sub topics. Topic
// handles are cached so repeated publishes reuse the same batching state.
type PubSubPublisher struct {
	client *pubsub.Client

	mu     sync.Mutex
	topics map[string]*pubsub.Topic
}

// NewPubSubPublisher wraps an existing Pub/Sub client.
func NewPubSubPublisher(client *pubsub.Client) *PubSubPublisher {
	return &PubSubPublisher{
		client: client,
		topics: make(map[string]*pubsub.Topic),
	}
}

// Publish sends one message and blocks until the server acknowledges it.
func (p *PubSubPublisher) Publish(ctx context.Context, topic string, message []byte) error {
	result := p.topicHandle(topic).Publish(ctx, &pubsub.Message{Data: message})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}
	return nil
}

func (p *PubSubPublisher) topicHandle(topic string) *pubsub.Topic {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.topics[topic]; ok {
		return t
	}
	t := p.client.Topic(topic)
	p.topics[topic] = t
	return t
}
