// Package event fans push envelopes out to connected sockets, keyed by topic
// (one topic per user, e.g. "user:1").
package event

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/NLihtnov/banking-notifications/internal/protocol"
)

// Sender is the interface the gateway publishes through.
type Sender interface {
	Subscribe(topic string, client chan protocol.Envelope)
	Unsubscribe(topic string, client chan protocol.Envelope)
	Publish(topic string, env protocol.Envelope)
}

// Broker is an in-memory topic broker.
type Broker struct {
	mu      sync.Mutex
	clients map[string]map[chan protocol.Envelope]bool
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{
		clients: make(map[string]map[chan protocol.Envelope]bool),
	}
}

var _ Sender = (*Broker)(nil)

// Subscribe registers a client channel on a topic.
func (b *Broker) Subscribe(topic string, client chan protocol.Envelope) {
	b.mu.Lock()
	if _, ok := b.clients[topic]; !ok {
		b.clients[topic] = make(map[chan protocol.Envelope]bool)
	}
	b.clients[topic][client] = true
	total := len(b.clients[topic])
	b.mu.Unlock()
	log.Info().Msgf("New client subscribed to topic %s. Total clients: %d", topic, total)
}

// Unsubscribe removes a client channel from a topic and closes it.
func (b *Broker) Unsubscribe(topic string, client chan protocol.Envelope) {
	b.mu.Lock()
	if clients, ok := b.clients[topic]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client)
		}
		if len(clients) == 0 {
			delete(b.clients, topic)
		}
	}
	remaining := len(b.clients[topic])
	b.mu.Unlock()
	log.Info().Msgf("Client unsubscribed from topic %s. Remaining clients: %d", topic, remaining)
}

// Publish delivers the envelope to every subscriber of the topic. Slow
// subscribers are skipped rather than blocking the publisher.
func (b *Broker) Publish(topic string, env protocol.Envelope) {
	b.mu.Lock()
	targets := make([]chan protocol.Envelope, 0, len(b.clients[topic]))
	for client := range b.clients[topic] {
		targets = append(targets, client)
	}
	b.mu.Unlock()

	for _, client := range targets {
		select {
		case client <- env:
		default:
			log.Warn().Str("topic", topic).Msg("subscriber not keeping up, dropping envelope")
		}
	}
}
