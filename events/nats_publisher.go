package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const (
	// StreamName is the JetStream stream holding mirrored domain events
	StreamName = "yinbot_events"

	// SubjectPrefix prefixes every mirrored event subject
	SubjectPrefix = "yinbot"
)

// Envelope wraps a mirrored event with its id and metadata
type Envelope struct {
	EventID   string          `json:"event_id"`
	EventType EventType       `json:"event_type"`
	Timestamp time.Time       `json:"timestamp"`
	Source    string          `json:"source"`
	Payload   json.RawMessage `json:"payload"`
}

// Subject returns the NATS subject an event type is mirrored to
func Subject(eventType EventType) string {
	return fmt.Sprintf("%s.%s", SubjectPrefix, eventType)
}

// NATSPublisher mirrors bus events to a JetStream stream
type NATSPublisher struct {
	servers string
	nc      *nats.Conn
	js      nats.JetStreamContext
	mu      sync.Mutex
}

// NewNATSPublisher creates a publisher for the comma separated server list
func NewNATSPublisher(servers string) *NATSPublisher {
	return &NATSPublisher{servers: servers}
}

// Connect establishes the connection and makes sure the stream exists
func (p *NATSPublisher) Connect(ctx context.Context) error {
	opts := []nats.Option{
		nats.Name("yinbot"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Error("NATS disconnected with error")
			} else {
				log.Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(p.servers, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream(nats.Context(ctx))
	if err != nil {
		nc.Close()
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	p.mu.Lock()
	p.nc = nc
	p.js = js
	p.mu.Unlock()

	if err := p.ensureStream(); err != nil {
		nc.Close()
		return err
	}

	log.WithField("servers", p.servers).Info("Connected to NATS with JetStream")
	return nil
}

func (p *NATSPublisher) ensureStream() error {
	if _, err := p.js.StreamInfo(StreamName); err == nil {
		return nil
	}

	cfg := &nats.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{SubjectPrefix + ".>"},
		Retention:   nats.LimitsPolicy,
		MaxAge:      7 * 24 * time.Hour,
		Storage:     nats.FileStorage,
		Replicas:    1,
		Duplicates:  2 * time.Minute,
		Description: "Guild configuration and moderation ledger events",
	}

	if _, err := p.js.AddStream(cfg); err != nil {
		return fmt.Errorf("failed to create stream %s: %w", StreamName, err)
	}

	log.WithField("stream", StreamName).Info("Created JetStream stream")
	return nil
}

// Attach mirrors every event emitted on bus
func (p *NATSPublisher) Attach(bus *Bus) {
	bus.SubscribeAll(func(ctx context.Context, event Event) {
		if err := p.Publish(ctx, event); err != nil {
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Error("Failed to mirror event to NATS")
		}
	})
}

// Publish sends one event. The event id doubles as the JetStream dedupe id.
func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	p.mu.Lock()
	js := p.js
	p.mu.Unlock()

	if js == nil {
		return fmt.Errorf("not connected to NATS JetStream")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := Envelope{
		EventID:   uuid.NewString(),
		EventType: event.Type(),
		Timestamp: time.Now().UTC(),
		Source:    "yinbot",
		Payload:   payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := Subject(event.Type())
	if _, err := js.Publish(subject, data, nats.MsgId(envelope.EventID), nats.Context(ctx)); err != nil {
		return fmt.Errorf("failed to publish event to %s: %w", subject, err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Published event to NATS")

	return nil
}

// Close drains the connection
func (p *NATSPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.nc == nil {
		return nil
	}

	err := p.nc.Drain()
	p.nc = nil
	p.js = nil
	if err != nil {
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}

	log.Info("NATS connection closed")
	return nil
}
