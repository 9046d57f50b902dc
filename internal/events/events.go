package events

//go:generate go run go.uber.org/mock/mockgen -source=./events.go -destination=./mocks/events_mock.go -package=mocks

import (
	"context"
	"time"

	"orzu/config"
	"orzu/infras/kafka"

	"github.com/rs/zerolog/log"
)

// Action identifies what happened to an entity.
type Action string

const (
	ActionCreated  Action = "created"
	ActionUpdated  Action = "updated"
	ActionDeleted  Action = "deleted"
	ActionExtended Action = "extended"
)

// Event is a mutation notification emitted after a successful write.
// Downstream consumers (dashboards, audit sinks) subscribe to these
// instead of polling the API.
type Event struct {
	EntityType string    `json:"entityType"`
	EntityID   string    `json:"entityId"`
	Action     Action    `json:"action"`
	ActorID    string    `json:"actorId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event)
}

type kafkaPublisher struct {
	client kafka.Client
	topic  string
}

// NewPublisher returns a Kafka-backed publisher, or a no-op one when
// Kafka is disabled in config so services never have to nil-check.
func NewPublisher(conf *config.Config, client kafka.Client) Publisher {
	if !conf.Kafka.Enable {
		log.Info().Msg("Kafka disabled, mutation events will not be published")

		return NoopPublisher{}
	}

	return &kafkaPublisher{
		client: client,
		topic:  conf.Kafka.Topic,
	}
}

// Publish sends the event asynchronously. Event delivery is best effort:
// a broker failure is logged and never fails the originating request.
func (p *kafkaPublisher) Publish(ctx context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	go func(ctx context.Context) {
		message := kafka.Message{
			Key:   event.EntityType + ":" + event.EntityID,
			Value: event,
		}

		err := p.client.SendMessages(ctx, p.topic, message)
		if err != nil {
			log.Error().Err(err).
				Str("entityType", event.EntityType).
				Str("entityId", event.EntityID).
				Str("action", string(event.Action)).
				Msg("Failed to publish mutation event")
		}
	}(context.WithoutCancel(ctx))
}

// NoopPublisher discards every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) {}
