package kafka

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/blackbeesoft/erp/internal/domain"
)

// ErrPublisherClosed возвращается при публикации через неинициализированный producer.
var ErrPublisherClosed = errors.New("kafka publisher is not initialized")

// eventEnvelope — формат сообщения в топике: метаданные outbox-записи
// плюс исходный payload события как есть.
type eventEnvelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}

// OutboxTopicPublisher отдаёт outbox-сообщения в Kafka-топик.
// Партиционирование по id агрегата сохраняет порядок событий заказа.
type OutboxTopicPublisher struct {
	producer *Producer
	topic    string
}

// NewOutboxPublisher создаёт паблишер; пустой topic заменяется топиком заказов.
func NewOutboxPublisher(producer *Producer, topic string) domain.OutboxPublisher {
	if topic == "" {
		topic = TopicOrderEvents
	}
	return &OutboxTopicPublisher{producer: producer, topic: topic}
}

func (p *OutboxTopicPublisher) Publish(event domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return ErrPublisherClosed
	}

	key := event.AggregateID
	if key == "" {
		key = event.ID
	}

	// Складские события идут в отдельный топик, заказные — в настроенный.
	topic := p.topic
	if event.AggregateType == AggregateProduct {
		topic = TopicInventoryEvents
	}

	return p.producer.PublishEvent(topic, key, eventEnvelope{
		ID:            event.ID,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		EventType:     event.EventType,
		Payload:       json.RawMessage(event.Payload),
		PublishedAt:   time.Now().UTC(),
	})
}

var _ domain.OutboxPublisher = (*OutboxTopicPublisher)(nil)
