package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ms-orders/internal/config"
	"ms-orders/internal/logger"
	"ms-orders/internal/models"
)

// Producer streams order lifecycle events for downstream consumers (customer
// notifications, reporting). Publishing is best effort: the originating
// operation has already committed when an event goes out.
type Producer struct {
	writers map[string]*kafka.Writer
	topics  config.TopicConfig
	mock    bool
	log     *logger.Logger
}

func NewProducer(brokers []string, topics config.TopicConfig, mockMode bool, log *logger.Logger) *Producer {
	p := &Producer{
		writers: make(map[string]*kafka.Writer),
		topics:  topics,
		mock:    mockMode,
		log:     log,
	}
	if mockMode {
		return p
	}
	for _, topic := range []string{topics.OrderCreated, topics.OrderStatusChanged, topics.OrderDeleted, topics.CustomerDeleted} {
		p.writers[topic] = kafka.NewWriter(kafka.WriterConfig{
			Brokers: brokers,
			Topic:   topic,
		})
	}
	return p
}

func (p *Producer) publish(topic, key string, payload interface{}) error {
	msgBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if p.mock {
		p.log.LogKafka("MOCK", topic, string(msgBytes))
		return nil
	}

	writer, ok := p.writers[topic]
	if !ok {
		return fmt.Errorf("no writer for topic %s", topic)
	}

	p.log.LogKafka("PUBLISH", topic, fmt.Sprintf("key=%s", key))
	return writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(key),
			Value: msgBytes,
		},
	)
}

// PublishOrderCreated streams the order creation event.
func (p *Producer) PublishOrderCreated(order models.Order) error {
	return p.publish(p.topics.OrderCreated, order.ID, order)
}

// StatusChangedEvent pairs the order with the trail entry the transition
// wrote.
type StatusChangedEvent struct {
	Order models.Order        `json:"order"`
	Entry models.OrderHistory `json:"entry"`
}

// PublishOrderStatusChanged streams a status transition.
func (p *Producer) PublishOrderStatusChanged(order models.Order, entry models.OrderHistory) error {
	return p.publish(p.topics.OrderStatusChanged, order.ID, StatusChangedEvent{Order: order, Entry: entry})
}

// PublishOrderDeleted streams an order deletion.
func (p *Producer) PublishOrderDeleted(orderID string) error {
	return p.publish(p.topics.OrderDeleted, orderID, map[string]string{"order_id": orderID})
}

// PublishCustomerDeleted streams a cascading customer deletion.
func (p *Producer) PublishCustomerDeleted(customerID string) error {
	return p.publish(p.topics.CustomerDeleted, customerID, map[string]string{"customer_id": customerID})
}

func (p *Producer) Close() {
	for _, w := range p.writers {
		_ = w.Close()
	}
}
