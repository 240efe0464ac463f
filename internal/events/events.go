// Package events publishes product catalog changes to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"beststore/internal/config"
	"beststore/internal/domain"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Type names the kind of change an event records
type Type string

const (
	ProductCreated Type = "product.created"
	ProductUpdated Type = "product.updated"
	ProductDeleted Type = "product.deleted"
)

// ProductEvent is the message body; the Kafka key is the product id so
// all changes of one product land on the same partition.
type ProductEvent struct {
	Type       Type            `json:"type"`
	ProductID  int64           `json:"product_id"`
	Name       string          `json:"name,omitempty"`
	Brand      string          `json:"brand,omitempty"`
	Category   string          `json:"category,omitempty"`
	Price      decimal.Decimal `json:"price"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewProductEvent snapshots product for the given change
func NewProductEvent(eventType Type, product *domain.Product, at time.Time) ProductEvent {
	return ProductEvent{
		Type:       eventType,
		ProductID:  product.ID,
		Name:       product.Name,
		Brand:      product.Brand,
		Category:   product.Category,
		Price:      product.Price,
		OccurredAt: at,
	}
}

// Publisher delivers product events
type Publisher interface {
	PublishProduct(ctx context.Context, event ProductEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes product events to a single topic
type KafkaPublisher struct {
	writer messageWriter
	logger *zap.Logger
}

// NewPublisher returns a Kafka publisher, or a no-op one when no brokers are configured
func NewPublisher(cfg config.KafkaConfig, logger *zap.Logger) Publisher {
	if len(cfg.Brokers) == 0 {
		logger.Info("Kafka brokers not configured, product events disabled")
		return NopPublisher{}
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
	}

	logger.Info("Kafka product event publisher created",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.Topic),
	)

	return &KafkaPublisher{writer: writer, logger: logger}
}

// EncodeMessage converts an event into its Kafka message
func EncodeMessage(event ProductEvent) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal product event: %w", err)
	}

	return kafka.Message{
		Key:   []byte(strconv.FormatInt(event.ProductID, 10)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
		Time: event.OccurredAt,
	}, nil
}

func (p *KafkaPublisher) PublishProduct(ctx context.Context, event ProductEvent) error {
	msg, err := EncodeMessage(event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish product event",
			zap.String("type", string(event.Type)),
			zap.Int64("product_id", event.ProductID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to publish product event: %w", err)
	}

	p.logger.Debug("Product event published",
		zap.String("type", string(event.Type)),
		zap.Int64("product_id", event.ProductID),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards every event
type NopPublisher struct{}

func (NopPublisher) PublishProduct(context.Context, ProductEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
