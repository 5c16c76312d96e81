package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"picsema/internal/logger"
	"picsema/internal/model"
)

// IngestedEvent is the message emitted after an image has been written to
// every metric collection.
type IngestedEvent struct {
	ImageID     string    `json:"image_id"`
	FileName    string    `json:"file_name"`
	Tags        []string  `json:"tags"`
	Description string    `json:"description"`
	ModelUsed   string    `json:"model_used"`
	SourceType  string    `json:"source_type"`
	IngestedAt  time.Time `json:"ingested_at"`
}

// Publisher emits ingestion events to a RabbitMQ topic exchange so
// downstream consumers can react to new images without polling.
type Publisher struct {
	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel
	cfg     Config
	logger  *logger.Logger
}

// NewPublisher connects to the broker and declares the events exchange.
func NewPublisher(cfg Config, log *logger.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("events: failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("events: failed to create channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange,
		"topic",
		true,  // Durable
		false, // AutoDelete
		false, // Internal
		false, // NoWait
		nil,   // Arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("events: failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	log.Info("connected to event broker", nil, map[string]interface{}{
		"exchange": cfg.Exchange,
	})

	return &Publisher{conn: conn, channel: ch, cfg: cfg, logger: log}, nil
}

// PublishIngested emits the event for a freshly ingested record. Failures
// are logged and returned but must not fail the ingestion itself.
func (p *Publisher) PublishIngested(ctx context.Context, record *model.ImageRecord) error {
	event := IngestedEvent{
		ImageID:     record.ImageID,
		FileName:    record.FileName,
		Tags:        record.AITags,
		Description: record.AIDescription,
		ModelUsed:   record.ModelUsed,
		SourceType:  string(record.SourceType),
		IngestedAt:  record.ProcessingTimestamp,
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: failed to encode event: %w", err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	err = p.channel.PublishWithContext(ctx,
		p.cfg.Exchange,
		p.cfg.RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		p.logger.Error("failed to publish ingestion event", err, map[string]interface{}{
			"image_id": record.ImageID,
		})
		return fmt.Errorf("events: failed to publish: %w", err)
	}
	return nil
}

// Close shuts down the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.channel.Close(); err != nil {
		return err
	}
	return p.conn.Close()
}
