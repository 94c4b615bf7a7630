package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ResultPublisher публикует результаты пакетного анализа.
type ResultPublisher interface {
	PublishResult(ctx context.Context, payload AnalysisResultPayload) error
}

// RabbitMQResultPublisher публикует результаты в очередь RabbitMQ через default exchange.
type RabbitMQResultPublisher struct {
	ch        *amqp.Channel
	queueName string
	logger    *zap.Logger
}

var _ ResultPublisher = (*RabbitMQResultPublisher)(nil)

// NewRabbitMQResultPublisher открывает канал и объявляет durable очередь результатов.
func NewRabbitMQResultPublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (*RabbitMQResultPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare queue '%s': %w", queueName, err)
	}

	p := &RabbitMQResultPublisher{
		ch:        ch,
		queueName: queueName,
		logger:    logger.Named("ResultPublisher").With(zap.String("queue", queueName)),
	}
	p.logger.Info("Result queue declared")
	return p, nil
}

// PublishResult публикует результат как persistent сообщение.
func (p *RabbitMQResultPublisher) PublishResult(ctx context.Context, payload AnalysisResultPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis result: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		"",          // exchange
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			MessageId:     uuid.NewString(),
			CorrelationId: payload.TaskID,
			Timestamp:     time.Now(),
			Body:          body,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish analysis result", zap.String("task_id", payload.TaskID), zap.Error(err))
		return fmt.Errorf("failed to publish analysis result: %w", err)
	}
	p.logger.Debug("Analysis result published", zap.String("task_id", payload.TaskID), zap.String("status", payload.Status))
	return nil
}

// Close закрывает канал издателя.
func (p *RabbitMQResultPublisher) Close() error {
	return p.ch.Close()
}
