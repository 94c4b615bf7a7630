package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"soundscape-server/internal/models"
	"soundscape-server/internal/service"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	taskTimeout       = 30 * time.Second
	publishRetryDelay = time.Second
)

var batchTasksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "soundscape_batch_tasks_total",
		Help: "Total number of batch analysis tasks, partitioned by result status.",
	},
	[]string{"status"},
)

// AnalysisTaskConsumer читает задачи анализа страниц и публикует результаты.
type AnalysisTaskConsumer struct {
	conn        *amqp.Connection
	ch          *amqp.Channel
	svc         service.SoundscapeService
	publisher   ResultPublisher
	logger      *zap.Logger
	queueName   string
	consumerTag string
	retryDelay  time.Duration
	done        chan error
	stopOnce    sync.Once
}

// NewAnalysisTaskConsumer создает консьюмера и объявляет очередь задач.
func NewAnalysisTaskConsumer(
	conn *amqp.Connection,
	queueName string,
	svc service.SoundscapeService,
	publisher ResultPublisher,
	logger *zap.Logger,
) (*AnalysisTaskConsumer, error) {
	if conn == nil {
		return nil, fmt.Errorf("RabbitMQ connection is nil")
	}
	c := newAnalysisTaskConsumer(queueName, svc, publisher, logger)
	c.conn = conn
	if err := c.setupChannelAndQueue(); err != nil {
		return nil, fmt.Errorf("failed to setup channel and queue: %w", err)
	}
	c.logger.Info("AnalysisTaskConsumer инициализирован")
	return c, nil
}

func newAnalysisTaskConsumer(queueName string, svc service.SoundscapeService, publisher ResultPublisher, logger *zap.Logger) *AnalysisTaskConsumer {
	consumerTag := fmt.Sprintf("soundscape_analysis_consumer_%d", time.Now().UnixNano())
	return &AnalysisTaskConsumer{
		svc:         svc,
		publisher:   publisher,
		logger:      logger.Named("AnalysisTaskConsumer").With(zap.String("consumerTag", consumerTag), zap.String("queue", queueName)),
		queueName:   queueName,
		consumerTag: consumerTag,
		retryDelay:  publishRetryDelay,
		done:        make(chan error, 1),
	}
}

func (c *AnalysisTaskConsumer) setupChannelAndQueue() error {
	var err error
	c.ch, err = c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = c.ch.QueueDeclare(
		c.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		_ = c.ch.Close()
		return fmt.Errorf("failed to declare queue '%s': %w", c.queueName, err)
	}

	// По одному сообщению за раз
	if err := c.ch.Qos(1, 0, false); err != nil {
		_ = c.ch.Close()
		return fmt.Errorf("failed to set QoS: %w", err)
	}
	c.logger.Info("RabbitMQ queue declared", zap.Int("prefetchCount", 1))
	return nil
}

// StartConsuming запускает обработку и блокируется до Stop или закрытия канала.
func (c *AnalysisTaskConsumer) StartConsuming() error {
	if c.ch == nil {
		return fmt.Errorf("channel is not initialized")
	}

	deliveries, err := c.ch.Consume(
		c.queueName,
		c.consumerTag,
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	notifyClose := c.ch.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		for d := range deliveries {
			c.handleDelivery(d)
		}
		c.logger.Info("Канал deliveries закрыт, обработка сообщений завершена.")
		c.signal(nil)
	}()
	go func() {
		if err, ok := <-notifyClose; ok && err != nil {
			c.logger.Error("RabbitMQ channel closed unexpectedly", zap.Error(err))
			c.signal(err)
		}
	}()

	c.logger.Info("Consumer запущен и ожидает задач анализа")
	return <-c.done
}

func (c *AnalysisTaskConsumer) signal(err error) {
	select {
	case c.done <- err:
	default:
	}
}

// handleDelivery обрабатывает одно сообщение. Ack только после публикации результата.
func (c *AnalysisTaskConsumer) handleDelivery(d amqp.Delivery) {
	log := c.logger.With(zap.Uint64("deliveryTag", d.DeliveryTag))

	var task AnalysisTaskPayload
	if err := json.Unmarshal(d.Body, &task); err != nil {
		log.Warn("Некорректное сообщение задачи, отклоняем (Nack)", zap.Error(err))
		batchTasksTotal.WithLabelValues("malformed").Inc()
		if nackErr := d.Nack(false, false); nackErr != nil {
			log.Error("Ошибка при отклонении (Nack) сообщения", zap.Error(nackErr))
		}
		return
	}
	if task.TaskID == "" {
		task.TaskID = uuid.NewString()
	}
	log = log.With(zap.String("task_id", task.TaskID))

	ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	defer cancel()

	result := c.process(ctx, task)
	if err := c.publisher.PublishResult(ctx, result); err != nil {
		log.Error("Не удалось опубликовать результат, сообщение будет переотправлено (Nack, requeue)", zap.Error(err))
		if nackErr := d.Nack(false, true); nackErr != nil {
			log.Error("Ошибка при отклонении (Nack) сообщения", zap.Error(nackErr))
		}
		time.Sleep(c.retryDelay)
		return
	}

	batchTasksTotal.WithLabelValues(result.Status).Inc()
	log.Info("Задача анализа обработана", zap.String("status", result.Status))
	if ackErr := d.Ack(false); ackErr != nil {
		log.Error("Ошибка при подтверждении (Ack) сообщения", zap.Error(ackErr))
	}
}

// process выполняет задачу. Ошибка одной страницы становится статусом результата.
func (c *AnalysisTaskConsumer) process(ctx context.Context, task AnalysisTaskPayload) AnalysisResultPayload {
	out := AnalysisResultPayload{
		TaskID:  task.TaskID,
		BookID:  task.BookID,
		Chapter: task.Chapter,
		Page:    task.Page,
	}

	res, err := c.svc.GenerateSoundscape(ctx, service.SoundscapeRequest{
		Text:    task.Text,
		BookID:  task.BookID,
		Chapter: task.Chapter,
		Page:    task.Page,
		Genre:   task.Genre,
	})
	if err != nil {
		out.Status = ResultStatus(err)
		out.Error = err.Error()
		return out
	}

	out.Result = &res
	out.Status = ResultStatusSuccess
	if res.Err != nil {
		out.Status = ResultStatus(res.Err)
		out.Error = res.Error
	}
	return out
}

// ResultStatus переводит ошибку анализа в статус результата.
func ResultStatus(err error) string {
	switch {
	case err == nil:
		return ResultStatusSuccess
	case errors.Is(err, models.ErrPageNotFound), errors.Is(err, models.ErrBookNotFound), errors.Is(err, models.ErrNotFound):
		return ResultStatusNotFound
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrTextTooLong), errors.Is(err, models.ErrInvalidEncoding):
		return ResultStatusInvalid
	default:
		return ResultStatusError
	}
}

// Stop отменяет подписку и закрывает канал.
func (c *AnalysisTaskConsumer) Stop() error {
	c.stopOnce.Do(func() {
		if c.ch == nil {
			return
		}
		c.logger.Info("Остановка AnalysisTaskConsumer...")
		if err := c.ch.Cancel(c.consumerTag, false); err != nil {
			c.logger.Error("Ошибка при отмене consumer'а", zap.Error(err))
		}
		if err := c.ch.Close(); err != nil {
			c.logger.Error("Ошибка при закрытии канала RabbitMQ", zap.Error(err))
		}
		c.signal(nil)
		c.logger.Info("AnalysisTaskConsumer остановлен.")
	})
	return nil
}
