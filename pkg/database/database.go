package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RetryPolicy задает число попыток подключения и паузу между ними.
type RetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
}

// DefaultRetryPolicy - 50 попыток раз в 3 секунды.
var DefaultRetryPolicy = RetryPolicy{MaxRetries: 50, Delay: 3 * time.Second}

// PostgresConfig содержит параметры пула PostgreSQL.
type PostgresConfig struct {
	DSN         string
	MaxConns    int
	IdleTimeout time.Duration
}

// RedisConfig содержит параметры клиента Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Retry вызывает fn, пока она не вернет nil, попытки не кончатся или ctx не отменится.
func (p RetryPolicy) Retry(ctx context.Context, name string, logger *zap.Logger, fn func(ctx context.Context) error) error {
	maxRetries := p.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		attempt := i + 1
		if lastErr = fn(ctx); lastErr == nil {
			logger.Info("Successfully connected", zap.String("target", name), zap.Int("attempt", attempt))
			return nil
		}
		logger.Warn("Connection failed, retrying...",
			zap.String("target", name),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Duration("retry_delay", p.Delay),
			zap.Error(lastErr),
		)
		if i == maxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("connection to %s cancelled: %w", name, ctx.Err())
		case <-time.After(p.Delay):
		}
	}
	logger.Error("Failed to connect after all retries", zap.String("target", name), zap.Int("attempts", maxRetries), zap.Error(lastErr))
	return fmt.Errorf("failed to connect to %s after %d attempts: %w", name, maxRetries, lastErr)
}

// NewPostgresPool создает пул PostgreSQL и проверяет его пингом.
func NewPostgresPool(ctx context.Context, cfg PostgresConfig, policy RetryPolicy, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("unable to parse postgres config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.IdleTimeout > 0 {
		poolConfig.MaxConnIdleTime = cfg.IdleTimeout
	}

	var pool *pgxpool.Pool
	err = policy.Retry(ctx, "postgres", logger, func(ctx context.Context) error {
		connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		p, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
		if err != nil {
			return fmt.Errorf("unable to create postgres connection pool: %w", err)
		}
		if err := p.Ping(connectCtx); err != nil {
			p.Close()
			return fmt.Errorf("unable to ping postgres database: %w", err)
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// NewRedisClient создает клиент Redis и проверяет его пингом.
func NewRedisClient(ctx context.Context, cfg RedisConfig, policy RetryPolicy, logger *zap.Logger) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	var client *redis.Client
	err := policy.Retry(ctx, "redis", logger, func(ctx context.Context) error {
		c := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := c.Ping(pingCtx).Err(); err != nil {
			_ = c.Close()
			return fmt.Errorf("unable to ping redis: %w", err)
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// ConnectRabbitMQ подключается к RabbitMQ.
func ConnectRabbitMQ(ctx context.Context, url string, policy RetryPolicy, logger *zap.Logger) (*amqp.Connection, error) {
	var conn *amqp.Connection
	err := policy.Retry(ctx, "rabbitmq", logger, func(context.Context) error {
		c, err := amqp.Dial(url)
		if err != nil {
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}
