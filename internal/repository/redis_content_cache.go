package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"soundscape-server/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// genreNone хранит в кэше книгу без жанра, чтобы отличать ее от промаха.
const genreNone = "\x00"

// Compile-time check to ensure implementation satisfies the interface.
var _ ContentProvider = (*redisContentCache)(nil)

// redisContentCache - read-through кэш текста страниц и жанров поверх другого провайдера.
// Кэшируется только контент, результаты анализа не кэшируются. Ошибки Redis не фатальны:
// запрос уходит в исходный провайдер.
type redisContentCache struct {
	next   ContentProvider
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisContentCache оборачивает провайдер кэшем в Redis.
func NewRedisContentCache(next ContentProvider, client *redis.Client, ttl time.Duration, logger *zap.Logger) ContentProvider {
	return &redisContentCache{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.Named("RedisContentCache"),
	}
}

func pageKey(bookID uuid.UUID, chapter, page int) string {
	return fmt.Sprintf("soundscape:page:%s:%d:%d", bookID, chapter, page)
}

func genreKey(bookID uuid.UUID) string {
	return fmt.Sprintf("soundscape:genre:%s", bookID)
}

func (c *redisContentCache) GetPageText(ctx context.Context, bookID uuid.UUID, chapter, page int) (string, error) {
	key := pageKey(bookID, chapter, page)
	text, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		return text, nil
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Redis get failed, falling back to provider", zap.String("key", key), zap.Error(err))
	}

	text, err = c.next.GetPageText(ctx, bookID, chapter, page)
	if err != nil {
		return "", err
	}
	c.store(ctx, key, text)
	return text, nil
}

func (c *redisContentCache) GetBookGenre(ctx context.Context, bookID uuid.UUID) (string, error) {
	key := genreKey(bookID)
	genre, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if genre == genreNone {
			return "", nil
		}
		return genre, nil
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Redis get failed, falling back to provider", zap.String("key", key), zap.Error(err))
	}

	genre, err = c.next.GetBookGenre(ctx, bookID)
	if err != nil {
		return "", err
	}
	stored := genre
	if stored == "" {
		stored = genreNone
	}
	c.store(ctx, key, stored)
	return genre, nil
}

func (c *redisContentCache) ListPages(ctx context.Context, bookID uuid.UUID) ([]models.PageRef, error) {
	return c.next.ListPages(ctx, bookID)
}

func (c *redisContentCache) store(ctx context.Context, key, value string) {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("Redis set failed", zap.String("key", key), zap.Error(err))
	}
}
