package repository_test

import (
	"context"
	"testing"
	"time"

	"soundscape-server/internal/models"
	"soundscape-server/internal/repository"
	"soundscape-server/internal/repository/mocks"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// unreachableRedis возвращает клиент, все команды которого завершаются ошибкой соединения.
func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisContentCache_FallsBackWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	bookID := uuid.New()
	next := mocks.NewMockContentProvider(t)
	next.On("GetPageText", ctx, bookID, 1, 2).Return("page text", nil).Once()
	next.On("GetBookGenre", ctx, bookID).Return("horror", nil).Once()

	cache := repository.NewRedisContentCache(next, unreachableRedis(t), time.Minute, zap.NewNop())

	text, err := cache.GetPageText(ctx, bookID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "page text", text)

	genre, err := cache.GetBookGenre(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, "horror", genre)
}

func TestRedisContentCache_PropagatesNotFound(t *testing.T) {
	ctx := context.Background()
	bookID := uuid.New()
	next := mocks.NewMockContentProvider(t)
	next.On("GetPageText", ctx, bookID, 3, 4).Return("", models.ErrPageNotFound).Once()
	next.On("ListPages", ctx, bookID).Return([]models.PageRef{{BookID: bookID, Chapter: 1, Page: 1}}, nil).Once()

	cache := repository.NewRedisContentCache(next, unreachableRedis(t), time.Minute, zap.NewNop())

	_, err := cache.GetPageText(ctx, bookID, 3, 4)
	assert.ErrorIs(t, err, models.ErrPageNotFound)

	pages, err := cache.ListPages(ctx, bookID)
	require.NoError(t, err)
	assert.Len(t, pages, 1)
}
