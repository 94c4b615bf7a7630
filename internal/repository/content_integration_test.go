//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"soundscape-server/internal/models"
	"soundscape-server/internal/repository"
	"soundscape-server/pkg/migration"

	"github.com/docker/docker/client"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// ContentIntegrationTestSuite поднимает PostgreSQL и Redis в контейнерах.
type ContentIntegrationTestSuite struct {
	suite.Suite
	ctx         context.Context
	pgContainer *postgres.PostgresContainer
	rdContainer *tcredis.RedisContainer
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	logger      *zap.Logger

	bookID uuid.UUID
}

func TestContentIntegrationTestSuite(t *testing.T) {
	requireDocker(t)
	suite.Run(t, new(ContentIntegrationTestSuite))
}

// requireDocker пропускает тест, если Docker недоступен.
func requireDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		t.Skipf("Docker client init error: %v", err)
	}
	defer cli.Close()
	if _, err := cli.Ping(context.Background()); err != nil {
		t.Skipf("Docker daemon is not running or accessible: %v", err)
	}
}

func (s *ContentIntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = zap.NewNop()
	var err error

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start postgres container")

	pgConnStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err)
	s.pgPool, err = pgxpool.New(s.ctx, pgConnStr)
	require.NoError(s.T(), err)

	migrator := migration.NewMigrator(migration.Config{
		MigrationsPath: repository.MigrationsDir,
		MigrationsFS:   repository.MigrationsFS,
	}, s.pgPool, s.logger)
	require.NoError(s.T(), migrator.Up(s.ctx), "Failed to run migrations")

	s.rdContainer, err = tcredis.Run(s.ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").
				WithOccurrence(1).
				WithStartupTimeout(1*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start redis container")
	redisURI, err := s.rdContainer.ConnectionString(s.ctx)
	require.NoError(s.T(), err)
	opts, err := redis.ParseURL(redisURI)
	require.NoError(s.T(), err)
	s.redisClient = redis.NewClient(opts)
	require.NoError(s.T(), s.redisClient.Ping(s.ctx).Err())

	s.bookID = uuid.New()
	_, err = s.pgPool.Exec(s.ctx, `INSERT INTO books (id, title, genre) VALUES ($1, $2, $3)`, s.bookID, "Dracula", "horror")
	require.NoError(s.T(), err)
	for page, text := range []string{"The castle loomed.", "Thunder rolled."} {
		_, err = s.pgPool.Exec(s.ctx, `INSERT INTO pages (book_id, chapter, page, content) VALUES ($1, 1, $2, $3)`,
			s.bookID, page+1, text)
		require.NoError(s.T(), err)
	}
}

func (s *ContentIntegrationTestSuite) TearDownSuite() {
	if s.redisClient != nil {
		_ = s.redisClient.Close()
	}
	if s.pgPool != nil {
		s.pgPool.Close()
	}
	if s.rdContainer != nil {
		_ = s.rdContainer.Terminate(s.ctx)
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(s.ctx)
	}
}

func (s *ContentIntegrationTestSuite) TestMigrationVersion() {
	migrator := migration.NewMigrator(migration.Config{
		MigrationsPath: repository.MigrationsDir,
		MigrationsFS:   repository.MigrationsFS,
	}, s.pgPool, s.logger)

	version, dirty, err := migrator.Version(s.ctx)
	s.Require().NoError(err)
	s.False(dirty)
	s.Equal(uint(1), version)
}

func (s *ContentIntegrationTestSuite) TestPgContentRepository() {
	repo := repository.NewPgContentRepository(s.pgPool, s.logger)

	text, err := repo.GetPageText(s.ctx, s.bookID, 1, 2)
	s.Require().NoError(err)
	s.Equal("Thunder rolled.", text)

	_, err = repo.GetPageText(s.ctx, s.bookID, 9, 9)
	s.ErrorIs(err, models.ErrPageNotFound)

	genre, err := repo.GetBookGenre(s.ctx, s.bookID)
	s.Require().NoError(err)
	s.Equal("horror", genre)

	_, err = repo.GetBookGenre(s.ctx, uuid.New())
	s.ErrorIs(err, models.ErrBookNotFound)

	pages, err := repo.ListPages(s.ctx, s.bookID)
	s.Require().NoError(err)
	s.Equal([]models.PageRef{
		{BookID: s.bookID, Chapter: 1, Page: 1},
		{BookID: s.bookID, Chapter: 1, Page: 2},
	}, pages)

	pages, err = repo.ListPages(s.ctx, uuid.New())
	s.Require().NoError(err)
	s.Empty(pages)
}

func (s *ContentIntegrationTestSuite) TestRedisCacheServesStaleCopyAfterSourceChange() {
	repo := repository.NewPgContentRepository(s.pgPool, s.logger)
	cache := repository.NewRedisContentCache(repo, s.redisClient, time.Minute, s.logger)

	text, err := cache.GetPageText(s.ctx, s.bookID, 1, 1)
	s.Require().NoError(err)
	s.Equal("The castle loomed.", text)

	_, err = s.pgPool.Exec(s.ctx, `UPDATE pages SET content = $1 WHERE book_id = $2 AND chapter = 1 AND page = 1`,
		"The castle crumbled.", s.bookID)
	s.Require().NoError(err)
	s.T().Cleanup(func() {
		_, _ = s.pgPool.Exec(s.ctx, `UPDATE pages SET content = $1 WHERE book_id = $2 AND chapter = 1 AND page = 1`,
			"The castle loomed.", s.bookID)
		_ = s.redisClient.FlushAll(s.ctx).Err()
	})

	cached, err := cache.GetPageText(s.ctx, s.bookID, 1, 1)
	s.Require().NoError(err)
	s.Equal("The castle loomed.", cached)

	genre, err := cache.GetBookGenre(s.ctx, s.bookID)
	s.Require().NoError(err)
	s.Equal("horror", genre)
}
