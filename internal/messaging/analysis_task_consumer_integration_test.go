//go:build integration

package messaging_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"soundscape-server/internal/analysis"
	"soundscape-server/internal/messaging"
	"soundscape-server/internal/patterns"
	"soundscape-server/internal/repository"
	"soundscape-server/internal/service"
	"soundscape-server/pkg/database"

	"github.com/docker/docker/client"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

const (
	testTaskQueue   = "test_soundscape_tasks"
	testResultQueue = "test_soundscape_results"
)

func TestAnalysisTaskRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		t.Skipf("Docker client init error: %v", err)
	}
	if _, err := cli.Ping(context.Background()); err != nil {
		cli.Close()
		t.Skipf("Docker daemon is not running or accessible: %v", err)
	}
	cli.Close()

	ctx := context.Background()
	logger := zap.NewNop()

	rmqContainer, err := rabbitmq.Run(ctx,
		"rabbitmq:3-management-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete"),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rmqContainer.Terminate(ctx) })

	amqpURL, err := rmqContainer.AmqpURL(ctx)
	require.NoError(t, err)

	conn, err := database.ConnectRabbitMQ(ctx, amqpURL, database.RetryPolicy{MaxRetries: 5, Delay: time.Second}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	set, err := patterns.LoadDefault()
	require.NoError(t, err)
	engine := analysis.NewEngine(set, analysis.WithSoundPicker(analysis.FirstPicker{}))
	var content repository.ContentProvider
	svc := service.NewSoundscapeService(engine, content, nil, logger)

	publisher, err := messaging.NewRabbitMQResultPublisher(conn, testResultQueue, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = publisher.Close() })

	consumer, err := messaging.NewAnalysisTaskConsumer(conn, testTaskQueue, svc, publisher, logger)
	require.NoError(t, err)
	go func() { _ = consumer.StartConsuming() }()
	t.Cleanup(func() { _ = consumer.Stop() })

	ch, err := conn.Channel()
	require.NoError(t, err)
	t.Cleanup(func() { _ = ch.Close() })

	results, err := ch.Consume(testResultQueue, "", true, false, false, false, nil)
	require.NoError(t, err)

	tasks := []messaging.AnalysisTaskPayload{
		{TaskID: "task-ok", Text: "Thunder rolled. The door creaked."},
		// Адрес страницы без провайдера контента
		{TaskID: "task-no-content", BookID: ptrUUID(), Chapter: ptrInt(1), Page: ptrInt(1)},
	}
	for _, task := range tasks {
		body, err := json.Marshal(task)
		require.NoError(t, err)
		require.NoError(t, ch.PublishWithContext(ctx, "", testTaskQueue, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		}))
	}

	got := map[string]messaging.AnalysisResultPayload{}
	timeout := time.After(30 * time.Second)
	for len(got) < len(tasks) {
		select {
		case d := <-results:
			var res messaging.AnalysisResultPayload
			require.NoError(t, json.Unmarshal(d.Body, &res))
			require.Equal(t, res.TaskID, d.CorrelationId)
			got[res.TaskID] = res
		case <-timeout:
			t.Fatalf("received %d of %d results", len(got), len(tasks))
		}
	}

	ok := got["task-ok"]
	require.Equal(t, messaging.ResultStatusSuccess, ok.Status)
	require.NotNil(t, ok.Result)
	require.Len(t, ok.Result.TriggeredSounds, 2)
	require.Equal(t, "thunder_01.mp3", ok.Result.TriggeredSounds[0].SoundFile)

	failed := got["task-no-content"]
	require.Equal(t, messaging.ResultStatusError, failed.Status)
	require.NotEmpty(t, failed.Error)
	require.Nil(t, failed.Result)
}

func ptrInt(v int) *int { return &v }

func ptrUUID() *uuid.UUID {
	id := uuid.New()
	return &id
}
