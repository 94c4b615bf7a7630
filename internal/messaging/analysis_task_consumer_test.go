package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"soundscape-server/internal/analysis"
	"soundscape-server/internal/models"
	"soundscape-server/internal/patterns"
	"soundscape-server/internal/repository"
	repoMocks "soundscape-server/internal/repository/mocks"
	"soundscape-server/internal/service"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAcknowledger запоминает Ack/Nack вызовы доставки.
type fakeAcknowledger struct {
	mu      sync.Mutex
	acked   []uint64
	nacked  []uint64
	requeue []bool
}

func (f *fakeAcknowledger) Ack(tag uint64, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked = append(f.acked, tag)
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, _ bool, requeue bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nacked = append(f.nacked, tag)
	f.requeue = append(f.requeue, requeue)
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

type fakePublisher struct {
	err       error
	published []AnalysisResultPayload
}

func (p *fakePublisher) PublishResult(_ context.Context, payload AnalysisResultPayload) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, payload)
	return nil
}

func newTestConsumer(t *testing.T, content *repoMocks.MockContentProvider, pub ResultPublisher) *AnalysisTaskConsumer {
	t.Helper()
	set, err := patterns.LoadDefault()
	require.NoError(t, err)
	engine := analysis.NewEngine(set, analysis.WithSoundPicker(analysis.FirstPicker{}))

	// nil *MockContentProvider не должен превратиться в ненулевой интерфейс
	var provider repository.ContentProvider
	if content != nil {
		provider = content
	}
	svc := service.NewSoundscapeService(engine, provider, nil, zap.NewNop())
	c := newAnalysisTaskConsumer("tasks", svc, pub, zap.NewNop())
	c.retryDelay = 0
	return c
}

func delivery(t *testing.T, ack amqp.Acknowledger, tag uint64, payload any) amqp.Delivery {
	t.Helper()
	var body []byte
	switch v := payload.(type) {
	case string:
		body = []byte(v)
	default:
		var err error
		body, err = json.Marshal(v)
		require.NoError(t, err)
	}
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: tag, Body: body}
}

func TestHandleDelivery_TextTask(t *testing.T) {
	ack := &fakeAcknowledger{}
	pub := &fakePublisher{}
	c := newTestConsumer(t, nil, pub)

	c.handleDelivery(delivery(t, ack, 1, AnalysisTaskPayload{TaskID: "t-1", Text: "The castle loomed majestically over the valley."}))

	assert.Equal(t, []uint64{1}, ack.acked)
	assert.Empty(t, ack.nacked)
	require.Len(t, pub.published, 1)
	res := pub.published[0]
	assert.Equal(t, "t-1", res.TaskID)
	assert.Equal(t, ResultStatusSuccess, res.Status)
	require.NotNil(t, res.Result)
	assert.Equal(t, "castle_ambient", res.Result.PrimaryAudio)
}

func TestHandleDelivery_BatchContinuesAfterMissingPage(t *testing.T) {
	bookID := uuid.New()
	one, two := 1, 2
	content := repoMocks.NewMockContentProvider(t)
	content.On("GetBookGenre", mock.Anything, bookID).Return("thriller", nil)
	content.On("GetPageText", mock.Anything, bookID, 1, 1).Return("", models.ErrPageNotFound).Once()
	content.On("GetPageText", mock.Anything, bookID, 1, 2).Return("He ran. Suddenly a shot rang out!", nil).Once()

	ack := &fakeAcknowledger{}
	pub := &fakePublisher{}
	c := newTestConsumer(t, content, pub)

	c.handleDelivery(delivery(t, ack, 1, AnalysisTaskPayload{TaskID: "p1", BookID: &bookID, Chapter: &one, Page: &one}))
	c.handleDelivery(delivery(t, ack, 2, AnalysisTaskPayload{TaskID: "p2", BookID: &bookID, Chapter: &one, Page: &two}))

	assert.Equal(t, []uint64{1, 2}, ack.acked)
	require.Len(t, pub.published, 2)
	assert.Equal(t, ResultStatusNotFound, pub.published[0].Status)
	assert.Nil(t, pub.published[0].Result)
	assert.NotEmpty(t, pub.published[0].Error)
	assert.Equal(t, ResultStatusSuccess, pub.published[1].Status)
	assert.Equal(t, "thriller", pub.published[1].Result.Scene.Genre)
	assert.Equal(t, &two, pub.published[1].Page)
}

func TestHandleDelivery_MalformedJSON(t *testing.T) {
	ack := &fakeAcknowledger{}
	pub := &fakePublisher{}
	c := newTestConsumer(t, nil, pub)

	c.handleDelivery(delivery(t, ack, 7, "{not json"))

	assert.Empty(t, ack.acked)
	assert.Equal(t, []uint64{7}, ack.nacked)
	assert.Equal(t, []bool{false}, ack.requeue)
	assert.Empty(t, pub.published)
}

func TestHandleDelivery_InvalidTaskIsAcked(t *testing.T) {
	ack := &fakeAcknowledger{}
	pub := &fakePublisher{}
	c := newTestConsumer(t, nil, pub)
	page := 3

	c.handleDelivery(delivery(t, ack, 1, AnalysisTaskPayload{Page: &page}))
	c.handleDelivery(delivery(t, ack, 2, AnalysisTaskPayload{TaskID: "enc", Text: "broken \xff text"}))

	assert.Equal(t, []uint64{1, 2}, ack.acked)
	require.Len(t, pub.published, 2)
	assert.Equal(t, ResultStatusInvalid, pub.published[0].Status)
	assert.NotEmpty(t, pub.published[0].TaskID)
	assert.Equal(t, ResultStatusInvalid, pub.published[1].Status)
	require.NotNil(t, pub.published[1].Result)
	assert.Equal(t, "default_ambient", pub.published[1].Result.PrimaryAudio)
}

func TestHandleDelivery_PublishFailureRequeues(t *testing.T) {
	ack := &fakeAcknowledger{}
	c := newTestConsumer(t, nil, &fakePublisher{err: errors.New("channel closed")})

	c.handleDelivery(delivery(t, ack, 4, AnalysisTaskPayload{TaskID: "t", Text: "Thunder."}))

	assert.Empty(t, ack.acked)
	assert.Equal(t, []uint64{4}, ack.nacked)
	assert.Equal(t, []bool{true}, ack.requeue)
}

func TestResultStatus(t *testing.T) {
	assert.Equal(t, ResultStatusSuccess, ResultStatus(nil))
	assert.Equal(t, ResultStatusNotFound, ResultStatus(models.ErrBookNotFound))
	assert.Equal(t, ResultStatusInvalid, ResultStatus(models.ErrTextTooLong))
	assert.Equal(t, ResultStatusError, ResultStatus(models.ErrContentUnavailable))
}
