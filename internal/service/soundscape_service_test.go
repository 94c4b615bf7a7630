package service_test

import (
	"context"
	"errors"
	"testing"

	"soundscape-server/internal/analysis"
	"soundscape-server/internal/models"
	"soundscape-server/internal/oracle"
	oracleMocks "soundscape-server/internal/oracle/mocks"
	"soundscape-server/internal/patterns"
	repoMocks "soundscape-server/internal/repository/mocks"
	"soundscape-server/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	castleText  = "The castle loomed majestically over the valley."
	draculaText = `"The castle is impressive," he said. "Yes, very beautiful," she replied.`
)

func newEngine(t *testing.T, opts ...analysis.Option) *analysis.Engine {
	t.Helper()
	set, err := patterns.LoadDefault()
	require.NoError(t, err)
	return analysis.NewEngine(set, opts...)
}

func ptr[T any](v T) *T { return &v }

func TestGenerateSoundscape(t *testing.T) {
	ctx := context.Background()
	bookID := uuid.New()

	t.Run("text is analysed directly", func(t *testing.T) {
		svc := service.NewSoundscapeService(newEngine(t), nil, nil, zap.NewNop())

		res, err := svc.GenerateSoundscape(ctx, service.SoundscapeRequest{Text: castleText})
		require.NoError(t, err)
		assert.Equal(t, "castle_ambient", res.PrimaryAudio)
		assert.Equal(t, models.SceneDescriptive, res.Scene.PrimaryScene)
	})

	t.Run("page text and genre come from the provider", func(t *testing.T) {
		content := repoMocks.NewMockContentProvider(t)
		content.On("GetPageText", ctx, bookID, 2, 5).Return(castleText, nil).Once()
		content.On("GetBookGenre", ctx, bookID).Return("Epic Fantasy", nil).Once()
		svc := service.NewSoundscapeService(newEngine(t), content, nil, zap.NewNop())

		res, err := svc.GenerateSoundscape(ctx, service.SoundscapeRequest{BookID: &bookID, Chapter: ptr(2), Page: ptr(5)})
		require.NoError(t, err)
		assert.Equal(t, "fantasy", res.Scene.Genre)
		assert.Equal(t, "castle_ambient", res.PrimaryAudio)
	})

	t.Run("explicit genre skips book lookup", func(t *testing.T) {
		content := repoMocks.NewMockContentProvider(t)
		content.On("GetPageText", ctx, bookID, 1, 1).Return(castleText, nil).Once()
		svc := service.NewSoundscapeService(newEngine(t), content, nil, zap.NewNop())

		res, err := svc.GenerateSoundscape(ctx, service.SoundscapeRequest{
			BookID: &bookID, Chapter: ptr(1), Page: ptr(1), Genre: ptr("horror"),
		})
		require.NoError(t, err)
		assert.Equal(t, "horror", res.Scene.Genre)
		content.AssertNotCalled(t, "GetBookGenre", mock.Anything, mock.Anything)
	})

	t.Run("book without genre", func(t *testing.T) {
		content := repoMocks.NewMockContentProvider(t)
		content.On("GetBookGenre", ctx, bookID).Return("", nil).Once()
		svc := service.NewSoundscapeService(newEngine(t), content, nil, zap.NewNop())

		res, err := svc.GenerateSoundscape(ctx, service.SoundscapeRequest{Text: castleText, BookID: &bookID})
		require.NoError(t, err)
		assert.Empty(t, res.Scene.Genre)
	})

	t.Run("missing page", func(t *testing.T) {
		content := repoMocks.NewMockContentProvider(t)
		content.On("GetPageText", ctx, bookID, 9, 9).Return("", models.ErrPageNotFound).Once()
		svc := service.NewSoundscapeService(newEngine(t), content, nil, zap.NewNop())

		_, err := svc.GenerateSoundscape(ctx, service.SoundscapeRequest{BookID: &bookID, Chapter: ptr(9), Page: ptr(9), Genre: ptr("")})
		assert.ErrorIs(t, err, models.ErrPageNotFound)
	})

	t.Run("missing book", func(t *testing.T) {
		content := repoMocks.NewMockContentProvider(t)
		content.On("GetBookGenre", ctx, bookID).Return("", models.ErrBookNotFound).Once()
		svc := service.NewSoundscapeService(newEngine(t), content, nil, zap.NewNop())

		_, err := svc.GenerateSoundscape(ctx, service.SoundscapeRequest{Text: castleText, BookID: &bookID})
		assert.ErrorIs(t, err, models.ErrBookNotFound)
	})

	t.Run("no provider configured", func(t *testing.T) {
		svc := service.NewSoundscapeService(newEngine(t), nil, nil, zap.NewNop())

		_, err := svc.GenerateSoundscape(ctx, service.SoundscapeRequest{BookID: &bookID, Chapter: ptr(1), Page: ptr(1)})
		assert.ErrorIs(t, err, models.ErrContentUnavailable)
	})

	t.Run("partial address is invalid", func(t *testing.T) {
		svc := service.NewSoundscapeService(newEngine(t), nil, nil, zap.NewNop())

		tests := []service.SoundscapeRequest{
			{Chapter: ptr(1), Page: ptr(1)},
			{BookID: &bookID, Chapter: ptr(1)},
			{BookID: &bookID},
			{BookID: &bookID, Chapter: ptr(-1), Page: ptr(0)},
		}
		for _, req := range tests {
			_, err := svc.GenerateSoundscape(ctx, req)
			assert.ErrorIs(t, err, models.ErrInvalidInput)
		}
	})

	t.Run("empty request yields default soundscape", func(t *testing.T) {
		svc := service.NewSoundscapeService(newEngine(t), nil, nil, zap.NewNop())

		res, err := svc.GenerateSoundscape(ctx, service.SoundscapeRequest{})
		require.NoError(t, err)
		assert.Equal(t, "default_ambient", res.PrimaryAudio)
		assert.Empty(t, res.TriggeredSounds)
	})

	t.Run("too long text keeps composer fallback", func(t *testing.T) {
		emotions := oracleMocks.NewMockEmotionOracle(t)
		svc := service.NewSoundscapeService(newEngine(t, analysis.WithMaxTextRunes(5)), nil, emotions, zap.NewNop())

		res, err := svc.GenerateSoundscape(ctx, service.SoundscapeRequest{Text: castleText})
		require.NoError(t, err)
		assert.ErrorIs(t, res.Err, models.ErrTextTooLong)
		assert.Equal(t, "default_ambient", res.PrimaryAudio)
		emotions.AssertNotCalled(t, "ClassifyEmotion", mock.Anything, mock.Anything)
	})
}

func TestGenerateSoundscape_EmotionOracle(t *testing.T) {
	ctx := context.Background()

	t.Run("oracle moods replace rule moods", func(t *testing.T) {
		emotions := oracleMocks.NewMockEmotionOracle(t)
		emotions.On("ClassifyEmotion", ctx, draculaText).Return([]oracle.EmotionScore{
			{Label: "fear", Score: 0.6},
			{Label: "nervousness", Score: 0.2},
			{Label: "joy", Score: 0.1},
		}, nil).Once()
		svc := service.NewSoundscapeService(newEngine(t), nil, emotions, zap.NewNop())

		res, err := svc.GenerateSoundscape(ctx, service.SoundscapeRequest{Text: draculaText})
		require.NoError(t, err)
		assert.Equal(t, "tense", res.Scene.Mood)
		assert.InDelta(t, 0.8, res.Scene.MoodScores["tense"], 1e-9)
		assert.Equal(t, "conversation_ambient", res.PrimaryAudio)
	})

	t.Run("oracle failure falls back to rules", func(t *testing.T) {
		emotions := oracleMocks.NewMockEmotionOracle(t)
		emotions.On("ClassifyEmotion", ctx, draculaText).Return(nil, errors.New("connection refused")).Once()
		svc := service.NewSoundscapeService(newEngine(t), nil, emotions, zap.NewNop())

		withOracle, err := svc.GenerateSoundscape(ctx, service.SoundscapeRequest{Text: draculaText})
		require.NoError(t, err)

		rulesOnly := service.NewSoundscapeService(newEngine(t), nil, nil, zap.NewNop())
		expected, err := rulesOnly.GenerateSoundscape(ctx, service.SoundscapeRequest{Text: draculaText})
		require.NoError(t, err)
		assert.Equal(t, expected.Scene.Mood, withOracle.Scene.Mood)
		assert.Equal(t, expected.Scene.MoodScores, withOracle.Scene.MoodScores)
	})

	t.Run("blank text never reaches the oracle", func(t *testing.T) {
		emotions := oracleMocks.NewMockEmotionOracle(t)
		svc := service.NewSoundscapeService(newEngine(t), nil, emotions, zap.NewNop())

		res, err := svc.GenerateSoundscape(ctx, service.SoundscapeRequest{Text: "   "})
		require.NoError(t, err)
		assert.Equal(t, "default_ambient", res.PrimaryAudio)
		assert.Empty(t, res.Error)

		scene, err := svc.ClassifyScene(ctx, "  \n ", "")
		require.NoError(t, err)
		assert.Equal(t, models.SceneNeutral, scene.PrimaryScene)

		emotions.AssertNotCalled(t, "ClassifyEmotion", mock.Anything, mock.Anything)
	})

	t.Run("classify uses the oracle too", func(t *testing.T) {
		emotions := oracleMocks.NewMockEmotionOracle(t)
		emotions.On("ClassifyEmotion", ctx, castleText).Return([]oracle.EmotionScore{{Label: "love", Score: 0.9}}, nil).Once()
		svc := service.NewSoundscapeService(newEngine(t), nil, emotions, zap.NewNop())

		res, err := svc.ClassifyScene(ctx, castleText, "")
		require.NoError(t, err)
		assert.Equal(t, "romantic", res.Mood)
	})
}

func TestClassifyScene(t *testing.T) {
	ctx := context.Background()
	svc := service.NewSoundscapeService(newEngine(t, analysis.WithMaxTextRunes(100)), nil, nil, zap.NewNop())

	res, err := svc.ClassifyScene(ctx, draculaText, "")
	require.NoError(t, err)
	assert.Equal(t, models.SceneDialogue, res.PrimaryScene)
	assert.Equal(t, "conversation_ambient", res.AudioPriority)

	empty, err := svc.ClassifyScene(ctx, "   ", "")
	require.NoError(t, err)
	assert.Equal(t, models.SceneNeutral, empty.PrimaryScene)

	_, err = svc.ClassifyScene(ctx, "bad \xff", "")
	assert.ErrorIs(t, err, models.ErrInvalidEncoding)
}

func TestFindTriggers(t *testing.T) {
	ctx := context.Background()
	svc := service.NewSoundscapeService(newEngine(t, analysis.WithSoundPicker(analysis.FirstPicker{})), nil, nil, zap.NewNop())

	triggers, err := svc.FindTriggers(ctx, "Thunder rolled. The door slammed.")
	require.NoError(t, err)
	require.Len(t, triggers, 2)
	assert.Equal(t, "thunder", triggers[0].Group)
	assert.Equal(t, "door", triggers[1].Group)
	assert.Equal(t, "door_creak_01.mp3", triggers[1].SoundFile)

	none, err := svc.FindTriggers(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = svc.FindTriggers(ctx, "\xff")
	assert.ErrorIs(t, err, models.ErrInvalidEncoding)
}
