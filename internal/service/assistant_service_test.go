package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-api/internal/cache"
	"portfolio-api/internal/domain"
	"portfolio-api/pkg/errors"
)

// stubGenerator counts model calls and returns canned output.
type stubGenerator struct {
	textCalls  int
	imageCalls int
	text       string
	sources    []domain.ChatSource
	imageData  string
	failErr    error
}

func (s *stubGenerator) GenerateText(_ context.Context, _, _ string) (string, []domain.ChatSource, error) {
	s.textCalls++
	if s.failErr != nil {
		return "", nil, s.failErr
	}
	return s.text, s.sources, nil
}

func (s *stubGenerator) GenerateImage(_ context.Context, _ string) (string, error) {
	s.imageCalls++
	if s.failErr != nil {
		return "", s.failErr
	}
	return s.imageData, nil
}

func newTestAssistant(t *testing.T) (*AssistantService, *stubGenerator) {
	gen := &stubGenerator{
		text:      "I build backend services.",
		sources:   []domain.ChatSource{{Title: "Projects", URI: "https://example.com/projects"}},
		imageData: "base64image",
	}
	log := testLogger(t)
	svc := NewAssistantService(gen, cache.NewChatCache(cache.NewMemoryStore(), log), cache.NewImageCache(cache.NewMemoryStore(), log), log)
	return svc, gen
}

func TestAssistantChatCachesRepeats(t *testing.T) {
	ctx := context.Background()
	svc, gen := newTestAssistant(t)

	first, err := svc.Chat(ctx, "what do you do?")
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, "I build backend services.", first.Response)
	assert.Equal(t, 1, gen.textCalls)

	second, err := svc.Chat(ctx, "what do you do?")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Response, second.Response)
	assert.Equal(t, first.Sources, second.Sources)
	assert.Equal(t, 1, gen.textCalls, "cached reply must not call the model again")

	_, err = svc.Chat(ctx, "a different question?")
	require.NoError(t, err)
	assert.Equal(t, 2, gen.textCalls)
}

func TestAssistantChatEmptyMessage(t *testing.T) {
	svc, gen := newTestAssistant(t)

	_, err := svc.Chat(context.Background(), "   ")
	require.Error(t, err)

	appErr := err.(*errors.AppError)
	assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
	assert.Zero(t, gen.textCalls)
}

func TestAssistantChatModelFailureNotCached(t *testing.T) {
	ctx := context.Background()
	svc, gen := newTestAssistant(t)
	gen.failErr = errors.NewExternalError("Assistant service unavailable", nil)

	_, err := svc.Chat(ctx, "question")
	require.Error(t, err)

	// After the backend recovers the same question goes to the model again
	gen.failErr = nil
	reply, err := svc.Chat(ctx, "question")
	require.NoError(t, err)
	assert.False(t, reply.Cached)
	assert.Equal(t, 2, gen.textCalls)
}

func TestAssistantGenerateImageCachesRepeats(t *testing.T) {
	ctx := context.Background()
	svc, gen := newTestAssistant(t)

	first, err := svc.GenerateImage(ctx, "a red fox", "watercolor", "16:9")
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, "base64image", first.Data)

	second, err := svc.GenerateImage(ctx, "a red fox", "watercolor", "16:9")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, 1, gen.imageCalls)

	// Any changed parameter regenerates
	_, err = svc.GenerateImage(ctx, "a red fox", "watercolor", "1:1")
	require.NoError(t, err)
	assert.Equal(t, 2, gen.imageCalls)
}

func TestAssistantGenerateImageEmptyPrompt(t *testing.T) {
	svc, gen := newTestAssistant(t)

	_, err := svc.GenerateImage(context.Background(), "", "watercolor", "1:1")
	require.Error(t, err)
	assert.Zero(t, gen.imageCalls)
}
