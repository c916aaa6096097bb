package service

import (
	"context"
	"fmt"
	"strings"

	"portfolio-api/internal/cache"
	"portfolio-api/internal/domain"
	"portfolio-api/pkg/errors"
	"portfolio-api/pkg/logger"
)

const assistantSystemPrompt = "You are a helpful assistant on a personal portfolio website. " +
	"Answer questions about the site owner's work, skills and projects concisely and honestly. " +
	"If you do not know something, say so."

// TextGenerator is the model backend for the assistant. Satisfied by
// GeminiClient; tests substitute a stub.
type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, message string) (string, []domain.ChatSource, error)
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// AssistantService answers visitor chat messages and generates images,
// serving repeats from the cache managers.
type AssistantService struct {
	generator  TextGenerator
	chatCache  *cache.ChatCache
	imageCache *cache.ImageCache
	log        *logger.Logger
}

// NewAssistantService creates the assistant service.
func NewAssistantService(generator TextGenerator, chatCache *cache.ChatCache, imageCache *cache.ImageCache, log *logger.Logger) *AssistantService {
	return &AssistantService{
		generator:  generator,
		chatCache:  chatCache,
		imageCache: imageCache,
		log:        log,
	}
}

// Chat answers a visitor message. Identical messages within the cache TTL are
// answered from cache without a model call.
func (s *AssistantService) Chat(ctx context.Context, message string) (*domain.ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, errors.NewValidationError("Message is required")
	}

	if cached := s.chatCache.Get(ctx, message); cached != nil {
		s.log.Debug("Chat reply served from cache")
		return cached, nil
	}

	text, sources, err := s.generator.GenerateText(ctx, assistantSystemPrompt, message)
	if err != nil {
		return nil, err
	}

	s.chatCache.Set(ctx, message, text, sources)

	return &domain.ChatReply{
		Response: text,
		Sources:  sources,
		Cached:   false,
	}, nil
}

// GenerateImage produces an image for the prompt parameters, serving repeated
// parameter combinations from cache.
func (s *AssistantService) GenerateImage(ctx context.Context, prompt, style, ratio string) (*domain.GeneratedImage, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, errors.NewValidationError("Prompt is required")
	}

	if data := s.imageCache.Get(ctx, prompt, style, ratio); data != "" {
		s.log.Debug("Generated image served from cache")
		return &domain.GeneratedImage{Data: data, Cached: true}, nil
	}

	fullPrompt := prompt
	if style != "" {
		fullPrompt = fmt.Sprintf("%s, in %s style", fullPrompt, style)
	}
	if ratio != "" {
		fullPrompt = fmt.Sprintf("%s, aspect ratio %s", fullPrompt, ratio)
	}

	data, err := s.generator.GenerateImage(ctx, fullPrompt)
	if err != nil {
		return nil, err
	}

	s.imageCache.Set(ctx, prompt, style, ratio, data)

	return &domain.GeneratedImage{Data: data, Cached: false}, nil
}
