package service

import (
	"context"

	"portfolio-api/internal/contact"
	"portfolio-api/internal/domain"
)

// ContactPipeline defines the contact submission flow
type ContactPipeline interface {
	// Submit runs validation, spam defense, delivery and persistence for
	// one contact-form submission
	Submit(ctx context.Context, in contact.Input, ip, userAgent string) (*SubmitResult, error)
}

// Assistant defines the AI chat/image operations backed by caches
type Assistant interface {
	// Chat answers a visitor message, serving repeated questions from cache
	Chat(ctx context.Context, message string) (*domain.ChatReply, error)

	// GenerateImage produces an image for the prompt parameters, served
	// from cache when already generated
	GenerateImage(ctx context.Context, prompt, style, ratio string) (*domain.GeneratedImage, error)
}
