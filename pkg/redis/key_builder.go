package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string // Environment prefix (staging/prod)
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" || environment == "test" {
		prefix = "staging"
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// Contact pipeline key builders
func (kb *KeyBuilder) KeyContactCooldown(ipHash string) string {
	return kb.BuildKey(fmt.Sprintf(KeyContactCooldown, ipHash))
}

func (kb *KeyBuilder) KeyContactRateLimit(ipHash string) string {
	return kb.BuildKey(fmt.Sprintf(KeyContactRateLimit, ipHash))
}

// Assistant cache key builders
func (kb *KeyBuilder) KeyChatCache() string {
	return kb.BuildKey(KeyChatCache)
}

func (kb *KeyBuilder) KeyImageCache() string {
	return kb.BuildKey(KeyImageCache)
}
