package container

import (
	"context"

	"portfolio-api/internal/cache"
	"portfolio-api/internal/config"
	"portfolio-api/internal/contact"
	"portfolio-api/internal/repository"
	"portfolio-api/internal/service"
	"portfolio-api/pkg/database"
	"portfolio-api/pkg/logger"
	"portfolio-api/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          *database.PostgresDB
	RedisClient *redis.Client

	Repositories *repository.Repositories

	ContactService   *service.ContactService
	AnalyticsService *service.AnalyticsService
	AssistantService *service.AssistantService
}

// New creates a new dependency injection container
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL, cfg.DatabaseSSLCA)
	if err != nil {
		return nil, err
	}
	log.Info("Database connection pool initialized")

	// Redis is optional: without it the cooldown, rate limiter and caches
	// degrade instead of blocking startup
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			redisClient = client
			log.Info("Redis client initialized successfully")
		}
	} else {
		log.Info("Redis URL not configured, proceeding without caching")
	}

	repos := &repository.Repositories{
		Contact:   repository.NewContactRepository(db),
		Analytics: repository.NewAnalyticsRepository(db),
	}

	sender := contact.NewSender(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.ContactRelayURL, log.WithComponent("delivery"))
	persistLocal := cfg.TelegramBotToken != "" && cfg.TelegramChatID != ""

	contactService := service.NewContactService(sender, repos.Contact, repos.Analytics, redisClient, persistLocal, log.WithComponent("contact"))
	analyticsService := service.NewAnalyticsService(repos.Contact, repos.Analytics, log.WithComponent("analytics"))

	assistantLog := log.WithComponent("assistant")
	chatStore, imageStore := buildCacheStores(redisClient)
	assistantService := service.NewAssistantService(
		service.NewGeminiClient(cfg.GeminiAPIKey, assistantLog),
		cache.NewChatCache(chatStore, assistantLog),
		cache.NewImageCache(imageStore, assistantLog),
		assistantLog,
	)

	return &Container{
		Config:           cfg,
		Logger:           log,
		DB:               db,
		RedisClient:      redisClient,
		Repositories:     repos,
		ContactService:   contactService,
		AnalyticsService: analyticsService,
		AssistantService: assistantService,
	}, nil
}

// buildCacheStores picks Redis-backed stores when available, otherwise
// process-local memory stores
func buildCacheStores(redisClient *redis.Client) (cache.Store, cache.Store) {
	if redisClient == nil {
		return cache.NewMemoryStore(), cache.NewMemoryStore()
	}
	return cache.NewRedisStore(redisClient, redisClient.KeyBuilder.KeyChatCache()),
		cache.NewRedisStore(redisClient, redisClient.KeyBuilder.KeyImageCache())
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// HasRedis returns true if the Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}

// Close releases the container's connections
func (c *Container) Close() {
	if c.DB != nil {
		c.DB.Close()
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.WithError(err).Warn("Failed to close Redis client")
		}
	}
}
