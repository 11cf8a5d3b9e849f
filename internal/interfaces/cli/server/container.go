package server

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/orris-inc/archy/internal/application/ai"
	"github.com/orris-inc/archy/internal/application/archive/extractor"
	"github.com/orris-inc/archy/internal/application/archive/fetcher"
	archiveUsecases "github.com/orris-inc/archy/internal/application/archive/usecases"
	searchUsecases "github.com/orris-inc/archy/internal/application/search/usecases"
	"github.com/orris-inc/archy/internal/domain/search"
	"github.com/orris-inc/archy/internal/infrastructure/auth"
	"github.com/orris-inc/archy/internal/infrastructure/cache"
	"github.com/orris-inc/archy/internal/infrastructure/config"
	"github.com/orris-inc/archy/internal/infrastructure/discord"
	"github.com/orris-inc/archy/internal/infrastructure/llm"
	"github.com/orris-inc/archy/internal/infrastructure/metrics"
	"github.com/orris-inc/archy/internal/infrastructure/permission"
	"github.com/orris-inc/archy/internal/infrastructure/pubsub"
	"github.com/orris-inc/archy/internal/infrastructure/ratelimit"
	"github.com/orris-inc/archy/internal/infrastructure/repository"
	"github.com/orris-inc/archy/internal/infrastructure/vectorstore"
	"github.com/orris-inc/archy/internal/interfaces/bot"
	httpRouter "github.com/orris-inc/archy/internal/interfaces/http"
	searchHandler "github.com/orris-inc/archy/internal/interfaces/http/handlers/search"
	ticketHandler "github.com/orris-inc/archy/internal/interfaces/http/handlers/ticket"
	"github.com/orris-inc/archy/internal/interfaces/http/middleware"
	sharedDB "github.com/orris-inc/archy/internal/shared/db"
	"github.com/orris-inc/archy/internal/shared/logger"
	"github.com/orris-inc/archy/internal/shared/services/markdown"
)

const dispatchQueueSize = 64

// Container owns every long-lived component of the server process.
type Container struct {
	redis      *redis.Client
	metrics    *metrics.Metrics
	events     *pubsub.RedisTicketEventBus
	dispatcher *discord.Dispatcher
	gateway    *discord.Gateway
	router     *httpRouter.Router
	logger     logger.Interface
}

func NewContainer(ctx context.Context, cfg *config.Config, db *gorm.DB, log logger.Interface) (*Container, error) {
	redisClient, err := initRedis(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Infow("Redis connection established successfully")

	c := &Container{
		redis:   redisClient,
		metrics: metrics.New(),
		events:  pubsub.NewRedisTicketEventBus(redisClient, log.Named("events")),
		logger:  log,
	}

	chat := discord.NewClient(cfg.Discord, log.Named("discord"))

	completer, err := llm.NewCompleter(cfg.AI)
	if err != nil {
		return nil, err
	}
	aiClient := ai.NewClient(completer, llm.DefaultOptions(cfg.AI))
	assistant := ai.NewAssistant(aiClient)

	index, err := newIndex(ctx, cfg, db, log)
	if err != nil {
		return nil, err
	}

	enforcer, err := permission.NewEnforcer(db, log.Named("permission"))
	if err != nil {
		return nil, err
	}
	if err := enforcer.SyncArchiveRoles(cfg.Archive.AllowedRoles); err != nil {
		return nil, fmt.Errorf("failed to sync archive roles: %w", err)
	}

	metadataRepo := repository.NewTicketMetadataRepository(db)
	messageRepo := repository.NewTicketMessageRepository(db)
	fileRepo := repository.NewTicketFileRepository(db)

	sessions := cache.NewSearchSessionStore(redisClient)
	closure := cache.NewClosureIntentStore(redisClient, cfg.Session.ClosureTTL())
	limiter := ratelimit.NewCommandLimiter(ratelimit.NewRedisRateLimiter(redisClient), cfg.RateLimit.CommandsPerMinute)

	messageFetcher := fetcher.New(chat, log.Named("fetcher"))

	archiveUC := archiveUsecases.NewArchiveTicketUseCase(archiveUsecases.ArchiveTicketDependencies{
		Channels:     chat,
		Notifier:     chat,
		Downloader:   chat,
		Fetcher:      messageFetcher,
		Extractor:    extractor.New(aiClient, log.Named("extractor")),
		Assistant:    assistant,
		Authorizer:   enforcer,
		MetadataRepo: metadataRepo,
		MessageRepo:  messageRepo,
		FileRepo:     fileRepo,
		TxManager:    sharedDB.NewTransactionManager(db),
		Indexer:      index,
		Publisher:    c.events,
		Closure:      closure,
		Metrics:      c.metrics,
	}, archiveUsecases.ArchiveSettings{
		ChunkSize:      cfg.Archive.ChunkSize,
		TextCharBudget: cfg.Archive.TextCharBudget,
	}, log.Named("archive"))

	searchUC := searchUsecases.NewSearchTicketsUseCase(index, metadataRepo, c.metrics, log.Named("search"))
	restoreUC := searchUsecases.NewRestoreTicketUseCase(metadataRepo, messageRepo, fileRepo, assistant, chat, chat, log.Named("restore"))

	router := bot.NewRouter(bot.RouterDependencies{
		Chat:        chat,
		Sessions:    searchUsecases.NewHandleSessionInputUseCase(sessions, messageRepo, assistant, restoreUC, chat, cfg.Session.TTL(), log.Named("session")),
		Closure:     closure,
		Limiter:     limiter,
		Archive:     archiveUC,
		Summary:     archiveUsecases.NewSummarizeChannelUseCase(messageFetcher, assistant, chat, log.Named("summary")),
		Retag:       archiveUsecases.NewRetagChannelUseCase(messageFetcher, assistant, chat, metadataRepo, index, log.Named("retag")),
		Search:      searchUsecases.NewStartSearchUseCase(searchUC, sessions, chat, cfg.Session.TTL(), log.Named("search")),
		Diagnostics: bot.NewDiagnostics(time.Now()),
	}, log.Named("bot"))

	c.dispatcher = discord.NewDispatcher(router, cfg.Discord.Workers, dispatchQueueSize, cfg.Archive.CommandTimeout(), log.Named("dispatcher"))
	c.gateway = discord.NewGateway(cfg.Discord.GatewayURL, cfg.Discord.BotToken, discord.DefaultIntents, c.dispatcher, log.Named("gateway"))

	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenIssuer, time.Duration(cfg.Auth.DefaultTTLHours)*time.Hour)
	c.router = httpRouter.NewRouter(httpRouter.RouterDependencies{
		TicketHandler: ticketHandler.NewTicketHandler(
			archiveUsecases.NewGetTicketUseCase(metadataRepo, messageRepo, log),
			archiveUsecases.NewListTicketMessagesUseCase(metadataRepo, messageRepo, log),
			archiveUsecases.NewExportTranscriptUseCase(metadataRepo, messageRepo, fileRepo, markdown.NewRenderer(), log),
			log,
		),
		SearchHandler:  searchHandler.NewSearchHandler(searchUC, log),
		AuthMiddleware: middleware.NewAuthMiddleware(jwtSvc, log),
		Metrics:        c.metrics.Handler(),
		HealthChecks: map[string]httpRouter.HealthCheck{
			"database": func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		},
	}, log.Named("http"))
	c.router.SetupRoutes()

	return c, nil
}

func initRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// newIndex returns the pgvector store when enabled, otherwise an index that
// never matches so search degrades to keywords.
func newIndex(ctx context.Context, cfg *config.Config, db *gorm.DB, log logger.Interface) (search.Index, error) {
	if !cfg.Vector.Enabled {
		log.Infow("semantic search disabled, using keyword search only")
		return vectorstore.NoopIndex{}, nil
	}

	embedder := llm.NewOpenAIEmbedder(cfg.AI.OpenAIAPIKey, cfg.AI.OpenAIBaseURL, cfg.AI.EmbeddingModel, cfg.Vector.Dimensions)
	store, err := vectorstore.NewPgVectorStore(db, embedder, cfg.Vector.Dimensions, cfg.Vector.QueryCacheSize, log.Named("vectorstore"))
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (c *Container) Close() {
	if err := c.redis.Close(); err != nil {
		c.logger.Warnw("failed to close Redis client", "error", err)
	}
}
