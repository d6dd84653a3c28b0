// @title                       Tutor API
// @version                     1.0
// @description                 Multi-tenant tutoring service: accounts, private conversations and level-aware AI guidance.
// @BasePath                    /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/turtlecode/tutor-api/internal/api"
	"github.com/turtlecode/tutor-api/internal/api/handler"
	"github.com/turtlecode/tutor-api/internal/api/metrics"
	"github.com/turtlecode/tutor-api/internal/core/ports"
	"github.com/turtlecode/tutor-api/internal/core/prompts"
	"github.com/turtlecode/tutor-api/internal/core/service"
	"github.com/turtlecode/tutor-api/internal/infrastructure/config"
	mongostore "github.com/turtlecode/tutor-api/internal/infrastructure/db/mongo"
	redisstore "github.com/turtlecode/tutor-api/internal/infrastructure/db/redis"
	"github.com/turtlecode/tutor-api/internal/infrastructure/db/sqlite"
	"github.com/turtlecode/tutor-api/internal/infrastructure/llm"
	"github.com/turtlecode/tutor-api/internal/infrastructure/memory"
	"github.com/turtlecode/tutor-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tutor-api: %v\n", err)
		os.Exit(1)
	}
}

// storage bundles the repositories of whichever backend is configured.
type storage struct {
	users         ports.AuthRepository
	conversations ports.ConversationRepository
	ping          handler.Pinger
	close         func(context.Context) error
}

// pingFunc adapts a function to handler.Pinger.
type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "tutor-api",
	})

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.close(closeCtx); err != nil {
			log.Error().Err(err).Msg("close storage")
		}
	}()

	sessions, limiter, health, closeRedis, err := openSessionBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRedis()

	provider, err := newProvider(ctx, cfg, log)
	if err != nil {
		return err
	}

	authService := service.NewAuthService(store.users, limiter, cfg.JWTSecret, cfg.TokenTTL, log.With().Str("component", "auth").Logger())
	conversationService := service.NewConversationService(store.conversations, log.With().Str("component", "conversations").Logger())
	guidanceService := service.NewGuidanceService(
		prompts.Default(),
		metrics.InstrumentProvider(provider),
		sessions,
		conversationService,
		cfg.Guidance.HistoryLimit,
		log.With().Str("component", "guidance").Logger(),
	)

	deps := []handler.Dependency{{Name: cfg.Storage.Driver, Pinger: store.ping}}
	deps = append(deps, health...)

	e := api.NewRouter(api.Dependencies{
		Auth:              authService,
		Conversations:     conversationService,
		Guidance:          guidanceService,
		Health:            deps,
		CORSOrigins:       cfg.CORSOrigins,
		TrustProxyHeaders: cfg.TrustProxyHeaders,
		Logger:            log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo storage ready")
		return &storage{
			users:         mongostore.NewAuthRepository(db),
			conversations: mongostore.NewConversationRepository(db),
			ping:          pingFunc(func(ctx context.Context) error { return mongostore.Ping(ctx, db) }),
			close:         client.Disconnect,
		}, nil
	default:
		st, err := sqlite.New(ctx, cfg.Storage.DatabasePath, log.With().Str("component", "sqlite").Logger())
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.Storage.DatabasePath).Msg("sqlite storage ready")
		return &storage{
			users:         sqlite.NewAuthRepository(st),
			conversations: sqlite.NewConversationRepository(st),
			ping:          st,
			close:         func(context.Context) error { return st.Close() },
		}, nil
	}
}

// openSessionBackend picks Redis when an address is configured and falls back
// to process memory otherwise.
func openSessionBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.SessionStore, ports.LoginLimiter, []handler.Dependency, func(), error) {
	if cfg.Redis.Addr == "" {
		log.Info().Msg("redis not configured, keeping sessions and login lockouts in memory")
		return memory.NewSessionStore(cfg.Guidance.SessionTTL),
			memory.NewLoginLimiter(cfg.Login.MaxFailures, cfg.Login.Window, cfg.Login.Block),
			nil, func() {}, nil
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return nil, nil, nil, nil, err
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("redis session store ready")

	sessions := redisstore.NewSessionStore(rdb, cfg.Guidance.SessionTTL)
	limiter := redisstore.NewLoginLimiter(rdb, cfg.Login.MaxFailures, cfg.Login.Window, cfg.Login.Block)
	closeFn := func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("close redis")
		}
	}
	return sessions, limiter, []handler.Dependency{{Name: "redis", Pinger: sessions}}, closeFn, nil
}

func newProvider(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.CompletionProvider, error) {
	providerLog := log.With().Str("component", "llm").Str("provider", cfg.LLM.Provider).Logger()

	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		log.Info().Bool("api_key_set", cfg.LLM.GeminiAPIKey != "").Str("model", cfg.LLM.GeminiModel).Msg("completion provider: gemini")
		client, err := llm.NewGeminiClient(ctx, llm.GeminiConfig{
			APIKey: cfg.LLM.GeminiAPIKey,
			Model:  cfg.LLM.GeminiModel,
		}, providerLog)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		log.Info().Bool("api_key_set", cfg.LLM.GroqAPIKey != "").Str("model", cfg.LLM.Model).Msg("completion provider: openai-compatible")
		return llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:  cfg.LLM.GroqAPIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout,
		}, providerLog), nil
	}
}
