package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	cognitopkg "github.com/jaekwang-park/vici/internal/cognito"
	"github.com/jaekwang-park/vici/internal/communication"
	"github.com/jaekwang-park/vici/internal/config"
	"github.com/jaekwang-park/vici/internal/events"
	vicihttp "github.com/jaekwang-park/vici/internal/http"
	"github.com/jaekwang-park/vici/internal/http/handler"
	"github.com/jaekwang-park/vici/internal/insight"
	"github.com/jaekwang-park/vici/internal/mailer"
	"github.com/jaekwang-park/vici/internal/middleware"
	"github.com/jaekwang-park/vici/internal/model"
	"github.com/jaekwang-park/vici/internal/repository"
	"github.com/jaekwang-park/vici/internal/service"
)

// userResolverAdapter adapts a user repository to the middleware.UserResolver interface.
type userResolverAdapter struct {
	repo interface {
		GetByCognitoSub(ctx context.Context, cognitoSub string) (model.User, error)
	}
}

func (a *userResolverAdapter) ResolveUserID(ctx context.Context, cognitoSub string) (string, error) {
	user, err := a.repo.GetByCognitoSub(ctx, cognitoSub)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", middleware.ErrUserNotFound
		}
		return "", fmt.Errorf("failed to resolve user: %w", err)
	}
	return user.ID, nil
}

func main() {
	// Initial logger at info level; reconfigured after config load
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(context.Background()); err != nil {
		logger.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.ParseLogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("config loaded",
		"env", cfg.AppEnv,
		"port", cfg.ServerPort,
		"auth_dev_mode", cfg.AuthDevMode,
		"log_level", cfg.LogLevel,
		"redis", cfg.Redis.Enabled(),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database connection
	db, err := repository.NewDB(cfg.DB.DSN())
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("database connected")

	if cfg.DB.Migrate {
		if err := repository.Migrate(ctx, db); err != nil {
			return err
		}
		logger.Info("database schema applied")
	}

	// Repositories
	taskRepo := repository.NewPostgresTask(db)
	notificationRepo := repository.NewPostgresNotification(db)
	userRepo := repository.NewPostgresUser(db)

	healthChecks := []handler.Check{{Name: "postgres", Ping: db.PingContext}}

	// Push-event bus. Without Redis, mutations are not pushed and the
	// event stream answers 503.
	var (
		bus *events.Bus
		pub events.Publisher
		sub events.Subscriber
	)
	if cfg.Redis.Enabled() {
		bus, err = events.NewBus(ctx, &redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			return err
		}
		defer bus.Close()
		pub, sub = bus, bus
		healthChecks = append(healthChecks, handler.Check{Name: "redis", Ping: bus.Ping})
		logger.Info("event bus connected", "addr", cfg.Redis.Addr)
	} else {
		logger.Warn("event bus disabled: REDIS_ADDR not set")
	}

	// Insight generator
	engineOpts := []insight.Option{insight.WithLogger(logger)}
	if cfg.Anthropic.APIKey != "" {
		claude, err := insight.NewClaude(cfg.Anthropic.APIKey, cfg.Anthropic.Model)
		if err != nil {
			return err
		}
		engineOpts = append(engineOpts, insight.WithCompleter(claude))
		logger.Info("anthropic insights enabled")
	}
	engine := insight.NewEngine(engineOpts...)

	// Communication sources
	gmail, err := communication.NewGmail(ctx, communication.GmailConfig{
		ClientID:     cfg.Gmail.ClientID,
		ClientSecret: cfg.Gmail.ClientSecret,
		RefreshToken: cfg.Gmail.RefreshToken,
	})
	if err != nil {
		return err
	}
	comms := communication.NewManager(logger, gmail, communication.Discord(cfg.Discord.BotToken), communication.Messenger())

	mail := mailer.New(mailer.Config{
		APIKey:      cfg.Mail.SendGridAPIKey,
		FromName:    cfg.Mail.FromName,
		FromAddress: cfg.Mail.FromAddress,
		ToAddress:   cfg.Mail.ToAddress,
	}, logger)

	// Services
	taskSvc := service.NewTaskService(taskRepo, pub, logger)
	notificationSvc := service.NewNotificationService(notificationRepo, taskRepo, engine, pub, mail, logger)
	commSvc := service.NewCommunicationService(comms, pub, logger)

	// Cognito client + Auth service
	var authSvc *service.AuthService
	if cfg.Cognito.AppClientID != "" {
		cognitoClient, err := cognitopkg.NewAWSClient(
			ctx,
			cfg.Cognito.Region,
			cfg.Cognito.AppClientID,
			cfg.Cognito.AppClientSecret,
		)
		if err != nil {
			return err
		}
		authSvc = service.NewAuthService(cognitoClient, userRepo)
		logger.Info("cognito client initialized", "region", cfg.Cognito.Region)
	} else {
		logger.Warn("cognito client not initialized: COGNITO_APP_CLIENT_ID not set")
	}

	// Auth middleware
	authCfg := middleware.AuthConfig{
		DevMode: cfg.AuthDevMode,
	}
	if !cfg.AuthDevMode {
		jwksURL := middleware.CognitoJWKSURL(cfg.Cognito.Region, cfg.Cognito.UserPoolID)
		authCfg.JWKSClient = middleware.NewJWKSClient(jwksURL)
		authCfg.Issuer = middleware.CognitoIssuer(cfg.Cognito.Region, cfg.Cognito.UserPoolID)
		authCfg.AppClientID = cfg.Cognito.AppClientID
		authCfg.UserResolver = &userResolverAdapter{repo: userRepo}
	}
	auth, err := middleware.NewAuth(authCfg)
	if err != nil {
		return fmt.Errorf("failed to create auth middleware: %w", err)
	}

	// HTTP Server
	srv := vicihttp.NewServer(cfg.ServerPort, logger, vicihttp.Services{
		Tasks:          taskSvc,
		Stats:          service.NewStatsService(taskRepo),
		Insights:       service.NewInsightService(taskRepo, engine),
		Notifications:  notificationSvc,
		Communications: commSvc,
		Auth:           authSvc,
		Events:         sub,
		Heartbeat:      cfg.Jobs.EventHeartbeat,
		HealthChecks:   healthChecks,
	}, auth)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	// Background jobs reach the users with an open event stream.
	jobsDone := make(chan struct{})
	if bus != nil {
		go func() {
			defer close(jobsDone)
			runJobs(ctx, logger, bus,
				job{
					name:     "accountability_check",
					interval: cfg.Jobs.AccountabilityInterval,
					fn: func(ctx context.Context, userID string) error {
						_, err := notificationSvc.AccountabilityCheck(ctx, userID)
						return err
					},
				},
				job{
					name:     "communication_sync",
					interval: cfg.Jobs.CommunicationSyncInterval,
					fn: func(ctx context.Context, userID string) error {
						commSvc.Sync(ctx, userID)
						return nil
					},
				},
			)
		}()
	} else {
		close(jobsDone)
	}

	logger.Info("server starting", "port", cfg.ServerPort)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-jobsDone

	logger.Info("server stopped gracefully")
	return nil
}
