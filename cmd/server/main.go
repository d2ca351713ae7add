package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sahaya_api/internal/api"
	"sahaya_api/internal/api/handler"
	"sahaya_api/internal/app/service"
	"sahaya_api/internal/common/security"
	"sahaya_api/internal/domain/repository"
	"sahaya_api/internal/platform/config"
	"sahaya_api/internal/platform/database"
	"sahaya_api/internal/platform/logger"
	"sahaya_api/internal/platform/mail"
	"sahaya_api/internal/platform/metrics"
	"sahaya_api/internal/platform/queue"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(os.Stdout, cfg.IsProduction())
	slog.SetDefault(log)
	log.Info("Configuration loaded", slog.String("env", cfg.AppEnv))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Initialize Database
	db, err := database.Connect(ctx, cfg.DBConnStr, log)
	if err != nil {
		return err
	}
	defer database.Close(db, log)
	if err := database.Migrate(ctx, db, log); err != nil {
		return err
	}

	// 3. Initialize Redis (optional event feed)
	var events service.EventPublisher = queue.NopPublisher{}
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = queue.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer queue.CloseRedis(rdb, log)
		events = queue.NewRedisPublisher(rdb, cfg.EventsChannel)
		log.Info("Redis connected", slog.String("channel", cfg.EventsChannel))
	} else {
		log.Warn("REDIS_ADDR not set, user events are not published")
	}

	// 4. Initialize Mail
	var mailer service.MailDispatcher = mail.LogDispatcher{Logger: log}
	if cfg.MailHost != "" {
		smtp, err := mail.NewSMTPDispatcher(mail.SMTPConfig{
			Host:     cfg.MailHost,
			Port:     cfg.MailPort,
			Username: cfg.MailUser,
			Password: cfg.MailPassword,
			From:     cfg.MailFrom,
		})
		if err != nil {
			return err
		}
		mailer = smtp
	} else {
		log.Warn("MAIL_HOST not set, reset mails are logged and dropped")
	}

	// 5. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	authMetrics := metrics.NewAuth(reg)

	// 6. Repositories & Services
	userRepo := repository.NewPgUserRepository(db)
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	tokens := security.NewTokenIssuer(cfg.JWTKey, cfg.JWTExp)

	authService := service.NewAuthService(userRepo, hasher, tokens, mailer, events, log, service.AuthOptions{
		FrontendURL:   cfg.FrontendURL,
		ResetTokenTTL: cfg.ResetTokenTTL,
		Metrics:       authMetrics,
	})
	userService := service.NewUserService(userRepo, hasher, events, authMetrics, log)

	// 7. Router & HTTP Server
	router := api.NewRouter(authService, userService, tokens.JWTAuth(), log, api.RouterConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Cookie:         handler.SessionCookie{Secure: cfg.IsProduction(), TTL: tokens.TTL()},
		Gatherer:       reg,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 65 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", slog.String("port", cfg.APIPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("Server stopped gracefully")
	return nil
}
