// @title           Newsproof Validation API
// @version         1.0
// @description     Session-authenticated text validation service.
// @BasePath        /
// @securityDefinitions.apikey SessionCookie
// @in              cookie
// @name            sid
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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/newsproof/validation-api/internal/api"
	"github.com/newsproof/validation-api/internal/api/handler"
	"github.com/newsproof/validation-api/internal/api/sessioncookie"
	"github.com/newsproof/validation-api/internal/core/service"
	"github.com/newsproof/validation-api/internal/infrastructure/db/redis"
	"github.com/newsproof/validation-api/internal/infrastructure/db/sqlite"
	"github.com/newsproof/validation-api/internal/infrastructure/gateway"
	"github.com/newsproof/validation-api/internal/infrastructure/throttle"
	"github.com/newsproof/validation-api/internal/infrastructure/worker"
	"github.com/newsproof/validation-api/internal/pkg/config"
	"github.com/newsproof/validation-api/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "validation-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, err := sqlite.Open(ctx, cfg.Store.Path, log)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	users := sqlite.NewUserRepository(store)
	sessionRepo := sqlite.NewSessionRepository(store)
	validations := sqlite.NewValidationRepository(store)

	readiness := map[string]handler.PingFunc{"sqlite": store.Ping}

	var loginThrottle service.LoginThrottle
	if cfg.Redis.Addr != "" {
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer client.Close()

		loginThrottle = redis.NewLoginThrottle(client, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow)
		readiness["redis"] = redis.Pinger(client)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("login throttle backed by redis")
	} else {
		loginThrottle = throttle.NewLocal(cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow)
		log.Info().Msg("login throttle kept in process")
	}

	accounts := service.NewAccountService(users, loginThrottle, cfg.Auth.BcryptCost, log)
	sessions := service.NewSessionService(sessionRepo, log)

	recorder := worker.NewRecorder(cfg.Recorder.Workers, validations, log)
	recorder.Start()

	engine := gateway.NewClient(gateway.Config{
		URL:     cfg.Gateway.URL,
		Timeout: cfg.Gateway.Timeout,
		Retries: cfg.Gateway.Retries,
	}, log)
	validation := service.NewValidationService(engine, recorder, log)

	sweeperCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go worker.NewSweeper(sessions, cfg.Session.SweepInterval, log).Run(sweeperCtx)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	e := api.NewRouter(api.Deps{
		Accounts:    accounts,
		Sessions:    sessions,
		Validation:  validation,
		Cookie:      sessioncookie.Policy{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure},
		SessionTTL:  cfg.Session.TTL,
		CORSOrigins: cfg.CORSOrigins,
		Readiness:   readiness,
		Registry:    registry,
		Log:         log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Gateway.Timeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case err := <-serveErr:
		if err != nil {
			runErr = fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	stopSweeper()
	if err := recorder.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("validation recorder did not drain")
	}

	if runErr == nil {
		log.Info().Msg("server stopped cleanly")
	}
	return runErr
}
