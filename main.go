package main

import (
	"context"
	"fmt"

	"github.com/MicahParks/keyfunc"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"todo-api/api"
	"todo-api/config"
	"todo-api/storage"
	"todo-api/tasks"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Debug("loaded .env")
	}

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	log.SetLevel(cfg.Level())

	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Warnf("tracer shutdown: %v", err)
		}
	}()

	fileStore, err := storage.New(cfg.DataFile)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer fileStore.Close()

	var store tasks.Store = fileStore
	if cfg.Redis.Addr != "" {
		rc := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		store = storage.NewCache(fileStore, rc, cfg.Redis.CacheTTL.Duration)
		log.WithField("addr", cfg.Redis.Addr).Info("task cache enabled")
	}

	logger := log.New()
	logger.SetLevel(cfg.Level())
	repo := tasks.New(store, logger)

	auth, err := buildAuth(cfg.Auth)
	if err != nil {
		log.Fatalf("auth: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.JSONSerializer = api.SonicSerializer{}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echoprometheus.NewMiddleware("todo_api"))
	e.Use(api.GzipRequestMiddleware())
	e.GET("/metrics", echoprometheus.NewHandler())

	api.Register(e, repo, auth, logger)

	e.Logger.Fatal(e.Start(cfg.ListenAddr))
}

func buildAuth(cfg config.AuthConfig) (api.Authenticator, error) {
	switch cfg.Mode {
	case config.AuthModeNone:
		return api.NoneAuth{}, nil
	case config.AuthModeSharedSecret:
		return api.NewSharedSecretAuth([]byte(cfg.Secret), cfg.Audience, ""), nil
	case config.AuthModeJWKS:
		jwksURL := fmt.Sprintf("https://%s/.well-known/jwks.json", cfg.Domain)
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
		if err != nil {
			return nil, fmt.Errorf("jwks: %w", err)
		}
		issuer := "https://" + cfg.Domain + "/"
		return api.NewJWKSAuth(jwks, cfg.Audience, issuer, cfg.JWKSCacheTTL.Duration), nil
	default:
		return nil, fmt.Errorf("unsupported auth mode: %q", cfg.Mode)
	}
}
