package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/navipay/port-requests/internal/config"
	"github.com/navipay/port-requests/internal/database"
	"github.com/navipay/port-requests/internal/handler"
	"github.com/navipay/port-requests/internal/middleware"
	"github.com/navipay/port-requests/internal/repository"
	"github.com/navipay/port-requests/internal/service"
	"github.com/navipay/port-requests/internal/storage"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := database.RunMigrations(cfg.DatabaseURL()); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		if err := database.SeedData(context.Background(), pool); err != nil {
			log.Fatal().Err(err).Msg("failed to seed data")
		}
	}

	docs, err := newDocumentStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up document storage")
	}

	router := gin.New()
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(gin.Recovery())

	healthHandler := handler.NewHealthHandler(pool)
	router.GET("/health", healthHandler.Health)

	handler.SetupSwagger(router)
	setupAPIRoutes(router, pool, docs, cfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

func newDocumentStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.StorageBackend == "memory" {
		log.Warn().Msg("using in-memory document storage; uploads do not survive restarts")
		return storage.NewMemoryStore(), nil
	}
	return storage.NewMinIOStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
}

func setupAPIRoutes(router *gin.Engine, pool *pgxpool.Pool, docs storage.Store, cfg *config.Config) {
	requestRepo := repository.NewRequestRepository(pool)
	tariffRepo := repository.NewTariffRepository(pool)
	rateRepo := repository.NewRateConfigRepository(pool)
	lineRepo := repository.NewShippingLineRepository(pool)
	actorRepo := repository.NewActorRepository(pool)

	requestService := service.NewRequestService(requestRepo, tariffRepo, rateRepo, lineRepo, docs)
	attachmentService := service.NewAttachmentService(requestRepo, docs)
	catalogService := service.NewCatalogService(tariffRepo, rateRepo, lineRepo)

	requestHandler := handler.NewRequestHandler(requestService)
	attachmentHandler := handler.NewAttachmentHandler(attachmentService)
	catalogHandler := handler.NewCatalogHandler(catalogService)

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTSecret, actorRepo))
	{
		api.POST("/requests", requestHandler.Create)
		api.GET("/requests", requestHandler.List)
		api.GET("/requests/stats", requestHandler.Stats)
		api.GET("/requests/:id", requestHandler.Get)
		api.PUT("/requests/:id", requestHandler.Update)
		api.PATCH("/requests/:id/status", requestHandler.ChangeState)
		api.DELETE("/requests/:id", requestHandler.Delete)

		api.POST("/requests/:id/documents/:kind", attachmentHandler.Upload)
		api.GET("/requests/:id/documents/:kind", attachmentHandler.Download)
		api.DELETE("/requests/:id/documents/:kind", attachmentHandler.Delete)

		api.GET("/shipping-lines", catalogHandler.ListShippingLines)
		api.GET("/tariffs", catalogHandler.ListTariffs)
		api.GET("/rate-config", catalogHandler.GetRateConfig)

		admin := api.Group("")
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("/tariffs", catalogHandler.CreateTariff)
			admin.PUT("/tariffs/:id", catalogHandler.UpdateTariff)
			admin.PUT("/rate-config", catalogHandler.UpdateRateConfig)
		}
	}
}
