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

	"product-catalog/internal/config"
	"product-catalog/internal/database"
	handlerhttp "product-catalog/internal/handler/http"
	middlewarehttp "product-catalog/internal/middleware/http"
	"product-catalog/internal/repository"
	"product-catalog/internal/service"
	"product-catalog/internal/storage"
	"product-catalog/internal/telemetry"
	"product-catalog/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.New(os.Getenv("DEBUG_LOG") != "")

	cfg, err := config.Load(log)
	if err != nil {
		log.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.DebugLog {
		log = logger.New(true)
	}

	shutdownTracer, err := telemetry.Init(ctx, log, cfg)
	if err != nil {
		log.Error("Failed to initialize telemetry", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer shutdownTracer()

	db, err := database.Connect(ctx, log, cfg)
	if err != nil {
		log.Error("Failed to connect to MongoDB", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := db.Client.Disconnect(context.Background()); err != nil {
			log.Warn("Mongo disconnect", slog.String("error", err.Error()))
		}
	}()

	files, err := storage.NewDiskStore(cfg.UploadDir, cfg.UploadMaxBytes)
	if err != nil {
		log.Error("Failed to prepare upload directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Wiring
	productRepo := repository.NewProductRepository(db.Database)
	productService := service.NewProductService(productRepo, files, cfg.DefaultImageURL, cfg.ListLimit)
	productHandler := handlerhttp.NewProductHandler(productService, cfg.UploadMaxBytes)
	healthHandler := handlerhttp.NewHealthHandler(service.NewHealthService(db.Client))

	router := handlerhttp.NewRouter(productHandler, healthHandler, handlerhttp.RouterConfig{
		UploadDir:      files.Dir(),
		AllowedOrigins: cfg.AllowedOrigins,
		Middlewares:    []func(http.Handler) http.Handler{middlewarehttp.Trace()},
	})

	server := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server running", slog.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn("Server shutdown", slog.String("error", err.Error()))
		}
	}
}
