package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loanlens-backend/internal/api"
	"loanlens-backend/internal/common/config"
	"loanlens-backend/internal/common/database"
	"loanlens-backend/internal/common/logger"
	"loanlens-backend/internal/common/observability"
	"loanlens-backend/internal/conversation"
	"loanlens-backend/internal/store"
	"loanlens-backend/internal/uploads"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting loanlens backend", map[string]interface{}{
		"environment": cfg.App.Environment,
		"port":        cfg.Server.Port,
	})

	redisClient, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		log.Error("failed to create redis client", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer redisClient.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx); err != nil {
		pingCancel()
		log.Error("redis unreachable", map[string]interface{}{
			"address": cfg.Database.Redis.Address,
			"error":   err.Error(),
		})
		os.Exit(1)
	}
	pingCancel()

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	sessions := store.NewRedisStore(redisClient.Client)
	engine := conversation.NewEngine(cfg.Underwriting, log)
	svc := conversation.NewService(sessions, engine, obs, log)
	validator := uploads.NewValidator(cfg.Uploads)
	handler := api.NewHandler(svc, validator, log)
	router := api.NewRouter(handler, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", map[string]interface{}{"addr": server.Addr})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error("http server failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	case sig := <-quit:
		log.Info("shutdown signal received", map[string]interface{}{"signal": sig.String()})
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	log.Info("server stopped", nil)
}
