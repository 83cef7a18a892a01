package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lmt/todolist/internal/config"
	"github.com/lmt/todolist/internal/core/services"
	"github.com/lmt/todolist/internal/infrastructure/db"
	"github.com/lmt/todolist/internal/infrastructure/logger"
	transporthttp "github.com/lmt/todolist/internal/transport/http"
)

func main() {
	configPath := config.ResolvePath("config/config.yaml", "../config/config.yaml")
	cfg, err := config.Load(configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	store, err := db.Open(cfg.Database, log)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.Database.Driver, err)
	}
	log.Infow("store_ready", "driver", store.Driver)

	events := services.NewEventHub(cfg.Features.EventBuffer, log)

	app := transporthttp.NewApp(cfg, log)
	transporthttp.SetupRoutes(app, transporthttp.RouterConfig{
		Repository: store.Tasks,
		Events:     events,
		Logger:     log,
		Config:     cfg,
	})

	addr := cfg.Server.Address()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("server failed to listen on %s: %v", addr, err)
	}

	go func() {
		if err := app.Listener(ln); err != nil {
			log.Fatalf("server failed to start: %v", err)
		}
	}()

	log.Infof("server started on %s", addr)

	gracefulShutdown(app, store, log)
}

func gracefulShutdown(app *fiber.App, store *db.Store, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Errorf("server forced to shutdown: %v", err)
	}

	if err := store.Close(); err != nil {
		log.Errorf("failed to close store: %v", err)
	}

	log.Info("server exited gracefully")
}
