package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartfarm-backend/config"
	"smartfarm-backend/internal/api"
	"smartfarm-backend/internal/db"
	"smartfarm-backend/internal/model"
	"smartfarm-backend/internal/notification"
	"smartfarm-backend/internal/scheduler"
	"smartfarm-backend/internal/sensor"

	"github.com/SherClockHolmes/webpush-go"
)

func main() {
	logger := log.New(os.Stdout, "smartfarm ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	// Push notifications are optional; the scheduler runs fine without them.
	var webpushOptions *webpush.Options
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	} else {
		logger.Println("VAPID keys not configured; push notifications disabled")
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var workerPool *notification.WorkerPool
	if webpushOptions != nil {
		workerPool = notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions)
		workerPool.Start(ctx)
	}

	// Every dispatched command is appended to the durable event log and, when
	// push is configured, announced to the device's subscribers.
	store := scheduler.NewStore(func(deviceID string, cmd scheduler.Command) {
		event := model.PumpEvent{
			DeviceID:     deviceID,
			Command:      cmd.Command,
			Mode:         cmd.Mode,
			ScheduleName: cmd.ScheduleName,
			Source:       cmd.Source,
			CreatedAt:    cmd.Timestamp,
		}
		if err := gormDB.Create(&event).Error; err != nil {
			logger.Printf("failed to log pump event for %s: %v", deviceID, err)
		}
		if workerPool != nil {
			workerPool.Dispatch(notification.Job{DeviceID: deviceID, Command: cmd})
		}
	})

	monitors := scheduler.NewMonitorSet(store, cfg.Scheduler.Tick)
	sensors := sensor.NewStore(cfg.Sensor.HistorySize, cfg.Sensor.Timeout)

	router := api.NewRouter(store, monitors, sensors, gormDB, webpushOptions, api.RouterConfig{
		RateLimitPerSec: cfg.Server.RateLimitPerSec,
		RateLimitBurst:  cfg.Server.RateLimitBurst,
		CacheTTL:        time.Duration(cfg.Server.CacheTTLSeconds) * time.Second,
	})
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	// Drain running pumps to OFF before the HTTP server stops, so a device
	// polling during shutdown still picks up its OFF command.
	monitors.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
