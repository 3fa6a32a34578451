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

	redisClient "github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/xavier7x/VentasDigitalesWs/internal/api/handlers"
	"github.com/xavier7x/VentasDigitalesWs/internal/config"
	"github.com/xavier7x/VentasDigitalesWs/internal/domain"
	"github.com/xavier7x/VentasDigitalesWs/internal/infrastructure/redis"
	"github.com/xavier7x/VentasDigitalesWs/internal/services"
	"github.com/xavier7x/VentasDigitalesWs/pkg/logger"
)

func main() {
	log := logger.New()
	log.Info("Starting Ventas WebSocket relay")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	log.Info("Configuration loaded", "config", cfg.GetConfigString())

	// Initialize Redis (cluster relay). Optional: single-worker deploys run
	// without it and every event stays local.
	var rdb *redisClient.Client
	var publisher domain.EventPublisher
	if cfg.Redis.Enabled {
		rdb = redisClient.NewClient(&redisClient.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		// Test Redis connection
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			cancel()
			log.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		cancel()
		log.Info("Connected to Redis", "address", cfg.Redis.Address)

		publisher = redis.NewRelayPublisher(rdb, cfg.Redis.Channel)
	}

	// Initialize the broadcast core
	inactivity := time.Duration(0)
	if cfg.Lifecycle.InactivityEnabled {
		inactivity = cfg.Lifecycle.InactivityTimeout
	}
	core := services.NewCore(services.CoreOptions{
		InstanceID:        cfg.Instance.ID,
		RecoveryGrace:     cfg.Lifecycle.RecoveryGrace,
		InactivityTimeout: inactivity,
	}, publisher, log)

	// Start the relay subscriber
	subscriberCtx, stopSubscriber := context.WithCancel(context.Background())
	defer stopSubscriber()
	if cfg.Redis.Enabled {
		subscriber := redis.NewRelaySubscriber(rdb, cfg.Redis.Channel, log)
		go func() {
			if err := subscriber.SubscribeToRoomEvents(subscriberCtx, core.HandleRemoteEvent); err != nil &&
				!errors.Is(err, context.Canceled) {
				log.Error("Relay subscriber exited", "error", err)
			}
		}()
	}

	// Start the census reporter
	var census *services.CensusReporter
	if cfg.Census.Enabled {
		census = services.NewCensusReporter(core, cfg.Census.Interval, log)
		if err := census.Start(); err != nil {
			log.Error("Failed to start census reporter", "error", err)
			os.Exit(1)
		}
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: `{"time":"${time_rfc3339}","id":"${id}","remote_ip":"${remote_ip}","host":"${host}","method":"${method}","uri":"${uri}","status":${status},"error":"${error}","latency_human":"${latency_human}"}` + "\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.OPTIONS},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
		},
	}))

	// Initialize handlers
	relayHandler := handlers.NewRelayHandler(core, log)
	wsHandlers := handlers.NewWebSocketHandlers(core, log)

	// Routes
	e.GET("/ws", wsHandlers.HandleConnection)
	e.GET("/health", relayHandler.Health)

	api := e.Group("/api/v1")
	api.GET("/rooms", relayHandler.GetRooms)

	// Start server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("Starting relay server", "address", serverAddr, "instance_id", cfg.Instance.ID)

	go func() {
		if err := e.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down relay...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if census != nil {
		if err := census.Stop(); err != nil {
			log.Error("Failed to stop census reporter", "error", err)
		}
	}

	stopSubscriber()

	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error("Failed to close Redis connection", "error", err)
		}
	}

	log.Info("Relay stopped")
}
