package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kartliga/kart-league/config"
	"github.com/kartliga/kart-league/db"
	"github.com/kartliga/kart-league/handlers"
	"github.com/kartliga/kart-league/middleware"
	"github.com/kartliga/kart-league/realtime"
	"github.com/kartliga/kart-league/repositories"
	api "github.com/kartliga/kart-league/routes"
	"github.com/kartliga/kart-league/services"
	"github.com/kartliga/kart-league/storage"
	_ "github.com/lib/pq"
)

// Окно схлопывания push-уведомлений об изменении таблицы.
const standingsNotifyDelay = 300 * time.Millisecond

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Инициализация загрузчика файлов (Cloudflare R2). Хранилище
	// опционально: без него импорт работает, но исходные таблицы не
	// архивируются.
	var uploader storage.FileUploader
	if cfg.R2AccountID != "" {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("object storage not configured, import archiving disabled")
	}

	// Инициализация WebSocket Hub
	wsHub := realtime.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	notifier := realtime.NewStandingsNotifier(wsHub, standingsNotifyDelay)
	defer notifier.Flush()

	// Инициализация репозиториев
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	roundRepo := repositories.NewPostgresRoundRepository(dbConn)
	historicalRepo := repositories.NewPostgresHistoricalTotalRepository(dbConn)
	chatRepo := repositories.NewPostgresChatRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(cfg.AdminPasswordHash)
	playerService := services.NewPlayerService(playerRepo)
	tournamentService := services.NewTournamentService(
		dbConn,
		tournamentRepo,
		playerRepo,
		roundRepo,
		chatRepo,
		wsHub,
		logger,
	)
	roundService := services.NewRoundService(
		dbConn,
		tournamentRepo,
		roundRepo,
		notifier,
		logger,
	)
	standingsService := services.NewStandingsService(
		tournamentRepo,
		roundRepo,
		playerRepo,
		historicalRepo,
	)
	chatService := services.NewChatService(chatRepo, tournamentRepo, wsHub)
	importService := services.NewImportService(
		dbConn,
		tournamentRepo,
		playerRepo,
		roundRepo,
		historicalRepo,
		uploader,
		logger,
	)
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	playerHandler := handlers.NewPlayerHandler(playerService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	roundHandler := handlers.NewRoundHandler(roundService)
	standingsHandler := handlers.NewStandingsHandler(standingsService)
	chatHandler := handlers.NewChatHandler(chatService)
	importHandler := handlers.NewImportHandler(importService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, tournamentService)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		middleware.NewAuthenticator(cfg.JWTSecretKey),
		authHandler,
		playerHandler,
		tournamentHandler,
		roundHandler,
		standingsHandler,
		chatHandler,
		importHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
