package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/taskpay-backend/internal/config"
	"github.com/ignatzorin/taskpay-backend/internal/db"
	"github.com/ignatzorin/taskpay-backend/internal/goroutine"
	httpHandlers "github.com/ignatzorin/taskpay-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/taskpay-backend/internal/http/router"
	"github.com/ignatzorin/taskpay-backend/internal/ledger"
	"github.com/ignatzorin/taskpay-backend/internal/logger"
	"github.com/ignatzorin/taskpay-backend/internal/mq"
	"github.com/ignatzorin/taskpay-backend/internal/repository"
	"github.com/ignatzorin/taskpay-backend/internal/service"
	"github.com/ignatzorin/taskpay-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	taskRepo := repository.NewTaskRepository(dbConn)
	paymentRepo := repository.NewPaymentRepository(dbConn)

	// Балансы участников расчётов.
	balances := ledger.New()
	transferService := service.NewTransferService(balances)

	// Очередь уведомлений.
	queue := mq.NewClient(cfg.AMQPUrl, cfg.QueueName)
	defer queue.Close()

	// Сервисы.
	paymentService := service.NewPaymentService(
		paymentRepo,
		taskRepo,
		transferService,
		service.RandomOutcome{SuccessRate: cfg.GatewaySuccessRate},
		service.SleepDelay(cfg.GatewayDelay),
		queue,
	)
	notificationService := service.NewNotificationService(userRepo, queue)

	// Вебсокеты и доставка уведомлений.
	hub := ws.NewHub()
	deliveryService := service.NewDeliveryService(
		ws.NewDeliveryGatewayAdapter(hub),
		service.DeliveryPolicy{
			Timeout:         cfg.DeliveryTimeout,
			MaxRetries:      cfg.DeliveryMaxRetries,
			BreakerFailures: cfg.BreakerFailures,
			BreakerCooldown: cfg.BreakerCooldown,
		},
	)

	consumer := mq.NewConsumer(cfg.AMQPUrl, cfg.QueueName, deliveryService.HandleMessage)
	goroutine.SafeGoWithContext(ctx, consumer.Run)

	// HTTP хэндлеры.
	paymentHandler := httpHandlers.NewPaymentHandler(paymentService, transferService)
	taskHandler := httpHandlers.NewTaskHandler(taskRepo)
	userHandler := httpHandlers.NewUserHandler(userRepo)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	wsHandler := httpHandlers.NewWSHandler(hub)
	healthHandler := httpHandlers.NewHealthHandler(dbConn, queue)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, paymentHandler, taskHandler, userHandler, notificationHandler, wsHandler, healthHandler)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
