package main

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"storefront-service/clients"
	"storefront-service/config"
	"storefront-service/database"
	"storefront-service/notifier"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("Starting Receipt Notifier",
		zap.Int("workers", cfg.WorkerCount),
		zap.String("queue", cfg.ReceiptQueue))

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer conn.Close()

	// Ensure the queue exists before workers start consuming.
	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open a channel", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(cfg.ReceiptQueue, true, false, false, false, nil); err != nil {
		logger.Fatal("Failed to declare queue", zap.Error(err))
	}
	ch.Close()

	mailer := clients.NewMailerClient(cfg.MailerURL)

	var wg sync.WaitGroup
	for i := 0; i < cfg.WorkerCount; i++ {
		worker, err := notifier.NewWorker(i+1, conn, cfg.ReceiptQueue, db, mailer, cfg.ServerURL, logger)
		if err != nil {
			logger.Fatal("Failed to create worker", zap.Int("worker_id", i+1), zap.Error(err))
		}

		wg.Add(1)
		go worker.Start(&wg)
	}

	logger.Info("All workers started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Received shutdown signal, stopping workers")

	// Closing the connection closes every worker channel and ends the
	// consume loops.
	conn.Close()
	wg.Wait()

	logger.Info("Receipt Notifier shut down gracefully")
}

func newLogger(level string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return logger
}
