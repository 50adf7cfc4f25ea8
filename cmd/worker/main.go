// Command worker consumes verified-payment events and e-mails receipts.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/example/rentalhub/internal/config"
	"github.com/example/rentalhub/internal/logging"
	"github.com/example/rentalhub/internal/notify"
	"github.com/example/rentalhub/pkg/mailer"
	"github.com/example/rentalhub/pkg/messagequeue"
)

func main() {
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: no .env file loaded:", err)
		}
	}

	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}
	zapLogger, err := logging.New(appConfig.IsRelease())
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	if appConfig.RabbitMQURL == "" {
		zapLogger.Fatal("RABBITMQ_URL is required for the receipt worker")
	}

	m, err := mailer.New(mailer.Config{
		Host:   appConfig.SMTPHost,
		Port:   appConfig.SMTPPort,
		User:   appConfig.SMTPUser,
		Pass:   appConfig.SMTPPass,
		Sender: appConfig.MailSender,
	}, nil)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to configure mailer", zap.Error(err))
	}

	mq, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{URL: appConfig.RabbitMQURL}, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer mq.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zapLogger.Info("Receipt worker started", zap.String("queue", appConfig.RabbitMQQueue))
	if err := mq.Consume(ctx, appConfig.RabbitMQQueue, notify.ReceiptHandler(m, zapLogger)); err != nil {
		zapLogger.Error("Consumer stopped", zap.Error(err))
		return
	}
	zapLogger.Info("Receipt worker exiting gracefully.")
}
