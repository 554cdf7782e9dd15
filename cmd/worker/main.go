package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightdesk/config"
	"github.com/Domenick1991/flightdesk/internal/email"
	"github.com/Domenick1991/flightdesk/internal/kafka"
	"github.com/Domenick1991/flightdesk/internal/logger"
	"github.com/Domenick1991/flightdesk/internal/rabbitmq"
	"github.com/Domenick1991/flightdesk/internal/worker"
)

type consumer interface {
	worker.Consumer
	Close() error
}

type publisher interface {
	worker.Publisher
	Close() error
}

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg := logger.Init(cfg.Log.Level, cfg.Log.Format).With("component", "worker")

	audit, err := logger.OpenAudit(cfg.Log.AuditFile)
	if err != nil {
		log.Fatalf("open audit log: %v", err)
	}
	defer audit.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		events  consumer
		records publisher
	)
	switch cfg.Events.Broker {
	case config.BrokerKafka:
		events = kafka.NewConsumer(cfg.Events.Brokers, cfg.Events.GroupID, cfg.Events.ReservationTopic)
		records = kafka.NewProducer(cfg.Events.Brokers)
	case config.BrokerRabbitMQ:
		events = rabbitmq.NewConsumer(cfg.Events.AMQPURL, cfg.Events.ReservationTopic)
		records = rabbitmq.NewPublisher(cfg.Events.AMQPURL)
	default:
		log.Fatalf("worker needs an events broker, got %q", cfg.Events.Broker)
	}
	defer events.Close()
	defer records.Close()

	notifier := worker.NewNotifier(email.NewSender(lg),
		worker.WithNotifications(records, cfg.Events.NotificationsTopic),
		worker.WithAudit(audit),
		worker.WithLogger(lg),
	)

	lg.Info("worker started", "broker", cfg.Events.Broker, "topic", cfg.Events.ReservationTopic)
	retry := time.Duration(cfg.Worker.ConsumerRetrySeconds) * time.Second
	if err := notifier.Run(ctx, events, retry); err != nil {
		lg.Error("worker stopped", "error", err)
		os.Exit(1)
	}
	lg.Info("worker stopped")
}
