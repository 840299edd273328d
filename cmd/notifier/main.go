package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"

	"visadocs/pkg/config"
	"visadocs/pkg/kafka"
	kafka_config "visadocs/pkg/kafka/config"
	kafka_middleware "visadocs/pkg/kafka/middleware"
	"visadocs/pkg/logger"
	"visadocs/pkg/model"
)

const (
	ServiceName   = "notifier"
	consumerGroup = "notifier"
)

func main() {
	cfg := config.Load(ServiceName)

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.OrderEventsTopic,
		consumerGroup,
		cfg.OrderEventsDLQTopic,
		handleOrderEvent(cfg.Log),
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))

	cfg.Log.Info("Starting notifier", "topic", cfg.OrderEventsTopic, "group", consumerGroup)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}

	cfg.Log.Info("Notifier stopped")
}

// handleOrderEvent sends the order confirmation. Actual email delivery sits
// behind a provider we have not picked yet, so the side effect is a log line
// with everything the template will need.
func handleOrderEvent(log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		if msg.GetEventType() != model.EventTypeOrderCreated {
			log.Warn("Skipping unexpected event type", "event_type", msg.GetEventType())
			return nil
		}

		var event model.OrderEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return err
		}

		log.Info("Order confirmation sent",
			"order_number", event.OrderNumber,
			"service", event.Service,
			"customer_email", event.CustomerEmail,
			"total_amount", event.TotalAmount,
		)
		return nil
	}
}
