package main

import (
	orderhandler "visadocs/internal/orders/handler"
	orderrepository "visadocs/internal/orders/repository"
	orderservice "visadocs/internal/orders/service"
	ordervalidator "visadocs/internal/orders/validator"
	"visadocs/internal/sessions/broker"
	sessionhandler "visadocs/internal/sessions/handler"
	sessionservice "visadocs/internal/sessions/service"
	sessionvalidator "visadocs/internal/sessions/validator"
	"visadocs/pkg/app"
	"visadocs/pkg/config"
	"visadocs/pkg/contracts"
	"visadocs/pkg/kafka"
	kafka_config "visadocs/pkg/kafka/config"
	kafka_middleware "visadocs/pkg/kafka/middleware"

	"github.com/julienschmidt/httprouter"
)

const ServiceName = "checkout"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting checkout service")

	sessionBroker := broker.New(cfg.SessionTTL, cfg.SessionSweepInterval, cfg.Log)
	producer := initProducer(cfg)
	defer closeProducer(cfg, producer)

	api := buildAPI(cfg, sessionBroker, producer)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(api, sessionBroker)
	serverApp.Run()
}

func buildAPI(cfg *config.Config, sessionBroker *broker.Broker, producer *kafka.Producer) contracts.Handler {
	sessionSvc := sessionservice.NewSessionService(
		sessionBroker,
		sessionvalidator.NewSessionValidator(cfg.Log),
		cfg,
	)

	orderRepo := orderrepository.NewMongoOrderRepository(cfg)
	customerRepo := orderrepository.NewMongoCustomerRepository(cfg)

	var publisher orderservice.EventPublisher
	if producer != nil {
		publisher = producer
	}

	orderSvc := orderservice.NewOrderService(
		orderRepo,
		customerRepo,
		sessionBroker,
		ordervalidator.NewOrderValidator(cfg.Log),
		publisher,
		cfg,
	)

	cfg.Log.Info("Checkout services initialized", "database", cfg.MongoDatabaseName)

	return &apiHandler{
		sessions: sessionhandler.NewSessionHandler(sessionSvc, cfg.Log),
		orders:   orderhandler.NewOrderHandler(orderSvc, cfg.AdminAPIKey, cfg.Log),
	}
}

// apiHandler registers all checkout routes on one router.
type apiHandler struct {
	sessions *sessionhandler.SessionHandler
	orders   *orderhandler.OrderHandler
}

func (h *apiHandler) RegisterRoutes(router *httprouter.Router) {
	h.sessions.RegisterRoutes(router)
	h.orders.RegisterRoutes(router)
}

// initProducer wires the order events producer. Kafka being down must not
// block checkout, so failures degrade to nil and events are skipped.
func initProducer(cfg *config.Config) *kafka.Producer {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Error("Invalid Kafka configuration, order events disabled", "error", err)
		return nil
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.OrderEventsTopic, cfg.OrderEventsDLQTopic)
	if err != nil {
		cfg.Log.Error("Failed to create Kafka producer, order events disabled", "error", err)
		return nil
	}

	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	cfg.Log.Info("Order events producer initialized", "topic", cfg.OrderEventsTopic)
	return producer
}

func closeProducer(cfg *config.Config, producer *kafka.Producer) {
	if producer == nil {
		return
	}
	if err := producer.Close(); err != nil {
		cfg.Log.Error("Failed to close Kafka producer", "error", err)
	}
}
