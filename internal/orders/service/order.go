package service

import (
	"context"
	"crypto/rand"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"time"

	orderserrors "visadocs/internal/orders/errors"
	"visadocs/internal/orders/repository"
	"visadocs/internal/orders/validator"
	"visadocs/pkg/config"
	apperrors "visadocs/pkg/errors"
	"visadocs/pkg/kafka"
	"visadocs/pkg/model"
	"visadocs/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

const orderNumberMax = 1000000 // 6-digit suffix space

var orderNumberPrefixes = map[string]string{
	model.ServiceFlightReservation: "FLT",
	model.ServiceHotelBooking:      "HTL",
	model.ServiceTravelInsurance:   "INS",
}

// SessionRedeemer is the slice of the token broker the order service needs.
type SessionRedeemer interface {
	Redeem(token string) (json.RawMessage, error)
}

// EventPublisher publishes order events. A nil publisher disables publishing.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type OrderService interface {
	Finalize(ctx context.Context, req *model.FinalizeOrderRequest) (*model.FinalizeOrderResponse, error)
	GetByID(ctx context.Context, id string) (*model.Order, error)
	GetAll(ctx context.Context, filter *model.OrderFilter, limit int, offset int64) ([]*model.Order, int64, error)
	ExportCSV(ctx context.Context, filter *model.OrderFilter, w io.Writer) error
}

type orderService struct {
	orders    repository.OrderRepository
	customers repository.CustomerRepository
	broker    SessionRedeemer
	validator *validator.OrderValidator
	publisher EventPublisher
	cfg       *config.Config
}

func NewOrderService(
	orders repository.OrderRepository,
	customers repository.CustomerRepository,
	broker SessionRedeemer,
	v *validator.OrderValidator,
	publisher EventPublisher,
	cfg *config.Config,
) OrderService {
	return &orderService{
		orders:    orders,
		customers: customers,
		broker:    broker,
		validator: v,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Finalize redeems the payment session and persists the order. The order
// total and every booking field come from the redeemed payload; nothing in
// the request body beyond token and payment method is trusted.
func (s *orderService) Finalize(ctx context.Context, req *model.FinalizeOrderRequest) (*model.FinalizeOrderResponse, error) {
	if err := s.validator.ValidateFinalizeRequest(req); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	raw, err := s.broker.Redeem(req.Token)
	if err != nil {
		s.cfg.Log.Warn("Payment session redemption rejected", "reason", err)
		return nil, apperrors.SessionInvalid(err)
	}

	var payload model.SessionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, apperrors.Internal("Failed to decode session payload", err)
	}

	details, err := s.validator.ValidatePayload(&payload)
	if err != nil {
		return nil, apperrors.Internal("Redeemed session payload failed validation", err)
	}

	sanitizeDetails(details)

	order := &model.Order{
		Service:       payload.Service,
		Status:        model.OrderStatusPaid,
		PaymentMethod: req.PaymentMethod,
		TotalAmount:   payload.TotalAmount,
		CustomerEmail: details.Customer.Email,
		SessionID:     payload.SessionID,
		Travelers:     details.Travelers,
		Flight:        details.Flight,
		Hotel:         details.Hotel,
		Insurance:     details.Insurance,
	}

	if err := s.persistOrder(ctx, order, &details.Customer); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Order finalized",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"service", order.Service,
		"session_id", order.SessionID,
	)

	s.publishOrderCreated(ctx, order)

	return &model.FinalizeOrderResponse{
		Success: true,
		OrderID: order.ID,
	}, nil
}

// persistOrder runs the customer upsert and order insert in one transaction.
// Order number collisions abort the whole transaction via the unique index,
// so each attempt retries with a fresh number.
func (s *orderService) persistOrder(ctx context.Context, order *model.Order, customer *model.CustomerInfo) error {
	for attempt := 0; attempt <= s.cfg.OrderNumberMaxAttempts; attempt++ {
		if attempt < s.cfg.OrderNumberMaxAttempts {
			number, err := generateOrderNumber(order.Service)
			if err != nil {
				return apperrors.Internal("Failed to generate order number", err)
			}
			order.OrderNumber = number
		} else {
			// Random space exhausted or deeply unlucky. Timestamps do not collide
			// at this traffic level.
			order.OrderNumber = fallbackOrderNumber(order.Service)
		}

		err := s.orders.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			persisted, err := s.customers.UpsertByEmail(sessCtx, customer)
			if err != nil {
				return err
			}
			order.CustomerID = persisted.ID

			return s.orders.Create(sessCtx, order)
		})
		if err == nil {
			return nil
		}

		if mongo.IsDuplicateKeyError(err) {
			s.cfg.Log.Warn("Order number collision, retrying",
				"order_number", order.OrderNumber,
				"attempt", attempt+1,
			)
			continue
		}

		return apperrors.Internal("Failed to persist order", err)
	}

	return apperrors.Internal("Failed to persist order after retries", nil)
}

func (s *orderService) publishOrderCreated(ctx context.Context, order *model.Order) {
	if s.publisher == nil {
		return
	}

	event := model.OrderEvent{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		Service:       order.Service,
		CustomerEmail: order.CustomerEmail,
		TotalAmount:   order.TotalAmount,
		CreatedAt:     order.CreatedAt,
	}

	msg := kafka.NewMessage().
		WithKey(order.OrderNumber).
		WithValue(event).
		WithEventType(model.EventTypeOrderCreated).
		WithSource("checkout").
		Build()

	// Best effort. The order is already committed; a lost event only delays
	// the confirmation notification.
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Error("Failed to publish order event",
			"order_id", order.ID,
			"event_type", model.EventTypeOrderCreated,
			"error", err,
		)
	}
}

func (s *orderService) GetByID(ctx context.Context, id string) (*model.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, orderserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Order", id)
		case errors.Is(err, orderserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid order ID: %s", id))
		default:
			return nil, apperrors.Internal("Failed to fetch order", err)
		}
	}
	return order, nil
}

func (s *orderService) GetAll(ctx context.Context, filter *model.OrderFilter, limit int, offset int64) ([]*model.Order, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	type listResult struct {
		orders []*model.Order
		err    error
	}
	type countResult struct {
		count int64
		err   error
	}

	listCh := make(chan listResult, 1)
	countCh := make(chan countResult, 1)

	go func() {
		orders, err := s.orders.FindAll(ctx, filter, limit, offset)
		listCh <- listResult{orders: orders, err: err}
	}()
	go func() {
		count, err := s.orders.Count(ctx, filter)
		countCh <- countResult{count: count, err: err}
	}()

	list := <-listCh
	count := <-countCh

	if list.err != nil {
		return nil, 0, apperrors.Internal("Failed to list orders", list.err)
	}
	if count.err != nil {
		return nil, 0, apperrors.Internal("Failed to count orders", count.err)
	}

	return list.orders, count.count, nil
}

var csvHeader = []string{
	"order_number", "service", "status", "payment_method", "total_amount",
	"customer_email", "travelers", "created_at",
}

// ExportCSV streams the filtered order set as CSV. Pagination is bypassed;
// the export walks the full result in batches.
func (s *orderService) ExportCSV(ctx context.Context, filter *model.OrderFilter, w io.Writer) error {
	const batchSize = 500

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return apperrors.Internal("Failed to write CSV header", err)
	}

	var offset int64
	for {
		orders, err := s.orders.FindAll(ctx, filter, batchSize, offset)
		if err != nil {
			return apperrors.Internal("Failed to export orders", err)
		}

		for _, order := range orders {
			record := []string{
				order.OrderNumber,
				order.Service,
				order.Status,
				order.PaymentMethod,
				strconv.FormatFloat(order.TotalAmount, 'f', 2, 64),
				order.CustomerEmail,
				strconv.Itoa(len(order.Travelers)),
				order.CreatedAt.UTC().Format(time.RFC3339),
			}
			if err := writer.Write(record); err != nil {
				return apperrors.Internal("Failed to write CSV record", err)
			}
		}

		if len(orders) < batchSize {
			break
		}
		offset += batchSize
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.Internal("Failed to flush CSV output", err)
	}

	return nil
}

func sanitizeDetails(details *model.BookingDetails) {
	details.Customer.FirstName = sanitizer.NormalizeName(details.Customer.FirstName)
	details.Customer.LastName = sanitizer.NormalizeName(details.Customer.LastName)
	details.Customer.Email = sanitizer.NormalizeEmail(details.Customer.Email)
	if normalized := sanitizer.NormalizePhone(details.Customer.Phone); normalized != "" {
		details.Customer.Phone = normalized
	}

	for i := range details.Travelers {
		details.Travelers[i].FirstName = sanitizer.NormalizeName(details.Travelers[i].FirstName)
		details.Travelers[i].LastName = sanitizer.NormalizeName(details.Travelers[i].LastName)
		details.Travelers[i].Nationality = sanitizer.TrimAndNormalize(details.Travelers[i].Nationality)
	}

	if details.Flight != nil {
		details.Flight.FromCity = sanitizer.NormalizeCity(details.Flight.FromCity)
		details.Flight.ToCity = sanitizer.NormalizeCity(details.Flight.ToCity)
	}
	if details.Hotel != nil {
		details.Hotel.City = sanitizer.NormalizeCity(details.Hotel.City)
	}
}

func generateOrderNumber(service string) (string, error) {
	prefix, ok := orderNumberPrefixes[service]
	if !ok {
		return "", fmt.Errorf("no order number prefix for service %q", service)
	}

	n, err := rand.Int(rand.Reader, big.NewInt(orderNumberMax))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%06d", prefix, n.Int64()), nil
}

func fallbackOrderNumber(service string) string {
	prefix := orderNumberPrefixes[service]
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixMilli())
}
