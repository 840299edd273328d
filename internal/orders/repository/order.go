package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	orderserrors "visadocs/internal/orders/errors"
	"visadocs/pkg/config"
	mongotx "visadocs/pkg/db/mongo"
	"visadocs/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	OrdersCollectionName = "Orders"
)

type mongoOrderRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	FindAll(ctx context.Context, filter *model.OrderFilter, limit int, offset int64) ([]*model.Order, error)
	Count(ctx context.Context, filter *model.OrderFilter) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoOrderRepository(cfg *config.Config) OrderRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoOrderRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(OrdersCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// SessionContext cannot be wrapped without breaking transaction semantics, so
// it is returned unchanged with a no-op cancel.
func (r *mongoOrderRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoOrderRepository) Create(ctx context.Context, order *model.Order) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	order.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, order)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		order.ID = oid.Hex()
	}
	return nil
}

func (r *mongoOrderRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", orderserrors.ErrInvalidID, id)
	}

	var order model.Order
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, orderserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	return &order, nil
}

func (r *mongoOrderRepository) FindAll(ctx context.Context, filter *model.OrderFilter, limit int, offset int64) ([]*model.Order, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []*model.Order
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	if orders == nil {
		orders = []*model.Order{}
	}

	return orders, nil
}

func (r *mongoOrderRepository) Count(ctx context.Context, filter *model.OrderFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}

	return count, nil
}

func buildFilter(filter *model.OrderFilter) bson.M {
	query := bson.M{}
	if filter == nil {
		return query
	}

	if filter.Service != "" {
		query["service"] = filter.Service
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Email != "" {
		query["customer_email"] = filter.Email
	}

	if filter.From != nil || filter.To != nil {
		createdAt := bson.M{}
		if filter.From != nil {
			createdAt["$gte"] = *filter.From
		}
		if filter.To != nil {
			createdAt["$lte"] = *filter.To
		}
		query["created_at"] = createdAt
	}

	return query
}

func (r *mongoOrderRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
