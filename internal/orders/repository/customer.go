package repository

import (
	"context"
	"fmt"
	"time"

	"visadocs/pkg/config"
	"visadocs/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CustomersCollectionName = "Customers"
)

type mongoCustomerRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type CustomerRepository interface {
	UpsertByEmail(ctx context.Context, info *model.CustomerInfo) (*model.Customer, error)
}

func NewMongoCustomerRepository(cfg *config.Config) CustomerRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCustomerRepository{
		cfg:        cfg,
		collection: db.Collection(CustomersCollectionName),
	}
}

// UpsertByEmail creates or refreshes the customer document keyed by email and
// returns the resulting record. Repeat purchases update contact details in
// place instead of accumulating duplicates.
func (r *mongoCustomerRepository) UpsertByEmail(ctx context.Context, info *model.CustomerInfo) (*model.Customer, error) {
	if _, ok := ctx.(mongo.SessionContext); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.WriteTimeout)
		defer cancel()
	}

	now := time.Now().UTC().Truncate(time.Millisecond)

	filter := bson.M{"email": info.Email}
	update := bson.M{
		"$set": bson.M{
			"first_name": info.FirstName,
			"last_name":  info.LastName,
			"phone":      info.Phone,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"email":      info.Email,
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var customer model.Customer
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&customer); err != nil {
		return nil, fmt.Errorf("failed to upsert customer: %w", err)
	}

	return &customer, nil
}
