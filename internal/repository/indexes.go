package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// EnsureIndexes creates every index the repositories rely on. Called once at
// startup; MongoDB treats existing indexes as a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	carts := &mongoCartRepository{collection: db.Collection("carts")}
	if err := carts.CreateIndexes(ctx); err != nil {
		return err
	}

	orders := &mongoOrderRepository{orders: db.Collection("orders")}
	if err := orders.CreateIndexes(ctx); err != nil {
		return err
	}

	users := &mongoUserRepository{collection: db.Collection("users")}
	return users.CreateIndexes(ctx)
}
