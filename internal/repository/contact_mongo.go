package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shukrishariif/grocery-app/internal/domain"
)

type mongoContactRepository struct {
	collection *mongo.Collection
}

func NewMongoContactRepository(db *mongo.Database) ContactRepository {
	return &mongoContactRepository{
		collection: db.Collection("contact_messages"),
	}
}

func (m *mongoContactRepository) Insert(ctx context.Context, msg *domain.ContactMessage) error {
	msg.ID = uuid.NewString()
	msg.CreatedAt = time.Now()

	if _, err := m.collection.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("failed to insert contact message: %w", err)
	}
	return nil
}
