package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shukrishariif/grocery-app/internal/domain"
)

type orderItemDoc struct {
	ProductID string               `bson:"product_id"`
	Name      string               `bson:"name"`
	Quantity  int                  `bson:"quantity"`
	UnitPrice primitive.Decimal128 `bson:"unit_price"`
}

type orderDoc struct {
	ID          string               `bson:"_id"`
	OwnerID     string               `bson:"owner_id"`
	Items       []orderItemDoc       `bson:"items"`
	TotalAmount primitive.Decimal128 `bson:"total_amount"`
	Status      string               `bson:"status"`
	CreatedAt   time.Time            `bson:"created_at"`
}

func toOrderDoc(o *domain.Order) (orderDoc, error) {
	total, err := primitive.ParseDecimal128(o.TotalAmount.String())
	if err != nil {
		return orderDoc{}, fmt.Errorf("invalid total amount %q: %w", o.TotalAmount, err)
	}

	items := make([]orderItemDoc, len(o.Items))
	for i, item := range o.Items {
		price, err := primitive.ParseDecimal128(item.UnitPrice.String())
		if err != nil {
			return orderDoc{}, fmt.Errorf("invalid unit price %q: %w", item.UnitPrice, err)
		}
		items[i] = orderItemDoc{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: price,
		}
	}

	return orderDoc{
		ID:          o.ID,
		OwnerID:     o.OwnerID,
		Items:       items,
		TotalAmount: total,
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt,
	}, nil
}

func (d orderDoc) toDomain() (domain.Order, error) {
	total, err := decimal.NewFromString(d.TotalAmount.String())
	if err != nil {
		return domain.Order{}, fmt.Errorf("stored total %q unreadable: %w", d.TotalAmount, err)
	}

	items := make([]domain.OrderItem, len(d.Items))
	for i, item := range d.Items {
		price, err := decimal.NewFromString(item.UnitPrice.String())
		if err != nil {
			return domain.Order{}, fmt.Errorf("stored unit price %q unreadable: %w", item.UnitPrice, err)
		}
		items[i] = domain.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: price,
		}
	}

	return domain.Order{
		ID:          d.ID,
		OwnerID:     d.OwnerID,
		Items:       items,
		TotalAmount: total,
		Status:      domain.OrderStatus(d.Status),
		CreatedAt:   d.CreatedAt,
	}, nil
}

type mongoOrderRepository struct {
	client *mongo.Client
	orders *mongo.Collection
	carts  *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) OrderRepository {
	return &mongoOrderRepository{
		client: db.Client(),
		orders: db.Collection("orders"),
		carts:  db.Collection("carts"),
	}
}

// Checkout inserts the order and deletes the source cart in one
// multi-document transaction. The delete is guarded by the cart version the
// caller derived the order from: if another writer touched the cart in the
// meantime nothing is committed and ErrVersionMismatch is returned, so the
// caller can re-derive. Requires the server to run as a replica set.
func (m *mongoOrderRepository) Checkout(ctx context.Context, order *domain.Order, cartVersion int64) error {
	doc, err := toOrderDoc(order)
	if err != nil {
		return err
	}

	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := m.orders.InsertOne(sc, doc); err != nil {
			return nil, fmt.Errorf("failed to insert order: %w", err)
		}

		filter := bson.M{"owner_id": order.OwnerID, "version": cartVersion}
		result, err := m.carts.DeleteOne(sc, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to clear cart: %w", err)
		}
		if result.DeletedCount == 0 {
			return nil, ErrVersionMismatch
		}

		return nil, nil
	})
	if err != nil {
		if errors.Is(err, ErrVersionMismatch) {
			return ErrVersionMismatch
		}
		return fmt.Errorf("checkout transaction failed: %w", err)
	}

	return nil
}

func (m *mongoOrderRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.orders.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []domain.Order
	for cursor.Next(ctx) {
		var doc orderDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode order: %w", err)
		}
		o, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	return orders, nil
}

func (m *mongoOrderRepository) Get(ctx context.Context, ownerID, orderID string) (*domain.Order, error) {
	var doc orderDoc
	err := m.orders.FindOne(ctx, bson.M{"_id": orderID, "owner_id": ownerID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	o, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (m *mongoOrderRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}

	if _, err := m.orders.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
