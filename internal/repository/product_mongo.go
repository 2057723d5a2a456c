package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shukrishariif/grocery-app/internal/catalog"
	"github.com/shukrishariif/grocery-app/internal/domain"
)

// productDoc is the stored shape of a product. Prices live as Decimal128
// so money never round-trips through binary floats.
type productDoc struct {
	ID          string               `bson:"_id"`
	Name        string               `bson:"name"`
	Category    string               `bson:"category"`
	Price       primitive.Decimal128 `bson:"price"`
	Image       string               `bson:"image"`
	Stock       int                  `bson:"stock"`
	Description string               `bson:"description"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

func toProductDoc(p *domain.Product) (productDoc, error) {
	price, err := primitive.ParseDecimal128(p.Price.String())
	if err != nil {
		return productDoc{}, fmt.Errorf("invalid price %q: %w", p.Price, err)
	}
	return productDoc{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Price:       price,
		Image:       p.Image,
		Stock:       p.Stock,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

func (d productDoc) toDomain() (domain.Product, error) {
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return domain.Product{}, fmt.Errorf("stored price %q unreadable: %w", d.Price, err)
	}
	return domain.Product{
		ID:          d.ID,
		Name:        d.Name,
		Category:    d.Category,
		Price:       price,
		Image:       d.Image,
		Stock:       d.Stock,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

// MongoProductRepository is the product store. The same value also serves
// as the catalog.Catalog collaborator of the cart and order services.
type MongoProductRepository struct {
	collection *mongo.Collection
}

var _ ProductRepository = (*MongoProductRepository)(nil)
var _ catalog.Catalog = (*MongoProductRepository)(nil)

func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{collection: db.Collection("products")}
}

func (m *MongoProductRepository) Create(ctx context.Context, p *domain.Product) error {
	now := time.Now()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now

	doc, err := toProductDoc(p)
	if err != nil {
		return err
	}
	if _, err := m.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (m *MongoProductRepository) Get(ctx context.Context, id string) (*domain.Product, error) {
	var doc productDoc
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	p, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (m *MongoProductRepository) List(ctx context.Context, category string) ([]domain.Product, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []domain.Product
	for cursor.Next(ctx) {
		var doc productDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode product: %w", err)
		}
		p, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	return products, nil
}

func (m *MongoProductRepository) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now()

	doc, err := toProductDoc(p)
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{
		"name":        doc.Name,
		"category":    doc.Category,
		"price":       doc.Price,
		"image":       doc.Image,
		"stock":       doc.Stock,
		"description": doc.Description,
		"updated_at":  doc.UpdatedAt,
	}}

	result, err := m.collection.UpdateOne(ctx, bson.M{"_id": p.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (m *MongoProductRepository) Delete(ctx context.Context, id string) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Exists implements catalog.Catalog.
func (m *MongoProductRepository) Exists(ctx context.Context, productID string) (bool, error) {
	count, err := m.collection.CountDocuments(ctx, bson.M{"_id": productID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check product: %w", err)
	}
	return count > 0, nil
}

// Resolve implements catalog.Catalog.
func (m *MongoProductRepository) Resolve(ctx context.Context, productID string) (catalog.ProductInfo, error) {
	p, err := m.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return catalog.ProductInfo{}, catalog.ErrProductNotFound
		}
		return catalog.ProductInfo{}, err
	}
	return catalog.ProductInfo{Name: p.Name, Price: p.Price}, nil
}
