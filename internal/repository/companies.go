package repository

import (
	"context"
	"errors"
	"time"

	"billing-service/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrDuplicateEmail = errors.New("el email ya está registrado")

type MongoCompanyRepository struct {
	col *mongo.Collection
}

func NewMongoCompanyRepository(db *mongo.Database) *MongoCompanyRepository {
	return &MongoCompanyRepository{col: db.Collection("companies")}
}

func (m *MongoCompanyRepository) EnsureIndexes(ctx context.Context) error {
	_, err := m.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "api_key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}

func (m *MongoCompanyRepository) Create(ctx context.Context, c *model.Company) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := m.col.InsertOne(ctx, c)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (m *MongoCompanyRepository) FindByAPIKey(ctx context.Context, key string) (*model.Company, error) {
	var res model.Company
	err := m.col.FindOne(ctx, bson.M{"api_key": key}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &res, err
}
