package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCounterRepository persiste los contadores monotónicos del sistema,
// uno por nombre, en la colección counters.
type MongoCounterRepository struct {
	col *mongo.Collection
}

func NewMongoCounterRepository(db *mongo.Database) *MongoCounterRepository {
	return &MongoCounterRepository{col: db.Collection("counters")}
}

type counterDoc struct {
	Name  string `bson:"_id"`
	Value int64  `bson:"value"`
}

// Next incrementa y devuelve el contador en una sola operación.
// FindOneAndUpdate con $inc es atómico del lado del servidor, así que
// dos instancias concurrentes nunca reciben el mismo valor.
func (m *MongoCounterRepository) Next(ctx context.Context, name string) (int64, error) {
	filter := bson.M{"_id": name}
	update := bson.M{"$inc": bson.M{"value": 1}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc counterDoc
	if err := m.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return 0, err
	}
	return doc.Value, nil
}
