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

var (
	ErrNotFound      = errors.New("orden no encontrada")
	ErrDuplicateCode = errors.New("el código de orden ya existe")
)

// Mongo implementation
type MongoOrderRepository struct {
	col *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{col: db.Collection("orders")}
}

// EnsureIndexes crea el índice único sobre code. El índice es lo que
// garantiza que un código nunca se inserte dos veces, incluso con
// varias instancias corriendo.
func (m *MongoOrderRepository) EnsureIndexes(ctx context.Context) error {
	_, err := m.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (m *MongoOrderRepository) Create(ctx context.Context, o *model.Order) error {
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	if len(o.History) == 0 {
		o.History = []model.StatusRecord{
			{Status: o.Status, Reason: "Orden creada", Timestamp: now},
		}
	}

	_, err := m.col.InsertOne(ctx, o)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateCode
	}
	return err
}

func (m *MongoOrderRepository) FindByCode(ctx context.Context, code string) (*model.Order, error) {
	var res model.Order
	err := m.col.FindOne(ctx, bson.M{"code": code}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &res, err
}

func (m *MongoOrderRepository) FindAll(ctx context.Context) ([]*model.Order, error) {
	cur, err := m.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.Order
	for cur.Next(ctx) {
		var v model.Order
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, nil
}

func (m *MongoOrderRepository) UpdateStatus(ctx context.Context, code, status string, record model.StatusRecord) error {
	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC(),
		},
		"$push": bson.M{
			"history": record,
		},
	}

	r, err := m.col.UpdateOne(ctx, bson.M{"code": code}, update)
	if err != nil {
		return err
	}
	if r.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AttachReceipt guarda la referencia al comprobante y avanza el estado a
// receipt_received solo si la orden sigue pendiente. El filtro condicional
// hace la operación idempotente frente a subidas repetidas.
func (m *MongoOrderRepository) AttachReceipt(ctx context.Context, code, fileRef string, record model.StatusRecord) error {
	now := time.Now().UTC()

	// PASO 1: si está pendiente, avanzar estado y adjuntar en una sola operación
	advance := bson.M{
		"$set": bson.M{
			"status":       model.StatusReceiptReceived,
			"receipt_file": fileRef,
			"updated_at":   now,
		},
		"$push": bson.M{
			"history": record,
		},
	}
	r, err := m.col.UpdateOne(ctx, bson.M{"code": code, "status": model.StatusPending}, advance)
	if err != nil {
		return err
	}
	if r.MatchedCount > 0 {
		return nil
	}

	// PASO 2: la orden no estaba pendiente; actualizar solo el archivo
	r, err = m.col.UpdateOne(ctx, bson.M{"code": code}, bson.M{
		"$set": bson.M{
			"receipt_file": fileRef,
			"updated_at":   now,
		},
	})
	if err != nil {
		return err
	}
	if r.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
