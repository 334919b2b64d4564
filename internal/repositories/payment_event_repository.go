package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bizdesk/internal/models/db_models"
)

// PaymentEventRepository stores webhook audit records. Writing the same event
// id twice leaves a single record.
type PaymentEventRepository interface {
	Upsert(ctx context.Context, event *db_models.PaymentEvent) error
}

type gormPaymentEventRepository struct {
	db *gorm.DB
}

func NewPaymentEventRepository(db *gorm.DB) PaymentEventRepository {
	return &gormPaymentEventRepository{db: db}
}

func (r *gormPaymentEventRepository) Upsert(ctx context.Context, event *db_models.PaymentEvent) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"event_type", "transaction_id", "payload", "received_at"}),
		}).
		Create(event).Error
}

const paymentEventsCollection = "PaymentEvents"

type mongoPaymentEventRepository struct {
	collection *mongo.Collection
}

func NewMongoPaymentEventRepository(db *mongo.Database) PaymentEventRepository {
	return &mongoPaymentEventRepository{collection: db.Collection(paymentEventsCollection)}
}

func (r *mongoPaymentEventRepository) Upsert(ctx context.Context, event *db_models.PaymentEvent) error {
	update := bson.M{"$set": bson.M{
		"processor":     event.Processor,
		"eventType":     event.EventType,
		"transactionId": event.TransactionID,
		"payload":       string(event.Payload),
		"receivedAt":    event.ReceivedAt,
	}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": event.EventID}, update, options.Update().SetUpsert(true))
	return err
}
