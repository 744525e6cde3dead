package repository

import (
	"context"
	"time"

	"github.com/greenroomhq/greenroom/internal/domain"
	"github.com/greenroomhq/greenroom/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type admissionAuditLogRepository struct {
	db *mongo.Database
}

func NewAdmissionAuditLogRepository(database *mongo.Database) domain.AdmissionAuditRepository {
	return &admissionAuditLogRepository{
		db: database,
	}
}

func (r *admissionAuditLogRepository) Log(ctx context.Context, auditLog *domain.AdmissionAuditLog) error {
	collection := r.db.Collection(db.AdmissionAuditLogsCollection)

	_, err := collection.InsertOne(ctx, auditLog)
	return err
}

func (r *admissionAuditLogRepository) GetByRoomID(ctx context.Context, roomID string, limit int) ([]domain.AdmissionAuditLog, error) {
	collection := r.db.Collection(db.AdmissionAuditLogsCollection)

	filter := bson.M{"room_id": roomID}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []domain.AdmissionAuditLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}

	return logs, nil
}

func (r *admissionAuditLogRepository) GetByEventType(ctx context.Context, eventType domain.AdmissionEventType, from time.Time, to time.Time) ([]domain.AdmissionAuditLog, error) {
	collection := r.db.Collection(db.AdmissionAuditLogsCollection)

	filter := bson.M{
		"event_type": eventType,
		"timestamp": bson.M{
			"$gte": from,
			"$lte": to,
		},
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []domain.AdmissionAuditLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}

	return logs, nil
}

func (r *admissionAuditLogRepository) DeleteOlderThan(ctx context.Context, before time.Time) error {
	collection := r.db.Collection(db.AdmissionAuditLogsCollection)

	filter := bson.M{
		"timestamp": bson.M{
			"$lt": before,
		},
	}

	_, err := collection.DeleteMany(ctx, filter)
	return err
}

func (r *admissionAuditLogRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(db.AdmissionAuditLogsCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "room_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "event_type", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		{
			Keys:    bson.D{{Key: "timestamp", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(7776000), // 90 days TTL
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
