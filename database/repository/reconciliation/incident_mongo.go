package reconciliationRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mindease/database"
	"mindease/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoIncidentRepo implements IncidentRepository using MongoDB.
type MongoIncidentRepo struct {
	coll *mongo.Collection
}

// NewMongoIncidentRepo uses the global client's portal database.
func NewMongoIncidentRepo() IncidentRepository {
	return NewMongoIncidentRepoWithCollection(database.Database().Collection("booking_incidents"))
}

func NewMongoIncidentRepoWithCollection(coll *mongo.Collection) IncidentRepository {
	repo := &MongoIncidentRepo{coll: coll}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoIncidentRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "flowId", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoIncidentRepo) Create(incident *models.BookingIncident) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	if incident.CreatedAt.IsZero() {
		incident.CreatedAt = now
	}
	incident.UpdatedAt = now
	if incident.Status == "" {
		incident.Status = models.IncidentOpen
	}
	if _, err := r.coll.InsertOne(ctx, incident); err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

func (r *MongoIncidentRepo) findOne(filter bson.M) (*models.BookingIncident, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var inc models.BookingIncident
	if err := r.coll.FindOne(ctx, filter).Decode(&inc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrIncidentNotFound
		}
		return nil, fmt.Errorf("failed to fetch incident: %w", err)
	}
	return &inc, nil
}

func (r *MongoIncidentRepo) GetByID(id string) (*models.BookingIncident, error) {
	return r.findOne(bson.M{"id": id})
}

func (r *MongoIncidentRepo) GetOpenByFlow(flowID string) (*models.BookingIncident, error) {
	return r.findOne(bson.M{"flowId": flowID, "status": models.IncidentOpen})
}

func (r *MongoIncidentRepo) find(filter bson.M, opts *options.FindOptions) ([]models.BookingIncident, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve incidents: %w", err)
	}
	defer cursor.Close(ctx)

	incidents := []models.BookingIncident{}
	for cursor.Next(ctx) {
		var inc models.BookingIncident
		if err := cursor.Decode(&inc); err != nil {
			return nil, fmt.Errorf("failed to decode incident: %w", err)
		}
		incidents = append(incidents, inc)
	}
	return incidents, cursor.Err()
}

// ListByStatus returns incidents newest first. A limit of 0 means no limit.
func (r *MongoIncidentRepo) ListByStatus(status models.IncidentStatus, limit int64) ([]models.BookingIncident, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return r.find(bson.M{"status": status}, opts)
}

// ListRetryable returns open incidents below the attempt cap, oldest first.
func (r *MongoIncidentRepo) ListRetryable(maxAttempts int) ([]models.BookingIncident, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return r.find(bson.M{
		"status":   models.IncidentOpen,
		"attempts": bson.M{"$lt": maxAttempts},
	}, opts)
}

func (r *MongoIncidentRepo) RecordAttempt(id, lastError string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"attempts": 1},
		"$set": bson.M{"lastError": lastError, "updatedAt": time.Now()},
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update incident %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrIncidentNotFound
	}
	return nil
}

// Resolve closes an open incident. Resolving twice reports not found.
func (r *MongoIncidentRepo) Resolve(id, note string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":         models.IncidentResolved,
		"resolutionNote": note,
		"updatedAt":      time.Now(),
	}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id, "status": models.IncidentOpen}, update)
	if err != nil {
		return fmt.Errorf("failed to resolve incident %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrIncidentNotFound
	}
	return nil
}
