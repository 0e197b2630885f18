package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lrperlmu/emotional-clarity-sub000/internal/model"
)

// EventRepo persists timestamped navigation events.
type EventRepo interface {
	Insert(ctx context.Context, event model.Event) error
	GetBySessionID(ctx context.Context, sessionID string) ([]model.Event, error)
}

type eventRepo struct {
	collection *mongo.Collection
}

func NewEventRepo(db *mongo.Database) EventRepo {
	return &eventRepo{
		collection: db.Collection("events"),
	}
}

func (r *eventRepo) Insert(ctx context.Context, event model.Event) error {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, event)
	return err
}

func (r *eventRepo) GetBySessionID(ctx context.Context, sessionID string) ([]model.Event, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []model.Event
	if err = cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
