package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lrperlmu/emotional-clarity-sub000/internal/model"
)

// ResponseRepo persists answer snapshots.
type ResponseRepo interface {
	InsertBatch(ctx context.Context, snapshots []model.ResponseSnapshot) error
	GetBySessionID(ctx context.Context, sessionID string) ([]model.ResponseSnapshot, error)
}

type responseRepo struct {
	collection *mongo.Collection
}

func NewResponseRepo(db *mongo.Database) ResponseRepo {
	return &responseRepo{
		collection: db.Collection("responses"),
	}
}

func (r *responseRepo) InsertBatch(ctx context.Context, snapshots []model.ResponseSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(snapshots))
	for _, snap := range snapshots {
		if snap.RecordedAt.IsZero() {
			snap.RecordedAt = time.Now()
		}
		docs = append(docs, snap)
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

func (r *responseRepo) GetBySessionID(ctx context.Context, sessionID string) ([]model.ResponseSnapshot, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var snapshots []model.ResponseSnapshot
	if err = cursor.All(ctx, &snapshots); err != nil {
		return nil, err
	}
	return snapshots, nil
}
