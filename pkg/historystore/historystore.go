// Package historystore is the optional run-history recorder: if
// configured with a Mongo URI, each [Store.RecordRun] call appends one
// document per completed [engine.FetchResult] to a collection, giving a
// fleet of CI fetch daemons an audit trail independent of any single
// machine's lockfile. It is pure observability; nothing in the resolve/
// fetch loop reads back from it.
package historystore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/seanwallawalla-forks/gyro/pkg/depgraph/engine"
)

// RunRecord is one document in the gyro_runs collection.
type RunRecord struct {
	RunID      string                    `bson:"run_id"`
	StartedAt  time.Time                 `bson:"started_at"`
	EndedAt    time.Time                 `bson:"ended_at"`
	DurationMS int64                     `bson:"duration_ms"`
	Batches    int                       `bson:"batches"`
	EdgeCount  int                       `bson:"edge_count"`
	CycleFree  bool                      `bson:"cycle_free"`
	Outcomes   map[string]map[string]int `bson:"outcomes"`
}

// Store wraps a Mongo collection holding one RunRecord per completed run.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Open connects to uri and returns a Store writing to
// database.gyro_runs. The connection is verified with a Ping so
// configuration mistakes surface at startup rather than on the first
// recorded run.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &Store{
		client:     client,
		collection: client.Database(database).Collection("gyro_runs"),
	}, nil
}

// RecordRun inserts one RunRecord built from a completed FetchResult.
func (s *Store) RecordRun(ctx context.Context, result *engine.FetchResult) error {
	record := RunRecord{
		RunID:      result.RunID,
		StartedAt:  result.StartedAt,
		EndedAt:    result.EndedAt,
		DurationMS: result.EndedAt.Sub(result.StartedAt).Milliseconds(),
		Batches:    result.Batches,
		EdgeCount:  len(result.Edges),
		CycleFree:  result.CycleFree,
		Outcomes:   result.Outcomes,
	}
	_, err := s.collection.InsertOne(ctx, record)
	return err
}

// LastRun returns the most recently recorded run, or (nil, nil) if the
// collection is empty.
func (s *Store) LastRun(ctx context.Context) (*RunRecord, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "started_at", Value: -1}})
	var record RunRecord
	err := s.collection.FindOne(ctx, bson.D{}, opts).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Close disconnects the underlying Mongo client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
