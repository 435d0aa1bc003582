package archive

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/cyclesearch/pkg/cache"
)

// Collection holds the archived runs.
const Collection = "runs"

// MongoStore keeps records in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri, pings the primary and ensures the lookup
// index exists.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	coll := client.Database(database).Collection(Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "descriptor_hash", Value: 1},
			{Key: "created_at", Value: -1},
		},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

// Put inserts r, retrying transient network failures.
func (s *MongoStore) Put(ctx context.Context, r *Record) error {
	return cache.RetryWithBackoff(ctx, func() error {
		_, err := s.coll.InsertOne(ctx, r)
		return classify(err)
	})
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Record, error) {
	var r Record
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, classify(err)
	}
	return &r, nil
}

func (s *MongoStore) List(ctx context.Context, f Filter) ([]*Record, error) {
	query := bson.M{}
	if f.Family != "" {
		query["family"] = f.Family
	}
	if f.DescriptorHash != "" {
		query["descriptor_hash"] = f.DescriptorHash
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}

	cur, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, classify(err)
	}
	var out []*Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

// classify marks network errors and timeouts as retryable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	return err
}

var _ Store = (*MongoStore)(nil)
