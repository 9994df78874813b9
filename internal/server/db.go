// db.go - MongoDB-backed persistent store for user and file records.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names. The files collection is written by the upload
// collaborator; this core only counts it and resolves user records.
const (
	usersCollection = "users"
	filesCollection = "files"
)

// DocumentStore is the contract handlers and the credential verifier need
// from the persistent store. MongoStore implements it in production; tests
// substitute an in-memory fake.
type DocumentStore interface {
	// IsAlive reports current connectivity; safe to call before the
	// asynchronous connection handshake has completed (false until ready).
	IsAlive() bool

	// Count returns the number of documents in a collection.
	Count(ctx context.Context, collection string) (int64, error)

	// FindOne decodes the first document matching filter into out.
	// Returns ErrNotFound when nothing matches.
	FindOne(ctx context.Context, collection string, filter, out any) error

	// InsertOne stores doc and returns the generated id in hex form.
	InsertOne(ctx context.Context, collection string, doc any) (string, error)
}

// MongoStore wraps a shared mongo client handle, opened once at startup and
// reused by every request. Calls made before the connection is ready fail
// fast with ErrStoreUnavailable instead of hanging on the driver's server
// selection loop.
type MongoStore struct {
	liveness
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
}

var _ DocumentStore = (*MongoStore)(nil)

// NewMongoStore builds a store for the given URI and database. mongo.Connect
// does not block on the handshake; the liveness monitor flips IsAlive to
// true once the first ping succeeds.
func NewMongoStore(uri, database string, timeout time.Duration) (*MongoStore, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	s := &MongoStore{
		client:  client,
		db:      client.Database(database),
		timeout: timeout,
	}
	s.liveness.init()
	s.startMonitor(s.probe, defaultProbeInterval, timeout)
	return s, nil
}

func (s *MongoStore) probe(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// guard rejects calls while the connection is not usable.
func (s *MongoStore) guard() error {
	if !s.IsAlive() {
		return ErrStoreUnavailable
	}
	return nil
}

// Count returns the number of documents in collection.
func (s *MongoStore) Count(ctx context.Context, collection string) (int64, error) {
	if err := s.guard(); err != nil {
		return 0, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.db.Collection(collection).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("mongo count %s: %w", collection, err)
	}
	return n, nil
}

// FindOne decodes the first match for filter into out.
func (s *MongoStore) FindOne(ctx context.Context, collection string, filter, out any) error {
	if err := s.guard(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.db.Collection(collection).FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("mongo find %s: %w", collection, err)
	}
	return nil
}

// InsertOne stores doc and returns the generated ObjectID as hex.
func (s *MongoStore) InsertOne(ctx context.Context, collection string, doc any) (string, error) {
	if err := s.guard(); err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("mongo insert %s: %w", collection, err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("mongo insert %s: unexpected id type %T", collection, res.InsertedID)
	}
	return oid.Hex(), nil
}

// Close stops the liveness monitor and disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	s.stopMonitor()
	return s.client.Disconnect(ctx)
}
