package metadata

import (
	"context"
	stderrors "errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/deptree/pkg/errors"
)

// Default database and collection names.
const (
	DefaultMongoDatabase   = "deptree"
	DefaultMongoCollection = "metadata"
)

// documentStore is the part of *mongo.Collection the lookup needs.
type documentStore interface {
	FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) *mongo.SingleResult
	ReplaceOne(ctx context.Context, filter any, replacement any, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
}

type mongoDocument struct {
	ID      string `bson:"_id"`
	Details `bson:",inline"`
}

// MongoLookup reads details from a collection of documents keyed by node ID.
type MongoLookup struct {
	coll documentStore
}

// NewMongoLookup wraps a collection.
func NewMongoLookup(coll *mongo.Collection) *MongoLookup {
	return &MongoLookup{coll: coll}
}

// DialMongo connects to uri and returns a lookup on database/collection.
// Empty names use the defaults. The caller disconnects through the returned
// function.
func DialMongo(ctx context.Context, uri, database, collection string) (*MongoLookup, func(context.Context) error, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeNetwork, err, "mongo connect")
	}
	return NewMongoLookup(client.Database(database).Collection(collection)), client.Disconnect, nil
}

// Get implements Lookup.
func (m *MongoLookup) Get(ctx context.Context, id string) (Details, bool, error) {
	var doc mongoDocument
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	switch {
	case stderrors.Is(err, mongo.ErrNoDocuments):
		return Details{}, false, nil
	case err != nil:
		return Details{}, false, errors.Wrap(errors.ErrCodeNetwork, err, "mongo get %s", id)
	}
	return doc.Details, true, nil
}

// Put implements Writer as an upsert.
func (m *MongoLookup) Put(ctx context.Context, id string, d Details) error {
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": id}, mongoDocument{ID: id, Details: d},
		options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "mongo put %s", id)
	}
	return nil
}

var (
	_ Lookup = (*MongoLookup)(nil)
	_ Writer = (*MongoLookup)(nil)
)
