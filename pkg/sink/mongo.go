package sink

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/safetree/pkg/errors"
)

// Defaults used when the URI names no database or collection.
const (
	DefaultDatabase   = "safetree"
	DefaultCollection = "records"
)

// mongoRecord is the stored document. The record ID doubles as _id so
// retried inserts are rejected as duplicates instead of stored twice.
type mongoRecord struct {
	ID      string    `bson:"_id"`
	Time    time.Time `bson:"time"`
	Level   string    `bson:"level"`
	Message string    `bson:"msg"`
	Source  string    `bson:"source,omitempty"`
	Line    string    `bson:"line"`
}

// inserter is the part of *mongo.Collection the sink uses.
type inserter interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// MongoSink inserts one document per record.
type MongoSink struct {
	client *mongo.Client
	coll   inserter
}

// DialMongo connects to the MongoDB deployment at uri. The database is the
// URI path and the collection the "collection" query parameter; either
// falls back to its default.
func DialMongo(ctx context.Context, uri string) (*MongoSink, error) {
	clientURI, db, collName, err := mongoTarget(uri)
	if err != nil {
		return nil, err
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(clientURI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}
	return &MongoSink{client: client, coll: client.Database(db).Collection(collName)}, nil
}

// mongoTarget splits uri into the URI handed to the driver (without the
// collection parameter, which is ours) and the database and collection.
func mongoTarget(uri string) (clientURI, db, coll string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", "", errors.Wrap(errors.ErrCodeInvalidInput, err, "parse mongodb uri")
	}
	db = strings.Trim(u.Path, "/")
	if db == "" {
		db = DefaultDatabase
	}
	q := u.Query()
	coll = q.Get("collection")
	if coll == "" {
		coll = DefaultCollection
	}
	q.Del("collection")
	u.RawQuery = q.Encode()
	return u.String(), db, coll, nil
}

func (s *MongoSink) Write(ctx context.Context, rec Record) error {
	doc := mongoRecord{
		ID:      rec.ID.String(),
		Time:    rec.Time,
		Level:   rec.Level,
		Message: rec.Message,
		Source:  rec.Source,
		Line:    rec.Line,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "insert record %s", rec.ID)
	}
	return nil
}

func (s *MongoSink) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
