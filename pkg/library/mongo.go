package library

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/brickyard/pkg/build"
	berrors "github.com/matzehuels/brickyard/pkg/errors"
)

// MongoConfig contains connection settings for MongoStore.
type MongoConfig struct {
	URI        string // e.g. mongodb://localhost:27017
	Database   string // e.g. brickyard
	Collection string // e.g. builds
}

// MongoStore keeps one document per build, keyed by name.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

type mongoDoc struct {
	Name      string    `bson:"_id"`
	Digest    string    `bson:"digest"`
	Count     int       `bson:"count"`
	Pieces    string    `bson:"pieces"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStore connects and verifies the server is reachable.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "brickyard"
	}
	if cfg.Collection == "" {
		cfg.Collection = "builds"
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, storageErr(err, "connect to mongo")
	}
	if err := ping(ctx, func(ctx context.Context) error { return client.Ping(ctx, nil) }); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, storageErr(err, "ping mongo")
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (s *MongoStore) Get(ctx context.Context, name string) (*Entry, error) {
	if err := berrors.ValidateBuildName(name); err != nil {
		return nil, err
	}
	var doc mongoDoc
	err := s.collection.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(err, "find build %s", name)
	}
	return decodeEntry(name, []byte(doc.Pieces), doc.UpdatedAt)
}

func (s *MongoStore) Put(ctx context.Context, name string, pieces build.Pieces) (*Entry, error) {
	e, payload, err := encodeEntry(name, pieces, time.Now())
	if err != nil {
		return nil, err
	}
	doc := mongoDoc{
		Name:      e.Name,
		Digest:    e.Digest,
		Count:     len(e.Pieces),
		Pieces:    string(payload),
		UpdatedAt: e.UpdatedAt,
	}
	_, err = s.collection.ReplaceOne(ctx, bson.M{"_id": name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return nil, storageErr(err, "save build %s", name)
	}
	return e, nil
}

func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if err := berrors.ValidateBuildName(name); err != nil {
		return err
	}
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return storageErr(err, "delete build %s", name)
	}
	if res.DeletedCount == 0 {
		return notFound(name)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]Info, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.D{{Key: "pieces", Value: 0}})
	cur, err := s.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, storageErr(err, "list builds")
	}
	defer cur.Close(ctx)

	var infos []Info
	for cur.Next(ctx) {
		var doc mongoDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, storageErr(err, "decode build")
		}
		infos = append(infos, Info{
			Name:      doc.Name,
			Count:     doc.Count,
			Digest:    doc.Digest,
			UpdatedAt: doc.UpdatedAt.UTC(),
		})
	}
	if err := cur.Err(); err != nil {
		return nil, storageErr(err, "list builds")
	}
	return infos, nil
}

// Drop removes the whole collection. It is meant for tests.
func (s *MongoStore) Drop(ctx context.Context) error {
	return s.collection.Drop(ctx)
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
