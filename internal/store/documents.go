package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"reshape/internal/integrity"
	"reshape/internal/logger"
	"reshape/internal/models"
)

// CollectionIndexes are the secondary indexes created on each collection.
var CollectionIndexes = map[string][]string{
	models.CollectionUsers:    {"email", "username"},
	models.CollectionProducts: {"category.slug", "brand", "price", "rating"},
	models.CollectionOrders:   {"user.id"},
}

// DocumentWriter replaces whole collections.
type DocumentWriter interface {
	Replace(ctx context.Context, collection string, docs []any) (int, error)
	EnsureIndexes(ctx context.Context, collection string, keys []string) error
}

// Documents loads document sets.
type Documents struct {
	writer DocumentWriter
	log    *logger.Logger
}

// NewDocuments creates a loader over writer (useful for testing).
func NewDocuments(writer DocumentWriter, log *logger.Logger) *Documents {
	if log == nil {
		log = logger.Discard()
	}

	return &Documents{writer: writer, log: log}
}

// Load replaces the users, products and orders collections and indexes them.
// It returns the documents inserted per collection.
func (d *Documents) Load(ctx context.Context, docs *models.DocumentSet) (map[string]int, error) {
	collections := []struct {
		name string
		docs []any
	}{
		{models.CollectionUsers, toAny(docs.Users)},
		{models.CollectionProducts, toAny(docs.Products)},
		{models.CollectionOrders, toAny(docs.Orders)},
	}

	loaded := make(map[string]int, len(collections))

	for _, c := range collections {
		n, err := d.writer.Replace(ctx, c.name, c.docs)
		if err != nil {
			return loaded, &integrity.LoadError{Store: NameDocuments, Table: c.name, Err: err}
		}

		if err := d.writer.EnsureIndexes(ctx, c.name, CollectionIndexes[c.name]); err != nil {
			return loaded, &integrity.LoadError{Store: NameDocuments, Table: c.name, Err: fmt.Errorf("indexes: %w", err)}
		}

		loaded[c.name] = n
	}

	d.log.Info("loaded documents", "store", NameDocuments,
		"users", loaded[models.CollectionUsers],
		"products", loaded[models.CollectionProducts],
		"orders", loaded[models.CollectionOrders],
	)

	return loaded, nil
}

func toAny[T any](docs []T) []any {
	out := make([]any, len(docs))
	for i := range docs {
		out[i] = docs[i]
	}

	return out
}

// MongoWriter writes collections of one MongoDB database.
type MongoWriter struct {
	client *mongo.Client
	db     *mongo.Database
}

// ConnectMongo connects to uri and pings the server.
func ConnectMongo(ctx context.Context, uri, database string, timeout time.Duration) (*MongoWriter, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoWriter{client: client, db: client.Database(database)}, nil
}

// Replace drops the collection and inserts docs unordered.
func (w *MongoWriter) Replace(ctx context.Context, collection string, docs []any) (int, error) {
	coll := w.db.Collection(collection)

	if err := coll.Drop(ctx); err != nil {
		return 0, fmt.Errorf("drop: %w", err)
	}

	if len(docs) == 0 {
		return 0, nil
	}

	res, err := coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil {
		return 0, fmt.Errorf("insert: %w", err)
	}

	return len(res.InsertedIDs), nil
}

// EnsureIndexes creates one ascending index per key.
func (w *MongoWriter) EnsureIndexes(ctx context.Context, collection string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	indexes := make([]mongo.IndexModel, 0, len(keys))
	for _, k := range keys {
		indexes = append(indexes, mongo.IndexModel{Keys: bson.D{{Key: k, Value: 1}}})
	}

	_, err := w.db.Collection(collection).Indexes().CreateMany(ctx, indexes)

	return err
}

// Close disconnects from the server.
func (w *MongoWriter) Close(ctx context.Context) error {
	return w.client.Disconnect(ctx)
}
