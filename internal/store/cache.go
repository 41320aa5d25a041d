package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"reshape/internal/integrity"
	"reshape/internal/logger"
	"reshape/internal/models"
)

// ErrCacheMiss is returned by Get when the key does not exist.
var ErrCacheMiss = errors.New("cache miss")

// Key prefixes per collection.
const (
	KeyUser    = "user"
	KeyProduct = "product"
	KeyOrder   = "order"
)

var keyPrefixes = map[string]string{
	models.CollectionUsers:    KeyUser,
	models.CollectionProducts: KeyProduct,
	models.CollectionOrders:   KeyOrder,
}

// TTLFunc returns the lifetime of entries of a collection; zero means no expiry.
type TTLFunc func(collection string) time.Duration

// Cache writes documents to Redis as JSON under <entity>:<id>.
type Cache struct {
	rdb redis.UniversalClient
	ttl TTLFunc
	log *logger.Logger
}

// NewCache creates a cache over an existing client.
func NewCache(rdb redis.UniversalClient, ttl TTLFunc, log *logger.Logger) *Cache {
	if log == nil {
		log = logger.Discard()
	}

	if ttl == nil {
		ttl = func(string) time.Duration { return 0 }
	}

	return &Cache{rdb: rdb, ttl: ttl, log: log}
}

// ConnectRedis opens a client and pings the server.
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return rdb, nil
}

// Key builds the cache key of an entity.
func Key(prefix string, id int) string {
	return prefix + ":" + strconv.Itoa(id)
}

// Load writes every document in one pipeline per collection. It returns the keys
// written per collection.
func (c *Cache) Load(ctx context.Context, docs *models.DocumentSet) (map[string]int, error) {
	loaded := make(map[string]int, 3)

	users := make(map[int]any, len(docs.Users))
	for _, u := range docs.Users {
		users[u.ID] = u
	}

	products := make(map[int]any, len(docs.Products))
	for _, p := range docs.Products {
		products[p.ID] = p
	}

	orders := make(map[int]any, len(docs.Orders))
	for _, o := range docs.Orders {
		orders[o.ID] = o
	}

	for _, coll := range []struct {
		name    string
		entries map[int]any
	}{
		{models.CollectionUsers, users},
		{models.CollectionProducts, products},
		{models.CollectionOrders, orders},
	} {
		n, err := c.set(ctx, coll.name, coll.entries)
		if err != nil {
			return loaded, &integrity.LoadError{Store: NameCache, Table: coll.name, Err: err}
		}

		loaded[coll.name] = n
	}

	c.log.Info("loaded cache", "store", NameCache,
		"users", loaded[models.CollectionUsers],
		"products", loaded[models.CollectionProducts],
		"orders", loaded[models.CollectionOrders],
	)

	return loaded, nil
}

func (c *Cache) set(ctx context.Context, collection string, entries map[int]any) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	prefix := keyPrefixes[collection]
	ttl := c.ttl(collection)

	_, err := c.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for id, doc := range entries {
			data, err := json.Marshal(doc)
			if err != nil {
				return fmt.Errorf("marshal %s: %w", Key(prefix, id), err)
			}

			pipe.Set(ctx, Key(prefix, id), data, ttl)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(entries), nil
}

// Get decodes the cached document of an entity into dest.
func (c *Cache) Get(ctx context.Context, collection string, id int, dest any) error {
	prefix, ok := keyPrefixes[collection]
	if !ok {
		return fmt.Errorf("unknown cache collection %q", collection)
	}

	data, err := c.rdb.Get(ctx, Key(prefix, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %s", ErrCacheMiss, Key(prefix, id))
	}

	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}
