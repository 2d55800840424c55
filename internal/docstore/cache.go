// internal/docstore/cache.go
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"chronocost/internal/common/logger"
)

// CachedStore reads documents through Redis. Writes go to the backing
// store first and then prime the cache. Cache failures are logged and
// never fail the call.
type CachedStore struct {
	store Store
	redis *redis.Client
	ttl   time.Duration
	log   logger.Logger
}

func NewCachedStore(store Store, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedStore {
	return &CachedStore{
		store: store,
		redis: client,
		ttl:   ttl,
		log:   log.WithFields(map[string]interface{}{"component": "docstore-cache"}),
	}
}

func cacheKey(databaseID, collectionID, id string) string {
	return fmt.Sprintf("doc:%s:%s:%s", databaseID, collectionID, id)
}

func (c *CachedStore) CreateDocument(ctx context.Context, databaseID, collectionID, id string, fields interface{}) (*Document, error) {
	doc, err := c.store.CreateDocument(ctx, databaseID, collectionID, id, fields)
	if err != nil {
		return nil, err
	}
	c.put(ctx, doc)
	return doc, nil
}

func (c *CachedStore) GetDocument(ctx context.Context, databaseID, collectionID, id string) (*Document, error) {
	key := cacheKey(databaseID, collectionID, id)

	raw, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var doc Document
		if jsonErr := json.Unmarshal(raw, &doc); jsonErr == nil {
			return &doc, nil
		}
		c.log.Warn("Dropping undecodable cache entry", map[string]interface{}{"key": key})
		c.redis.Del(ctx, key)
	case !errors.Is(err, redis.Nil):
		c.log.Warn("Cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	}

	doc, err := c.store.GetDocument(ctx, databaseID, collectionID, id)
	if err != nil {
		return nil, err
	}
	c.put(ctx, doc)
	return doc, nil
}

func (c *CachedStore) put(ctx context.Context, doc *Document) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return
	}
	key := cacheKey(doc.DatabaseID, doc.CollectionID, doc.ID)
	if err := c.redis.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("Cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}
