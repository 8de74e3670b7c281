// Package reportcache stores AWS describe responses on disk so repeated
// report runs against the same VPC do not re-issue every API call.
package reportcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	bolt "go.etcd.io/bbolt"
)

// DefaultTTL is how long cached responses stay valid unless the caller
// overrides it.
const DefaultTTL = 5 * time.Minute

var bucketName = []byte("responses")

// entry wraps a cached payload with its expiry. Corrupt or expired entries
// read back as a miss, never as an error.
type entry struct {
	ExpiresAt time.Time       `json:"expires_at"`
	Payload   json.RawMessage `json:"payload"`
}

// Cache is a TTL key-value store backed by a single bbolt file.
type Cache struct {
	db  *bolt.DB
	now func() time.Time
}

// Open creates or opens the cache file, creating parent directories as
// needed.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache at %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache bucket: %w", err)
	}

	return &Cache{db: db, now: time.Now}, nil
}

// Close releases the underlying database file.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get unmarshals the cached value for key into v. It returns false when the
// key is absent, expired, or unreadable.
func (c *Cache) Get(key string, v any) bool {
	var raw []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		if data := tx.Bucket(bucketName).Get([]byte(key)); data != nil {
			raw = append([]byte(nil), data...)
		}
		return nil
	})
	if err != nil || raw == nil {
		return false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		log.Debug().Str("key", key).Msg("dropping corrupt cache entry")
		c.Delete(key)
		return false
	}
	if c.now().After(e.ExpiresAt) {
		c.Delete(key)
		return false
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		log.Debug().Str("key", key).Err(err).Msg("cached payload does not match requested type")
		return false
	}
	return true
}

// Set stores v under key for ttl. A non-positive ttl uses DefaultTTL.
func (c *Cache) Set(key string, v any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal cache payload: %w", err)
	}
	raw, err := json.Marshal(entry{ExpiresAt: c.now().Add(ttl), Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), raw)
	})
}

// Delete removes a single key. Missing keys are not an error.
func (c *Cache) Delete(key string) {
	_ = c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	})
}

// Purge drops every cached entry.
func (c *Cache) Purge() error {
	return c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketName); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketName)
		return err
	})
}

// Stats reports entry counts for the status command.
type Stats struct {
	Entries int
	Expired int
}

// Stat walks the cache and counts live and expired entries.
func (c *Cache) Stat() (Stats, error) {
	var stats Stats
	now := c.now()
	err := c.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).ForEach(func(_, raw []byte) error {
			stats.Entries++
			var e entry
			if json.Unmarshal(raw, &e) != nil || now.After(e.ExpiresAt) {
				stats.Expired++
			}
			return nil
		})
	})
	return stats, err
}
