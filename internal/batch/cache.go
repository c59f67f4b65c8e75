package batch

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/KAAhwal/invoice-parser-app/internal/invoice"
)

const bucketName = "results"

// CacheEntry is a cached extraction outcome
type CacheEntry struct {
	Rows     []invoice.Row `json:"rows"`
	Pages    int           `json:"pages"`
	OCRPages int           `json:"ocr_pages"`
	Issues   []string      `json:"issues"`
}

// Cache stores extraction outcomes by content and vendor
type Cache interface {
	// Get returns the entry for key, or false when absent
	Get(key string) (*CacheEntry, bool, error)

	// Put stores an entry
	Put(key string, entry *CacheEntry) error

	// Len returns the number of stored entries
	Len() (int, error)

	// Close releases the cache
	Close() error
}

// CacheKey identifies a document for a vendor profile
func CacheKey(data []byte, vendorID string) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]) + ":" + vendorID
}

// BoltCache implements Cache using BoltDB
type BoltCache struct {
	db *bbolt.DB
}

// NewBoltCache opens or creates the cache file at path
func NewBoltCache(path string) (*BoltCache, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltCache{db: db}, nil
}

// Get retrieves an entry by key
func (b *BoltCache) Get(key string) (*CacheEntry, bool, error) {
	var entry *CacheEntry
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(key))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}
	return entry, entry != nil, nil
}

// Put saves an entry under key
func (b *BoltCache) Put(key string, entry *CacheEntry) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshaling cache entry: %w", err)
		}
		return tx.Bucket([]byte(bucketName)).Put([]byte(key), data)
	})
}

// Len counts stored entries
func (b *BoltCache) Len() (int, error) {
	n := 0
	err := b.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket([]byte(bucketName)).Stats().KeyN
		return nil
	})
	return n, err
}

// Close closes the database
func (b *BoltCache) Close() error {
	return b.db.Close()
}
