package knowledge

import (
	"errors"
	"fmt"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// Cache persists lookup results across books. Keys are namespaced by
// source so one cache directory serves every source and language.
type Cache struct {
	db       *badger.DB
	inMemory bool
}

// CacheOptions configures the cache.
type CacheOptions struct {
	// Dir holds the badger files. Required unless InMemory is set.
	Dir string
	// InMemory keeps everything in memory, for tests.
	InMemory bool
	Logger   *slog.Logger
}

// OpenCache opens or creates the cache.
func OpenCache(opts CacheOptions) (*Cache, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("knowledge: CacheOptions.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	dbOpts = dbOpts.WithLogger(badgerLogger{logger.With("component", "badger")})
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("knowledge: open cache: %w", err)
	}
	return &Cache{db: db, inMemory: opts.InMemory}, nil
}

func cacheKey(ns, key string) []byte { return []byte(ns + "\x00" + key) }

// Get decodes the value stored under ns/key into v. ok is false when the
// key is absent.
func (c *Cache) Get(ns, key string, v any) (ok bool, err error) {
	err = c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(ns, key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, v)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("knowledge: cache get %s/%s: %w", ns, key, err)
	}
	return true, nil
}

// Put stores v under ns/key.
func (c *Cache) Put(ns, key string, v any) error {
	val, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(cacheKey(ns, key), val)
	})
}

// Sync flushes pending writes to disk. It is a no-op for in-memory caches,
// which have no value log.
func (c *Cache) Sync() error {
	if c.inMemory {
		return nil
	}
	return c.db.Sync()
}

// Close closes the underlying database.
func (c *Cache) Close() error { return c.db.Close() }

// badgerLogger routes badger output to slog, dropping debug and info.
type badgerLogger struct{ l *slog.Logger }

func (b badgerLogger) Errorf(f string, v ...any)   { b.l.Error(fmt.Sprintf(f, v...)) }
func (b badgerLogger) Warningf(f string, v ...any) { b.l.Warn(fmt.Sprintf(f, v...)) }
func (badgerLogger) Infof(string, ...any)          {}
func (badgerLogger) Debugf(string, ...any)         {}
