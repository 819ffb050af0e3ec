package noncemanager

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
)

// LevelDBCache stores nonces as decimal strings under their key
type LevelDBCache struct {
	db *leveldb.DB
}

func OpenLevelDBCache(path string) (*LevelDBCache, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("Could not open leveldb storage file - with err: %w", err)
	}
	return &LevelDBCache{db: db}, nil
}

func NewLevelDBCache(db *leveldb.DB) *LevelDBCache {
	return &LevelDBCache{db: db}
}

func (c *LevelDBCache) Get(key string) (uint64, bool, error) {
	raw, err := c.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	value, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("Could not parse cached value %q of %v - with err: %w", raw, key, err)
	}
	return value, true, nil
}

func (c *LevelDBCache) Set(key string, value uint64) error {
	return c.db.Put([]byte(key), []byte(strconv.FormatUint(value, 10)), nil)
}

func (c *LevelDBCache) Close() error {
	return c.db.Close()
}

// MemoryCache is a Cache that does not survive restarts
type MemoryCache struct {
	values map[string]uint64
	mux    sync.Mutex
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{values: map[string]uint64{}}
}

func (c *MemoryCache) Get(key string) (uint64, bool, error) {
	c.mux.Lock()
	defer c.mux.Unlock()
	value, isExisted := c.values[key]
	return value, isExisted, nil
}

func (c *MemoryCache) Set(key string, value uint64) error {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.values[key] = value
	return nil
}
