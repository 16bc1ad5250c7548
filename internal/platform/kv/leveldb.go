package kv

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
)

// LevelDBStorage stores entries in a LevelDB directory. The running total of
// entry sizes is computed on open and maintained on every write.
type LevelDBStorage struct {
	mu    sync.Mutex
	db    *leveldb.DB
	used  int64
	quota int64
}

func OpenLevelDB(path string, quota int64) (*LevelDBStorage, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb: %w", err)
	}

	var used int64
	iter := db.NewIterator(nil, nil)
	for iter.Next() {
		used += EntryBytes(string(iter.Key()), string(iter.Value()))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("scan leveldb: %w", err)
	}
	return &LevelDBStorage{db: db, used: used, quota: quota}, nil
}

func (l *LevelDBStorage) Get(_ context.Context, key string) (string, bool, error) {
	value, err := l.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return string(value), true, nil
}

func (l *LevelDBStorage) Set(_ context.Context, key, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.used + EntryBytes(key, value)
	old, err := l.db.Get([]byte(key), nil)
	switch {
	case err == nil:
		next -= EntryBytes(key, string(old))
	case !errors.Is(err, leveldb.ErrNotFound):
		return fmt.Errorf("get %q: %w", key, err)
	}
	if l.quota > 0 && next > l.quota {
		return ErrQuotaExceeded
	}
	if err := l.db.Put([]byte(key), []byte(value), nil); err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	l.used = next
	return nil
}

func (l *LevelDBStorage) Remove(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	old, err := l.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get %q: %w", key, err)
	}
	if err := l.db.Delete([]byte(key), nil); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	l.used -= EntryBytes(key, string(old))
	return nil
}

func (l *LevelDBStorage) Keys(_ context.Context) ([]string, error) {
	iter := l.db.NewIterator(nil, nil)
	defer iter.Release()

	var keys []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return keys, nil
}

func (l *LevelDBStorage) EstimateQuota(context.Context) (int64, error) {
	return l.quota, nil
}

func (l *LevelDBStorage) Close() error {
	return l.db.Close()
}
