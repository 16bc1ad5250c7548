package kv

import (
	"context"
	"fmt"
	"io"
)

const (
	BackendMemory  = "memory"
	BackendSQLite  = "sqlite"
	BackendLevelDB = "leveldb"
)

// Open builds the backend named by kind. The returned closer releases any
// files the backend holds.
func Open(ctx context.Context, kind, path string, quota int64) (Storage, io.Closer, error) {
	switch kind {
	case BackendMemory, "":
		return NewMemoryStorage(quota), io.NopCloser(nil), nil
	case BackendSQLite:
		s, err := OpenSQLite(ctx, path, quota)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case BackendLevelDB:
		s, err := OpenLevelDB(path, quota)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}
