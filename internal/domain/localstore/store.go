// Package localstore persists the employee data set in key/value storage.
// The data set is written compressed under one key; a raw JSON key is kept
// only as a fallback for failed compressed writes and for data written before
// compression existed.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"hrmsync/internal/domain/attachments"
	"hrmsync/internal/domain/codec"
	"hrmsync/internal/domain/records"
	"hrmsync/internal/platform/kv"
)

const (
	KeyCompressed  = "employees_compressed"
	KeyLastUpdated = "employees_lastUpdated"
	KeyLegacy      = "employees"
)

// DefaultPreservedKeys survive ClearExceptPreserved: the session token and the
// signed-in user.
var DefaultPreservedKeys = []string{"token", "user"}

type Options struct {
	Codec         codec.Codec
	MaxSizeBytes  int64
	PreservedKeys []string
	// DefaultQuotaBytes is reported as capacity until a quota estimate is
	// cached.
	DefaultQuotaBytes int64
	QuotaTTL          time.Duration
	Attachments       attachments.Options
	Now               func() time.Time
}

type Store struct {
	kv     kv.Storage
	opts   Options
	quotas *gocache.Cache

	// serializes read-modify-write helpers within this process
	mu sync.Mutex
}

func New(storage kv.Storage, opts Options) *Store {
	if opts.Codec == nil {
		opts.Codec = codec.Snappy{}
	}
	if opts.MaxSizeBytes <= 0 {
		opts.MaxSizeBytes = attachments.DefaultMaxSizeBytes
	}
	if opts.PreservedKeys == nil {
		opts.PreservedKeys = DefaultPreservedKeys
	}
	if opts.DefaultQuotaBytes <= 0 {
		opts.DefaultQuotaBytes = DefaultQuotaBytes
	}
	if opts.QuotaTTL <= 0 {
		opts.QuotaTTL = 10 * time.Minute
	}
	if opts.Attachments.MaxSizeBytes <= 0 {
		opts.Attachments.MaxSizeBytes = opts.MaxSizeBytes
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		kv:     storage,
		opts:   opts,
		quotas: gocache.New(opts.QuotaTTL, 2*opts.QuotaTTL),
	}
}

// GetAll returns the stored employees. It never fails: unreadable data is
// logged and treated as an empty data set.
func (s *Store) GetAll(ctx context.Context) []records.Employee {
	employees, ok, err := s.readCompressed(ctx)
	if err != nil {
		slog.Error("read compressed employees failed", "err", err)
	}
	if ok {
		return employees
	}
	employees, ok, err = s.readLegacy(ctx)
	if err != nil {
		slog.Error("read legacy employees failed", "err", err)
	}
	if ok {
		return employees
	}
	return []records.Employee{}
}

// snapshot is the strict read behind read-modify-write helpers: a stored data
// set that exists but cannot be read yields ErrUnreadableData instead of an
// empty slice, so it is never overwritten by accident.
func (s *Store) snapshot(ctx context.Context) ([]records.Employee, error) {
	employees, ok, err := s.readCompressed(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadableData, KeyCompressed, err)
	}
	if ok {
		return employees, nil
	}
	employees, ok, err = s.readLegacy(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadableData, KeyLegacy, err)
	}
	if ok {
		return employees, nil
	}
	return []records.Employee{}, nil
}

// readCompressed reports found=false with a nil error when the key is absent.
func (s *Store) readCompressed(ctx context.Context) ([]records.Employee, bool, error) {
	code, ok, err := s.kv.Get(ctx, KeyCompressed)
	if err != nil || !ok {
		return nil, false, err
	}
	plain, err := s.opts.Codec.Decompress(code)
	if err != nil {
		return nil, false, fmt.Errorf("decompress: %w", err)
	}
	employees, err := decodeEmployees(plain)
	if err != nil {
		return nil, false, fmt.Errorf("parse: %w", err)
	}
	return employees, true, nil
}

func (s *Store) readLegacy(ctx context.Context) ([]records.Employee, bool, error) {
	raw, ok, err := s.kv.Get(ctx, KeyLegacy)
	if err != nil || !ok {
		return nil, false, err
	}
	employees, err := decodeEmployees(raw)
	if err != nil {
		return nil, false, fmt.Errorf("parse: %w", err)
	}
	return employees, true, nil
}

func decodeEmployees(text string) ([]records.Employee, error) {
	var employees []records.Employee
	if err := json.Unmarshal([]byte(text), &employees); err != nil {
		return nil, err
	}
	if employees == nil {
		employees = []records.Employee{}
	}
	return employees, nil
}

// SetAll replaces the stored data set, whatever is stored now. Oversized inline attachments are
// turned into truncated references first; the caller's values are not
// modified.
//
// It returns true when the compressed representation was written. When that
// fails the raw JSON is written instead and SetAll returns false with a nil
// error. ErrStorageQuota is returned only when the raw write fails as well.
func (s *Store) SetAll(ctx context.Context, employees []records.Employee) (bool, error) {
	optimized := make([]records.Employee, len(employees))
	for i := range employees {
		optimized[i] = employees[i].Clone()
		if replaced := attachments.OptimizeEmployee(&optimized[i], s.opts.MaxSizeBytes); len(replaced) > 0 {
			slog.Warn("truncated oversized attachments", "employeeId", optimized[i].ID.String(), "fields", replaced)
		}
	}

	data, err := json.Marshal(optimized)
	if err != nil {
		return false, fmt.Errorf("encode employees: %w", err)
	}

	err = s.writeCompressed(ctx, string(data))
	if err == nil {
		return true, nil
	}
	slog.Warn("compressed write failed, falling back to raw storage", "err", err)

	if err := s.kv.Set(ctx, KeyLegacy, string(data)); err != nil {
		return false, fmt.Errorf("%w: %w", ErrStorageQuota, err)
	}
	// a stale compressed copy would shadow the raw data on the next read
	for _, key := range []string{KeyCompressed, KeyLastUpdated} {
		if err := s.kv.Remove(ctx, key); err != nil {
			slog.Warn("remove stale compressed key failed", "key", key, "err", err)
		}
	}
	return false, nil
}

func (s *Store) writeCompressed(ctx context.Context, plain string) error {
	code, err := s.opts.Codec.Compress(plain)
	if err != nil {
		return fmt.Errorf("compress: %w", err)
	}
	if err := s.kv.Set(ctx, KeyCompressed, code); err != nil {
		return err
	}
	if err := s.kv.Set(ctx, KeyLastUpdated, s.opts.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		slog.Warn("write last updated timestamp failed", "err", err)
	}
	if err := s.kv.Remove(ctx, KeyLegacy); err != nil {
		slog.Warn("remove legacy employees key failed", "err", err)
	}
	return nil
}

// LastUpdated reports when the compressed data set was last written.
func (s *Store) LastUpdated(ctx context.Context) (time.Time, bool) {
	value, ok, err := s.kv.Get(ctx, KeyLastUpdated)
	if err != nil || !ok {
		return time.Time{}, false
	}
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
