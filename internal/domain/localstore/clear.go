package localstore

import (
	"context"
	"errors"
	"slices"
)

// ClearExceptPreserved removes every key except the preserved session keys.
// It keeps going past individual failures and reports them together.
func (s *Store) ClearExceptPreserved(ctx context.Context) error {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, key := range keys {
		if slices.Contains(s.opts.PreservedKeys, key) {
			continue
		}
		if err := s.kv.Remove(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
