// Package kv provides the string key/value storage the local store persists
// into. Backends mirror browser storage semantics: string keys and values and
// a finite quota measured in UTF-16 code units that rejects writes on
// overflow.
package kv

import (
	"context"
	"errors"
	"unicode/utf8"
)

var (
	// ErrQuotaExceeded is returned by Set when the write would push the
	// storage past its quota.
	ErrQuotaExceeded = errors.New("kv: storage quota exceeded")
	ErrClosed        = errors.New("kv: storage closed")
)

// Storage is a string-keyed store. Implementations are safe for concurrent use.
type Storage interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
	// Keys lists every key currently stored, in no particular order.
	Keys(ctx context.Context) ([]string, error)
}

// QuotaEstimator is implemented by backends that can report their capacity in
// bytes. Zero means unknown.
type QuotaEstimator interface {
	EstimateQuota(ctx context.Context) (int64, error)
}

// UTF16Units counts the UTF-16 code units needed to represent s. Invalid
// UTF-8 bytes count as one unit each.
func UTF16Units(s string) int {
	n := 0
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		if r >= 0x10000 {
			n += 2
			continue
		}
		n++
	}
	return n
}

// EntryBytes is the byte-equivalent footprint of a key/value pair: two bytes
// per UTF-16 code unit.
func EntryBytes(key, value string) int64 {
	return int64(UTF16Units(key)+UTF16Units(value)) * 2
}
