package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// ImportBrowserExport loads a JSON object of browser storage entries into the
// backend. String values are stored as-is; any other JSON value is stored as
// its encoded text, which is how browsers would have held it. It returns the
// number of keys written.
func (s *Store) ImportBrowserExport(ctx context.Context, r io.Reader) (int, error) {
	var entries map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return 0, fmt.Errorf("decode browser export: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for i, key := range keys {
		raw := entries[key]
		value := string(raw)
		var text string
		if err := json.Unmarshal(raw, &text); err == nil {
			value = text
		}
		if err := s.kv.Set(ctx, key, value); err != nil {
			return i, fmt.Errorf("import %q: %w", key, err)
		}
	}
	return len(keys), nil
}
