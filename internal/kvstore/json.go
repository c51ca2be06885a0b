package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// GetJSON decodes the value under key into v and returns its version
func GetJSON(ctx context.Context, s Store, key string, v any) (int64, error) {
	entry, err := s.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if err := json.Unmarshal(entry.Value, v); err != nil {
		return 0, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return entry.Version, nil
}

// SetJSON encodes v and writes it unconditionally
func SetJSON(ctx context.Context, s Store, key string, v any) (int64, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}

// SetIfAbsentJSON inserts v if key is absent. Whatever ends up stored is
// decoded into out, which may be nil.
func SetIfAbsentJSON(ctx context.Context, s Store, key string, v any, out any) (bool, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("failed to encode %s: %w", key, err)
	}

	entry, inserted, err := s.SetIfAbsent(ctx, key, data)
	if err != nil {
		return false, err
	}

	if out != nil {
		if err := json.Unmarshal(entry.Value, out); err != nil {
			return inserted, fmt.Errorf("failed to decode %s: %w", key, err)
		}
	}
	return inserted, nil
}

// CompareAndSwapJSON encodes v and writes it if the version still matches
func CompareAndSwapJSON(ctx context.Context, s Store, key string, v any, version int64) (int64, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.CompareAndSwap(ctx, key, data, version)
}
