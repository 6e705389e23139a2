package persist

import (
	"context"
	"errors"
	"fmt"
)

// ErrDecode wraps codec failures so callers can tell corrupt data from I/O errors.
var ErrDecode = errors.New("persist: decode failed")

// Load decodes the value stored under key. A missing key returns nil, nil.
func Load[T any](ctx context.Context, store Store, codec Codec, key string) (*T, error) {
	data, err := store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out T
	if err := codec.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %s (%s): %v", ErrDecode, key, codec.Name(), err)
	}
	return &out, nil
}

// Save encodes value and stores it under key.
func Save[T any](ctx context.Context, store Store, codec Codec, key string, value T) error {
	data, err := codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("persist: encode %s (%s): %w", key, codec.Name(), err)
	}
	return store.Put(ctx, key, data)
}
