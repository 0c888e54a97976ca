// Package repository maps domain collections onto record store blobs.
//
// Every read decodes the whole collection from the store and every write
// replaces it. Undecodable blobs are treated as empty collections.
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"socialfeed/internal/observability"
	"socialfeed/internal/store"
)

func loadCollection[T any](ctx context.Context, s store.Store, key, collection string, dest *T) error {
	blob, found, err := s.Load(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", collection, err)
	}
	if !found || len(blob) == 0 {
		return nil
	}
	if err := json.Unmarshal(blob, dest); err != nil {
		var zero T
		*dest = zero
		observability.CorruptBlobs.WithLabelValues(collection).Inc()
		observability.NewStoreLogger(collection).LogCorrupt(ctx, key, err)
	}
	return nil
}

func saveCollection(ctx context.Context, s store.Store, key, collection string, v any) error {
	blob, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}
	if err := s.Save(ctx, key, blob); err != nil {
		return fmt.Errorf("save %s: %w", collection, err)
	}
	return nil
}

// uniqueIDs drops empty and duplicate ids plus any id equal to exclude, keeping first occurrences.
func uniqueIDs(ids []string, exclude string) []string {
	if len(ids) == 0 {
		return ids
	}
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if id == "" || id == exclude {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
