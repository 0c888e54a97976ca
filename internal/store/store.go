// Package store implements the record store: whole-collection blobs addressed by key.
//
// Every backend offers the same synchronous contract. Load reports whether the key
// exists; Save replaces the whole blob. There are no partial or field-level writes.
package store

import (
	"context"
	"io"
)

// Collection names under a namespace.
const (
	CollectionUsers         = "users"
	CollectionPosts         = "posts"
	CollectionNotifications = "notifications"
)

// Store is the load/save contract every backend implements.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, blob []byte) error
	io.Closer
}

// Keys resolves collection names to namespaced store keys.
type Keys struct {
	Namespace string
}

// Key returns the store key for a collection.
func (k Keys) Key(collection string) string {
	if k.Namespace == "" {
		return collection
	}
	return k.Namespace + ":" + collection
}

// Users returns the key of the users collection.
func (k Keys) Users() string { return k.Key(CollectionUsers) }

// Posts returns the key of the posts collection.
func (k Keys) Posts() string { return k.Key(CollectionPosts) }

// Notifications returns the key of the per-recipient notification map.
func (k Keys) Notifications() string { return k.Key(CollectionNotifications) }
