// Package storage abstracts the key-value persistence collaborator the
// document store delegates durability to. The engine treats it as external:
// one logical record per document, addressed by the document id.
package storage

import "context"

// Store is the persistence collaborator. Get reports found=false for keys
// that have never been set.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}
