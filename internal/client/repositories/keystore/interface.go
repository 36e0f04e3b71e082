// Package keystore persists the client's small fixed set of durable keys
// (the serialized user and the credential pair) in a local sqlite database.
package keystore

import "context"

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	List(ctx context.Context) (map[string][]byte, error)
}
