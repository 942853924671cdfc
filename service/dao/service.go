// Package dao defines the persistence contract used by the challan services.
// Implementations are keyed stores; the challan ledger keeps records keyed by
// vehicle identifier.
package dao

import (
	"context"
)

// Service is a keyed store of entities of type T.
type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	// Load returns (nil, nil) when no entity exists under id.
	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
