package out

import (
	"context"

	"huixue/internal/modules/progress/domain"
)

// KVStore is a flat key-value namespace. Get returns apperrors.ErrNotFound
// for missing keys; Delete of a missing key is not an error.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

type CardWriter interface {
	Write(ctx context.Context, deck domain.CardDeck) (string, error)
}
