package badger

import (
	"context"

	"github.com/dgraph-io/badger/v3"
)

type badgerBatch struct {
	batch *badger.WriteBatch
}

func (b *badgerBatch) Set(key, value []byte) error {
	return b.batch.SetEntry(&badger.Entry{
		Key:   key,
		Value: value,
	})
}

func (b *badgerBatch) Delete(key []byte) error {
	return b.batch.Delete(key)
}

func (b *badgerBatch) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.batch.Flush()
}

func (b *badgerBatch) Cancel() {
	b.batch.Cancel()
}
