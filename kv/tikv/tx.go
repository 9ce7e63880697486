package tikv

import (
	"context"
	"fmt"

	"github.com/gatherly/eventquery/kv"
	"github.com/gatherly/eventquery/kv/kvutil"
	tikvErr "github.com/tikv/client-go/v2/error"
	"github.com/tikv/client-go/v2/txnkv/transaction"
)

type tikvTx struct {
	txn      *transaction.KVTxn
	readOnly bool
}

func (t *tikvTx) Get(ctx context.Context, key []byte) ([]byte, error) {
	val, err := t.txn.Get(ctx, key)
	if err != nil {
		if tikvErr.IsErrNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return val, nil
}

func (t *tikvTx) Set(ctx context.Context, key, value []byte) error {
	if t.readOnly {
		return fmt.Errorf("writes forbidden in read-only transaction")
	}
	return t.txn.Set(key, value)
}

func (t *tikvTx) Delete(ctx context.Context, key []byte) error {
	if t.readOnly {
		return fmt.Errorf("writes forbidden in read-only transaction")
	}
	return t.txn.Delete(key)
}

func (t *tikvTx) NewIterator(kopts kv.IterOpts) (kv.Iterator, error) {
	upper := kopts.UpperBound
	if upper == nil {
		upper = kvutil.NextPrefix(kopts.Prefix)
	}
	if kopts.Reverse {
		seek := kopts.Seek
		if seek == nil {
			seek = upper
		}
		iter, err := t.txn.IterReverse(seek)
		if err != nil {
			return nil, err
		}
		return &tikvIterator{iter: iter, opts: kopts}, nil
	}
	start := kopts.Seek
	if start == nil {
		start = kopts.Prefix
	}
	iter, err := t.txn.Iter(start, upper)
	if err != nil {
		return nil, err
	}
	return &tikvIterator{iter: iter, opts: kopts}, nil
}

type tikvBatch struct {
	txn *transaction.KVTxn
	err error
}

func (b *tikvBatch) Set(key, value []byte) error {
	if b.err != nil {
		return b.err
	}
	return b.txn.Set(key, value)
}

func (b *tikvBatch) Delete(key []byte) error {
	if b.err != nil {
		return b.err
	}
	return b.txn.Delete(key)
}

func (b *tikvBatch) Flush(ctx context.Context) error {
	if b.err != nil {
		return b.err
	}
	return b.txn.Commit(ctx)
}

func (b *tikvBatch) Cancel() {
	if b.txn != nil && b.txn.Valid() {
		_ = b.txn.Rollback()
	}
}
