package tikv

import (
	"context"
	"fmt"

	"github.com/gatherly/eventquery/kv"
	"github.com/gatherly/eventquery/kv/kvutil"
	"github.com/gatherly/eventquery/kv/registry"
	"github.com/spf13/cast"
	"github.com/tikv/client-go/v2/txnkv"
)

func init() {
	registry.Register("tikv", func(params map[string]interface{}) (kv.DB, error) {
		if params["pd_addr"] == nil {
			return nil, fmt.Errorf("'pd_addr' is a required parameter")
		}
		return open(cast.ToString(params["pd_addr"]))
	})
}

type tikvKV struct {
	db *txnkv.Client
}

func open(pdAddr string) (kv.DB, error) {
	if pdAddr == "" {
		return nil, fmt.Errorf("empty pd address")
	}
	client, err := txnkv.NewClient([]string{pdAddr})
	if err != nil {
		return nil, err
	}
	return &tikvKV{db: client}, nil
}

func (b *tikvKV) Tx(ctx context.Context, isUpdate bool, fn func(kv.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	txn, err := b.db.Begin()
	if err != nil {
		return err
	}
	t := &tikvTx{txn: txn, readOnly: !isUpdate}
	if err := fn(t); err != nil {
		txn.Rollback()
		return err
	}
	if isUpdate {
		return txn.Commit(ctx)
	}
	return txn.Rollback()
}

func (b *tikvKV) Batch() kv.Batch {
	txn, err := b.db.Begin()
	return &tikvBatch{txn: txn, err: err}
}

// SnapshotReads reports true: tikv transactions read at a single timestamp,
// so every read in a transaction observes the same version of the keyspace.
func (b *tikvKV) SnapshotReads() bool {
	return true
}

func (b *tikvKV) DropPrefix(ctx context.Context, prefix ...[]byte) error {
	for _, p := range prefix {
		if _, err := b.db.DeleteRange(ctx, p, kvutil.NextPrefix(p), 1); err != nil {
			return err
		}
	}
	return nil
}

func (b *tikvKV) Close(ctx context.Context) error {
	return b.db.Close()
}
