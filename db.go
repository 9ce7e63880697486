package eventquery

import (
	"context"
	"time"

	"github.com/autom8ter/machine/v4"
	"github.com/gatherly/eventquery/errors"
	"github.com/gatherly/eventquery/kv"
	"github.com/gatherly/eventquery/kv/registry"
	"github.com/gatherly/eventquery/util"
	"github.com/samber/lo"
	"github.com/segmentio/ksuid"
	"golang.org/x/sync/errgroup"
)

// Config configures a DB instance
type Config struct {
	// KVProvider is the name of a registered kv provider ("badger", "tikv")
	KVProvider string `json:"kv_provider" validate:"required"`
	// KVParams are provider specific parameters (ex: storage_path, pd_addr)
	KVParams map[string]any `json:"kv_params"`
	// Collections are the collections to open
	Collections []*Collection `json:"-"`
	// Logger overrides the default zap logger
	Logger Logger `json:"-"`
	// LogLevel sets the default logger's level (default "info")
	LogLevel string `json:"log_level"`
}

// DB is an embedded document database with a dynamic paginated query engine.
// All methods are safe for concurrent use; the DB holds no per-request state.
type DB struct {
	config      Config
	kv          kv.DB
	machine     machine.Machine
	logger      Logger
	collections map[string]*Collection
}

// Open opens a DB with the given config. If the kv provider cannot guarantee
// snapshot reads, a degraded-consistency warning is logged once here - query
// totals from such a provider are best effort, never silently assumed atomic.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	if err := util.ValidateStruct(&cfg); err != nil {
		return nil, err
	}
	kvDB, err := registry.Open(cfg.KVProvider, cfg.KVParams)
	if err != nil {
		return nil, errors.Wrap(err, errors.Unavailable, "failed to open kv provider '%s'", cfg.KVProvider)
	}
	logger := cfg.Logger
	if logger == nil {
		level := cfg.LogLevel
		if level == "" {
			level = "info"
		}
		logger, err = NewLogger(level, map[string]any{})
		if err != nil {
			return nil, err
		}
	}
	collections := map[string]*Collection{}
	for _, c := range cfg.Collections {
		if err := c.compileSchema(); err != nil {
			return nil, err
		}
		collections[c.name] = c
	}
	d := &DB{
		config:      cfg,
		kv:          kvDB,
		machine:     machine.New(),
		logger:      logger,
		collections: collections,
	}
	if !kvDB.SnapshotReads() {
		d.logger.Warn(ctx, "kv provider does not support snapshot reads - query totals are best effort", map[string]any{
			"provider": cfg.KVProvider,
		})
	}
	return d, nil
}

func (d *DB) collection(name string) (*Collection, error) {
	c, ok := d.collections[name]
	if !ok {
		return nil, errors.New(errors.Validation, "unregistered collection: '%s'", name)
	}
	return c, nil
}

// prepare assigns a primary key if absent and runs the collection's triggers
func (d *DB) prepare(ctx context.Context, c *Collection, document *Document) (string, error) {
	if document == nil || !document.Valid() {
		return "", errors.New(errors.Validation, "%s: invalid document", c.name)
	}
	id := document.GetString(c.primaryKey)
	if id == "" {
		id = ksuid.New().String()
		if err := document.Set(c.primaryKey, id); err != nil {
			return "", err
		}
	}
	for _, trigger := range c.triggers {
		if err := trigger(ctx, document); err != nil {
			return "", errors.Wrap(err, errors.Validation, "%s: trigger failed", c.name)
		}
	}
	return id, nil
}

// Put persists the document to the collection, assigning a ksuid primary key
// if the document does not carry one
func (d *DB) Put(ctx context.Context, collection string, document *Document) error {
	c, err := d.collection(collection)
	if err != nil {
		return err
	}
	id, err := d.prepare(ctx, c, document)
	if err != nil {
		return err
	}
	if err := c.ValidateDocument(document); err != nil {
		return err
	}
	if err := d.kv.Tx(ctx, true, func(tx kv.Tx) error {
		return tx.Set(ctx, c.key(id), document.Bytes())
	}); err != nil {
		return errors.Wrap(err, errors.Unavailable, "failed to persist document to '%s'", collection)
	}
	d.publish(ctx, Change{
		Collection: collection,
		DocumentID: id,
		Op:         ChangeSet,
		Document:   document.Clone(),
		Timestamp:  time.Now(),
	})
	return nil
}

// Get returns the document with the given primary key
func (d *DB) Get(ctx context.Context, collection, id string) (*Document, error) {
	c, err := d.collection(collection)
	if err != nil {
		return nil, err
	}
	var document *Document
	if err := d.kv.Tx(ctx, false, func(tx kv.Tx) error {
		bits, err := tx.Get(ctx, c.key(id))
		if err != nil {
			return err
		}
		if bits == nil {
			return errors.New(errors.NotFound, "%s: document not found: '%s'", collection, id)
		}
		document, err = NewDocumentFromBytes(bits)
		return err
	}); err != nil {
		if errors.Extract(err).Code == errors.NotFound {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.Unavailable, "failed to get document from '%s'", collection)
	}
	return document, nil
}

// Delete removes the document with the given primary key
func (d *DB) Delete(ctx context.Context, collection, id string) error {
	c, err := d.collection(collection)
	if err != nil {
		return err
	}
	if err := d.kv.Tx(ctx, true, func(tx kv.Tx) error {
		return tx.Delete(ctx, c.key(id))
	}); err != nil {
		return errors.Wrap(err, errors.Unavailable, "failed to delete document from '%s'", collection)
	}
	d.publish(ctx, Change{
		Collection: collection,
		DocumentID: id,
		Op:         ChangeDelete,
		Timestamp:  time.Now(),
	})
	return nil
}

// Import validates the documents concurrently, then persists them in a single
// write batch
func (d *DB) Import(ctx context.Context, collection string, documents Documents) error {
	c, err := d.collection(collection)
	if err != nil {
		return err
	}
	ids := make([]string, len(documents))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, document := range documents {
		i, document := i, document
		eg.Go(func() error {
			id, err := d.prepare(egCtx, c, document)
			if err != nil {
				return err
			}
			ids[i] = id
			return c.ValidateDocument(document)
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	batch := d.kv.Batch()
	defer batch.Cancel()
	for i, document := range documents {
		if err := batch.Set(c.key(ids[i]), document.Bytes()); err != nil {
			return errors.Wrap(err, errors.Unavailable, "failed to batch documents to '%s'", collection)
		}
	}
	if err := batch.Flush(ctx); err != nil {
		return errors.Wrap(err, errors.Unavailable, "failed to flush documents to '%s'", collection)
	}
	for i, document := range documents {
		d.publish(ctx, Change{
			Collection: collection,
			DocumentID: ids[i],
			Op:         ChangeSet,
			Document:   document.Clone(),
			Timestamp:  time.Now(),
		})
	}
	return nil
}

// Query executes a paginated query against the collection. The filtered view
// is materialized inside a single read transaction, and both the totals and
// the page slice derive from that one view: a concurrent write cannot make
// the count disagree with the returned documents. Pages past the end of the
// result set return empty documents with the totals still populated.
func (d *DB) Query(ctx context.Context, collection string, query Query) (Page, error) {
	now := time.Now()
	c, err := d.collection(collection)
	if err != nil {
		return Page{}, err
	}
	if err := query.Validate(); err != nil {
		return Page{}, err
	}
	var view Documents
	if err := d.kv.Tx(ctx, false, func(tx kv.Tx) error {
		it, err := tx.NewIterator(kv.IterOpts{Prefix: c.prefix()})
		if err != nil {
			return err
		}
		defer it.Close()
		for it.Valid() {
			if err := ctx.Err(); err != nil {
				return err
			}
			bits, err := it.Value()
			if err != nil {
				return err
			}
			document, err := NewDocumentFromBytes(bits)
			if err != nil {
				return err
			}
			pass, err := document.Where(query.Where)
			if err != nil {
				return err
			}
			if pass {
				view = append(view, document)
			}
			if err := it.Next(); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		if errors.Extract(err).Code == errors.Validation {
			return Page{}, err
		}
		return Page{}, errors.Wrap(err, errors.Unavailable, "failed to query collection '%s'", collection)
	}
	total := len(view)
	if total == 0 {
		return Page{
			Documents: Documents{},
			Stats:     PageStats{ExecutionTime: time.Since(now)},
		}, nil
	}
	view = SortDocuments(view, query.OrderBy)
	skip := (query.Page - 1) * query.Limit
	return Page{
		Documents:     lo.Slice(view, skip, skip+query.Limit),
		TotalElements: total,
		TotalPages:    (total + query.Limit - 1) / query.Limit,
		Stats:         PageStats{ExecutionTime: time.Since(now)},
	}, nil
}

// DropCollection removes every document in the collection
func (d *DB) DropCollection(ctx context.Context, collection string) error {
	c, err := d.collection(collection)
	if err != nil {
		return err
	}
	if err := d.kv.DropPrefix(ctx, c.prefix()); err != nil {
		return errors.Wrap(err, errors.Unavailable, "failed to drop collection '%s'", collection)
	}
	return nil
}

// Close waits for in-flight subscriptions to drain and closes the database
func (d *DB) Close(ctx context.Context) error {
	if err := d.machine.Wait(); err != nil {
		d.logger.Error(ctx, "failed to drain subscriptions", err, map[string]any{})
	}
	return d.kv.Close(ctx)
}
