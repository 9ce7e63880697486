package eventquery

import (
	"context"
	"time"

	"github.com/autom8ter/machine/v4"
)

// ChangeOp is the kind of mutation carried by a Change
type ChangeOp string

const (
	// ChangeSet indicates a document was created or replaced
	ChangeSet ChangeOp = "set"
	// ChangeDelete indicates a document was removed
	ChangeDelete ChangeOp = "delete"
)

// Change is a domain event describing a committed mutation to a collection
type Change struct {
	// Collection is the collection the document belongs to
	Collection string `json:"collection"`
	// DocumentID is the document's primary key
	DocumentID string `json:"document_id"`
	// Op is the mutation kind
	Op ChangeOp `json:"op"`
	// Document is a copy of the document after the mutation (nil on delete)
	Document *Document `json:"document,omitempty"`
	// Timestamp is when the mutation committed
	Timestamp time.Time `json:"timestamp"`
}

// ChangeStreamHandler handles changes from a change stream. Returning false
// stops the stream.
type ChangeStreamHandler func(ctx context.Context, change Change) (bool, error)

// ChangeStream subscribes to committed changes on the collection until the
// context is cancelled or the handler returns false
func (d *DB) ChangeStream(ctx context.Context, collection string, fn ChangeStreamHandler) error {
	if _, err := d.collection(collection); err != nil {
		return err
	}
	return d.machine.Subscribe(ctx, changeChannel(collection), func(ctx context.Context, msg machine.Message) (bool, error) {
		change, ok := msg.Body.(Change)
		if !ok {
			return true, nil
		}
		return fn(ctx, change)
	})
}

func (d *DB) publish(ctx context.Context, change Change) {
	d.machine.Publish(ctx, machine.Message{
		Channel: changeChannel(change.Collection),
		Body:    change,
	})
}

func changeChannel(collection string) string {
	return "changes." + collection
}
